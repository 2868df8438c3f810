// Package notifications publishes run outcomes to an ntfy topic.
//
// When notifications.ntfy_topic is unset the service is a no-op, so the
// workflow can call it unconditionally.
package notifications
