// Package job maps a folder label onto the input and output paths of one
// recording.
//
// A Job is resolved once per invocation and never mutated. Artifact presence
// is always read from disk by callers; nothing here caches it.
package job
