// Package compose turns a transcript into a markdown blog post.
//
// The post is generated by either the shared chat completion endpoint or the
// Anthropic Messages API, then parsed with goldmark: a post must open with a
// single H1 title and carry body content before it is accepted.
package compose
