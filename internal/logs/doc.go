// Package logs tails the voiceblog log file for the CLI.
//
// Reads use bounded memory, and follow mode polls for appended lines until
// the caller's context ends. Matchers narrow output to a single recording
// folder.
package logs
