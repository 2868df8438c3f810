// Package preflight provides readiness checks for the binaries, credentials,
// directories and remote APIs that voiceblog depends on.
//
// The CLI "voiceblog status" command runs them before showing a folder's
// manifest. Checks are scoped to the requested stages: a preprocess-only run
// never needs an API key, and an LLM-backed stage never needs uvx.
package preflight
