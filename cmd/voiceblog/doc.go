// Package main hosts the voiceblog CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into workflow runs:
// "run" drives a recording folder through preprocess, transcribe and compose,
// while the single-stage commands run one step either against explicit paths
// or through the orchestrator. "status", "history" and "config" cover
// readiness checks, the run ledger and configuration scaffolding.
//
// Keep this package lean: behaviour belongs in the internal packages, and
// commands here only parse flags, wire dependencies and render results.
package main
