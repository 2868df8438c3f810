// Package services defines shared utilities consumed by the pipeline stages
// and their external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp folder labels, stage names, and run
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (configuration, predecessor, tool, timeout, interrupt)
//     uniform across stages.
//
// Use these helpers when wiring new stage logic so operational behaviour
// stays consistent across the pipeline.
package services
