// Package history keeps a SQLite ledger of pipeline runs and the outcome of
// every stage they attempted.
//
// The ledger is reporting only: the orchestrator never reads it to decide
// what to run, because file presence in the output folder is the sole record
// of completed work. Schema changes bump schemaVersion; operators delete the
// database to adopt the new schema.
package history
