// Package logging assembles structured slog loggers and formatting helpers used
// across voiceblog.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code can tag log lines
// with folder labels, stages, and run identifiers. Console output is line
// oriented ("[15:04:05] [INFO] message key=value") and adds a SUCCESS level
// between info and warn for completed work.
package logging
