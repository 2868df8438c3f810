package logging

import (
	"context"
	"log/slog"
)

// LevelSuccess sits between info and warn so it survives an info threshold
// but is filtered out when only warnings are requested.
const LevelSuccess = slog.Level(2)

// Success logs msg at LevelSuccess.
func Success(logger *slog.Logger, msg string, attrs ...Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), LevelSuccess, msg, attrs...)
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= LevelSuccess:
		return "SUCCESS"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
