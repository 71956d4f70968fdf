package dto

import (
	"io"
	"log/slog"
	"sync/atomic"
)

var engineLog atomic.Pointer[slog.Logger]

func init() {
	engineLog.Store(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// SetLogger installs the logger used for engine diagnostics. A nil logger
// restores the discarding default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	engineLog.Store(l.With("component", "dto"))
}

func logger() *slog.Logger {
	return engineLog.Load()
}
