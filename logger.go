package tinymod

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var defaultLogger atomic.Pointer[zap.Logger]

func init() {
	defaultLogger.Store(zap.NewNop())
}

// SetDefaultLogger sets logger used by instances built without Builder.WithLogger.
// Nil restores the no-op logger.
func SetDefaultLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}

	defaultLogger.Store(l)
}

func logger() *zap.Logger {
	return defaultLogger.Load()
}
