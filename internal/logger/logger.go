// Package logger holds the process-wide zap logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu    sync.Mutex
	sugar *zap.SugaredLogger
)

// Init builds the shared logger for the given environment. "production"
// gets JSON output at info level, "test" gets a silent logger so test
// output stays readable, and anything else gets the console encoder.
// Later calls are no-ops.
func Init(env string) {
	mu.Lock()
	defer mu.Unlock()
	if sugar != nil {
		return
	}

	var base *zap.Logger
	switch env {
	case "production":
		cfg := zap.NewProductionConfig()
		cfg.DisableStacktrace = true
		built, err := cfg.Build()
		if err != nil {
			built = zap.NewNop()
		}
		base = built
	case "test":
		base = zap.NewNop()
	default:
		built, err := zap.NewDevelopment()
		if err != nil {
			built = zap.NewNop()
		}
		base = built
	}

	sugar = base.Sugar()
}

// Get returns the shared sugared logger, initializing a development
// logger on first use if Init was never called.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes buffered entries. Deferred from main.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
