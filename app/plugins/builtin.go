package plugins

import (
	"fmt"

	"github.com/gridsmith/powerplan/config"
	"github.com/gridsmith/powerplan/core/runlog"
)

func init() {
	RegisterRunStore("jsonl", func(cfg config.RunLogConfig) (runlog.Store, error) {
		return runlog.NewJSONLStore(cfg.Path)
	})
	RegisterRunStore("jsonl_rotating", func(cfg config.RunLogConfig) (runlog.Store, error) {
		return runlog.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	})
	RegisterRunStore("sqlite", func(cfg config.RunLogConfig) (runlog.Store, error) {
		return runlog.NewSQLiteStore(cfg.Path)
	})
}

// NewRunStore resolves the configured backend through the registry.
func NewRunStore(cfg config.RunLogConfig) (runlog.Store, error) {
	f, ok := RunStores[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unknown run store backend %q", cfg.Backend)
	}
	return f(cfg)
}
