package plugins

import (
	"github.com/gridsmith/powerplan/config"
	"github.com/gridsmith/powerplan/core/runlog"
)

// RunStoreFactory builds a run store from the run-log configuration.
type RunStoreFactory func(cfg config.RunLogConfig) (runlog.Store, error)

var RunStores = map[string]RunStoreFactory{}

func RegisterRunStore(name string, f RunStoreFactory) { RunStores[name] = f }
