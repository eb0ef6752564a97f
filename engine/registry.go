package engine

import (
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// Constructor builds an engine from startup options.
type Constructor func(opts Options, logger golog.Logger) (Engine, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
)

// Register associates an engine driver with a name. It panics on duplicate
// registration since drivers register from init.
func Register(name string, c Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[name]; ok {
		panic(errors.Errorf("engine driver %q registered twice", name))
	}
	registry[name] = c
}

// Open constructs the engine driver registered under name.
func Open(name string, opts Options, logger golog.Logger) (Engine, error) {
	registryMu.RLock()
	c, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Errorf("no engine driver registered with name %q", name)
	}
	return c(opts, logger)
}
