package voice

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a backend from provider-agnostic configuration.
type Factory func(cfg Config) (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a backend factory available under name. Backends register
// themselves from init; registering the same name twice panics, as that is
// always a programming error.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("voice: backend %q registered twice", name))
	}
	registry[name] = factory
}

// Open builds the backend registered under name.
func Open(name string, cfg Config) (Backend, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownBackend, name, Registered())
	}
	return factory(cfg)
}

// Registered returns the sorted names of all registered backends.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
