package native

import (
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

// Loader creates a Library
type Loader func() (Library, error)

var (
	lockLoaders sync.RWMutex
	loaders     = make(map[string]Loader)
)

// Register engine loader by name
func Register(name string, loader Loader) error {
	lockLoaders.Lock()
	defer lockLoaders.Unlock()

	if _, ok := loaders[name]; ok {
		return errors.Errorf("already registered: %s", name)
	}

	loaders[name] = loader

	return nil
}

// Unregister engine loader by name
func Unregister(name string) (Loader, error) {
	lockLoaders.Lock()
	defer lockLoaders.Unlock()

	if loader, ok := loaders[name]; ok {
		delete(loaders, name)
		return loader, nil
	}

	return nil, errors.Errorf("not registered: %s", name)
}

// Registered returns sorted names of registered engines
func Registered() []string {
	lockLoaders.RLock()
	defer lockLoaders.RUnlock()

	list := make([]string, 0, len(loaders))
	for name := range loaders {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

// Load returns a new Library from the engine registered by name
func Load(name string) (Library, error) {
	lockLoaders.RLock()
	loader, ok := loaders[name]
	lockLoaders.RUnlock()

	if !ok {
		return nil, errors.Errorf("engine not registered: %s", name)
	}

	lib, err := loader()
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to load engine: %s", name)
	}
	return lib, nil
}
