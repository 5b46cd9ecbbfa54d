package projection

import (
	"sort"
	"sync"
)

// Factory constructs a projection instance from a parameter set.
type Factory func(Params) (Projection, error)

var (
	regMu     sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a projection constructor available under the given names.
// It is called from package init functions; later registrations under an
// existing name replace the earlier one.
func Register(f Factory, names ...string) {
	regMu.Lock()
	defer regMu.Unlock()
	for _, name := range names {
		factories[name] = f
	}
}

// New instantiates the projection registered under name with the given
// parameter set.
func New(name string, p Params) (Projection, error) {
	regMu.RLock()
	f, ok := factories[name]
	regMu.RUnlock()
	if !ok {
		return nil, &ConfigurationError{Projection: name, Reason: "unknown projection name"}
	}
	return f(p)
}

// Names returns all registered projection names, sorted.
func Names() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
