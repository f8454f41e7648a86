package smartdb

import (
	"sync"
)

// Driver is a factory that materializes a Closed Connection from a
// configuration object. Unsupported configuration fields are ignored;
// required fields missing are reported on Open with kind=Configuration,
// not at CreateConnection time.
type Driver interface {
	// CreateConnection returns a new, Closed connection for config.
	CreateConnection(config map[string]any) (Connection, error)

	// Name identifies the driver for registration and lookup.
	Name() string
}

// Registry is a concurrency-safe name -> Driver registration table.
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{drivers: make(map[string]Driver)}
}

// Register stores d under d.Name(), overwriting any previous registration.
// A nil driver is InvalidArgument.
func (r *Registry) Register(d Driver) *DbError {
	if d == nil {
		return NewError("driver is nil", 0, KindInvalidArgument, false)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[d.Name()] = d
	return nil
}

// Lookup finds a registered driver by name. ok is false if no driver with
// that name has been registered.
func (r *Registry) Lookup(name string) (Driver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drivers[name]
	return d, ok
}

// Names returns every registered driver name, in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.drivers))
	for n := range r.drivers {
		names = append(names, n)
	}
	return names
}
