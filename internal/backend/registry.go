package backend

import "sync"

// Registry manages backend instances.
type Registry struct {
	backends map[Kind]Backend
	mu       sync.RWMutex
}

// NewRegistry creates a new backend registry.
func NewRegistry(backends ...Backend) (*Registry, error) {
	r := &Registry{
		backends: make(map[Kind]Backend),
	}

	for _, b := range backends {
		if err := r.Register(b); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds a backend to the registry.
func (r *Registry) Register(b Backend) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.backends[b.Kind()]; ok {
		return ErrAlreadyRegistered
	}

	r.backends[b.Kind()] = b

	return nil
}

// Get retrieves a backend by kind.
func (r *Registry) Get(kind Kind) (Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.backends[kind]
	return b, ok
}

// GetLocalServer retrieves a backend that can list installed models.
func (r *Registry) GetLocalServer(kind Kind) (LocalServer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.backends[kind]
	if !ok {
		return nil, false
	}

	ls, ok := b.(LocalServer)
	return ls, ok
}

// Kinds returns the registered kinds in preference order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.backends))
	for _, k := range Kinds() {
		if _, ok := r.backends[k]; ok {
			kinds = append(kinds, k)
		}
	}

	return kinds
}
