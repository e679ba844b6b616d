// Package model tracks the lifecycle of a resident model.
package model

import (
	"sync"
	"time"
)

// Status is the current loading status of a model.
type Status string

const (
	// StatusUnloaded indicates that the model is not loaded.
	StatusUnloaded Status = "unloaded"

	// StatusLoading indicates that the model is being loaded.
	StatusLoading Status = "loading"

	// StatusLoaded indicates that the model is loaded.
	StatusLoaded Status = "loaded"

	// StatusFailed indicates that the model failed to load.
	StatusFailed Status = "failed"
)

// Instance represents a model that is, was, or is being loaded.
type Instance struct {
	loadedAt time.Time
	err      error
	id       string
	path     string
	status   Status
	mu       sync.RWMutex
}

// NewInstance creates an unloaded instance.
func NewInstance(id, path string) *Instance {
	return &Instance{
		id:     id,
		path:   path,
		status: StatusUnloaded,
	}
}

// ID returns the model identifier.
func (i *Instance) ID() string {
	return i.id
}

// Path returns the model file path.
func (i *Instance) Path() string {
	return i.path
}

// SetStatus sets the status of the instance.
func (i *Instance) SetStatus(status Status) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.status = status
	if status == StatusLoaded {
		i.loadedAt = time.Now()
		i.err = nil
	}
}

// Fail marks the instance failed with err.
func (i *Instance) Fail(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.status = StatusFailed
	i.err = err
}

// Snapshot is a point-in-time copy of an Instance.
type Snapshot struct {
	LoadedAt *time.Time `json:"loaded_at,omitempty"`
	ID       string     `json:"id"`
	Status   Status     `json:"status"`
	Error    string     `json:"error,omitempty"`
}

// Snapshot returns the current state of the instance.
func (i *Instance) Snapshot() Snapshot {
	i.mu.RLock()
	defer i.mu.RUnlock()

	s := Snapshot{ID: i.id, Status: i.status}
	if !i.loadedAt.IsZero() {
		t := i.loadedAt
		s.LoadedAt = &t
	}
	if i.err != nil {
		s.Error = i.err.Error()
	}
	return s
}
