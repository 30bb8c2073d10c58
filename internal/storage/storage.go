// Package storage provides the key/value "local storage" that notes,
// AI configuration and the shell pointers persist into.
package storage

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by Get when a key has never been set or was removed.
var ErrNotFound = errors.New("storage: key not found")

// Local is a flat string key/value store with browser localStorage semantics.
// Values are opaque strings; callers own their encoding.
type Local interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
}

// Profile is a Local backed by a file on disk that can list its keys.
type Profile interface {
	Local
	Keys(prefix string) ([]string, error)
	Close() error
}

// Profile backends accepted by OpenProfile.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// OpenProfile opens the profile at path with the named backend. An empty
// backend means sqlite.
func OpenProfile(backend, path string) (Profile, error) {
	switch backend {
	case "", BackendSQLite:
		return OpenSQLite(path)
	case BackendFile:
		return NewFileStore(path), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

// Error records a failed storage operation.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Lookup returns the value for key and whether it was present. Any error
// other than ErrNotFound is reported as absent; readers of local storage
// treat unreadable state as empty.
func Lookup(l Local, key string) (string, bool) {
	v, err := l.Get(key)
	if err != nil {
		return "", false
	}
	return v, true
}

// Memory is an in-process Local, used by tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", &Error{Op: "get", Key: key, Err: ErrNotFound}
	}
	return v, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
