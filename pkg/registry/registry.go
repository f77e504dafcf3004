package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/drivepool/pkg/errors"
)

// Registry is a thread-safe table of items looked up by name
type Registry[T any] interface {
	// Register adds an item under a unique, non-empty name
	Register(name string, item T) error

	// Get returns the item registered under name
	Get(name string) (T, error)

	// List returns every registered name, sorted
	List() []string

	// Has reports whether name is registered
	Has(name string) bool

	// Count returns the number of registered items
	Count() int
}

type registry[T any] struct {
	kind  string
	mu    sync.RWMutex
	items map[string]T
}

// New creates an empty Registry. kind names the table in error messages,
// e.g. "allocation order".
func New[T any](kind string) Registry[T] {
	return &registry[T]{
		kind:  kind,
		items: make(map[string]T),
	}
}

func (r *registry[T]) Register(name string, item T) error {
	if name == "" {
		return errors.Newf(errors.ErrInvalidInput, "%s name cannot be empty", r.kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[name]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "%s '%s' is already registered", r.kind, name)
	}

	r.items[name] = item
	return nil
}

// Get fails with ErrNotFound and lists the valid names, so a typo in a
// config file produces an actionable message.
func (r *registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	item, exists := r.items[name]
	r.mu.RUnlock()

	if !exists {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "unknown %s '%s' (available: %s)",
			r.kind, name, strings.Join(r.List(), ", ")).
			WithDetail("name", name)
	}
	return item, nil
}

func (r *registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.items[name]
	return exists
}

func (r *registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// MustRegister registers an item and panics if registration fails.
// Use it from init() where a failure is a programming error.
func MustRegister[T any](reg Registry[T], name string, item T) {
	if err := reg.Register(name, item); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", name, err))
	}
}
