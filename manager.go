package poststates

import (
	"errors"
	"sync"

	"github.com/arraypress/go-post-states/pkg/listing"
)

// ErrNotInitialized reports use of the process-wide surface before a
// successful Register call.
var ErrNotInitialized = errors.New("poststates: registry not initialized")

// The process-wide singleton is explicit lazy-initialized state: Register
// transitions it from uninitialized to initialized exactly once, Instance
// reads it, Reset tears it down (intended for tests). There is no implicit
// construction anywhere else.
var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
	defaultPoint    *listing.ExtensionPoint
)

// Register populates the process-wide registry with states and subscribes its
// matcher to point. The first successful call initializes the registry with
// the given options and attaches it; subsequent calls replace the entry set
// wholesale, keep the original options, and do not re-subscribe, so repeated
// registration can never duplicate labels in a rendering pass. A failed first
// call leaves the surface uninitialized.
func Register(point *listing.ExtensionPoint, states map[string]string, opts ...Option) (*Registry, error) {
	if point == nil {
		return nil, newConfigError(CodeInvalidResolver, "extension point must not be nil")
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultRegistry != nil {
		if err := defaultRegistry.SetEntries(states); err != nil {
			return nil, err
		}
		return defaultRegistry, nil
	}

	registry := New(opts...)
	if err := registry.SetEntries(states); err != nil {
		return nil, err
	}
	if err := registry.Attach(point); err != nil {
		return nil, err
	}
	defaultRegistry = registry
	defaultPoint = point
	return registry, nil
}

// AddState registers a single state on the process-wide registry.
func AddState(key, label string, opts ...EntryOption) error {
	defaultMu.Lock()
	registry := defaultRegistry
	defaultMu.Unlock()
	if registry == nil {
		return ErrNotInitialized
	}
	return registry.AddEntry(key, label, opts...)
}

// SetResolver replaces the process-wide registry's default resolver.
func SetResolver(resolver Resolver) error {
	defaultMu.Lock()
	registry := defaultRegistry
	defaultMu.Unlock()
	if registry == nil {
		return ErrNotInitialized
	}
	return registry.SetResolver(resolver)
}

// Instance returns the process-wide registry, or nil before the first
// successful Register call.
func Instance() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultRegistry
}

// Reset detaches the process-wide registry from its extension point and
// returns the surface to its uninitialized state. Intended for tests.
func Reset() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry != nil && defaultPoint != nil {
		defaultPoint.Detach(defaultRegistry.cfg.filterName)
	}
	defaultRegistry = nil
	defaultPoint = nil
}
