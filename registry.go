// Package poststates maintains a registry of post states: short descriptive
// labels attached to items in an administrative listing when a stored
// configuration value resolves to that item's identifier. The registry owns
// registration and validation; matching happens inside the host's per-item
// label-collection pass via CollectLabels.
package poststates

import (
	"context"
	"sort"
	"sync"

	"github.com/arraypress/go-post-states/pkg/activity"
)

// StateEntry pairs a configuration key with its display label and the
// resolver pinned at registration time, if any.
type StateEntry struct {
	Key   string
	Label string

	resolver Resolver
	source   string
}

// Source names where the entry's value comes from: "settings" for the
// registry default resolver, "custom" for a caller-supplied function, or the
// engine name for expression-backed resolvers.
func (e StateEntry) Source() string {
	if e.source == "" {
		return "settings"
	}
	return e.source
}

// Registry owns the mapping from configuration keys to state entries. Entries
// iterate deterministically: bulk registrations are ordered by key, and
// incremental additions append (overwrites keep their original position).
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]StateEntry
	cfg     registryConfig
}

// New constructs an empty Registry.
func New(opts ...Option) *Registry {
	return &Registry{
		entries: make(map[string]StateEntry),
		cfg:     applyOptions(opts),
	}
}

// SetEntries replaces the entry set wholesale with the given key → label
// mapping. Pairs with an empty key or empty label are silently dropped; the
// call fails only when the mapping is empty (CodeEmptyConfiguration) or when
// nothing valid remains (CodeNoValidEntries). Entry options apply to every
// entry in the batch.
func (r *Registry) SetEntries(states map[string]string, opts ...EntryOption) error {
	if len(states) == 0 {
		return newConfigError(CodeEmptyConfiguration, "no states provided")
	}

	entryCfg := applyEntryOptions(opts)
	keys := make([]string, 0, len(states))
	for key, label := range states {
		if key == "" || label == "" {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return newConfigError(CodeNoValidEntries, "no valid states after validation")
	}
	sort.Strings(keys)

	order := make([]string, 0, len(keys))
	entries := make(map[string]StateEntry, len(keys))
	for _, key := range keys {
		order = append(order, key)
		entries[key] = StateEntry{
			Key:      key,
			Label:    states[key],
			resolver: entryCfg.resolver,
			source:   entryCfg.source,
		}
	}

	r.mu.Lock()
	r.order = order
	r.entries = entries
	r.mu.Unlock()

	r.emit(activity.BuildStatesReplacedEvent(activity.StateEventInput{
		Count:  len(order),
		Source: entryCfg.source,
	}))
	return nil
}

// AddEntry registers or overwrites a single state. Unlike the bulk form, an
// empty key or empty label is an error here (CodeInvalidKeyOrLabel).
// Overwriting an existing key keeps its position in the iteration order.
func (r *Registry) AddEntry(key, label string, opts ...EntryOption) error {
	if key == "" || label == "" {
		return newConfigError(CodeInvalidKeyOrLabel, "state key and label must not be empty")
	}

	entryCfg := applyEntryOptions(opts)
	entry := StateEntry{
		Key:      key,
		Label:    label,
		resolver: entryCfg.resolver,
		source:   entryCfg.source,
	}

	r.mu.Lock()
	if r.entries == nil {
		r.entries = make(map[string]StateEntry)
	}
	if _, exists := r.entries[key]; !exists {
		r.order = append(r.order, key)
	}
	r.entries[key] = entry
	r.mu.Unlock()

	r.emit(activity.BuildStateRegisteredEvent(activity.StateEventInput{
		Key:    key,
		Label:  label,
		Source: entry.Source(),
	}))
	return nil
}

// SetResolver replaces the default resolver consulted by entries that did not
// pin their own at registration time. Entries registered with
// WithEntryResolver are unaffected.
func (r *Registry) SetResolver(resolver Resolver) error {
	if resolver == nil {
		return newConfigError(CodeInvalidResolver, "resolver must not be nil")
	}

	r.mu.Lock()
	r.cfg.resolver = resolver
	r.mu.Unlock()

	r.emit(activity.BuildResolverChangedEvent(activity.StateEventInput{
		Source: "custom",
	}))
	return nil
}

// Lookup returns the entry registered under key.
func (r *Registry) Lookup(key string) (StateEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[key]
	return entry, ok
}

// Keys returns the registered keys in iteration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Len returns the number of registered states.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// snapshot copies the ordered entries and default resolver under the read
// lock so a rendering pass never observes a partially replaced set.
func (r *Registry) snapshot() ([]StateEntry, Resolver) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]StateEntry, 0, len(r.order))
	for _, key := range r.order {
		entries = append(entries, r.entries[key])
	}
	return entries, r.cfg.resolver
}

// lookup exposes the current default resolver as a Resolver whose target can
// change across SetResolver calls. Expression resolvers use it for their
// setting() binding.
func (r *Registry) lookup() Resolver {
	return func(key string) (any, error) {
		r.mu.RLock()
		resolver := r.cfg.resolver
		r.mu.RUnlock()
		if resolver == nil {
			return nil, nil
		}
		return resolver(key)
	}
}

func (r *Registry) emit(event activity.Event) {
	if !r.cfg.hooks.Enabled() {
		return
	}
	// Best-effort: hook failures never fail a registration.
	_ = r.cfg.hooks.Notify(context.Background(), event)
}
