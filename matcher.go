package poststates

import (
	"fmt"
	"time"

	"github.com/arraypress/go-post-states/pkg/listing"
)

// DefaultFilterName is the name the registry attaches under on a listing
// extension point when WithFilterName is not used.
const DefaultFilterName = "post-states"

// CollectLabels is the render-time callback: for each registered entry it
// resolves the entry's configuration value and, when that value names the
// item's identifier, attaches the entry's label under its key (overwriting
// any prior label for that key). The returned set is a detached superset of
// labels; a resolver that errors, panics, or yields a non-numeric value is a
// "no match" for that entry and cannot suppress other entries or break the
// host's pass.
func (r *Registry) CollectLabels(labels listing.Labels, item listing.Item) listing.Labels {
	entries, fallback := r.snapshot()
	out := labels.Clone()

	for _, entry := range entries {
		start := time.Now()
		value, err := resolveEntry(entry, fallback)

		matched := false
		if err == nil {
			if id, ok := coerceID(value); ok && id == item.ID {
				out[entry.Key] = entry.Label
				matched = true
			}
		}

		r.logMatch(MatchEvent{
			Key:      entry.Key,
			Label:    entry.Label,
			Engine:   entry.Source(),
			ItemID:   item.ID,
			Value:    value,
			Matched:  matched,
			Duration: time.Since(start),
			Err:      err,
		})
	}
	return out
}

// Attach subscribes the matcher to the host's label-collection extension
// point. The registry attaches under its configured filter name, so calling
// Attach repeatedly (or re-initializing the singleton) can never produce
// duplicate labels within one rendering pass.
func (r *Registry) Attach(point *listing.ExtensionPoint) error {
	if point == nil {
		return newConfigError(CodeInvalidResolver, "extension point must not be nil")
	}
	return point.Attach(r.cfg.filterName, listing.FilterFunc(r.CollectLabels))
}

// resolveEntry invokes the entry's pinned resolver, falling back to the
// registry default. A nil resolver resolves to no value.
func resolveEntry(entry StateEntry, fallback Resolver) (value any, err error) {
	resolver := entry.resolver
	if resolver == nil {
		resolver = fallback
	}
	if resolver == nil {
		return nil, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			value = nil
			err = wrapResolveError(entry.Source(), entry.Key, fmt.Errorf("resolver panic: %v", rec))
		}
	}()

	value, err = resolver(entry.Key)
	if err != nil {
		return nil, wrapResolveError(entry.Source(), entry.Key, err)
	}
	return value, nil
}

// logMatch is best-effort: a logger that panics cannot affect the pass.
func (r *Registry) logMatch(event MatchEvent) {
	logger := r.cfg.logger
	if logger == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	logger.LogMatch(event)
}
