package listing

import (
	"fmt"
	"sync"
)

// ExtensionPoint is a named, ordered registry of label filters. Hosts expose
// one per listing; subscribers attach under a stable name and are invoked in
// attach order on every Collect call.
type ExtensionPoint struct {
	mu      sync.RWMutex
	order   []string
	filters map[string]LabelFilter
}

// NewExtensionPoint constructs an empty extension point.
func NewExtensionPoint() *ExtensionPoint {
	return &ExtensionPoint{
		filters: make(map[string]LabelFilter),
	}
}

// Attach registers filter under name. Attaching an existing name replaces the
// previous filter in place, keeping its original position in the run order,
// so re-subscription is idempotent.
func (p *ExtensionPoint) Attach(name string, filter LabelFilter) error {
	if name == "" {
		return fmt.Errorf("listing: filter name must not be empty")
	}
	if filter == nil {
		return fmt.Errorf("listing: filter %q is nil", name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.filters == nil {
		p.filters = make(map[string]LabelFilter)
	}
	if _, exists := p.filters[name]; !exists {
		p.order = append(p.order, name)
	}
	p.filters[name] = filter
	return nil
}

// Detach removes the filter registered under name, if any.
func (p *ExtensionPoint) Detach(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.filters[name]; !exists {
		return
	}
	delete(p.filters, name)
	for i, existing := range p.order {
		if existing == name {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Names returns the attached filter names in run order.
func (p *ExtensionPoint) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]string(nil), p.order...)
}

// Len returns the number of attached filters.
func (p *ExtensionPoint) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.filters)
}

// Collect runs every attached filter against item, threading the label set
// through in attach order. A filter that panics or shrinks the set is
// discarded for that invocation; the labels accumulated before it are kept.
// The returned set is always a detached superset of labels.
func (p *ExtensionPoint) Collect(labels Labels, item Item) Labels {
	p.mu.RLock()
	run := make([]LabelFilter, 0, len(p.order))
	for _, name := range p.order {
		run = append(run, p.filters[name])
	}
	p.mu.RUnlock()

	current := labels.Clone()
	for _, filter := range run {
		current = applyFilter(filter, current, item)
	}
	return current
}

func applyFilter(filter LabelFilter, labels Labels, item Item) (result Labels) {
	result = labels
	defer func() {
		if recover() != nil {
			result = labels
		}
	}()

	next := filter.CollectLabels(labels.Clone(), item)
	if next == nil {
		return labels
	}
	for key, label := range labels {
		if _, ok := next[key]; !ok {
			// Superset contract: a filter cannot remove labels contributed
			// by earlier subscribers.
			next[key] = label
		}
	}
	return next
}
