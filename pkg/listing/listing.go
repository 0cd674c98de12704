package listing

// Item is one row of an administrative listing. Only ID participates in
// matching; the remaining fields exist so filters can log or branch on
// display metadata without reaching back into the host.
type Item struct {
	ID     int64
	Title  string
	Status string
	Meta   map[string]any
}

// Labels maps a state key to the display label shown next to an item title.
type Labels map[string]string

// Clone returns a detached copy of the label set. A nil receiver yields an
// empty, non-nil map so callers can add to the result unconditionally.
func (l Labels) Clone() Labels {
	out := make(Labels, len(l))
	for key, label := range l {
		out[key] = label
	}
	return out
}

// LabelFilter contributes extra display labels for a single item. The
// returned set must contain every entry of labels, potentially augmented.
type LabelFilter interface {
	CollectLabels(labels Labels, item Item) Labels
}

// FilterFunc allows plain functions to satisfy LabelFilter.
type FilterFunc func(labels Labels, item Item) Labels

// CollectLabels dispatches to the underlying function.
func (fn FilterFunc) CollectLabels(labels Labels, item Item) Labels {
	if fn == nil {
		return labels
	}
	return fn(labels, item)
}
