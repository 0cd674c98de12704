package poststates

import "encoding/json"

// StateDescriptor describes one registered state for introspection.
type StateDescriptor struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Source string `json:"source"`
}

// Document is a point-in-time snapshot of the registry, suitable for
// diagnostics or transport to administrative tooling.
type Document struct {
	States []StateDescriptor `json:"states"`
}

// Document captures the registered states in iteration order.
func (r *Registry) Document() Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	states := make([]StateDescriptor, 0, len(r.order))
	for _, key := range r.order {
		entry := r.entries[key]
		states = append(states, StateDescriptor{
			Key:    entry.Key,
			Label:  entry.Label,
			Source: entry.Source(),
		})
	}
	return Document{States: states}
}

// ToJSON serialises the document for logging or transport helpers.
func (d Document) ToJSON() ([]byte, error) {
	type alias Document
	return json.Marshal(alias(d))
}

// DocumentFromJSON deserialises a JSON payload that was previously generated
// via ToJSON.
func DocumentFromJSON(payload []byte) (Document, error) {
	type alias Document
	var doc alias
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Document{}, err
	}
	return Document(doc), nil
}
