package activity

import (
	"strings"
	"time"
)

// StateEventInput describes the common fields for post-state lifecycle events.
type StateEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Key        string
	Label      string
	Source     string
	Count      int
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildStateRegisteredEvent constructs a normalized activity event for a
// single state registration or overwrite.
func BuildStateRegisteredEvent(input StateEventInput) Event {
	return buildStateEvent("post_state.registered", input)
}

// BuildStatesReplacedEvent constructs a normalized activity event for a bulk
// registration that replaced the entry set wholesale.
func BuildStatesReplacedEvent(input StateEventInput) Event {
	return buildStateEvent("post_state.replaced", input)
}

// BuildResolverChangedEvent constructs a normalized activity event for a
// default-resolver swap.
func BuildResolverChangedEvent(input StateEventInput) Event {
	return buildStateEvent("post_state.resolver_changed", input)
}

func buildStateEvent(verb string, input StateEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Label != "" {
		metadata = ensureMetadata(metadata)
		metadata["label"] = input.Label
	}
	if input.Source != "" {
		metadata = ensureMetadata(metadata)
		metadata["source"] = input.Source
	}
	if input.Count > 0 {
		metadata = ensureMetadata(metadata)
		metadata["count"] = input.Count
	}

	objectID := strings.TrimSpace(input.Key)
	if objectID == "" {
		objectID = "registry"
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: "post_state",
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
