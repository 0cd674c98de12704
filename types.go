package poststates

import "github.com/arraypress/go-post-states/pkg/activity"

// Resolver returns the currently stored configuration value for key. The
// classic resolver is a lookup into the host's settings store
// (settings.ResolverFor); any function with this shape works, including the
// expression-backed resolvers built by NewExprResolver and friends.
type Resolver func(key string) (any, error)

// Option configures a Registry at construction time.
type Option func(*registryConfig)

type registryConfig struct {
	resolver   Resolver
	logger     MatchLogger
	functions  *FunctionRegistry
	cache      ProgramCache
	hooks      activity.Hooks
	filterName string
}

func applyOptions(opts []Option) registryConfig {
	cfg := registryConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.filterName == "" {
		cfg.filterName = DefaultFilterName
	}
	return cfg
}

// WithResolver sets the default resolver used by entries that did not supply
// their own at registration time.
func WithResolver(resolver Resolver) Option {
	return func(cfg *registryConfig) {
		cfg.resolver = resolver
	}
}

// WithFilterName overrides the name the registry attaches under on a listing
// extension point. Two registries attached to the same point need distinct
// names; attaching twice under one name replaces rather than duplicates.
func WithFilterName(name string) Option {
	return func(cfg *registryConfig) {
		if name != "" {
			cfg.filterName = name
		}
	}
}

// WithActivityHooks attaches registration-lifecycle audit hooks. Hooks are
// cloned and nil entries dropped; emission is best-effort and never fails a
// registration.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *registryConfig) {
		cfg.hooks = normalized
	}
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}

// EntryOption configures a single registration (or every entry of a bulk
// registration).
type EntryOption func(*entryConfig)

type entryConfig struct {
	resolver Resolver
	source   string
}

func applyEntryOptions(opts []EntryOption) entryConfig {
	cfg := entryConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithEntryResolver pins a resolver to the entry being registered. Pinned
// resolvers are stored on the entry and are unaffected by later SetResolver
// calls; entries without one fall back to the registry default at match time.
func WithEntryResolver(resolver Resolver) EntryOption {
	return func(cfg *entryConfig) {
		cfg.resolver = resolver
		if cfg.source == "" {
			cfg.source = "custom"
		}
	}
}
