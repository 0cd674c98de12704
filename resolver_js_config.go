package poststates

type jsResolverConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
	lookup   Resolver
}

// JSResolverOption configures a JS-backed resolver.
type JSResolverOption func(*jsResolverConfig)

// JSWithProgramCache applies a ProgramCache to the JS resolver.
func JSWithProgramCache(cache ProgramCache) JSResolverOption {
	return func(cfg *jsResolverConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry applies a FunctionRegistry to the JS resolver.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSResolverOption {
	return func(cfg *jsResolverConfig) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

// JSWithLookup exposes the given option-getter as setting(name) inside
// expressions.
func JSWithLookup(lookup Resolver) JSResolverOption {
	return func(cfg *jsResolverConfig) {
		cfg.lookup = lookup
	}
}

func applyJSResolverOptions(opts []JSResolverOption) jsResolverConfig {
	cfg := jsResolverConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
