package poststates

import (
	"github.com/arraypress/go-post-states/internal/hydrate"
	"github.com/arraypress/go-post-states/pkg/activity"
)

// Engine selects how a state definition resolves its configuration value.
type Engine string

const (
	// EngineSettings resolves through the registry's default resolver.
	EngineSettings Engine = "settings"
	// EngineExpr evaluates the definition's expression with expr-lang.
	EngineExpr Engine = "expr"
	// EngineCEL evaluates the definition's expression with cel-go.
	EngineCEL Engine = "cel"
	// EngineJS evaluates the definition's expression with goja. Requires the
	// js_eval build tag.
	EngineJS Engine = "js"
)

// StateDefinition is the declarative form of a state registration, typically
// hydrated from host configuration.
type StateDefinition struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Engine     Engine `json:"engine,omitempty"`
	Expression string `json:"expression,omitempty"`
}

type bulkDefinitions struct {
	States []StateDefinition `json:"states"`
}

// ParseDefinitions hydrates state definitions from an untyped host payload of
// the shape {"states": [{"key": ..., "label": ..., ...}]}. Validation beyond
// decoding is left to SetDefinitions so bulk drop semantics apply uniformly.
func ParseDefinitions(payload map[string]any) ([]StateDefinition, error) {
	decoder := hydrate.NewDecoder[bulkDefinitions]()
	decoded, err := decoder.Decode(hydrate.Context{Key: "states", Source: "payload"}, payload)
	if err != nil {
		return nil, err
	}
	return decoded.States, nil
}

// SetDefinitions replaces the entry set wholesale from declarative
// definitions, preserving their order. Definitions with an empty key or label
// are silently dropped like the bulk map form; a definition whose expression
// fails to compile is an error (CodeInvalidResolver). Expression engines share
// the registry's program cache and function registry and see the default
// resolver as setting().
func (r *Registry) SetDefinitions(defs []StateDefinition) error {
	if len(defs) == 0 {
		return newConfigError(CodeEmptyConfiguration, "no state definitions provided")
	}

	order := make([]string, 0, len(defs))
	entries := make(map[string]StateEntry, len(defs))
	for _, def := range defs {
		if def.Key == "" || def.Label == "" {
			continue
		}
		resolver, source, err := r.buildResolver(def)
		if err != nil {
			return err
		}
		if _, exists := entries[def.Key]; !exists {
			order = append(order, def.Key)
		}
		entries[def.Key] = StateEntry{
			Key:      def.Key,
			Label:    def.Label,
			resolver: resolver,
			source:   source,
		}
	}
	if len(order) == 0 {
		return newConfigError(CodeNoValidEntries, "no valid state definitions after validation")
	}

	r.mu.Lock()
	r.order = order
	r.entries = entries
	r.mu.Unlock()

	r.emit(activity.BuildStatesReplacedEvent(activity.StateEventInput{
		Count:  len(order),
		Source: "definitions",
	}))
	return nil
}

func (r *Registry) buildResolver(def StateDefinition) (Resolver, string, error) {
	switch def.Engine {
	case "", EngineSettings:
		// Falls back to the registry default at match time.
		return nil, "", nil
	case EngineExpr:
		resolver, err := NewExprResolver(def.Expression,
			ExprWithProgramCache(r.cfg.cache),
			ExprWithFunctionRegistry(r.cfg.functions),
			ExprWithLookup(r.lookup()),
		)
		if err != nil {
			return nil, "", wrapConfigError(CodeInvalidResolver, err, "state %q: expr resolver", def.Key)
		}
		return resolver, string(EngineExpr), nil
	case EngineCEL:
		resolver, err := NewCELResolver(def.Expression,
			CELWithProgramCache(r.cfg.cache),
			CELWithFunctionRegistry(r.cfg.functions),
			CELWithLookup(r.lookup()),
		)
		if err != nil {
			return nil, "", wrapConfigError(CodeInvalidResolver, err, "state %q: cel resolver", def.Key)
		}
		return resolver, string(EngineCEL), nil
	case EngineJS:
		if !jsResolverAvailable() {
			return nil, "", newConfigError(CodeInvalidResolver, "state %q: js resolver requires the js_eval build tag", def.Key)
		}
		resolver, err := NewJSResolver(def.Expression,
			JSWithProgramCache(r.cfg.cache),
			JSWithFunctionRegistry(r.cfg.functions),
			JSWithLookup(r.lookup()),
		)
		if err != nil {
			return nil, "", wrapConfigError(CodeInvalidResolver, err, "state %q: js resolver", def.Key)
		}
		return resolver, string(EngineJS), nil
	default:
		return nil, "", newConfigError(CodeInvalidResolver, "state %q: unknown engine %q", def.Key, def.Engine)
	}
}
