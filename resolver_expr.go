package poststates

import (
	"fmt"
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprResolverOption configures an expr-backed resolver.
type ExprResolverOption func(*exprResolver)

// ExprWithProgramCache wires a ProgramCache into the expr resolver.
func ExprWithProgramCache(cache ProgramCache) ExprResolverOption {
	return func(e *exprResolver) {
		e.cache = cache
	}
}

// ExprWithFunctionRegistry wires a FunctionRegistry into the expr resolver.
func ExprWithFunctionRegistry(registry *FunctionRegistry) ExprResolverOption {
	return func(e *exprResolver) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// ExprWithLookup exposes the given option-getter as setting(name) inside
// expressions.
func ExprWithLookup(lookup Resolver) ExprResolverOption {
	return func(e *exprResolver) {
		e.lookup = lookup
	}
}

// exprResolver evaluates expressions using github.com/expr-lang/expr.
type exprResolver struct {
	cache    ProgramCache
	registry *FunctionRegistry
	lookup   Resolver
}

// NewExprResolver compiles expression with expr-lang and returns a Resolver
// that evaluates it per invocation. The expression sees the entry key as
// `key`, the current time as `now`, a `setting(name)` lookup when configured,
// and any registered custom functions.
func NewExprResolver(expression string, opts ...ExprResolverOption) (Resolver, error) {
	if expression == "" {
		return nil, wrapResolveError("expr", "", fmt.Errorf("expression must not be empty"))
	}
	e := &exprResolver{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return func(key string) (any, error) {
		result, err := exprlang.Run(program, e.environment(key))
		if err != nil {
			return nil, wrapResolveError("expr", key, err)
		}
		return result, nil
	}, nil
}

func (e *exprResolver) loadOrCompile(expression string) (*exprvm.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*exprvm.Program); ok {
				return program, nil
			}
		}
	}
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
		exprlang.Function("setting", func(arguments ...any) (any, error) {
			return e.setting(arguments...)
		}),
	}
	for _, name := range e.registryNames() {
		fn := e.registryFunction(name)
		options = append(options, exprlang.Function(name, fn))
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, wrapResolveError("expr", "", err)
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

func (e *exprResolver) environment(key string) map[string]any {
	env := map[string]any{
		"key":     key,
		"now":     time.Now(),
		"setting": func(arguments ...any) (any, error) { return e.setting(arguments...) },
	}
	if e.registry != nil {
		env["call"] = func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		}
		for _, name := range e.registry.Names() {
			fn := name
			env[fn] = func(arguments ...any) (any, error) {
				return e.registry.Call(fn, arguments...)
			}
		}
	}
	return env
}

func (e *exprResolver) setting(arguments ...any) (any, error) {
	if e.lookup == nil {
		return nil, fmt.Errorf("poststates: setting lookup not configured")
	}
	if len(arguments) != 1 {
		return nil, fmt.Errorf("poststates: setting requires exactly one argument")
	}
	name, ok := arguments[0].(string)
	if !ok {
		return nil, fmt.Errorf("poststates: setting name must be a string")
	}
	return e.lookup(name)
}

func (e *exprResolver) registryNames() []string {
	if e == nil || e.registry == nil {
		return nil
	}
	return e.registry.Names()
}

func (e *exprResolver) registryFunction(name string) func(...any) (any, error) {
	if e == nil || e.registry == nil {
		return nil
	}
	return func(arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}
}
