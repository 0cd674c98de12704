//go:build js_eval

package poststates

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

type jsResolver struct {
	cache    ProgramCache
	registry *FunctionRegistry
	lookup   Resolver
}

// NewJSResolver compiles expression with goja and returns a Resolver that
// evaluates it per invocation in a fresh runtime. The expression sees `key`,
// `now`, a `setting(name)` lookup, and any registered custom functions.
func NewJSResolver(expression string, opts ...JSResolverOption) (Resolver, error) {
	if expression == "" {
		return nil, wrapResolveError("js", "", fmt.Errorf("expression must not be empty"))
	}
	cfg := applyJSResolverOptions(opts)
	e := &jsResolver{
		cache:    cfg.cache,
		registry: cfg.registry,
		lookup:   cfg.lookup,
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return func(key string) (any, error) {
		value, err := e.run(key, program)
		if err != nil {
			return nil, wrapResolveError("js", key, err)
		}
		return value, nil
	}, nil
}

func (e *jsResolver) loadOrCompile(expression string) (*goja.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", e.wrapExpression(expression), false)
	if err != nil {
		return nil, wrapResolveError("js", "", err)
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

func (e *jsResolver) run(key string, program *goja.Program) (any, error) {
	vm := goja.New()
	e.injectContext(vm, key)
	value, err := vm.RunProgram(program)
	if err != nil {
		return nil, err
	}
	return value.Export(), nil
}

func (e *jsResolver) injectContext(vm *goja.Runtime, key string) {
	vm.Set("key", key)
	vm.Set("now", time.Now())
	vm.Set("setting", func(name string) (any, error) {
		if e.lookup == nil {
			return nil, fmt.Errorf("poststates: setting lookup not configured")
		}
		return e.lookup(name)
	})
	if e.registry != nil {
		vm.Set("call", func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		})
		for _, name := range e.registry.Names() {
			fn := name
			vm.Set(fn, func(arguments ...any) (any, error) {
				return e.registry.Call(fn, arguments...)
			})
		}
	}
}

func (e *jsResolver) wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

func jsResolverAvailable() bool {
	return true
}
