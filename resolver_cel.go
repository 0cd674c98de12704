package poststates

import (
	"fmt"
	"time"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELResolverOption configures a CEL-backed resolver.
type CELResolverOption func(*celResolver)

// CELWithProgramCache wires a ProgramCache into the CEL resolver.
func CELWithProgramCache(cache ProgramCache) CELResolverOption {
	return func(e *celResolver) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL resolver.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELResolverOption {
	return func(e *celResolver) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// CELWithLookup exposes the given option-getter as setting(name) inside
// expressions.
func CELWithLookup(lookup Resolver) CELResolverOption {
	return func(e *celResolver) {
		e.lookup = lookup
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celResolver struct {
	cache    ProgramCache
	registry *FunctionRegistry
	lookup   Resolver
}

// NewCELResolver compiles expression with cel-go and returns a Resolver that
// evaluates it per invocation. The expression sees `key`, `now`, a
// `setting(name)` lookup, and `call(name, args...)` for registered custom
// functions.
func NewCELResolver(expression string, opts ...CELResolverOption) (Resolver, error) {
	if expression == "" {
		return nil, wrapResolveError("cel", "", fmt.Errorf("expression must not be empty"))
	}
	e := &celResolver{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	bundle, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, wrapResolveError("cel", "", err)
	}
	return func(key string) (any, error) {
		out, _, err := bundle.program.Eval(e.activation(key))
		if err != nil {
			return nil, wrapResolveError("cel", key, err)
		}
		return out.Value(), nil
	}, nil
}

func (e *celResolver) loadOrCompile(expression string) (*celProgram, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, err
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(expression, bundle)
	}
	return bundle, nil
}

func (e *celResolver) buildEnv() (*celgo.Env, error) {
	settingBinding := e.settingBinding()
	opts := []celgo.EnvOption{
		celgo.Variable("key", celgo.StringType),
		celgo.Variable("now", celgo.TimestampType),
		celgo.Function("setting", celgo.Overload(
			"setting_dyn",
			[]*celgo.Type{celgo.StringType},
			celgo.DynType,
			celgo.FunctionBinding(func(values ...ref.Val) ref.Val {
				return settingBinding(values)
			}),
		)),
	}
	if e.registry != nil {
		callBinding := e.callBinding()
		// CEL declarations are fixed-arity, so the variadic call(name,
		// args...) surface is declared as one overload per arity.
		const maxCallArgs = 8
		callOpts := make([]celgo.FunctionOpt, 0, maxCallArgs+1)
		for extra := 0; extra <= maxCallArgs; extra++ {
			args := make([]*celgo.Type, 0, extra+1)
			args = append(args, celgo.StringType)
			for i := 0; i < extra; i++ {
				args = append(args, celgo.DynType)
			}
			callOpts = append(callOpts, celgo.Overload(
				fmt.Sprintf("call_dyn_%d", extra),
				args,
				celgo.DynType,
				celgo.FunctionBinding(func(values ...ref.Val) ref.Val {
					return callBinding(values)
				}),
			))
		}
		opts = append(opts, celgo.Function("call", callOpts...))
	}
	return celgo.NewEnv(opts...)
}

func (e *celResolver) activation(key string) map[string]any {
	activation := map[string]any{
		"key": key,
		"now": time.Now(),
		"setting": func(name string) (any, error) {
			return e.setting(name)
		},
	}
	if e.registry != nil {
		activation["call"] = func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		}
	}
	return activation
}

func (e *celResolver) setting(name string) (any, error) {
	if e.lookup == nil {
		return nil, fmt.Errorf("poststates: setting lookup not configured")
	}
	return e.lookup(name)
}

func (e *celResolver) settingBinding() func([]ref.Val) ref.Val {
	return func(values []ref.Val) ref.Val {
		if len(values) != 1 {
			return types.NewErr("poststates: setting requires exactly one argument")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("poststates: setting name must be a string")
		}
		result, err := e.setting(name)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}

func (e *celResolver) callBinding() func([]ref.Val) ref.Val {
	return func(values []ref.Val) ref.Val {
		if e.registry == nil {
			return types.NewErr("poststates: function registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("poststates: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("poststates: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
