//go:build !js_eval

package poststates

import "fmt"

// NewJSResolver is unavailable without the js_eval build tag.
func NewJSResolver(expression string, opts ...JSResolverOption) (Resolver, error) {
	_ = applyJSResolverOptions(opts)
	return nil, wrapResolveError("js", "", fmt.Errorf("js resolver requires the js_eval build tag"))
}

func jsResolverAvailable() bool {
	return false
}
