package titleformat

import (
	"maps"
	"slices"
)

// Policy controls how a function receives its arguments.
type Policy int

const (
	// Eager functions receive evaluated arguments, left to right.
	Eager Policy = iota
	// Lazy functions receive unevaluated nodes and decide what to evaluate.
	Lazy
)

// Func implements a format function. It must not panic on bad input;
// arity or type problems resolve to the zero Result.
type Func func(args *Args) Result

// Function is a registry entry.
type Function struct {
	Name   string
	Fn     Func
	Policy Policy
}

// Registry maps function names to implementations. A Registry is an
// explicit value handed to parsers and evaluators; two registries never
// share state.
type Registry struct {
	funcs map[string]Function
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Function)}
}

// Register adds or replaces a function.
func (r *Registry) Register(name string, fn Func, policy Policy) {
	r.funcs[name] = Function{Name: name, Fn: fn, Policy: policy}
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Function, bool) {
	f, ok := r.funcs[name]
	return f, ok
}

// Names returns the registered function names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.funcs))
}

// Clone returns an independent copy that can be extended without
// affecting r.
func (r *Registry) Clone() *Registry {
	return &Registry{funcs: maps.Clone(r.funcs)}
}

// Args gives a function access to its arguments.
type Args struct {
	ev      *Evaluator
	ctx     *Context
	nodes   []Node
	results []Result // pre-evaluated for eager functions
}

// Len returns the number of arguments.
func (a *Args) Len() int {
	return len(a.nodes)
}

// Result returns the value of argument i. Eager functions get the value
// computed before the call; lazy functions evaluate the argument now, and
// again on every call. Out-of-range indexes yield the zero Result.
func (a *Args) Result(i int) Result {
	if i < 0 || i >= len(a.nodes) {
		return Result{}
	}
	if a.results != nil {
		return a.results[i]
	}
	return a.ev.Eval(a.nodes[i], a.ctx)
}

// Node returns the unevaluated argument i, or nil.
func (a *Args) Node(i int) Node {
	if i < 0 || i >= len(a.nodes) {
		return nil
	}
	return a.nodes[i]
}

// Name returns argument i as a symbol: a bare field reference yields its
// name, anything else its evaluated value.
func (a *Args) Name(i int) string {
	if f, ok := a.Node(i).(Field); ok {
		return f.Name
	}
	return a.Result(i).Value
}

// Context returns the evaluation context.
func (a *Args) Context() *Context {
	return a.ctx
}
