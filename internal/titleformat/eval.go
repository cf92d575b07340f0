package titleformat

import "strings"

// Result is the outcome of evaluating a node. Truthy reports whether the
// underlying data was present, independently of Value being empty.
type Result struct {
	Value  string
	Truthy bool
}

// Evaluator walks parsed nodes against a Context. It holds no per-pass
// state and is safe for concurrent use with distinct contexts.
type Evaluator struct {
	registry *Registry
}

// NewEvaluator returns an evaluator dispatching calls through reg.
// A nil registry means the builtin function set.
func NewEvaluator(reg *Registry) *Evaluator {
	if reg == nil {
		reg = Builtins()
	}
	return &Evaluator{registry: reg}
}

// Eval evaluates n. It never panics: unknown functions and malformed
// nodes evaluate to the zero Result.
func (e *Evaluator) Eval(n Node, ctx *Context) Result {
	switch n := n.(type) {
	case Text:
		return Result{Value: n.Value, Truthy: true}
	case Field:
		return e.field(n, ctx)
	case Conditional:
		return e.conditional(n, ctx)
	case Call:
		return e.call(n, ctx)
	case Seq:
		return e.sequence(n.Nodes, ctx)
	case Level:
		return e.EvalLevel(n, ctx)
	}
	return Result{}
}

// EvalLevel evaluates a level: its members concatenated and trimmed.
func (e *Evaluator) EvalLevel(l Level, ctx *Context) Result {
	r := e.sequence(l.Nodes, ctx)
	r.Value = strings.TrimSpace(r.Value)
	return r
}

func (e *Evaluator) field(f Field, ctx *Context) Result {
	v, ok := ctx.Lookup(f.Name)
	if ok {
		return Result{Value: v, Truthy: true}
	}
	if special, found := specialFields[f.Name]; found {
		return Result{Value: special}
	}
	return Result{}
}

// sequence concatenates nodes. Its truth is the OR over the members that
// carry data; text is always present, so a sequence of text alone is
// truthy and text never makes a sequence falsy. An empty sequence is falsy.
func (e *Evaluator) sequence(nodes []Node, ctx *Context) Result {
	var b strings.Builder
	truthy, data := false, false
	for _, n := range nodes {
		r := e.Eval(n, ctx)
		b.WriteString(r.Value)
		if _, isText := n.(Text); isText {
			continue
		}
		data = true
		truthy = truthy || r.Truthy
	}
	if !data {
		truthy = len(nodes) > 0
	}
	return Result{Value: b.String(), Truthy: truthy}
}

func (e *Evaluator) conditional(c Conditional, ctx *Context) Result {
	if c.Guarded {
		if len(c.Branches) < 2 {
			return Result{}
		}
		if e.sequence(c.Branches[0], ctx).Truthy {
			return e.sequence(c.Branches[1], ctx)
		}
		if len(c.Branches) > 2 {
			return e.sequence(c.Branches[2], ctx)
		}
		return Result{}
	}

	for _, branch := range c.Branches {
		if r := e.sequence(branch, ctx); r.Truthy {
			return r
		}
	}
	return Result{}
}

func (e *Evaluator) call(c Call, ctx *Context) (res Result) {
	fn, ok := e.registry.Lookup(c.Name)
	if !ok {
		return Result{}
	}
	defer func() {
		if recover() != nil {
			res = Result{}
		}
	}()

	args := &Args{ev: e, ctx: ctx, nodes: c.Args}
	if fn.Policy == Eager {
		args.results = make([]Result, len(c.Args))
		for i, arg := range c.Args {
			args.results[i] = e.Eval(arg, ctx)
		}
	}
	return fn.Fn(args)
}

// EvalLevels evaluates every level of the format with one context, so
// bindings made in an earlier level are visible in later ones.
func (f *Format) EvalLevels(ev *Evaluator, ctx *Context) []Result {
	results := make([]Result, len(f.Levels))
	for i, l := range f.Levels {
		results[i] = ev.EvalLevel(l, ctx)
	}
	return results
}

// Render evaluates the whole format for a flat display: non-empty levels
// joined by a single space.
func (f *Format) Render(ev *Evaluator, ctx *Context) string {
	parts := make([]string, 0, len(f.Levels))
	for _, r := range f.EvalLevels(ev, ctx) {
		if r.Value != "" {
			parts = append(parts, r.Value)
		}
	}
	return strings.Join(parts, " ")
}
