// Package titleformat implements the track-format language used to render
// catalog records into display strings.
//
// A format is a sequence of levels separated by a level break. Each level is
// a list of nodes: literal text, field references, conditionals and function
// calls. Levels drive the drill-down browser; flat lists render every level
// joined by a space.
//
// Parsed nodes are immutable and may be shared between evaluations and
// goroutines. Evaluation state lives in a Context.
package titleformat

// Node is one element of a parsed format.
type Node interface {
	node()
}

// Text is literal text.
type Text struct {
	Value string
}

// Field references a record field by name.
type Field struct {
	Name string
}

// Conditional selects among branches.
//
// Unguarded conditionals return the first truthy branch. Guarded ones use
// Branches[0] as the guard, Branches[1] as the then-branch and the optional
// Branches[2] as the else-branch.
type Conditional struct {
	Branches [][]Node
	Guarded  bool
}

// Call invokes a registered function. Lazy mirrors the registry policy at
// parse time: lazy functions receive unevaluated arguments.
type Call struct {
	Name string
	Args []Node
	Lazy bool
}

// Seq concatenates its nodes. It holds function arguments made of more than
// one part, such as "CD:partofset".
type Seq struct {
	Nodes []Node
}

// Level is one hierarchical grouping stage of a format.
type Level struct {
	Nodes []Node
}

func (Text) node()        {}
func (Field) node()       {}
func (Conditional) node() {}
func (Call) node()        {}
func (Seq) node()         {}
func (Level) node()       {}

// Format is a parsed format string.
type Format struct {
	Levels  []Level
	Dialect Dialect
}

// Len returns the number of declared levels.
func (f *Format) Len() int {
	return len(f.Levels)
}

// Level returns the level at index i.
func (f *Format) Level(i int) (Level, bool) {
	if i < 0 || i >= len(f.Levels) {
		return Level{}, false
	}
	return f.Levels[i], true
}

// Fields returns the record fields referenced anywhere in the format.
func (f *Format) Fields() []string {
	nodes := make([]Node, 0, len(f.Levels))
	for _, l := range f.Levels {
		nodes = append(nodes, l)
	}
	return Fields(nodes...)
}

// Fields returns the record fields referenced by the level.
func (l Level) Fields() []string {
	return Fields(l.Nodes...)
}
