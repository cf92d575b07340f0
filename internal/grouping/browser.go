// Package grouping turns the levels of a track format into a drill-down
// browser: each level groups the records of the level above by the value
// the level evaluates to.
package grouping

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/llehouerou/shelf/internal/titleformat"
)

// Record is one catalog record as seen by the browser.
type Record struct {
	ID     int64
	Fields map[string]any
}

// Source supplies the records of a scope. A nil scope means the whole
// catalog. Only the named fields need to be filled in.
type Source interface {
	Records(ctx context.Context, scope []int64, fields []string) ([]Record, error)
}

// Group is one visible entry: a distinct level value and the ids of the
// records that evaluate to it, in source order.
type Group struct {
	Key string
	IDs []int64
}

type view struct {
	level   int // declared level index
	skipped int // empty levels elided to reach this view
	groups  []Group
	focus   int
	path    string
}

// Browser walks the levels of a format over a set of records.
//
// Every level of a record is evaluated once, on Load, with a single
// context, so $set bindings made in an upper level are visible below.
// A Browser is not safe for concurrent use.
type Browser struct {
	format *titleformat.Format
	ev     *titleformat.Evaluator
	src    Source

	keys    map[int64][]titleformat.Result
	stack   []*view
	visited map[string]*view
}

// New creates a browser for format over src. A nil evaluator means the
// builtin function set.
func New(format *titleformat.Format, ev *titleformat.Evaluator, src Source) *Browser {
	if ev == nil {
		ev = titleformat.NewEvaluator(nil)
	}
	return &Browser{format: format, ev: ev, src: src}
}

// Load replaces the browser contents with the records of scope and shows
// the first level that yields any group.
func (b *Browser) Load(ctx context.Context, scope []int64) error {
	records, err := b.src.Records(ctx, scope, b.format.Fields())
	if err != nil {
		return err
	}

	b.keys = make(map[int64][]titleformat.Result, len(records))
	ids := make([]int64, 0, len(records))
	for _, r := range records {
		tctx := titleformat.NewContext(r.Fields)
		results := b.format.EvalLevels(b.ev, tctx)
		for i := range results {
			results[i].Value = norm.NFC.String(results[i].Value)
		}
		b.keys[r.ID] = results
		ids = append(ids, r.ID)
	}

	b.visited = make(map[string]*view)
	b.stack = []*view{b.build(ids, 0, "")}
	return nil
}

// build groups ids by the first level at or after from that yields any
// group. When none does, the view is empty and sits past the last level.
func (b *Browser) build(ids []int64, from int, path string) *view {
	v := &view{level: from, path: path}
	for ; v.level < b.format.Len(); v.level++ {
		v.groups = b.group(ids, v.level)
		if len(v.groups) > 0 {
			return v
		}
		v.skipped++
	}
	return v
}

func (b *Browser) group(ids []int64, level int) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, id := range ids {
		results := b.keys[id]
		if level >= len(results) || !results[level].Truthy {
			continue
		}
		key := results[level].Value
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].IDs = append(groups[i].IDs, id)
	}
	slices.SortFunc(groups, func(a, b Group) int {
		return strings.Compare(a.Key, b.Key)
	})
	return groups
}

func (b *Browser) current() *view {
	if len(b.stack) == 0 {
		return &view{}
	}
	return b.stack[len(b.stack)-1]
}

// Entries returns the groups of the current view in key order.
func (b *Browser) Entries() []Group {
	return b.current().groups
}

// Len returns the number of entries in the current view.
func (b *Browser) Len() int {
	return len(b.current().groups)
}

// Focus returns the focused entry index.
func (b *Browser) Focus() int {
	return b.current().focus
}

// SetFocus moves the focus to i, clamped to the entries.
func (b *Browser) SetFocus(i int) {
	v := b.current()
	v.focus = max(0, min(i, len(v.groups)-1))
}

// Move moves the focus by delta, clamped to the entries.
func (b *Browser) Move(delta int) {
	b.SetFocus(b.Focus() + delta)
}

// Selected returns the focused group.
func (b *Browser) Selected() (Group, bool) {
	v := b.current()
	if v.focus < 0 || v.focus >= len(v.groups) {
		return Group{}, false
	}
	return v.groups[v.focus], true
}

// Depth returns how many drill-ins lead to the current view.
func (b *Browser) Depth() int {
	return max(len(b.stack)-1, 0)
}

// Levels returns the number of declared levels.
func (b *Browser) Levels() int {
	return b.format.Len()
}

// Level returns the declared level index of the current view.
func (b *Browser) Level() int {
	return b.current().level
}

// Skipped returns how many declared levels were elided on the way to the
// current view because they produced no group.
func (b *Browser) Skipped() int {
	n := 0
	for _, v := range b.stack {
		n += v.skipped
	}
	return n
}

// Path returns the keys of the groups drilled into, outermost first.
func (b *Browser) Path() []string {
	if len(b.stack) <= 1 {
		return nil
	}
	path := make([]string, 0, len(b.stack)-1)
	for _, v := range b.stack[:len(b.stack)-1] {
		path = append(path, v.groups[v.focus].Key)
	}
	return path
}

// CanDrillIn reports whether a level below the focused group has entries.
func (b *Browser) CanDrillIn() bool {
	_, ok := b.child()
	return ok
}

// DrillIn descends into the focused group. It reports false and leaves the
// browser unchanged at the last level, or when every remaining level is
// empty for the focused group.
func (b *Browser) DrillIn() bool {
	child, ok := b.child()
	if !ok {
		return false
	}
	b.stack = append(b.stack, child)
	return true
}

func (b *Browser) child() (*view, bool) {
	v := b.current()
	g, ok := b.Selected()
	if !ok || v.level+1 >= b.format.Len() {
		return nil, false
	}

	path := v.path + "\x00" + g.Key
	if c, ok := b.visited[path]; ok {
		return c, true
	}
	c := b.build(g.IDs, v.level+1, path)
	if len(c.groups) == 0 {
		return nil, false
	}
	b.visited[path] = c
	return c, true
}

// DrillOut returns to the parent view with its focus as it was left.
// It reports false at the top.
func (b *Browser) DrillOut() bool {
	if len(b.stack) <= 1 {
		return false
	}
	b.stack = b.stack[:len(b.stack)-1]
	return true
}
