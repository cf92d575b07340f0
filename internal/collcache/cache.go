// Package collcache serves rendered rows of a large ordered id sequence
// through a window of materialized entries around the positions in use.
//
// The window is refilled with one catalog fetch whenever a position outside
// it is requested. Change events are reconciled in place so that inserts,
// removals and reorders keep the rows already rendered.
package collcache

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// DefaultRadius is the window radius used when none is configured.
const DefaultRadius = 64

// Fetcher loads the named fields of records. Ids it does not know are
// left out of the result.
type Fetcher interface {
	QueryRecords(ctx context.Context, ids []int64, fields []string) (map[int64]map[string]any, error)
}

// Renderer turns a record into row text.
type Renderer func(id int64, fields map[string]any) string

// Row is one rendered entry. Rows are handed out by pointer and updated in
// place, so a view holding a row sees later restyling.
type Row struct {
	ID      int64
	Text    string
	Active  bool
	Missing bool // the catalog had no record for ID
}

// Stats counts catalog round trips.
type Stats struct {
	Fetches int
	Fetched int
}

// Cache maps positions of an id sequence to rendered rows.
//
// All methods are safe for concurrent use. Reconciliation events must be
// applied in the order they were published.
type Cache struct {
	mu sync.Mutex

	ids    []int64
	rows   []*Row // parallel to ids; nil outside the window or not yet fetched
	bounds Bounds
	radius int

	fetcher Fetcher
	render  Renderer
	fields  []string
	logger  *slog.Logger

	active int
	focus  int

	gen     uint64
	pending *Fetch

	stats Stats
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger fetch failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// New creates a cache over ids. Radius values below one select
// DefaultRadius. Fields are the record fields render needs.
func New(ids []int64, radius int, fetcher Fetcher, render Renderer, fields []string, opts ...Option) *Cache {
	if radius < 1 {
		radius = DefaultRadius
	}
	c := &Cache{
		ids:     slices.Clone(ids),
		rows:    make([]*Row, len(ids)),
		bounds:  Invalid,
		radius:  radius,
		fetcher: fetcher,
		render:  render,
		fields:  fields,
		logger:  slog.New(slog.DiscardHandler),
		active:  -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Len returns the number of positions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}

// Bounds returns the materialized window.
func (c *Cache) Bounds() Bounds {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bounds
}

// Stats returns the fetch counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// ID returns the id at pos.
func (c *Cache) ID(pos int) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pos < 0 || pos >= len(c.ids) {
		return 0, false
	}
	return c.ids[pos], true
}

// IDs returns a copy of the id sequence.
func (c *Cache) IDs() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.ids)
}

// At returns the row at pos, fetching synchronously when pos is outside the
// window or its row has not been loaded yet. It reports false only for a
// position outside the sequence.
func (c *Cache) At(pos int) (*Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos < 0 || pos >= len(c.ids) {
		return nil, false
	}
	if c.bounds.Contains(pos) && c.rows[pos] != nil {
		return c.rows[pos], true
	}
	if p, ok := c.plan(pos); ok {
		c.abortPending()
		recs, err := c.fetch(context.Background(), p.ids)
		c.install(p, recs, err)
	}
	return c.rows[pos], true
}

// Peek returns the row at pos if it is materialized, without fetching.
func (c *Cache) Peek(pos int) (*Row, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.bounds.Contains(pos) || pos >= len(c.rows) || c.rows[pos] == nil {
		return nil, false
	}
	return c.rows[pos], true
}

// Invalidate drops the window so the next access refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidate()
}

func (c *Cache) invalidate() {
	c.abortPending()
	c.bounds = Invalid
	clear(c.rows)
}

// Reload replaces the id sequence, for example after the collection was
// requeried. The window is dropped and the active position forgotten.
func (c *Cache) Reload(ids []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ids = slices.Clone(ids)
	c.rows = make([]*Row, len(ids))
	c.invalidate()
	c.active = -1
	c.clampFocus()
}

// Add appends id. A record, when known, renders the row without a fetch.
func (c *Cache) Add(id int64, fields map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(id, len(c.ids), fields)
}

// Insert puts id at pos, shifting later positions up by one. Rows already
// rendered are kept.
func (c *Cache) Insert(id int64, pos int, fields map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insert(id, min(max(pos, 0), len(c.ids)), fields)
}

func (c *Cache) insert(id int64, pos int, fields map[string]any) {
	c.abortPending()

	c.ids = slices.Insert(c.ids, pos, id)
	c.rows = slices.Insert(c.rows, pos, (*Row)(nil))

	if c.bounds.Valid() {
		switch {
		case pos < c.bounds.Start:
			c.bounds.Start++
			c.bounds.End++
		case pos <= c.bounds.End:
			c.bounds.End++
		}
	}
	if c.bounds.Contains(pos) && fields != nil {
		c.rows[pos] = c.newRow(id, fields)
	}

	if c.active >= pos {
		c.active++
	}
	if pos < c.focus {
		c.focus++
	}
	c.markActive()
}

// Remove deletes the entry at pos, shifting later positions down by one.
// It reports false when pos is outside the sequence.
func (c *Cache) Remove(pos int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos < 0 || pos >= len(c.ids) {
		return false
	}
	c.remove(pos)

	switch {
	case c.active == pos:
		c.active = -1
	case c.active > pos:
		c.active--
	}
	if c.focus > pos {
		c.focus--
	}
	c.clampFocus()
	return true
}

func (c *Cache) remove(pos int) *Row {
	c.abortPending()

	row := c.rows[pos]
	c.ids = slices.Delete(c.ids, pos, pos+1)
	c.rows = slices.Delete(c.rows, pos, pos+1)

	if c.bounds.Valid() {
		switch {
		case pos < c.bounds.Start:
			c.bounds.Start--
			c.bounds.End--
		case pos < c.bounds.End:
			c.bounds.End--
		}
	}
	return row
}

// Move relocates the entry at from to position to, carrying its rendered
// row. It reports false when either position is outside the sequence.
func (c *Cache) Move(from, to int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.ids)
	if from < 0 || from >= n || to < 0 || to >= n {
		return false
	}
	if from == to {
		return true
	}

	id := c.ids[from]
	row := c.remove(from)
	c.ids = slices.Insert(c.ids, to, id)
	c.rows = slices.Insert(c.rows, to, (*Row)(nil))
	if c.bounds.Valid() {
		switch {
		case to < c.bounds.Start:
			c.bounds.Start++
			c.bounds.End++
		case to <= c.bounds.End:
			c.bounds.End++
		}
	}
	if c.bounds.Contains(to) {
		c.rows[to] = row
	}

	c.active = shiftForMove(c.active, from, to)
	c.focus = shiftForMove(c.focus, from, to)
	return true
}

// shiftForMove returns where the entry at pos ends up after the entry at
// from moved to to.
func shiftForMove(pos, from, to int) int {
	switch {
	case pos < 0:
		return pos
	case pos == from:
		return to
	case from < pos && pos <= to:
		return pos - 1
	case to <= pos && pos < from:
		return pos + 1
	}
	return pos
}

// Clear empties the sequence.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.abortPending()
	c.ids = nil
	c.rows = nil
	c.bounds = Invalid
	c.active = -1
	c.focus = 0
}

// Active returns the active position, or -1.
func (c *Cache) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SetActive marks pos as the active entry. Only the affected rows are
// restyled; the window is left alone. A negative pos clears it.
func (c *Cache) SetActive(pos int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active >= 0 && c.active < len(c.rows) && c.rows[c.active] != nil {
		c.rows[c.active].Active = false
	}
	if pos >= len(c.ids) {
		pos = -1
	}
	c.active = max(pos, -1)
	c.markActive()
}

func (c *Cache) markActive() {
	if c.active >= 0 && c.active < len(c.rows) && c.rows[c.active] != nil {
		c.rows[c.active].Active = true
	}
}

// Focus returns the focused position.
func (c *Cache) Focus() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

// SetFocus moves the focus to pos, clamped to the sequence.
func (c *Cache) SetFocus(pos int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focus = pos
	c.clampFocus()
}

func (c *Cache) clampFocus() {
	c.focus = max(0, min(c.focus, len(c.ids)-1))
}

func (c *Cache) newRow(id int64, fields map[string]any) *Row {
	return &Row{ID: id, Text: c.render(id, fields)}
}

func (c *Cache) fetch(ctx context.Context, ids []int64) (map[int64]map[string]any, error) {
	c.stats.Fetches++
	c.stats.Fetched += len(ids)
	return c.fetcher.QueryRecords(ctx, ids, c.fields)
}
