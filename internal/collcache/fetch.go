package collcache

import (
	"context"
	"sync/atomic"
)

// plan describes one fetch: the positions to fill and, when the window
// moves, its new bounds.
type plan struct {
	bounds    Bounds
	replace   bool // bounds replace the current window
	positions []int
	ids       []int64
}

// plan returns what to fetch so that pos can be served. It reports false
// when the window around pos is already fully materialized.
func (c *Cache) plan(pos int) (plan, bool) {
	if !c.bounds.Contains(pos) {
		b := around(pos, c.radius, len(c.ids))
		p := plan{bounds: b, replace: true}
		for i := b.Start; i < b.End; i++ {
			p.positions = append(p.positions, i)
			p.ids = append(p.ids, c.ids[i])
		}
		return p, true
	}

	// Fill every hole left by inserts without a record in one round trip,
	// wherever it sits in the window.
	p := plan{bounds: c.bounds}
	for i := c.bounds.Start; i < c.bounds.End; i++ {
		if c.rows[i] == nil {
			p.positions = append(p.positions, i)
			p.ids = append(p.ids, c.ids[i])
		}
	}
	return p, len(p.positions) > 0
}

// install renders fetched records into the planned positions. Ids missing
// from recs, or all of them when err is set, get placeholder rows.
func (c *Cache) install(p plan, recs map[int64]map[string]any, err error) {
	if err != nil {
		c.logger.Error("fetch records", "count", len(p.ids), "err", err)
		recs = nil
	} else if len(recs) < len(p.ids) {
		c.logger.Warn("short read", "requested", len(p.ids), "returned", len(recs))
	}

	if p.replace {
		clear(c.rows)
		c.bounds = p.bounds
	}
	for i, pos := range p.positions {
		id := p.ids[i]
		if fields, ok := recs[id]; ok {
			c.rows[pos] = c.newRow(id, fields)
		} else {
			c.rows[pos] = &Row{ID: id, Missing: true}
		}
	}
	c.markActive()
}

// Fetch is an asynchronous window fill started by StartFetch. It is
// aborted when a newer fetch starts or the sequence changes before it
// completes.
type Fetch struct {
	gen     uint64
	plan    plan
	aborted atomic.Bool
}

// Gen returns the fetch generation. Later fetches have larger generations.
func (f *Fetch) Gen() uint64 {
	return f.gen
}

// IDs returns the ids the fetch requests.
func (f *Fetch) IDs() []int64 {
	return f.plan.ids
}

// Bounds returns the window the fetch covers.
func (f *Fetch) Bounds() Bounds {
	return f.plan.bounds
}

// Aborted reports whether the fetch has been superseded.
func (f *Fetch) Aborted() bool {
	return f.aborted.Load()
}

// Run queries fetcher for the records. It returns early with no records
// when the fetch is already aborted.
func (f *Fetch) Run(ctx context.Context, fetcher Fetcher, fields []string) (map[int64]map[string]any, error) {
	if f.Aborted() {
		return nil, nil
	}
	return fetcher.QueryRecords(ctx, f.plan.ids, fields)
}

// StartFetch prepares an asynchronous fetch serving pos and aborts the
// previous one. It returns nil when pos is outside the sequence or its
// window is already materialized. The caller runs the fetch off the event loop and hands the
// outcome to Finish.
func (c *Cache) StartFetch(pos int) *Fetch {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos < 0 || pos >= len(c.ids) {
		return nil
	}
	p, ok := c.plan(pos)
	if !ok {
		return nil
	}
	c.abortPending()
	c.gen++
	f := &Fetch{gen: c.gen, plan: p}
	c.pending = f
	return f
}

// Fields returns the record fields the renderer needs.
func (c *Cache) Fields() []string {
	return c.fields
}

// Finish installs the outcome of f. It does nothing and reports false when
// f was aborted, so a late arrival never overwrites newer state.
func (c *Cache) Finish(f *Fetch, recs map[int64]map[string]any, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f == nil || f.Aborted() || c.pending != f {
		return false
	}
	c.pending = nil
	c.stats.Fetches++
	c.stats.Fetched += len(f.plan.ids)
	c.install(f.plan, recs, err)
	return true
}

func (c *Cache) abortPending() {
	if c.pending != nil {
		c.pending.aborted.Store(true)
		c.pending = nil
	}
}
