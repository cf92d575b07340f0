package catalog

const eventBufferSize = 256

// Kind identifies a change to a collection.
type Kind int

const (
	KindAdd Kind = iota
	KindInsert
	KindRemove
	KindMove
	KindClear
	KindOther
	KindCurrent // the current position of a playlist changed
)

func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindInsert:
		return "insert"
	case KindRemove:
		return "remove"
	case KindMove:
		return "move"
	case KindClear:
		return "clear"
	case KindCurrent:
		return "current"
	default:
		return "other"
	}
}

// LibraryCollection names the collection of all tracks in change events.
const LibraryCollection = ""

// ChangeEvent describes one change. Positions refer to the playlist as it
// was just before the change. Added and inserted tracks carry their record.
//
// Seq numbers the catalog's changes in commit order. A snapshot taken with
// PlaylistSnapshot already reflects every event up to its sequence.
type ChangeEvent struct {
	Playlist string
	Kind     Kind
	ID       int64
	Pos      int
	NewPos   int
	Record   Record
	Seq      uint64
}

// Resync reports whether everything should be requeried: the library
// changed, or events were dropped because the subscriber fell behind.
func (e ChangeEvent) Resync() bool {
	return e.Kind == KindOther && e.Playlist == LibraryCollection
}

// Subscription delivers change events in publish order.
type Subscription struct {
	Events <-chan ChangeEvent
	Done   <-chan struct{}

	eventCh chan ChangeEvent
	doneCh  chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		eventCh: make(chan ChangeEvent, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.Events = s.eventCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) close() {
	close(s.doneCh)
}

// send delivers e without blocking. When the subscriber fell behind, the
// pending events are discarded and replaced by a single resync carrying
// e's sequence. Senders hold the catalog's subsMu, so the drained buffer
// has room for it.
func (s *Subscription) send(e ChangeEvent) {
	select {
	case s.eventCh <- e:
		return
	default:
	}
	for drained := false; !drained; {
		select {
		case <-s.eventCh:
		default:
			drained = true
		}
	}
	s.eventCh <- ChangeEvent{Kind: KindOther, Playlist: LibraryCollection, Seq: e.Seq}
}

// Subscribe registers a new subscriber.
func (c *Catalog) Subscribe() *Subscription {
	s := newSubscription()
	c.subsMu.Lock()
	c.subs = append(c.subs, s)
	c.subsMu.Unlock()
	return s
}

// Unsubscribe stops delivery to s and closes its Done channel.
func (c *Catalog) Unsubscribe(s *Subscription) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for i, sub := range c.subs {
		if sub == s {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			s.close()
			return
		}
	}
}

// publish must be called with writeMu held.
func (c *Catalog) publish(events ...ChangeEvent) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, e := range events {
		c.seq++
		e.Seq = c.seq
		c.logger.Debug("change", "playlist", e.Playlist, "kind", e.Kind.String(), "id", e.ID, "pos", e.Pos, "seq", e.Seq)
		for _, s := range c.subs {
			s.send(e)
		}
	}
}
