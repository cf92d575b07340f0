package collcache

// Kind identifies a change to the id sequence.
type Kind int

const (
	KindAdd Kind = iota
	KindInsert
	KindRemove
	KindMove
	KindClear
	KindOther
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
	default:
		return "other"
	}
}

// Event is one change to the sequence. Positions refer to the sequence as
// it was just before the event. Fields optionally carries the record of an
// added or inserted id.
type Event struct {
	Kind   Kind
	ID     int64
	Pos    int
	NewPos int
	Fields map[string]any
}

// Apply reconciles the cache with e. It reports true when the event could
// not be applied incrementally: the window has been dropped and the caller
// should Reload the requeried sequence.
func (c *Cache) Apply(e Event) bool {
	switch e.Kind {
	case KindAdd:
		c.Add(e.ID, e.Fields)
	case KindInsert:
		c.Insert(e.ID, e.Pos, e.Fields)
	case KindRemove:
		if !c.Remove(e.Pos) {
			c.Invalidate()
			return true
		}
	case KindMove:
		if !c.Move(e.Pos, e.NewPos) {
			c.Invalidate()
			return true
		}
	case KindClear:
		c.Clear()
	default:
		c.Invalidate()
		return true
	}
	return false
}
