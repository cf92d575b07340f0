package titleformat

import (
	"fmt"
	"maps"
	"strconv"
)

// DefaultAliases are the short field names understood by every context.
var DefaultAliases = map[string]string{
	"a": "artist",
	"l": "album",
	"t": "title",
	"n": "tracknr",
	"d": "date",
	"g": "genre",
	"u": "url",
	"c": "compilation",
	"p": "performer",
}

// specialFields resolve when the record does not define them. They are
// never requested from the catalog.
var specialFields = map[string]string{
	"CR": "\n",
}

// Context is the mutable store a format is evaluated against: the record's
// fields, an alias table, and the bindings made by $set during the current
// pass.
//
// Evaluation is depth-first and left to right, so a binding is visible to
// every node evaluated after the $set call and to none before it.
type Context struct {
	fields  map[string]any
	aliases map[string]string
	vars    map[string]string
}

// NewContext returns a context over fields using DefaultAliases.
// The fields map is read, never written.
func NewContext(fields map[string]any) *Context {
	return &Context{fields: fields, aliases: DefaultAliases}
}

// WithAliases returns a copy of c that resolves names through aliases.
func (c *Context) WithAliases(aliases map[string]string) *Context {
	return &Context{fields: c.fields, aliases: aliases, vars: maps.Clone(c.vars)}
}

// Resolve maps an alias to the field name it stands for.
func (c *Context) Resolve(name string) string {
	if target, ok := c.aliases[name]; ok {
		return target
	}
	return name
}

// Lookup returns the string form of a field and whether it is present.
func (c *Context) Lookup(name string) (string, bool) {
	name = c.Resolve(name)
	if v, ok := c.vars[name]; ok {
		return v, Present(v)
	}
	v, ok := c.fields[name]
	if !ok {
		return "", false
	}
	s := Stringify(v)
	return s, Present(s)
}

// Set binds name for the rest of the evaluation pass. Bindings shadow the
// record's fields.
func (c *Context) Set(name, value string) {
	if c.vars == nil {
		c.vars = make(map[string]string)
	}
	c.vars[c.Resolve(name)] = value
}

// Reset drops every binding made by Set so the context can be reused for
// another pass over the same record.
func (c *Context) Reset() {
	clear(c.vars)
}

// Present is the single field presence policy: a value is present when it
// is non-empty. An empty string is treated exactly like a missing field.
func Present(value string) bool {
	return value != ""
}

// Stringify renders a field value. Nil renders as the empty string.
func Stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return ""
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
