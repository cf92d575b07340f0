package titleformat

// Parser turns format strings into a Format. It is safe for concurrent use.
type Parser struct {
	registry *Registry
	dialect  Dialect
}

// Option configures a Parser.
type Option func(*Parser)

// WithDialect selects the surface syntax.
func WithDialect(d Dialect) Option {
	return func(p *Parser) {
		p.dialect = d
	}
}

// NewParser creates a parser resolving function names against reg.
// A nil registry means the builtin function set.
func NewParser(reg *Registry, opts ...Option) *Parser {
	if reg == nil {
		reg = Builtins()
	}
	p := &Parser{registry: reg}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dialect returns the syntax the parser accepts.
func (p *Parser) Dialect() Dialect {
	return p.dialect
}

// Registry returns the function registry the parser resolves against.
func (p *Parser) Registry() *Registry {
	return p.registry
}

// Parse parses text into its levels. A format always has at least one
// level; the empty string yields a single empty level.
func (p *Parser) Parse(text string) (*Format, error) {
	s := &scanner{
		src:      []rune(text),
		dialect:  p.dialect,
		registry: p.registry,
	}
	f := &Format{Dialect: p.dialect}
	for {
		nodes, stop, err := s.sequence(scopeTop, false)
		if err != nil {
			return nil, err
		}
		f.Levels = append(f.Levels, Level{Nodes: nodes})
		if stop == 0 {
			return f, nil
		}
	}
}

// ParseOrFallback parses text. When text is invalid it returns the parse
// error together with Fallback, so callers can keep rendering something.
func (p *Parser) ParseOrFallback(text string) (*Format, error) {
	f, err := p.Parse(text)
	if err != nil {
		return Fallback(p.dialect), err
	}
	return f, nil
}

// Fallback returns the single-level format [title|url].
func Fallback(d Dialect) *Format {
	return &Format{
		Dialect: d,
		Levels: []Level{{Nodes: []Node{Conditional{
			Branches: [][]Node{{Field{Name: "title"}}, {Field{Name: "url"}}},
		}}}},
	}
}

// MustParse is like Parse but panics on error. Use it for formats known
// at compile time.
func (p *Parser) MustParse(text string) *Format {
	f, err := p.Parse(text)
	if err != nil {
		panic(err)
	}
	return f
}

type scope int

const (
	scopeTop scope = iota
	scopeCond
	scopeArg
)

type scanner struct {
	src      []rune
	pos      int
	dialect  Dialect
	registry *Registry
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() rune {
	return s.src[s.pos]
}

// terminates reports whether r closes the current sequence.
func (s *scanner) terminates(sc scope, r rune, allowGuard bool) bool {
	switch sc {
	case scopeTop:
		return r == s.dialect.levelBreak()
	case scopeCond:
		return r == branchSep || r == condClose || (allowGuard && r == guardMark)
	case scopeArg:
		return r == argSep || r == argClose
	}
	return false
}

// sequence reads nodes until a terminator of sc, which it consumes and
// returns. At top level the end of input terminates with stop == 0;
// anywhere else it is an error.
func (s *scanner) sequence(sc scope, allowGuard bool) (nodes []Node, stop rune, err error) {
	var text []rune
	flush := func() {
		if len(text) > 0 {
			nodes = append(nodes, Text{Value: string(text)})
			text = nil
		}
	}

	for {
		if s.eof() {
			if sc == scopeTop {
				flush()
				return nodes, 0, nil
			}
			return nil, 0, s.errorAt(KindUnexpectedEOF, s.pos)
		}

		r := s.peek()
		if s.terminates(sc, r, allowGuard) {
			s.pos++
			flush()
			return nodes, r, nil
		}

		switch r {
		case escapeChar:
			s.pos++
			if s.eof() {
				return nil, 0, s.errorAt(KindUnexpectedEOF, s.pos)
			}
			text = append(text, literal(s.src[s.pos]))
			s.pos++

		case condOpen:
			flush()
			s.pos++
			cond, err := s.conditional()
			if err != nil {
				return nil, 0, err
			}
			nodes = append(nodes, cond)

		case callSigil:
			call, ok, err := s.call()
			if err != nil {
				return nil, 0, err
			}
			if !ok {
				text = append(text, r)
				s.pos++
				continue
			}
			flush()
			nodes = append(nodes, call)

		case s.dialect.fieldSigil():
			field, ok, err := s.field()
			if err != nil {
				return nil, 0, err
			}
			if !ok {
				text = append(text, r)
				s.pos++
				continue
			}
			flush()
			nodes = append(nodes, field)

		default:
			text = append(text, literal(r))
			s.pos++
		}
	}
}

// conditional parses the body of [...] after the opening bracket.
func (s *scanner) conditional() (Node, error) {
	var cond Conditional
	for {
		allowGuard := s.dialect.guards() && !cond.Guarded && len(cond.Branches) == 0
		nodes, stop, err := s.sequence(scopeCond, allowGuard)
		if err != nil {
			return nil, err
		}
		cond.Branches = append(cond.Branches, nodes)

		switch stop {
		case guardMark:
			if len(nodes) == 0 {
				// [?a|b] has nothing to test and reads as [a|b]
				cond.Branches = cond.Branches[:0]
				continue
			}
			cond.Guarded = true
		case branchSep:
			if cond.Guarded && len(cond.Branches) == 3 {
				// guard, then and else are already taken
				return nil, s.errorAt(KindUnexpectedChar, s.pos-1)
			}
		case condClose:
			return cond, nil
		}
	}
}

// call parses $name(args...). It reports ok == false without consuming
// anything when the sigil does not start a call.
func (s *scanner) call() (Node, bool, error) {
	start := s.pos
	j := start + 1
	for j < len(s.src) && isFuncNameRune(s.src[j]) {
		j++
	}
	if j == start+1 || j >= len(s.src) || s.src[j] != argOpen {
		return nil, false, nil
	}

	name := string(s.src[start+1 : j])
	fn, found := s.registry.Lookup(name)
	if !found {
		e := s.errorAt(KindUnknownFunction, start)
		e.Name = name
		return nil, false, e
	}

	s.pos = j + 1
	call := Call{Name: name, Lazy: fn.Policy == Lazy}
	if s.eof() {
		return nil, false, s.errorAt(KindUnexpectedEOF, s.pos)
	}
	if s.peek() == argClose {
		s.pos++
		return call, true, nil
	}

	for {
		nodes, stop, err := s.sequence(scopeArg, false)
		if err != nil {
			return nil, false, err
		}
		call.Args = append(call.Args, argument(nodes))
		if stop == argClose {
			return call, true, nil
		}
	}
}

// field parses a field reference at the sigil. It reports ok == false
// without consuming anything when the sigil is literal.
func (s *scanner) field() (Node, bool, error) {
	start := s.pos
	j := start + 1

	if s.dialect == DialectPercent {
		for j < len(s.src) && isNameRune(s.src[j]) {
			j++
		}
		if j == start+1 || j >= len(s.src) || s.src[j] != percentMark {
			return nil, false, nil
		}
		s.pos = j + 1
		return Field{Name: string(s.src[start+1 : j])}, true, nil
	}

	if j < len(s.src) && s.src[j] == braceOpen {
		j++
		nameStart := j
		for j < len(s.src) && isNameRune(s.src[j]) {
			j++
		}
		if j >= len(s.src) {
			return nil, false, s.errorAt(KindUnexpectedEOF, j)
		}
		if s.src[j] != braceClose || j == nameStart {
			return nil, false, s.errorAt(KindUnexpectedChar, j)
		}
		s.pos = j + 1
		return Field{Name: string(s.src[nameStart:j])}, true, nil
	}

	for j < len(s.src) && isNameRune(s.src[j]) {
		j++
	}
	if j == start+1 {
		return nil, false, nil
	}
	s.pos = j
	return Field{Name: string(s.src[start+1 : j])}, true, nil
}

func (s *scanner) errorAt(kind ErrorKind, pos int) *ParseError {
	pos = min(max(pos, 0), len(s.src))
	line, col := 1, 1
	for _, r := range s.src[:pos] {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	e := &ParseError{Kind: kind, Pos: pos, Line: line, Col: col}
	if pos < len(s.src) {
		e.Char = s.src[pos]
	}
	return e
}

// argument collapses the parts of one function argument into a node.
func argument(nodes []Node) Node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	return Seq{Nodes: nodes}
}

// literal folds line breaks in text into spaces so presets can span lines.
func literal(r rune) rune {
	if r == '\n' || r == '\r' {
		return ' '
	}
	return r
}
