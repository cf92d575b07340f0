package titleformat

import (
	"errors"
	"fmt"
)

// Parse error categories. A *ParseError unwraps to one of these.
var (
	ErrUnexpectedEOF   = errors.New("unexpected end of format")
	ErrUnexpectedChar  = errors.New("unexpected character")
	ErrUnknownFunction = errors.New("unknown function")
)

// ErrorKind categorizes a parse failure.
type ErrorKind int

const (
	KindUnexpectedEOF ErrorKind = iota
	KindUnexpectedChar
	KindUnknownFunction
)

// ParseError describes where and why a format failed to parse.
type ParseError struct {
	Kind ErrorKind
	Pos  int // rune offset
	Line int // 1-based
	Col  int // 1-based
	Char rune
	Name string // function name for KindUnknownFunction
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case KindUnexpectedChar:
		return fmt.Sprintf("unexpected character %q at line %d, column %d", e.Char, e.Line, e.Col)
	case KindUnknownFunction:
		return fmt.Sprintf("unknown function %q at line %d, column %d", e.Name, e.Line, e.Col)
	default:
		return fmt.Sprintf("unexpected end of format at line %d, column %d", e.Line, e.Col)
	}
}

// Unwrap returns the category sentinel.
func (e *ParseError) Unwrap() error {
	switch e.Kind {
	case KindUnexpectedChar:
		return ErrUnexpectedChar
	case KindUnknownFunction:
		return ErrUnknownFunction
	default:
		return ErrUnexpectedEOF
	}
}
