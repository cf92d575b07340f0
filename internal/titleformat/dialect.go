package titleformat

import (
	"fmt"
	"unicode"
)

// Dialect selects the surface syntax accepted by the parser and produced by
// the printer. Both dialects share one parser and one AST.
type Dialect int

const (
	// DialectColon uses :field and :{field}, '>' between levels and
	// supports guarded conditionals [guard?then|else].
	DialectColon Dialect = iota
	// DialectPercent uses %field%, a top-level '|' between levels and
	// plain [a|b] conditionals.
	DialectPercent
)

// String returns the configuration name of the dialect.
func (d Dialect) String() string {
	switch d {
	case DialectColon:
		return "colon"
	case DialectPercent:
		return "percent"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// ParseDialect maps a configuration name to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch name {
	case "", "colon":
		return DialectColon, nil
	case "percent":
		return DialectPercent, nil
	default:
		return DialectColon, fmt.Errorf("unknown format dialect %q", name)
	}
}

const (
	callSigil   = '$'
	escapeChar  = '\\'
	condOpen    = '['
	condClose   = ']'
	branchSep   = '|'
	guardMark   = '?'
	argOpen     = '('
	argClose    = ')'
	argSep      = ','
	braceOpen   = '{'
	braceClose  = '}'
	colonSigil  = ':'
	percentMark = '%'
)

// fieldSigil returns the rune that starts a field reference.
func (d Dialect) fieldSigil() rune {
	if d == DialectPercent {
		return percentMark
	}
	return colonSigil
}

// levelBreak returns the rune separating top-level levels.
func (d Dialect) levelBreak() rune {
	if d == DialectPercent {
		return branchSep
	}
	return '>'
}

// guards reports whether [guard?then|else] is recognised.
func (d Dialect) guards() bool {
	return d == DialectColon
}

// reserved reports whether r must be escaped to appear as literal text in
// the canonical form.
func (d Dialect) reserved(r rune) bool {
	switch r {
	case escapeChar, callSigil, condOpen, condClose, branchSep, guardMark,
		argOpen, argClose, argSep, '>', d.fieldSigil():
		return true
	}
	return false
}

// isNameRune accepts letters and digits of any script.
func isNameRune(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isFuncNameRune(r rune) bool {
	return isNameRune(r) || r == '=' || r == '+'
}
