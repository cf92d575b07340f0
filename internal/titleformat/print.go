package titleformat

import "strings"

// String returns the canonical text of the format in its dialect.
// Parsing the canonical text yields an identical format.
func (f *Format) String() string {
	var b strings.Builder
	for i, l := range f.Levels {
		if i > 0 {
			b.WriteRune(f.Dialect.levelBreak())
		}
		printNodes(&b, l.Nodes, f.Dialect)
	}
	return b.String()
}

// Print returns the canonical text of a single node.
func Print(n Node, d Dialect) string {
	var b strings.Builder
	printNode(&b, n, d)
	return b.String()
}

func printNodes(b *strings.Builder, nodes []Node, d Dialect) {
	for _, n := range nodes {
		printNode(b, n, d)
	}
}

func printNode(b *strings.Builder, n Node, d Dialect) {
	switch n := n.(type) {
	case Text:
		for _, r := range n.Value {
			if d.reserved(r) {
				b.WriteRune(escapeChar)
			}
			b.WriteRune(r)
		}

	case Field:
		if d == DialectPercent {
			b.WriteRune(percentMark)
			b.WriteString(n.Name)
			b.WriteRune(percentMark)
			return
		}
		b.WriteRune(colonSigil)
		b.WriteRune(braceOpen)
		b.WriteString(n.Name)
		b.WriteRune(braceClose)

	case Conditional:
		b.WriteRune(condOpen)
		for i, branch := range n.Branches {
			if i == 1 && n.Guarded {
				b.WriteRune(guardMark)
			} else if i > 0 {
				b.WriteRune(branchSep)
			}
			printNodes(b, branch, d)
		}
		b.WriteRune(condClose)

	case Call:
		b.WriteRune(callSigil)
		b.WriteString(n.Name)
		b.WriteRune(argOpen)
		for i, a := range n.Args {
			if i > 0 {
				b.WriteRune(argSep)
			}
			printNode(b, a, d)
		}
		b.WriteRune(argClose)

	case Seq:
		printNodes(b, n.Nodes, d)

	case Level:
		printNodes(b, n.Nodes, d)
	}
}
