package titleformat

// Fields returns the record fields the nodes reference, alias-resolved
// through DefaultAliases, de-duplicated, in first-seen order. Special
// fields such as CR are omitted. The result is what a catalog query must
// fetch for the nodes to evaluate.
func Fields(nodes ...Node) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if _, special := specialFields[name]; special {
			return
		}
		if target, ok := DefaultAliases[name]; ok {
			name = target
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	var walk func(n Node)
	walk = func(n Node) {
		switch n := n.(type) {
		case Field:
			add(n.Name)
		case Conditional:
			for _, b := range n.Branches {
				for _, m := range b {
					walk(m)
				}
			}
		case Call:
			for _, a := range n.Args {
				walk(a)
			}
		case Seq:
			for _, m := range n.Nodes {
				walk(m)
			}
		case Level:
			for _, m := range n.Nodes {
				walk(m)
			}
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return names
}
