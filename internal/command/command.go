// Package command parses the command lines typed at the ':' prompt: one or
// more statements of a name and its arguments, chained with ';'. A doubled
// ";;" stands for a literal semicolon.
package command

import (
	"errors"
	"fmt"
	"strings"
)

// maxAliasDepth bounds alias expansion so that recursive aliases fail
// instead of looping.
const maxAliasDepth = 16

var (
	ErrUnknown   = errors.New("unknown command")
	ErrAliasLoop = errors.New("alias expands too deeply")
	ErrUsage     = errors.New("bad arguments")
)

// Command is one statement of a command line.
type Command struct {
	Name string
	Args string
}

func (c Command) String() string {
	if c.Args == "" {
		return c.Name
	}
	return c.Name + " " + c.Args
}

// Split breaks line into its statements, trimmed. Empty statements are
// dropped.
func Split(line string) []string {
	var parts []string
	var acc strings.Builder
	flush := func() {
		if s := strings.TrimSpace(acc.String()); s != "" {
			parts = append(parts, s)
		}
		acc.Reset()
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		if c != ';' {
			acc.WriteByte(c)
			continue
		}
		if i+1 < len(line) && line[i+1] == ';' {
			acc.WriteByte(';')
			i++
			continue
		}
		flush()
	}
	flush()
	return parts
}

// parseStatement splits a statement into its name and arguments.
func parseStatement(s string) Command {
	name, args, _ := strings.Cut(strings.TrimSpace(s), " ")
	return Command{Name: name, Args: strings.TrimSpace(args)}
}

// Parse splits line into commands and expands aliases. Arguments given to
// an alias are appended to the last command it expands to.
func Parse(line string, aliases map[string]string) ([]Command, error) {
	return expand(line, aliases, 0)
}

func expand(line string, aliases map[string]string, depth int) ([]Command, error) {
	if depth > maxAliasDepth {
		return nil, fmt.Errorf("%w: %q", ErrAliasLoop, line)
	}

	var out []Command
	for _, s := range Split(line) {
		c := parseStatement(s)
		body, ok := aliases[c.Name]
		if !ok {
			out = append(out, c)
			continue
		}
		sub, err := expand(body, aliases, depth+1)
		if err != nil {
			return nil, err
		}
		if len(sub) > 0 && c.Args != "" {
			last := &sub[len(sub)-1]
			last.Args = strings.TrimSpace(last.Args + " " + c.Args)
		}
		out = append(out, sub...)
	}
	return out, nil
}
