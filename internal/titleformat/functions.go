package titleformat

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Builtins returns a new registry holding the standard function set.
// Each call returns an independent registry.
func Builtins() *Registry {
	r := NewRegistry()

	r.Register("cat", fnCat, Eager)
	r.Register("if", fnIf, Lazy)
	r.Register("if2", fnIf2, Lazy)
	r.Register("and", fnAnd, Lazy)
	r.Register("or", fnOr, Lazy)
	r.Register("not", fnNot, Lazy)

	r.Register("pad", fnPad, Eager)
	r.Register("left", fnLeft, Eager)
	r.Register("right", fnRight, Eager)
	r.Register("substr", fnSubstr, Eager)
	r.Register("len", fnLen, Eager)
	r.Register("upper", mapValue(strings.ToUpper), Eager)
	r.Register("lower", mapValue(strings.ToLower), Eager)

	r.Register("=", fnEqual, Eager)
	r.Register("strcmp", fnEqual, Eager)

	r.Register("+", fnPlus, Eager)
	r.Register("-", fnMinus, Eager)

	r.Register("size", fnSize, Eager)
	r.Register("num", fnNum, Eager)
	r.Register("duration", fnDuration, Eager)

	// Context mutation. $set is an ordered side effect: it affects only
	// nodes evaluated after it in the same pass.
	r.Register("set", fnSet, Lazy)
	r.Register("get", fnGet, Lazy)

	return r
}

func fnCat(args *Args) Result {
	var b strings.Builder
	truthy := false
	for i := range args.Len() {
		r := args.Result(i)
		b.WriteString(r.Value)
		truthy = truthy || r.Truthy
	}
	return Result{Value: b.String(), Truthy: truthy}
}

func fnIf(args *Args) Result {
	if args.Len() < 2 {
		return Result{}
	}
	if args.Result(0).Truthy {
		return args.Result(1)
	}
	return args.Result(2)
}

func fnIf2(args *Args) Result {
	for i := range args.Len() {
		if r := args.Result(i); r.Truthy {
			return r
		}
	}
	return Result{}
}

func fnAnd(args *Args) Result {
	if args.Len() == 0 {
		return Result{}
	}
	var last Result
	for i := range args.Len() {
		last = args.Result(i)
		if !last.Truthy {
			return Result{}
		}
	}
	return last
}

func fnOr(args *Args) Result {
	for i := range args.Len() {
		if r := args.Result(i); r.Truthy {
			return r
		}
	}
	return Result{}
}

func fnNot(args *Args) Result {
	if args.Len() != 1 {
		return Result{}
	}
	return Result{Truthy: !args.Result(0).Truthy}
}

func fnPad(args *Args) Result {
	if args.Len() < 2 {
		return Result{}
	}
	text := args.Result(0)
	width, ok := intArg(args.Result(1))
	if !ok {
		return Result{}
	}

	fill := " "
	if c := args.Result(2).Value; c != "" {
		fill, _, _, _ = uniseg.FirstGraphemeClusterInString(c, -1)
	}
	fillWidth := max(runewidth.StringWidth(fill), 1)

	missing := width - runewidth.StringWidth(text.Value)
	if missing <= 0 {
		return text
	}
	return Result{
		Value:  strings.Repeat(fill, missing/fillWidth) + text.Value,
		Truthy: text.Truthy,
	}
}

func fnLeft(args *Args) Result {
	text := args.Result(0)
	n, ok := intArg(args.Result(1))
	if args.Len() != 2 || !ok || n < 0 {
		return Result{}
	}
	g := graphemes(text.Value)
	return Result{Value: strings.Join(g[:min(n, len(g))], ""), Truthy: text.Truthy}
}

func fnRight(args *Args) Result {
	text := args.Result(0)
	n, ok := intArg(args.Result(1))
	if args.Len() != 2 || !ok || n < 0 {
		return Result{}
	}
	g := graphemes(text.Value)
	return Result{Value: strings.Join(g[len(g)-min(n, len(g)):], ""), Truthy: text.Truthy}
}

func fnSubstr(args *Args) Result {
	if args.Len() < 2 || args.Len() > 3 {
		return Result{}
	}
	text := args.Result(0)
	g := graphemes(text.Value)

	begin, ok := intArg(args.Result(1))
	if !ok {
		return Result{}
	}
	end := len(g)
	if args.Len() == 3 {
		if end, ok = intArg(args.Result(2)); !ok {
			return Result{}
		}
	}

	begin = min(max(begin, 0), len(g))
	end = min(max(end, begin), len(g))
	return Result{Value: strings.Join(g[begin:end], ""), Truthy: text.Truthy}
}

func fnLen(args *Args) Result {
	if args.Len() != 1 {
		return Result{}
	}
	text := args.Result(0)
	return Result{
		Value:  strconv.Itoa(uniseg.GraphemeClusterCount(text.Value)),
		Truthy: text.Truthy,
	}
}

func mapValue(f func(string) string) Func {
	return func(args *Args) Result {
		if args.Len() != 1 {
			return Result{}
		}
		r := args.Result(0)
		return Result{Value: f(r.Value), Truthy: r.Truthy}
	}
}

func fnEqual(args *Args) Result {
	if args.Len() < 2 {
		return Result{}
	}
	first := args.Result(0).Value
	for i := 1; i < args.Len(); i++ {
		if args.Result(i).Value != first {
			return Result{}
		}
	}
	return Result{Truthy: true}
}

func fnPlus(args *Args) Result {
	if args.Len() == 0 {
		return Result{}
	}
	var sum int64
	for i := range args.Len() {
		n, ok := int64Arg(args.Result(i))
		if !ok {
			return Result{}
		}
		sum += n
	}
	return Result{Value: strconv.FormatInt(sum, 10), Truthy: sum != 0}
}

func fnMinus(args *Args) Result {
	if args.Len() == 0 {
		return Result{}
	}
	acc, ok := int64Arg(args.Result(0))
	if !ok {
		return Result{}
	}
	for i := 1; i < args.Len(); i++ {
		n, ok := int64Arg(args.Result(i))
		if !ok {
			return Result{}
		}
		acc -= n
	}
	return Result{Value: strconv.FormatInt(acc, 10), Truthy: acc != 0}
}

func fnSize(args *Args) Result {
	if args.Len() != 1 {
		return Result{}
	}
	r := args.Result(0)
	n, ok := int64Arg(r)
	if !ok || n < 0 {
		return Result{}
	}
	return Result{Value: humanize.Bytes(uint64(n)), Truthy: r.Truthy}
}

func fnNum(args *Args) Result {
	if args.Len() != 1 {
		return Result{}
	}
	r := args.Result(0)
	n, ok := int64Arg(r)
	if !ok {
		return Result{}
	}
	return Result{Value: humanize.Comma(n), Truthy: r.Truthy}
}

// fnDuration formats milliseconds as m:ss, or h:mm:ss past an hour.
func fnDuration(args *Args) Result {
	if args.Len() != 1 {
		return Result{}
	}
	r := args.Result(0)
	ms, ok := int64Arg(r)
	if !ok || ms < 0 {
		return Result{}
	}
	secs := ms / 1000
	h, m, s := secs/3600, (secs/60)%60, secs%60
	if h > 0 {
		return Result{Value: fmt.Sprintf("%d:%02d:%02d", h, m, s), Truthy: r.Truthy}
	}
	return Result{Value: fmt.Sprintf("%d:%02d", m, s), Truthy: r.Truthy}
}

func fnSet(args *Args) Result {
	if args.Len() != 2 {
		return Result{}
	}
	name := args.Name(0)
	if name == "" {
		return Result{}
	}
	args.Context().Set(name, args.Result(1).Value)
	return Result{}
}

func fnGet(args *Args) Result {
	if args.Len() != 1 {
		return Result{}
	}
	v, ok := args.Context().Lookup(args.Name(0))
	return Result{Value: v, Truthy: ok}
}

func intArg(r Result) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(r.Value))
	return n, err == nil
}

func int64Arg(r Result) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(r.Value), 10, 64)
	return n, err == nil
}

func graphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}
