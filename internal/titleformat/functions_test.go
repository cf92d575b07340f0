package titleformat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuiltins(t *testing.T) {
	p := NewParser(nil)
	ev := NewEvaluator(nil)

	fields := map[string]any{
		"artist":  "Nina Simone",
		"title":   "Sinnerman",
		"tracknr": 5,
		"size":    2048,
		"count":   1234567,
		"short":   185000,
		"long":    3723000,
		"kana":    "日本語",
		"accent":  "été",
	}

	tests := []struct {
		name   string
		format string
		want   Result
	}{
		{"cat", "$cat(:a, - ,:t)", Result{"Nina Simone - Sinnerman", true}},
		{"cat of absent", "$cat(:performer,:date)", Result{}},

		{"if then", "$if(:a,yes,no)", Result{"yes", true}},
		{"if else", "$if(:performer,yes,no)", Result{"no", true}},
		{"if without else", "$if(:performer,yes)", Result{}},
		{"if2 first present", "$if2(:performer,:a)", Result{"Nina Simone", true}},
		{"if2 none present", "$if2(:performer,:date)", Result{}},

		{"and all present", "$and(:a,:t)", Result{"Sinnerman", true}},
		{"and one absent", "$and(:a,:performer)", Result{}},
		{"or", "$or(:performer,:t)", Result{"Sinnerman", true}},
		{"not present", "$not(:a)", Result{}},
		{"not absent", "$not(:performer)", Result{"", true}},

		{"pad with zeros", "$pad(:n,2,0)", Result{"05", true}},
		{"pad default fill", "$pad(:n,3)", Result{"  5", true}},
		{"pad wide text", "$pad(:kana,8,.)", Result{"..日本語", true}},
		{"pad no-op when long", "$pad(:t,3)", Result{"Sinnerman", true}},
		{"pad bad width", "$pad(:t,x)", Result{}},

		{"left", "$left(:t,4)", Result{"Sinn", true}},
		{"left beyond", "$left(:t,40)", Result{"Sinnerman", true}},
		{"right", "$right(:t,3)", Result{"man", true}},
		{"left graphemes", "$left(:accent,2)", Result{"ét", true}},
		{"substr", "$substr(:t,1,4)", Result{"inn", true}},
		{"substr open end", "$substr(:t,6)", Result{"man", true}},
		{"substr clamps", "$substr(:t,-3,99)", Result{"Sinnerman", true}},
		{"len", "$len(:accent)", Result{"3", true}},
		{"upper", "$upper(:t)", Result{"SINNERMAN", true}},
		{"lower absent", "$lower(:performer)", Result{}},

		{"equal", "$=(:n,5)", Result{"", true}},
		{"not equal", "$strcmp(:n,6)", Result{}},
		{"equal arity", "$=(:n)", Result{}},

		{"plus", "$+(:n,10,-2)", Result{"13", true}},
		{"plus zero is falsy", "$+(:n,-5)", Result{"0", false}},
		{"minus", "$-(:n,1)", Result{"4", true}},
		{"plus not a number", "$+(:n,x)", Result{}},

		{"size", "$size(:size)", Result{"2.0 kB", true}},
		{"num", "$num(:count)", Result{"1,234,567", true}},
		{"duration short", "$duration(:short)", Result{"3:05", true}},
		{"duration long", "$duration(:long)", Result{"1:02:03", true}},
		{"duration absent", "$duration(:performer)", Result{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := p.MustParse(tt.format)
			got := ev.Eval(f.Levels[0].Nodes[0], NewContext(fields))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuiltins_SetAndGet(t *testing.T) {
	p := NewParser(nil)
	ev := NewEvaluator(nil)

	tests := []struct {
		name   string
		format string
		fields map[string]any
		want   string
	}{
		{
			name:   "binding visible only afterwards",
			format: "[:g|none]$set(g,Jazz)[:g|none]",
			want:   "noneJazz",
		},
		{
			name:   "get reads a binding",
			format: "$set(x,:a)$get(x)/$get(x)",
			fields: map[string]any{"artist": "A"},
			want:   "A/A",
		},
		{
			name:   "get of unbound name",
			format: "[$get(nothing)|-]",
			want:   "-",
		},
		{
			name:   "binding shadows record field",
			format: "$set(a,Other):a",
			fields: map[string]any{"artist": "A"},
			want:   "Other",
		},
		{
			name:   "set inside an untaken if branch",
			format: "$if(:performer,$set(t,x))[:t|untouched]",
			want:   "untouched",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := p.MustParse(tt.format)
			assert.Equal(t, tt.want, f.Render(ev, NewContext(tt.fields)))
		})
	}
}

func TestBuiltins_Independent(t *testing.T) {
	a := Builtins()
	b := Builtins()
	a.Register("extra", fnCat, Eager)

	_, ok := b.Lookup("extra")
	assert.False(t, ok)

	c := a.Clone()
	c.Register("more", fnCat, Eager)
	_, ok = a.Lookup("more")
	assert.False(t, ok)
	_, ok = c.Lookup("extra")
	assert.True(t, ok)
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register("upper", mapValue(nil), Eager)
	r.Register("cat", fnCat, Eager)
	r.Register("if", fnIf, Lazy)

	assert.Equal(t, []string{"cat", "if", "upper"}, r.Names())

	f, ok := r.Lookup("if")
	assert.True(t, ok)
	assert.Equal(t, Lazy, f.Policy)
}
