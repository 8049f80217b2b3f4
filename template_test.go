package gotemplate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiji-flo/gotemplate/errs"
	"github.com/fiji-flo/gotemplate/value"
)

// TestRenderScenarios exercises end-to-end render scenarios with literal
// expected output.
func TestRenderScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ctx  value.Value
		want string
	}{
		{"dot", "Hello, {{.}}!", value.NewString("world"), "Hello, world!"},
		{"if-else-false", "{{if .}}yes{{else}}no{{end}}", value.NewBool(false), "no"},
		{
			"range-index-value",
			"{{range $i,$v := .}}{{$i}}={{$v}},{{end}}",
			value.NewArray([]value.Value{value.NewString("a"), value.NewString("b")}),
			"0=a,1=b,",
		},
		{"trim-markers", "{{- \"x\"  -}}\n{{-   \"y\" -}}", value.Nil, "xy"},
		{"printf-zero-pad", `{{printf "%05d" 42}}`, value.Nil, "00042"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Parse(tt.src)
			require.NoError(t, err)
			out, err := set.Render(tt.ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderWithDefineAndTemplate(t *testing.T) {
	set, err := Parse(`{{define "g"}}<{{.}}>{{end}}{{template "g" .}}`)
	require.NoError(t, err)
	out, err := set.Render(value.NewString("x"))
	require.NoError(t, err)
	assert.Equal(t, "<x>", out)
}

// TestNoActionsPassThrough covers the invariant that source with no
// "{{" renders unchanged.
func TestNoActionsPassThrough(t *testing.T) {
	const src = "just plain text, no actions here.\nsecond line."
	set, err := Parse(src)
	require.NoError(t, err)
	out, err := set.Render(value.Nil)
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestVariableScopeDoesNotEscapeBlock(t *testing.T) {
	// $v declared inside an if is gone after {{end}}; referencing it
	// afterwards is a parse-time "undefined variable" error.
	_, err := Parse(`{{if true}}{{$v := 1}}{{end}}{{$v}}`)
	require.Error(t, err)
}

func TestRangeEmptyRunsElse(t *testing.T) {
	tests := []struct {
		name string
		ctx  value.Value
	}{
		{"empty array", value.NewArray(nil)},
		{"empty map", value.NewMap(map[string]value.Value{})},
		{"nil", value.Nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Parse("{{range .}}body{{else}}empty{{end}}")
			require.NoError(t, err)
			out, err := set.Render(tt.ctx)
			require.NoError(t, err)
			assert.Equal(t, "empty", out)
		})
	}
}

func TestRangeBreakAndContinue(t *testing.T) {
	set, err := Parse(`{{range $i, $v := .}}{{if eq $v 3}}{{break}}{{end}}{{if eq $v 1}}{{continue}}{{end}}{{$v}}{{end}}`)
	require.NoError(t, err)
	out, err := set.Render(value.NewArray([]value.Value{
		value.NewInt(1), value.NewInt(2), value.NewInt(3), value.NewInt(4),
	}))
	require.NoError(t, err)
	assert.Equal(t, "2", out)
}

func TestWithPushesDot(t *testing.T) {
	set, err := Parse(`{{with .Inner}}{{.}}{{else}}none{{end}}`)
	require.NoError(t, err)
	out, err := set.Render(value.NewMap(map[string]value.Value{
		"Inner": value.NewString("hi"),
	}))
	require.NoError(t, err)
	assert.Equal(t, "hi", out)

	out, err = set.Render(value.NewMap(map[string]value.Value{}))
	require.NoError(t, err)
	assert.Equal(t, "none", out)
}

func TestPipelineChaining(t *testing.T) {
	set, err := Parse(`{{"abc" | len}}`)
	require.NoError(t, err)
	out, err := set.Render(value.Nil)
	require.NoError(t, err)
	assert.Equal(t, "3", out)
}

func TestAssignMutatesNearestBinding(t *testing.T) {
	set, err := Parse(`{{$v := 1}}{{if true}}{{$v = 2}}{{end}}{{$v}}`)
	require.NoError(t, err)
	out, err := set.Render(value.Nil)
	require.NoError(t, err)
	assert.Equal(t, "2", out)
}

func TestUndefinedFunctionIsError(t *testing.T) {
	set, err := Parse(`{{nope .}}`)
	require.NoError(t, err)
	_, err = set.Render(value.Nil)
	require.Error(t, err)
}

func TestMissingTemplateIsError(t *testing.T) {
	set, err := Parse(`{{template "missing" .}}`)
	require.NoError(t, err)
	_, err = set.Render(value.Nil)
	require.Error(t, err)
}

func TestStrictMapKeys(t *testing.T) {
	set, err := new(Set).StrictMapKeys(true).Parse(`{{.Missing}}`)
	require.NoError(t, err)
	_, err = set.Render(value.NewMap(map[string]value.Value{}))
	require.Error(t, err)

	lenient, err := Parse(`{{.Missing}}`)
	require.NoError(t, err)
	out, err := lenient.Render(value.NewMap(map[string]value.Value{}))
	require.NoError(t, err)
	assert.Equal(t, "<nil>", out)
}

func TestMaxDepthExceeded(t *testing.T) {
	set, err := new(Set).MaxDepth(5).Parse(`{{define "r"}}{{template "r" .}}{{end}}{{template "r" .}}`)
	require.NoError(t, err)
	_, err = set.Render(value.Nil)
	require.Error(t, err)
}

func TestDynamicTemplateNameGatedBehindFeatureFlag(t *testing.T) {
	_, err := Parse(`{{define "g"}}x{{end}}{{template (print "g")}}`)
	require.Error(t, err)

	set, err := new(Set).AllowDynamicTemplateName(true).Parse(`{{define "g"}}x{{end}}{{template (print "g")}}`)
	require.NoError(t, err)
	out, err := set.Render(value.Nil)
	require.NoError(t, err)
	assert.Equal(t, "x", out)
}

func TestFuncsOverridesBuiltin(t *testing.T) {
	set, err := new(Set).Funcs(map[string]value.Func{
		"print": func(args []value.Value) (value.Value, error) {
			s, _ := args[0].String()
			return value.NewString(s + "!"), nil
		},
	}).Parse(`{{print .}}`)
	require.NoError(t, err)
	out, err := set.Render(value.NewString("hi"))
	require.NoError(t, err)
	assert.Equal(t, "hi!", out)
}

func TestComplexNumbersParseButFailAtEval(t *testing.T) {
	set, err := Parse(`{{3i}}`)
	require.NoError(t, err)
	_, err = set.Render(value.Nil)
	require.Error(t, err)
}

func TestHTMLAndJSAreUnimplemented(t *testing.T) {
	for _, fn := range []string{"html", "js"} {
		set, err := Parse("{{" + fn + " .}}")
		require.NoError(t, err)
		_, err = set.Render(value.NewString("x"))
		require.Error(t, err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	set, err := Parse(`{{define "shared"}}base{{end}}{{template "shared" .}}`)
	require.NoError(t, err)
	clone, err := set.Clone()
	require.NoError(t, err)
	_, err = clone.Parse(`{{define "extra"}}added{{end}}`)
	require.NoError(t, err)

	assert.NotContains(t, set.TemplateNames(), "extra")
	assert.Contains(t, clone.TemplateNames(), "extra")
}

type greeter struct{ Name string }

func (g greeter) Greet() string { return "hi " + g.Name }

func TestMethodOnObjectReceiver(t *testing.T) {
	g := greeter{Name: "Ada"}
	set, err := Parse(`{{.Name}}/{{.Greet}}`)
	require.NoError(t, err)
	out, err := set.Render(value.FromAny(g))
	require.NoError(t, err)
	assert.Equal(t, "Ada/hi Ada", out)
}

func TestTypedErrorsSurviveWrapping(t *testing.T) {
	set, err := Parse(`{{lt 1 "a"}}`)
	require.NoError(t, err)
	_, err = set.Render(value.Nil)
	require.Error(t, err)
	var te *errs.TypeError
	assert.True(t, errors.As(err, &te))

	set, err = new(Set).MaxDepth(3).Parse(`{{define "r"}}{{template "r" .}}{{end}}{{template "r" .}}`)
	require.NoError(t, err)
	_, err = set.Render(value.Nil)
	require.Error(t, err)
	var de *errs.DepthExceeded
	assert.True(t, errors.As(err, &de))
}

func TestOneShotRender(t *testing.T) {
	out, err := Render("Hello, {{.}}!", "world")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", out)

	_, err = Render("{{", nil)
	require.Error(t, err)
}

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() {
		Must(Parse(`ok`))
	})
	assert.Panics(t, func() {
		Must(Parse(`{{if}}`))
	})
}
