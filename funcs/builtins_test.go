package funcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiji-flo/gotemplate/value"
)

func TestEq(t *testing.T) {
	v, err := Eq([]value.Value{value.NewInt(1), value.NewFloat(1.0), value.NewInt(2)})
	require.NoError(t, err)
	b, _ := v.Bool()
	assert.True(t, b)

	v, err = Eq([]value.Value{value.NewInt(1), value.NewInt(2), value.NewInt(3)})
	require.NoError(t, err)
	b, _ = v.Bool()
	assert.False(t, b)

	_, err = Eq([]value.Value{value.NewInt(1)})
	assert.Error(t, err)
}

func TestComparisonBuiltins(t *testing.T) {
	ltRes, err := Lt([]value.Value{value.NewInt(1), value.NewInt(2)})
	require.NoError(t, err)
	b, _ := ltRes.Bool()
	assert.True(t, b)

	_, err = Lt([]value.Value{value.NewString("a"), value.NewInt(2)})
	assert.Error(t, err)
}

func TestAndOr(t *testing.T) {
	v, err := And([]value.Value{value.NewInt(1), value.NewInt(0), value.NewInt(9)})
	require.NoError(t, err)
	n, _ := v.NumberValue()
	assert.Equal(t, int64(0), n.I)

	v, err = Or([]value.Value{value.NewInt(0), value.NewString(""), value.NewInt(9)})
	require.NoError(t, err)
	n, _ = v.NumberValue()
	assert.Equal(t, int64(9), n.I)
}

func TestNot(t *testing.T) {
	v, err := Not([]value.Value{value.NewBool(false)})
	require.NoError(t, err)
	b, _ := v.Bool()
	assert.True(t, b)
}

func TestLenBuiltin(t *testing.T) {
	v, err := Len([]value.Value{value.NewString("hello")})
	require.NoError(t, err)
	n, _ := v.NumberValue()
	assert.Equal(t, int64(5), n.I)
}

func TestIndexBuiltinChained(t *testing.T) {
	arr := value.NewArray([]value.Value{
		value.NewMap(map[string]value.Value{"k": value.NewString("v")}),
	})
	v, err := Index([]value.Value{arr, value.NewInt(0), value.NewString("k")})
	require.NoError(t, err)
	s, _ := v.String()
	assert.Equal(t, "v", s)
}

func TestSliceArrayAndString(t *testing.T) {
	arr := value.NewArray([]value.Value{value.NewInt(1), value.NewInt(2), value.NewInt(3)})
	v, err := Slice([]value.Value{arr, value.NewInt(1)})
	require.NoError(t, err)
	items, _ := v.Array()
	assert.Len(t, items, 2)

	v, err = Slice([]value.Value{value.NewString("hello"), value.NewInt(1), value.NewInt(3)})
	require.NoError(t, err)
	s, _ := v.String()
	assert.Equal(t, "el", s)

	_, err = Slice([]value.Value{arr, value.NewInt(-1)})
	assert.Error(t, err)
}

func TestPrintSpacing(t *testing.T) {
	v, err := Print([]value.Value{value.NewInt(1), value.NewInt(2)})
	require.NoError(t, err)
	s, _ := v.String()
	assert.Equal(t, "1 2", s)

	v, err = Print([]value.Value{value.NewString("a"), value.NewString("b")})
	require.NoError(t, err)
	s, _ = v.String()
	assert.Equal(t, "ab", s)
}

func TestPrintln(t *testing.T) {
	v, err := Println([]value.Value{value.NewInt(1), value.NewInt(2)})
	require.NoError(t, err)
	s, _ := v.String()
	assert.Equal(t, "1 2\n", s)
}

func TestPrintfBuiltin(t *testing.T) {
	v, err := Printf([]value.Value{value.NewString("%05d"), value.NewInt(42)})
	require.NoError(t, err)
	s, _ := v.String()
	assert.Equal(t, "00042", s)
}

func TestURLQuery(t *testing.T) {
	v, err := URLQuery([]value.Value{value.NewString("a b/c")})
	require.NoError(t, err)
	s, _ := v.String()
	assert.Equal(t, "a+b%2Fc", s)
}

func TestCallBuiltin(t *testing.T) {
	fn := value.NewFunction(func(args []value.Value) (value.Value, error) {
		return value.NewInt(7), nil
	})
	v, err := Call([]value.Value{fn})
	require.NoError(t, err)
	n, _ := v.NumberValue()
	assert.Equal(t, int64(7), n.I)

	_, err = Call([]value.Value{value.NewInt(1)})
	assert.Error(t, err)
}

func TestHTMLAndJSUnimplemented(t *testing.T) {
	_, err := HTML(nil)
	assert.Error(t, err)
	_, err = JS(nil)
	assert.Error(t, err)
}

func TestBuiltinsTableHasEntries(t *testing.T) {
	table := Builtins()
	for _, name := range []string{"eq", "ne", "lt", "le", "gt", "ge", "and", "or", "not",
		"len", "index", "slice", "print", "println", "printf", "urlquery", "call", "html", "js"} {
		_, ok := table[name]
		assert.True(t, ok, "missing builtin %q", name)
	}
}
