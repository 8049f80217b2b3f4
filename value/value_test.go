package value

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// valuesEqual compares two Values structurally, ignoring the Object and
// Function slots (neither has a useful equality).
func valuesEqual(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindNumber:
		return a.n == b.n
	case KindArray:
		if len(a.a) != len(b.a) {
			return false
		}
		for i := range a.a {
			if !valuesEqual(a.a[i], b.a[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(a.m) != len(b.m) {
			return false
		}
		for k, av := range a.m {
			bv, ok := b.m[k]
			if !ok || !valuesEqual(av, bv) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// cmpValue diffs two Values so that mismatches from FromAny on nested
// slices/maps are reported structurally instead of as one opaque
// require.Equal failure.
func cmpValue(t *testing.T, want, got Value) {
	t.Helper()
	diff := cmp.Diff(want, got, cmp.Comparer(valuesEqual))
	if diff != "" {
		t.Errorf("value mismatch (-want +got):\n%s", diff)
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", Nil, false},
		{"bool true", NewBool(true), true},
		{"bool false", NewBool(false), false},
		{"empty string", NewString(""), false},
		{"non-empty string", NewString("x"), true},
		{"zero int", NewInt(0), false},
		{"nonzero int", NewInt(1), true},
		{"zero uint", NewUint(0), false},
		{"zero float", NewFloat(0), false},
		{"nonzero float", NewFloat(0.1), true},
		{"empty array", NewArray(nil), false},
		{"nonempty array", NewArray([]Value{Nil}), true},
		{"empty map", NewMap(map[string]Value{}), false},
		{"nonempty map", NewMap(map[string]Value{"a": Nil}), true},
		{"function", NewFunction(func([]Value) (Value, error) { return Nil, nil }), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truthy(tt.v))
		})
	}
}

func TestFromAnyPrimitives(t *testing.T) {
	assert.True(t, FromAny(nil).IsNil())

	b, ok := FromAny(true).Bool()
	require.True(t, ok)
	assert.True(t, b)

	s, ok := FromAny("hi").String()
	require.True(t, ok)
	assert.Equal(t, "hi", s)

	n, ok := FromAny(int64(-5)).NumberValue()
	require.True(t, ok)
	assert.Equal(t, NumInt, n.Kind)
	assert.Equal(t, int64(-5), n.I)

	n, ok = FromAny(uint(7)).NumberValue()
	require.True(t, ok)
	assert.Equal(t, NumUint, n.Kind)

	n, ok = FromAny(3.5).NumberValue()
	require.True(t, ok)
	assert.Equal(t, NumFloat, n.Kind)
	assert.Equal(t, 3.5, n.F)
}

func TestFromAnySliceAndMap(t *testing.T) {
	arr := FromAny([]string{"a", "b"})
	cmpValue(t, NewArray([]Value{NewString("a"), NewString("b")}), arr)

	m := FromAny(map[string]int{"x": 1})
	cmpValue(t, NewMap(map[string]Value{"x": NewInt(1)}), m)
}

type fromAnyStruct struct {
	Name string
}

func (s fromAnyStruct) Greet() string { return "hi " + s.Name }

func TestFromAnyStructFieldsAndMethods(t *testing.T) {
	v := FromAny(fromAnyStruct{Name: "Ada"})
	require.Equal(t, KindObject, v.Kind())
	o, ok := v.ObjectValue()
	require.True(t, ok)

	fv, ok := o.Field("Name")
	require.True(t, ok)
	name, _ := fv.String()
	assert.Equal(t, "Ada", name)

	gv, ok := o.Field("Greet")
	require.True(t, ok)
	fn, ok := gv.Function()
	require.True(t, ok)
	out, err := fn(nil)
	require.NoError(t, err)
	greeting, _ := out.String()
	assert.Equal(t, "hi Ada", greeting)
}

func TestFromAnyPointerAndNilPointer(t *testing.T) {
	var p *fromAnyStruct
	assert.True(t, FromAny(p).IsNil())

	p2 := &fromAnyStruct{Name: "Bo"}
	v := FromAny(p2)
	assert.Equal(t, KindObject, v.Kind())
}

func TestSortedMapKeys(t *testing.T) {
	m := map[string]Value{"b": NewInt(2), "a": NewInt(1), "c": NewInt(3)}
	assert.Equal(t, []string{"a", "b", "c"}, SortedMapKeys(m))
}
