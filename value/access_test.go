package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexArray(t *testing.T) {
	arr := NewArray([]Value{NewString("a"), NewString("b")})
	v, err := Index(arr, NewInt(1), false)
	require.NoError(t, err)
	s, _ := v.String()
	assert.Equal(t, "b", s)

	_, err = Index(arr, NewInt(5), false)
	assert.Error(t, err)
}

func TestIndexStringByteAccess(t *testing.T) {
	v, err := Index(NewString("abc"), NewInt(1), false)
	require.NoError(t, err)
	n, _ := v.NumberValue()
	assert.Equal(t, uint64('b'), n.U)
}

func TestIndexMapMissingKeyNonStrict(t *testing.T) {
	m := NewMap(map[string]Value{"a": NewInt(1)})
	v, err := Index(m, NewString("missing"), false)
	require.NoError(t, err)
	assert.True(t, v.IsNil())
}

func TestIndexMapMissingKeyStrict(t *testing.T) {
	m := NewMap(map[string]Value{"a": NewInt(1)})
	_, err := Index(m, NewString("missing"), true)
	assert.Error(t, err)
}

func TestIndexNilProducesNil(t *testing.T) {
	v, err := Index(Nil, NewString("x"), false)
	require.NoError(t, err)
	assert.True(t, v.IsNil())
}

type objStub struct {
	fields map[string]Value
	keys   []string
}

func (o *objStub) Field(name string) (Value, bool) {
	v, ok := o.fields[name]
	return v, ok
}

func (o *objStub) Keys() []string { return o.keys }

func TestFieldObjectAutoInvokesFunction(t *testing.T) {
	var gotReceiver Value
	obj := &objStub{
		fields: map[string]Value{
			"Greet": NewFunction(func(args []Value) (Value, error) {
				gotReceiver = args[0]
				return NewString("greeted"), nil
			}),
		},
		keys: []string{"Greet"},
	}
	v := NewObject(obj)

	// "method on receiver": .Greet auto-invokes with the receiver (v itself)
	// as its sole argument.
	out, err := Field(v, "Greet", false)
	require.NoError(t, err)
	s, _ := out.String()
	assert.Equal(t, "greeted", s)
	assert.Equal(t, KindObject, gotReceiver.Kind())
}

func TestRawFieldDoesNotInvokeFunction(t *testing.T) {
	obj := &objStub{
		fields: map[string]Value{
			"Greet": NewFunction(func(args []Value) (Value, error) { return NewString("called"), nil }),
		},
		keys: []string{"Greet"},
	}
	v := NewObject(obj)
	out, err := RawField(v, "Greet", false)
	require.NoError(t, err)
	_, isFunc := out.Function()
	assert.True(t, isFunc)
}

func TestLen(t *testing.T) {
	n, err := Len(NewString("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = Len(NewArray([]Value{Nil, Nil, Nil}))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = Len(NewInt(5))
	assert.Error(t, err)
}

func TestRangeOrderAndEmptiness(t *testing.T) {
	var keys []string
	err := Range(NewArray([]Value{NewString("x"), NewString("y")}), func(k, v Value) bool {
		n, _ := k.NumberValue()
		s, _ := v.String()
		keys = append(keys, s)
		_ = n
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, keys)

	var mapKeys []string
	err = Range(NewMap(map[string]Value{"b": NewInt(2), "a": NewInt(1)}), func(k, v Value) bool {
		s, _ := k.String()
		mapKeys = append(mapKeys, s)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, mapKeys)

	called := false
	err = Range(Nil, func(k, v Value) bool { called = true; return true })
	require.NoError(t, err)
	assert.False(t, called)
}

func TestRangeStopsOnFalse(t *testing.T) {
	count := 0
	err := Range(NewArray([]Value{NewInt(1), NewInt(2), NewInt(3)}), func(k, v Value) bool {
		count++
		return count < 2
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
