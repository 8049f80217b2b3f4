package value

import "fmt"

// IndexError reports an out-of-range array index. A missing map key is
// not an error, but an out-of-range array index is.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index out of range: %d (len %d)", e.Index, e.Len)
}

// Index resolves v[k]: numeric k against Array/String, string k against
// Map/Object. Missing map/object keys yield Nil unless strict is true.
func Index(v Value, k Value, strict bool) (Value, error) {
	switch v.kind {
	case KindArray:
		i, err := indexInt(k)
		if err != nil {
			return Nil, err
		}
		if i < 0 || i >= len(v.a) {
			return Nil, &IndexError{Index: i, Len: len(v.a)}
		}
		return v.a[i], nil
	case KindString:
		i, err := indexInt(k)
		if err != nil {
			return Nil, err
		}
		if i < 0 || i >= len(v.s) {
			return Nil, &IndexError{Index: i, Len: len(v.s)}
		}
		return NewUint(uint64(v.s[i])), nil
	case KindMap:
		key, ok := k.String()
		if !ok {
			return Nil, fmt.Errorf("map key must be a string, got %s", k.Kind())
		}
		val, ok := v.m[key]
		if !ok {
			if strict {
				return Nil, fmt.Errorf("map has no key %q", key)
			}
			return Nil, nil
		}
		return val, nil
	case KindObject:
		key, ok := k.String()
		if !ok {
			return Nil, fmt.Errorf("object key must be a string, got %s", k.Kind())
		}
		return Field(v, key, strict)
	case KindNil:
		return Nil, nil
	default:
		return Nil, fmt.Errorf("cannot index into %s", v.Kind())
	}
}

func indexInt(k Value) (int, error) {
	n, ok := k.NumberValue()
	if !ok {
		return 0, fmt.Errorf("index must be numeric, got %s", k.Kind())
	}
	switch n.Kind {
	case NumInt:
		return int(n.I), nil
	case NumUint:
		return int(n.U), nil
	default:
		return int(n.F), nil
	}
}

// Field resolves dotted field access (".x") on Map/Object. On an Object,
// if the named field is itself a Function, it is invoked with the receiver
// v as its sole argument -- the Go "method on receiver" semantic.
func Field(v Value, name string, strict bool) (Value, error) {
	switch v.kind {
	case KindMap:
		val, ok := v.m[name]
		if !ok {
			if strict {
				return Nil, fmt.Errorf("map has no key %q", name)
			}
			return Nil, nil
		}
		return val, nil
	case KindObject:
		fv, ok := v.o.Field(name)
		if !ok {
			if strict {
				return Nil, fmt.Errorf("%s has no field or method %q", v.Kind(), name)
			}
			return Nil, nil
		}
		if fn, isFunc := fv.Function(); isFunc {
			return fn([]Value{v})
		}
		return fv, nil
	case KindNil:
		return Nil, fmt.Errorf("nil pointer evaluating field %q", name)
	default:
		return Nil, fmt.Errorf("can't evaluate field %q on %s", name, v.Kind())
	}
}

// RawField resolves a Map/Object field like Field, but never auto-invokes a
// Function-valued result: used when the caller is about to invoke it itself
// with explicit arguments (a method-style call).
func RawField(v Value, name string, strict bool) (Value, error) {
	switch v.kind {
	case KindMap:
		val, ok := v.m[name]
		if !ok {
			if strict {
				return Nil, fmt.Errorf("map has no key %q", name)
			}
			return Nil, nil
		}
		return val, nil
	case KindObject:
		fv, ok := v.o.Field(name)
		if !ok {
			if strict {
				return Nil, fmt.Errorf("%s has no field or method %q", v.Kind(), name)
			}
			return Nil, nil
		}
		return fv, nil
	case KindNil:
		return Nil, fmt.Errorf("nil pointer evaluating field %q", name)
	default:
		return Nil, fmt.Errorf("can't evaluate field %q on %s", name, v.Kind())
	}
}

// Len is the size the len builtin reports: byte length for String,
// element count for Array/Map/Object.
func Len(v Value) (int, error) {
	switch v.kind {
	case KindString:
		return len(v.s), nil
	case KindArray:
		return len(v.a), nil
	case KindMap:
		return len(v.m), nil
	case KindObject:
		return len(v.o.Keys()), nil
	default:
		return 0, fmt.Errorf("len of %s", v.Kind())
	}
}

// Range yields each (index, value) pair for iteration: Array in index
// order, Map in ascending key order, Nil produces zero iterations.
func Range(v Value, yield func(key, val Value) bool) error {
	switch v.kind {
	case KindNil:
		return nil
	case KindArray:
		for i, item := range v.a {
			if !yield(NewInt(int64(i)), item) {
				return nil
			}
		}
		return nil
	case KindMap:
		for _, k := range SortedMapKeys(v.m) {
			if !yield(NewString(k), v.m[k]) {
				return nil
			}
		}
		return nil
	default:
		return fmt.Errorf("range over %s", v.Kind())
	}
}
