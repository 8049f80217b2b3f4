// Package funcs implements the built-in function table: comparison,
// logic, sequence operations, print/printf, urlquery and call.
// These are wired into a Set's function table alongside any user-supplied
// functions added via Set.Funcs.
package funcs

import (
	"net/url"
	"strings"

	"github.com/fiji-flo/gotemplate/errs"
	"github.com/fiji-flo/gotemplate/printf"
	"github.com/fiji-flo/gotemplate/value"
)

// Builtins returns a fresh copy of the default function table; callers may
// mutate it freely before passing it to a Set.
func Builtins() map[string]value.Func {
	return map[string]value.Func{
		"eq": Eq, "ne": Ne, "lt": Lt, "le": Le, "gt": Gt, "ge": Ge,
		"and": And, "or": Or, "not": Not,
		"len": Len, "index": Index, "slice": Slice,
		"print": Print, "println": Println, "printf": Printf,
		"urlquery": URLQuery, "call": Call,
		"html": HTML, "js": JS,
	}
}

func argErr(name, msg string) error { return &value.FuncErr{Msg: name + ": " + msg} }

// Eq implements "eq a b…": true if a equals any of the rest.
func Eq(args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return value.Nil, argErr("eq", "requires at least 2 arguments")
	}
	for _, rhs := range args[1:] {
		if value.Equal(args[0], rhs) {
			return value.NewBool(true), nil
		}
	}
	return value.NewBool(false), nil
}

func requireTwo(name string, args []value.Value) (value.Value, value.Value, error) {
	if len(args) != 2 {
		return value.Nil, value.Nil, argErr(name, "requires exactly 2 arguments")
	}
	return args[0], args[1], nil
}

// Ne implements "ne a b".
func Ne(args []value.Value) (value.Value, error) {
	a, b, err := requireTwo("ne", args)
	if err != nil {
		return value.Nil, err
	}
	return value.NewBool(!value.Equal(a, b)), nil
}

func ordered(name string, args []value.Value, want func(int) bool) (value.Value, error) {
	a, b, err := requireTwo(name, args)
	if err != nil {
		return value.Nil, err
	}
	ord, err := value.Compare(a, b)
	if err != nil {
		return value.Nil, &errs.TypeError{Msg: name + ": " + err.Error()}
	}
	return value.NewBool(want(ord)), nil
}

// Lt implements "lt a b".
func Lt(args []value.Value) (value.Value, error) {
	return ordered("lt", args, func(o int) bool { return o < 0 })
}

// Le implements "le a b".
func Le(args []value.Value) (value.Value, error) {
	return ordered("le", args, func(o int) bool { return o <= 0 })
}

// Gt implements "gt a b".
func Gt(args []value.Value) (value.Value, error) {
	return ordered("gt", args, func(o int) bool { return o > 0 })
}

// Ge implements "ge a b".
func Ge(args []value.Value) (value.Value, error) {
	return ordered("ge", args, func(o int) bool { return o >= 0 })
}

// And implements "and a b…": first falsy argument, or the last. All
// arguments are already evaluated eagerly by the pipeline, matching Go's
// documented non-short-circuiting behavior.
func And(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Nil, argErr("and", "requires at least 1 argument")
	}
	result := args[0]
	for _, a := range args[1:] {
		if !value.Truthy(result) {
			return result, nil
		}
		result = a
	}
	return result, nil
}

// Or implements "or a b…": first truthy argument, or the last.
func Or(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Nil, argErr("or", "requires at least 1 argument")
	}
	result := args[0]
	for _, a := range args[1:] {
		if value.Truthy(result) {
			return result, nil
		}
		result = a
	}
	return result, nil
}

// Not implements "not a".
func Not(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Nil, argErr("not", "requires exactly 1 argument")
	}
	return value.NewBool(!value.Truthy(args[0])), nil
}

// Len implements "len v": byte length for String (not runes, matching
// reflect.Value.Len), element count for Array/Map/Object.
func Len(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Nil, argErr("len", "requires exactly 1 argument")
	}
	n, err := value.Len(args[0])
	if err != nil {
		return value.Nil, err
	}
	return value.NewInt(int64(n)), nil
}

// Index implements "index v k1 k2…": successive indexing.
func Index(args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return value.Nil, argErr("index", "requires a value and at least one key")
	}
	cur := args[0]
	for _, k := range args[1:] {
		v, err := value.Index(cur, k, false)
		if err != nil {
			return value.Nil, err
		}
		cur = v
	}
	return cur, nil
}

// Slice implements "slice v i [j [k]]", analogous to Go's v[i:j:k].
func Slice(args []value.Value) (value.Value, error) {
	if len(args) < 2 || len(args) > 4 {
		return value.Nil, argErr("slice", "requires 2 to 4 arguments")
	}
	v := args[0]
	switch v.Kind() {
	case value.KindArray:
		arr, _ := v.Array()
		lo, hi, err := sliceBounds(args[1:], len(arr))
		if err != nil {
			return value.Nil, err
		}
		out := make([]value.Value, hi-lo)
		copy(out, arr[lo:hi])
		return value.NewArray(out), nil
	case value.KindString:
		if len(args) == 4 {
			return value.Nil, argErr("slice", "cannot 3-index slice a string")
		}
		s, _ := v.String()
		lo, hi, err := sliceBounds(args[1:], len(s))
		if err != nil {
			return value.Nil, err
		}
		return value.NewString(s[lo:hi]), nil
	default:
		return value.Nil, argErr("slice", "cannot slice "+v.Kind().String())
	}
}

func sliceBounds(idx []value.Value, length int) (lo, hi int, err error) {
	lo, hi = 0, length
	nums := make([]int, len(idx))
	for i, v := range idx {
		n, ok := v.NumberValue()
		if !ok {
			return 0, 0, argErr("slice", "index must be numeric")
		}
		nums[i] = n.Int()
	}
	if len(nums) > 0 {
		lo = nums[0]
	}
	if len(nums) > 1 {
		hi = nums[1]
	}
	if lo < 0 || hi < lo || hi > length {
		return 0, 0, argErr("slice", "index out of range")
	}
	// The capacity index does not change rendered output, but its bounds
	// are still checked.
	if len(nums) > 2 && (nums[2] < hi || nums[2] > length) {
		return 0, 0, argErr("slice", "index out of range")
	}
	return lo, hi, nil
}

// Print implements "print …" as fmt.Sprint: a space is inserted between
// adjacent operands only when neither is a string.
func Print(args []value.Value) (value.Value, error) {
	var b strings.Builder
	for i, a := range args {
		if i > 0 && args[i-1].Kind() != value.KindString && a.Kind() != value.KindString {
			b.WriteByte(' ')
		}
		b.WriteString(value.Format(a))
	}
	return value.NewString(b.String()), nil
}

// Println implements "println …" as fmt.Sprintln: space-separated, with a
// trailing newline.
func Println(args []value.Value) (value.Value, error) {
	var b strings.Builder
	for i, a := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(value.Format(a))
	}
	b.WriteByte('\n')
	return value.NewString(b.String()), nil
}

// Printf implements "printf format args…".
func Printf(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Nil, argErr("printf", "requires a format string")
	}
	format, ok := args[0].String()
	if !ok {
		return value.Nil, argErr("printf", "format must be a string")
	}
	out, err := printf.Format(format, args[1:])
	if err != nil {
		return value.Nil, &errs.PrintfError{Msg: err.Error()}
	}
	return value.NewString(out), nil
}

// URLQuery implements "urlquery s" like url.QueryEscape.
func URLQuery(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return value.Nil, argErr("urlquery", "requires exactly 1 argument")
	}
	s, ok := args[0].String()
	if !ok {
		return value.Nil, argErr("urlquery", "requires a string argument")
	}
	return value.NewString(url.QueryEscape(s)), nil
}

// Call implements "call f args…": invokes a Function value.
func Call(args []value.Value) (value.Value, error) {
	if len(args) == 0 {
		return value.Nil, argErr("call", "requires a function argument")
	}
	fn, ok := args[0].Function()
	if !ok {
		return value.Nil, &errs.TypeError{Msg: "call: first argument is not a function, got " + args[0].Kind().String()}
	}
	return fn(args[1:])
}

// HTML fails at evaluation: contextual HTML escaping is not implemented,
// and failing loudly beats silently passing text through unescaped.
func HTML(args []value.Value) (value.Value, error) {
	return value.Nil, &errs.Unimplemented{Feature: "html"}
}

// JS mirrors HTML's non-goal for JS-context escaping.
func JS(args []value.Value) (value.Value, error) {
	return value.Nil, &errs.Unimplemented{Feature: "js"}
}
