package value

import (
	"fmt"
	"math"
)

// Equal reports whether a and b are equal: numbers compare across
// i64/u64/f64 in a unified space (NaN never equals anything, including
// itself), strings compare byte-wise, bools compare by value, and values
// of different kinds are never equal.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindString:
		return a.s == b.s
	case KindNumber:
		ord, ok := compareNumbers(a.n, b.n)
		return ok && ord == 0
	default:
		return false
	}
}

// Compare orders a and b for lt/le/gt/ge, returning -1, 0, or +1 like
// strings.Compare. Only numbers and strings are ordered; any other kind
// (or a kind mismatch) is an error.
func Compare(a, b Value) (int, error) {
	if a.kind == KindNumber && b.kind == KindNumber {
		ord, ok := compareNumbers(a.n, b.n)
		if !ok {
			return 0, fmt.Errorf("incomparable values (NaN)")
		}
		return ord, nil
	}
	if a.kind == KindString && b.kind == KindString {
		switch {
		case a.s < b.s:
			return -1, nil
		case a.s > b.s:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return 0, fmt.Errorf("incomparable types: %s, %s", a.Kind(), b.Kind())
}

// compareNumbers compares across representations: if either operand is a
// float, both compare as floats; otherwise comparison is sign-aware, so a
// negative i64 is always less than any u64 and equal-magnitude i64/u64
// compare equal.
func compareNumbers(a, b Number) (int, bool) {
	if a.Kind == NumFloat || b.Kind == NumFloat {
		af, bf := asFloat(a), asFloat(b)
		if math.IsNaN(af) || math.IsNaN(bf) {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if a.Kind == NumInt && b.Kind == NumInt {
		return cmpInt64(a.I, b.I), true
	}
	if a.Kind == NumUint && b.Kind == NumUint {
		return cmpUint64(a.U, b.U), true
	}
	// mixed signed/unsigned
	var i int64
	var u uint64
	var iFirst bool
	if a.Kind == NumInt {
		i, u, iFirst = a.I, b.U, true
	} else {
		i, u, iFirst = b.I, a.U, false
	}
	if i < 0 {
		// negative i64 is less than any u64
		if iFirst {
			return -1, true
		}
		return 1, true
	}
	ord := cmpUint64(uint64(i), u)
	if !iFirst {
		ord = -ord
	}
	return ord, true
}

func asFloat(n Number) float64 {
	switch n.Kind {
	case NumInt:
		return float64(n.I)
	case NumUint:
		return float64(n.U)
	default:
		return n.F
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
