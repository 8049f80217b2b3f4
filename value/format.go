package value

import "strconv"

func fmtInt(i int64) string { return strconv.FormatInt(i, 10) }
func fmtUint(u uint64) string { return strconv.FormatUint(u, 10) }
func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// Format renders v the way the default action/print formatter does: Nil
// renders as "<nil>" (matching fmt.Sprint(nil)), Bool is true/false,
// Number is decimal, String is raw, Array/Map/Object use Go's %v bracket
// form.
func Format(v Value) string {
	switch v.kind {
	case KindNil:
		return "<nil>"
	case KindBool:
		if bool(v.b) {
			return "true"
		}
		return "false"
	case KindString:
		return v.s
	case KindNumber:
		switch v.n.Kind {
		case NumInt:
			return fmtInt(v.n.I)
		case NumUint:
			return fmtUint(v.n.U)
		default:
			return fmtFloat(v.n.F)
		}
	case KindArray:
		var b []byte
		b = append(b, '[')
		for i, item := range v.a {
			if i > 0 {
				b = append(b, ' ')
			}
			b = append(b, Format(item)...)
		}
		b = append(b, ']')
		return string(b)
	case KindMap:
		var b []byte
		b = append(b, "map["...)
		keys := SortedMapKeys(v.m)
		for i, k := range keys {
			if i > 0 {
				b = append(b, ' ')
			}
			b = append(b, k...)
			b = append(b, ':')
			b = append(b, Format(v.m[k])...)
		}
		b = append(b, ']')
		return string(b)
	case KindObject:
		var b []byte
		b = append(b, '{')
		keys := v.o.Keys()
		for i, k := range keys {
			if i > 0 {
				b = append(b, ' ')
			}
			fv, _ := v.o.Field(k)
			b = append(b, Format(fv)...)
		}
		b = append(b, '}')
		return string(b)
	case KindFunction:
		return "<function>"
	default:
		return ""
	}
}
