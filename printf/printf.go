// Package printf implements the Go fmt verb subset the template printf
// builtin supports. It is deliberately
// not a thin wrapper over fmt.Sprintf: the arguments are value.Value, not
// interface{}, so verb dispatch happens directly against value.Number/
// value.Bool/value.String rather than through reflection.
package printf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fiji-flo/gotemplate/value"
)

// Format renders format against args the way Go's fmt verbs do:
// supported verbs v, b, o, d, x, X, U, e, E, f, F, g, G, s, q, p,
// c, t; flags -, +, space, 0, #; width/precision as digits, '*', or
// omitted. A verb/argument mismatch produces a "%!verb(type=value)"
// marker instead of an error, matching Go's own misuse convention.
func Format(format string, args []value.Value) (string, error) {
	var b strings.Builder
	argi := 0
	nextArg := func() (value.Value, bool) {
		if argi >= len(args) {
			return value.Nil, false
		}
		v := args[argi]
		argi++
		return v, true
	}

	i := 0
	for i < len(format) {
		if format[i] != '%' {
			b.WriteByte(format[i])
			i++
			continue
		}
		i++
		if i >= len(format) {
			b.WriteByte('%')
			break
		}

		flags := map[byte]bool{}
		for i < len(format) && strings.IndexByte("-+ 0#", format[i]) >= 0 {
			flags[format[i]] = true
			i++
		}

		width, hasWidth, err := scanNumOrStar(format, &i, nextArg)
		if err != nil {
			return "", err
		}

		prec, hasPrec := 0, false
		if i < len(format) && format[i] == '.' {
			i++
			hasPrec = true
			prec, _, err = scanNumOrStar(format, &i, nextArg)
			if err != nil {
				return "", err
			}
		}

		if i >= len(format) {
			break
		}
		verb := format[i]
		i++

		if verb == '%' {
			b.WriteByte('%')
			continue
		}

		arg, ok := nextArg()
		if !ok {
			fmt.Fprintf(&b, "%%!%c(MISSING)", verb)
			continue
		}
		b.WriteString(formatVerb(verb, flags, width, hasWidth, prec, hasPrec, arg))
	}

	if argi < len(args) {
		b.WriteString("%!(EXTRA ")
		for i, a := range args[argi:] {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%s", a.Kind(), value.Format(a))
		}
		b.WriteString(")")
	}
	return b.String(), nil
}

func scanNumOrStar(format string, i *int, nextArg func() (value.Value, bool)) (int, bool, error) {
	if *i < len(format) && format[*i] == '*' {
		*i++
		v, ok := nextArg()
		if !ok {
			return 0, false, fmt.Errorf("printf: missing width/precision argument")
		}
		n, ok := v.NumberValue()
		if !ok {
			return 0, false, fmt.Errorf("printf: '*' requires a numeric argument")
		}
		return n.Int(), true, nil
	}
	start := *i
	for *i < len(format) && format[*i] >= '0' && format[*i] <= '9' {
		*i++
	}
	if *i == start {
		return 0, false, nil
	}
	n, _ := strconv.Atoi(format[start:*i])
	return n, true, nil
}

func mismatch(verb byte, arg value.Value) string {
	return fmt.Sprintf("%%!%c(%s=%s)", verb, arg.Kind(), value.Format(arg))
}

func signPrefix(neg bool, flags map[byte]bool) string {
	switch {
	case neg:
		return "-"
	case flags['+']:
		return "+"
	case flags[' ']:
		return " "
	default:
		return ""
	}
}

// intMagnitude splits a Number into a sign and an unsigned magnitude;
// ok is false for a float, which is a mismatch for the integer verbs.
func intMagnitude(n value.Number) (neg bool, mag uint64, ok bool) {
	switch n.Kind {
	case value.NumInt:
		if n.I < 0 {
			return true, uint64(-n.I), true
		}
		return false, uint64(n.I), true
	case value.NumUint:
		return false, n.U, true
	default:
		return false, 0, false
	}
}

func formatVerb(verb byte, flags map[byte]bool, width int, hasWidth bool, prec int, hasPrec bool, arg value.Value) string {
	var core string
	numeric := false

	switch verb {
	case 'v':
		core = formatV(arg)
	case 'd', 'b', 'o', 'x', 'X', 'U':
		n, ok := arg.NumberValue()
		if !ok {
			return mismatch(verb, arg)
		}
		neg, mag, ok := intMagnitude(n)
		if !ok {
			return mismatch(verb, arg)
		}
		core = formatInt(verb, neg, mag, flags, prec, hasPrec)
		numeric = true
	case 'e', 'E', 'f', 'F', 'g', 'G':
		n, ok := arg.NumberValue()
		if !ok {
			return mismatch(verb, arg)
		}
		core = formatFloat(verb, n.Float(), flags, prec, hasPrec)
		numeric = true
	case 's':
		s, ok := arg.String()
		if !ok {
			return mismatch(verb, arg)
		}
		if hasPrec && prec < len(s) {
			s = s[:prec]
		}
		core = s
	case 'q':
		s, ok := arg.String()
		if !ok {
			return mismatch(verb, arg)
		}
		core = strconv.Quote(s)
	case 'c':
		n, ok := arg.NumberValue()
		if !ok {
			return mismatch(verb, arg)
		}
		core = string(rune(n.Int()))
	case 't':
		bv, ok := arg.Bool()
		if !ok {
			return mismatch(verb, arg)
		}
		core = strconv.FormatBool(bv)
	case 'p':
		// The Value model carries no pointer identity to format, so %p
		// always reports a mismatch rather than fabricating an address.
		return mismatch(verb, arg)
	default:
		return fmt.Sprintf("%%!%c(unknown verb)", verb)
	}

	return pad(core, width, hasWidth, flags, numeric && !hasPrec)
}

// formatV renders the generic default form, the same one print uses;
// "+"/"#" are accepted syntactically but fold to the same representation,
// since the value model has no struct field names to expand.
func formatV(arg value.Value) string {
	return value.Format(arg)
}

func formatInt(verb byte, neg bool, mag uint64, flags map[byte]bool, prec int, hasPrec bool) string {
	var digits string
	prefix := ""
	switch verb {
	case 'd':
		digits = strconv.FormatUint(mag, 10)
	case 'b':
		digits = strconv.FormatUint(mag, 2)
	case 'o':
		digits = strconv.FormatUint(mag, 8)
		if flags['#'] && mag != 0 {
			prefix = "0"
		}
	case 'x':
		digits = strconv.FormatUint(mag, 16)
		if flags['#'] && mag != 0 {
			prefix = "0x"
		}
	case 'X':
		digits = strings.ToUpper(strconv.FormatUint(mag, 16))
		if flags['#'] && mag != 0 {
			prefix = "0X"
		}
	case 'U':
		hex := strings.ToUpper(strconv.FormatUint(mag, 16))
		for len(hex) < 4 {
			hex = "0" + hex
		}
		return "U+" + hex
	}
	if hasPrec {
		for len(digits) < prec {
			digits = "0" + digits
		}
		if prec == 0 && mag == 0 {
			digits = ""
		}
	}
	return signPrefix(neg, flags) + prefix + digits
}

func formatFloat(verb byte, f float64, flags map[byte]bool, prec int, hasPrec bool) string {
	fverb := verb
	upper := false
	if verb == 'F' {
		fverb = 'f'
		upper = true
	}
	// fmt's default precision is 6 for e/E/f/F when none is given; only
	// g/G default to the shortest round-trippable representation.
	p := -1
	if hasPrec {
		p = prec
	} else if fverb == 'f' || fverb == 'e' || fverb == 'E' {
		p = 6
	}
	s := strconv.FormatFloat(f, fverb, p, 64)
	if upper {
		s = strings.ToUpper(s)
	}
	if f >= 0 {
		s = signPrefix(false, flags) + s
	}
	return s
}

// pad applies width justification: left-justified with spaces when '-' is
// set, zero-filled after any sign when '0' is set on a numeric verb with
// no explicit precision, space-filled otherwise.
func pad(core string, width int, hasWidth bool, flags map[byte]bool, zeroOK bool) string {
	if !hasWidth || len(core) >= width {
		return core
	}
	padLen := width - len(core)
	switch {
	case flags['-']:
		return core + strings.Repeat(" ", padLen)
	case flags['0'] && zeroOK:
		sign := ""
		rest := core
		if len(core) > 0 && (core[0] == '-' || core[0] == '+' || core[0] == ' ') {
			sign, rest = string(core[0]), core[1:]
		}
		return sign + strings.Repeat("0", padLen) + rest
	default:
		return strings.Repeat(" ", padLen) + core
	}
}
