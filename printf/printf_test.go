package printf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiji-flo/gotemplate/value"
)

func TestFormatVerbs(t *testing.T) {
	tests := []struct {
		name   string
		format string
		args   []value.Value
		want   string
	}{
		{"zero-pad int", "%05d", []value.Value{value.NewInt(42)}, "00042"},
		{"left-justify", "%-5d|", []value.Value{value.NewInt(3)}, "3    |"},
		{"plus sign", "%+d", []value.Value{value.NewInt(3)}, "+3"},
		{"hex lower", "%x", []value.Value{value.NewInt(255)}, "ff"},
		{"hex upper with prefix", "%#X", []value.Value{value.NewInt(255)}, "0XFF"},
		{"octal with prefix", "%#o", []value.Value{value.NewInt(8)}, "010"},
		{"binary", "%b", []value.Value{value.NewInt(5)}, "101"},
		{"string", "%s", []value.Value{value.NewString("hi")}, "hi"},
		{"quoted string", "%q", []value.Value{value.NewString("hi")}, `"hi"`},
		{"bool", "%t", []value.Value{value.NewBool(true)}, "true"},
		{"float default precision", "%f", []value.Value{value.NewFloat(3.14)}, "3.140000"},
		{"float precision 2", "%.2f", []value.Value{value.NewFloat(3.14159)}, "3.14"},
		{"percent literal", "100%%", nil, "100%"},
		{"multiple args", "%s=%d", []value.Value{value.NewString("x"), value.NewInt(1)}, "x=1"},
		{"unicode", "%U", []value.Value{value.NewInt(65)}, "U+0041"},
		{"verb mismatch", "%d", []value.Value{value.NewString("x")}, "%!d(string=x)"},
		{"pointer verb unsupported", "%p", []value.Value{value.NewInt(7)}, "%!p(number=7)"},
		{"width star", "%*d", []value.Value{value.NewInt(5), value.NewInt(7)}, "    7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Format(tt.format, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestFormatMissingArgument(t *testing.T) {
	out, err := Format("%d %d", []value.Value{value.NewInt(1)})
	require.NoError(t, err)
	assert.Equal(t, "1 %!d(MISSING)", out)
}

func TestFormatExtraArguments(t *testing.T) {
	out, err := Format("%d", []value.Value{value.NewInt(1), value.NewInt(2)})
	require.NoError(t, err)
	assert.Contains(t, out, "%!(EXTRA")
}
