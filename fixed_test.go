package swiftflat

import (
	"testing"

	"github.com/oleg578/swiftflat/schema"
)

func TestTrimPad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		field   string
		pad     rune
		align   schema.Alignment
		numeric bool
		want    string
	}{
		{name: "leftTrimsTrailing", field: "  ab  ", pad: ' ', align: schema.Left, want: "  ab"},
		{name: "rightTrimsLeading", field: "  ab  ", pad: ' ', align: schema.Right, want: "ab  "},
		{name: "centerTrimsBoth", field: "  ab  ", pad: ' ', align: schema.Center, want: "ab"},
		{name: "zeroPaddedNumber", field: "0000123", pad: '0', align: schema.Right, numeric: true, want: "123"},
		{name: "allZeroNumber", field: "0000000", pad: '0', align: schema.Right, numeric: true, want: "0"},
		{name: "allZeroText", field: "0000000", pad: '0', align: schema.Right, want: ""},
		{name: "allPadNumber", field: "     ", pad: ' ', align: schema.Right, numeric: true, want: ""},
		{name: "negativeZeroPadded", field: "-000123", pad: '0', align: schema.Right, numeric: true, want: "-000123"},
		{name: "customPad", field: "**x**", pad: '*', align: schema.Center, want: "x"},
		{name: "emptyField", field: "", pad: '0', align: schema.Right, numeric: true, want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := trimPad(tc.field, tc.pad, tc.align, tc.numeric); got != tc.want {
				t.Fatalf("trimPad(%q) = %q, want %q", tc.field, got, tc.want)
			}
		})
	}
}

func TestFit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		width   int
		pad     rune
		align   schema.Alignment
		numeric bool
		want    string
	}{
		{name: "left", text: "ab", width: 5, pad: ' ', align: schema.Left, want: "ab   "},
		{name: "right", text: "ab", width: 5, pad: ' ', align: schema.Right, want: "   ab"},
		{name: "center", text: "ab", width: 5, pad: '.', align: schema.Center, want: ".ab.."},
		{name: "zeroPadded", text: "123", width: 7, pad: '0', align: schema.Right, numeric: true, want: "0000123"},
		{name: "negativeZeroPadded", text: "-123", width: 7, pad: '0', align: schema.Right, numeric: true, want: "-000123"},
		{name: "negativeSpacePadded", text: "-123", width: 7, pad: ' ', align: schema.Right, numeric: true, want: "   -123"},
		{name: "exact", text: "abc", width: 3, pad: ' ', align: schema.Right, want: "abc"},
		{name: "cutLeft", text: "abcdef", width: 3, pad: ' ', align: schema.Left, want: "abc"},
		{name: "cutRight", text: "abcdef", width: 3, pad: ' ', align: schema.Right, want: "def"},
		{name: "multibytePad", text: "x", width: 3, pad: '·', align: schema.Center, want: "·x·"},
		{name: "zeroWidth", text: "abc", width: 0, pad: ' ', align: schema.Left, want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := fit(tc.text, tc.width, tc.pad, tc.align, tc.numeric); got != tc.want {
				t.Fatalf("fit(%q, %d) = %q, want %q", tc.text, tc.width, got, tc.want)
			}
		})
	}
}
