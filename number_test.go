package objmodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// addAtRunTime adds at run time; a constant expression would be folded exactly.
func addAtRunTime(a, b float64) float64 { return a + b }

func TestNumberToString(t *testing.T) {
	assert := assert.New(t)
	for _, tt := range []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{negZero(), "0"},
		{1, "1"},
		{-42, "-42"},
		{0.1, "0.1"},
		{1.5, "1.5"},
		{123456789012, "123456789012"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1.5e21, "1.5e+21"},
		{0.000001, "0.000001"},
		{0.0000001, "1e-7"},
		{1.2345e-7, "1.2345e-7"},
		{addAtRunTime(0.1, 0.2), "0.30000000000000004"},
		{math.MaxFloat64, "1.7976931348623157e+308"},
		{5e-324, "5e-324"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	} {
		assert.Equal(tt.want, NumberToString(tt.in), "NumberToString(%v)", tt.in)
	}
}

func TestStringToNumber(t *testing.T) {
	assert := assert.New(t)
	for _, tt := range []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"\u00a0\t12\n", 12},
		{"\u2028-3.5\ufeff", -3.5},
		{"+.5", 0.5},
		{"5.", 5},
		{"1e3", 1000},
		{"1E-2", 0.01},
		{"0x10", 16},
		{"0XfF", 255},
		{"0o17", 15},
		{"0b101", 5},
		{"Infinity", math.Inf(1)},
		{"+Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"1e400", math.Inf(1)},
		{"0x1fffffffffffff1", 0x1fffffffffffff1},
	} {
		assert.Equal(tt.want, StringToNumber(tt.in), "StringToNumber(%q)", tt.in)
	}

	for _, in := range []string{"abc", "1a", ".", "e5", "1e", "-0x10", "0x", "0b2", "infinity", "1_000", "--1", "NaN"} {
		assert.True(math.IsNaN(StringToNumber(in)), "StringToNumber(%q) should be NaN", in)
	}

	assert.True(math.Signbit(StringToNumber("-0")))
}

func TestStringLength(t *testing.T) {
	assert.Equal(t, 0, StringLength(""))
	assert.Equal(t, 3, StringLength("abc"))
	assert.Equal(t, 1, StringLength("€"))
	assert.Equal(t, 2, StringLength("😀"))
}
