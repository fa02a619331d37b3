package builtin

import (
	"math"
	"testing"
)

func TestCoerceFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{"4.21", 4.21, true},
		{" 3,96 ", 3.96, true},
		{"1,234.5", 1234.5, true},
		{float64(4), 4, true},
		{7, 7, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, tc := range tests {
		got := CoerceFloat(tc.in)
		if (got != nil) != tc.ok {
			t.Fatalf("CoerceFloat(%#v) ok=%v, want %v", tc.in, got != nil, tc.ok)
		}
		if got != nil && math.Abs(*got-tc.want) > 1e-9 {
			t.Fatalf("CoerceFloat(%#v) = %v, want %v", tc.in, *got, tc.want)
		}
	}
}

func TestCoerceInt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want int64
		ok   bool
	}{
		{"1234", 1234, true},
		{"1,234", 1234, true},
		{"12 345", 12345, true},
		{"123.0", 123, true},
		{float64(9), 9, true},
		{5, 5, true},
		{"12.5", 0, false},
		{float64(1.5), 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{nil, 0, false},
		{"Inf", 0, false},
	}
	for _, tc := range tests {
		got := CoerceInt(tc.in)
		if (got != nil) != tc.ok {
			t.Fatalf("CoerceInt(%#v) ok=%v, want %v", tc.in, got != nil, tc.ok)
		}
		if got != nil && *got != tc.want {
			t.Fatalf("CoerceInt(%#v) = %d, want %d", tc.in, *got, tc.want)
		}
	}
}
