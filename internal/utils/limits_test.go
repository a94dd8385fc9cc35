package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"42", 0, 42},
		{"", 10, 10},
		{"x", 5, 5},
		{"-3", 0, -3},
		{"3.5", 7, 7},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Errorf("AtoiDefault(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct {
		n, max, want int
	}{
		{10, 500, 10},
		{0, 500, 500},
		{-1, 500, 500},
		{501, 500, 500},
		{500, 500, 500},
		{10, 0, 10}, // no cap configured
	}
	for _, tc := range cases {
		if got := ClampLimit(tc.n, tc.max); got != tc.want {
			t.Errorf("ClampLimit(%d, %d) = %d, want %d", tc.n, tc.max, got, tc.want)
		}
	}
}
