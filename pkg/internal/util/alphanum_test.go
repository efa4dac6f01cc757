package util

import "testing"

func TestAlphanumCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"v9", "v10", true},
		{"v10", "v9", false},
		{"sf_15", "sf_16", true},
		{"sf_15.1", "sf_15.10", true},
		{"1.9.0", "1.10.0", true},
		{"alpha", "beta", true},
		{"beta", "alpha", false},
		{"v1", "v1.1", true},
		{"v1.1", "v1", false},
		{"v2", "v2", true},
	}

	for _, c := range cases {
		if got := AlphanumCompare(c.a, c.b); got != c.want {
			t.Fatalf(
				"expected AlphanumCompare(%q, %q) to be %v, got %v",
				c.a, c.b, c.want, got,
			)
		}
	}
}
