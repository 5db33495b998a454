package reconcile

import "testing"

func TestChildPath(t *testing.T) {
	cases := []struct {
		base     string
		platform string
		want     string
	}{
		{"/target", "site", "/target/site"},
		{"/target", "a/b/c.txt", "/target/a/b/c.txt"},
		{"/target", "", "/target"},
		{"/target", "a//b", "/target/a/b"},
		{"/", "x", "/x"},
	}

	for _, c := range cases {
		got := ChildPath(c.base, c.platform)
		if got != c.want {
			t.Errorf("ChildPath(%q, %q) = %q, expected %q", c.base, c.platform, got, c.want)
		}
	}
}
