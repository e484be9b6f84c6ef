package notation

import "testing"

func TestResolveSingleFragments(t *testing.T) {
	cases := []struct {
		ticks int
		want  string
	}{
		{384, "1"},
		{576, "1."},
		{288, "2."},
		{96, "4"},
		{144, "4."},
		{48, "8"},
		{64, "6"},
		{6, "64"},
		{9, "64."},
		{8, "48"},
	}
	for _, c := range cases {
		frags, ok := Resolve(c.ticks)
		if !ok {
			t.Fatalf("%d: expected resolution", c.ticks)
		}
		if got := Notation(frags); got != c.want {
			t.Fatalf("%d: expected %s, got %s", c.ticks, c.want, got)
		}
	}
}

func TestResolveTooShort(t *testing.T) {
	for ticks := -1; ticks <= 5; ticks++ {
		if frags, ok := Resolve(ticks); ok {
			t.Fatalf("%d: expected failure, got %s", ticks, Notation(frags))
		}
	}
}

func TestResolveSumsExactly(t *testing.T) {
	for ticks := 6; ticks <= 768; ticks++ {
		frags, ok := Resolve(ticks)
		if !ok {
			t.Fatalf("%d: expected resolution", ticks)
		}
		sum := 0
		for _, f := range frags {
			if f.Length < 1 || f.Length > 64 {
				t.Fatalf("%d: fragment length %d out of range", ticks, f.Length)
			}
			sum += f.Ticks
		}
		if sum != ticks {
			t.Fatalf("%d: fragments %s sum to %d", ticks, Notation(frags), sum)
		}
	}
}

func TestResolvePrefersFewerFragments(t *testing.T) {
	frags, ok := Resolve(480)
	if !ok {
		t.Fatalf("expected resolution")
	}
	if len(frags) != 2 {
		t.Fatalf("expected 2 fragments for 480 ticks, got %s", Notation(frags))
	}
}

func TestCandidatesDistinct(t *testing.T) {
	seen := map[int]bool{}
	for i, f := range candidates {
		if seen[f.Ticks] {
			t.Fatalf("duplicate candidate tick %d", f.Ticks)
		}
		seen[f.Ticks] = true
		if i > 0 && candidates[i-1].Ticks <= f.Ticks {
			t.Fatalf("candidates not sorted descending at %d", i)
		}
	}
}
