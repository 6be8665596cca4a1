package datapipe

import (
	"testing"
)

func TestExecute_FIFOOrder(t *testing.T) {
	p := New("order", 0)

	p.AddFilter(func(v int) int { return v + 1 })
	p.AddFilter(func(v int) int { return v * 10 })

	var got []int
	p.AddTrigger(func(v int) { got = append(got, v) })
	p.AddTrigger(func(v int) { got = append(got, v+1) })

	out := p.Execute(4, false)
	// (4+1)*10, not (4*10)+1
	if out != 50 {
		t.Fatalf("filter order: got %d, want 50", out)
	}
	if len(got) != 2 || got[0] != 50 || got[1] != 51 {
		t.Fatalf("trigger order: got %v, want [50 51]", got)
	}
}

func TestExecute_CacheSemantics(t *testing.T) {
	p := New("cache", 3)

	p.AddFilter(func(v int) int { return v * 2 })

	if out := p.Execute(5, true); out != 10 {
		t.Fatalf("output = %d, want 10", out)
	}
	// Cache holds the input, not the filtered output.
	if p.Cached() != 5 {
		t.Fatalf("cached = %d, want 5", p.Cached())
	}

	if out := p.Execute(7, false); out != 14 {
		t.Fatalf("output = %d, want 14", out)
	}
	if p.Cached() != 5 {
		t.Fatalf("cached changed by non-caching execute: %d", p.Cached())
	}

	if out := p.ExecuteCached(); out != 10 {
		t.Fatalf("ExecuteCached = %d, want 10", out)
	}
}

func TestExecute_NoFiltersIsIdentity(t *testing.T) {
	p := New("identity", 0)
	var seen int
	p.AddTrigger(func(v int) { seen = v })
	if out := p.Execute(42, true); out != 42 || seen != 42 {
		t.Fatalf("identity pass-through: out=%d seen=%d", out, seen)
	}
}

func TestReplay_TriggersOnlyWithCachedValue(t *testing.T) {
	p := New("replay", 9)
	p.AddFilter(func(v int) int { return v + 100 })
	var seen []int
	p.AddTrigger(func(v int) { seen = append(seen, v) })

	p.Replay()
	if len(seen) != 1 || seen[0] != 9 {
		t.Fatalf("replay skipped filters: got %v, want [9]", seen)
	}
}

func TestRemove_Idempotent(t *testing.T) {
	p := New("remove", 0)
	h := p.AddFilter(func(v int) int { return v + 1 })
	h.Remove()
	h.Remove()
	if out := p.Execute(1, false); out != 1 {
		t.Fatalf("removed filter still ran: %d", out)
	}

	var fired int
	th := p.AddTrigger(func(int) { fired++ })
	th.Remove()
	th.Remove()
	p.Execute(1, false)
	if fired != 0 {
		t.Fatalf("removed trigger still fired %d times", fired)
	}
}

func TestRemove_DuringExecute(t *testing.T) {
	p := New("mid-flight", 0)

	var later *TriggerHandle[int]
	var fired []string
	p.AddTrigger(func(int) {
		fired = append(fired, "first")
		later.Remove()
	})
	later = p.AddTrigger(func(int) { fired = append(fired, "second") })

	p.Execute(0, false)
	if len(fired) != 1 || fired[0] != "first" {
		t.Fatalf("trigger removed mid-flight still ran: %v", fired)
	}
}

func TestReentrantExecute_GuardedByCacheComparison(t *testing.T) {
	a := New("a", 0)
	b := New("b", 0)

	// A trigger on a feeds b; a trigger on b feeds a, guarded against
	// feedback by comparing with the cached value.
	var hops int
	a.AddTrigger(func(v int) {
		hops++
		if hops > 10 {
			t.Fatal("runaway recursion")
		}
		if v != b.Cached() {
			b.Execute(v, true)
		}
	})
	b.AddTrigger(func(v int) {
		if v != a.Cached() {
			a.Execute(v, true)
		}
	})

	a.Execute(7, true)
	if a.Cached() != 7 || b.Cached() != 7 {
		t.Fatalf("values did not settle: a=%d b=%d", a.Cached(), b.Cached())
	}
	if hops != 1 {
		t.Fatalf("expected a single hop before settling, got %d", hops)
	}
}
