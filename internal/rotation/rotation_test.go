package rotation

import (
	"testing"
	"time"
)

var t0 = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func TestSequence(t *testing.T) {
	seq := Sequence([]string{"Frota", "Operação - Salvador"})
	want := []string{Overview, "Frota", "Operação - Salvador"}
	if len(seq) != len(want) {
		t.Fatalf("got %d entries, want %d", len(seq), len(want))
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Errorf("seq[%d] = %q, want %q", i, seq[i], want[i])
		}
	}
}

func TestSequenceNoTeams(t *testing.T) {
	seq := Sequence(nil)
	if len(seq) != 1 || seq[0] != Overview {
		t.Errorf("seq = %v, want only the overview", seq)
	}
}

func TestAdvanceInitializesZeroState(t *testing.T) {
	s, redraw := Advance(State{}, t0, 3, 15*time.Second)
	if redraw {
		t.Error("initializing a zero state must not trigger a redraw")
	}
	if s.Index != 0 || !s.LastRotation.Equal(t0) {
		t.Errorf("state = %+v, want index 0 anchored at t0", s)
	}
}

func TestAdvanceBeforeInterval(t *testing.T) {
	s0 := State{Index: 1, LastRotation: t0}
	s, redraw := Advance(s0, t0.Add(14*time.Second), 3, 15*time.Second)
	if redraw {
		t.Error("redraw before the interval elapsed")
	}
	if s != s0 {
		t.Errorf("state = %+v, want unchanged %+v", s, s0)
	}
}

func TestAdvanceAfterInterval(t *testing.T) {
	s0 := State{Index: 1, LastRotation: t0}
	now := t0.Add(15 * time.Second)
	s, redraw := Advance(s0, now, 3, 15*time.Second)
	if !redraw {
		t.Error("no redraw after the interval elapsed")
	}
	if s.Index != 2 || !s.LastRotation.Equal(now) {
		t.Errorf("state = %+v, want index 2 anchored at now", s)
	}
}

func TestAdvanceWrapsAround(t *testing.T) {
	s := State{LastRotation: t0}
	now := t0
	for i := range 3 {
		now = now.Add(15 * time.Second)
		var redraw bool
		s, redraw = Advance(s, now, 3, 15*time.Second)
		if !redraw {
			t.Fatalf("step %d: expected redraw", i)
		}
	}
	if s.Index != 0 {
		t.Errorf("index after full cycle = %d, want 0", s.Index)
	}
}

func TestAdvanceClampsStaleIndex(t *testing.T) {
	// A team disappearing between refreshes can leave the index out of range.
	s, _ := Advance(State{Index: 5, LastRotation: t0}, t0.Add(time.Second), 3, 15*time.Second)
	if s.Index != 2 {
		t.Errorf("index = %d, want 5 %% 3 = 2", s.Index)
	}
}

func TestAdvanceEmptySequence(t *testing.T) {
	s0 := State{Index: 1, LastRotation: t0}
	s, redraw := Advance(s0, t0.Add(time.Hour), 0, 15*time.Second)
	if redraw || s != s0 {
		t.Errorf("empty sequence must be a no-op, got %+v redraw=%v", s, redraw)
	}
}

func TestRemaining(t *testing.T) {
	s := State{LastRotation: t0}
	if got := Remaining(s, t0.Add(5*time.Second), 15*time.Second); got != 10*time.Second {
		t.Errorf("Remaining() = %v, want 10s", got)
	}
	if got := Remaining(s, t0.Add(time.Minute), 15*time.Second); got != 0 {
		t.Errorf("Remaining() past due = %v, want 0", got)
	}
}

func TestNext(t *testing.T) {
	seq := []string{Overview, "Frota"}
	if got := Next(seq, 0); got != "Frota" {
		t.Errorf("Next(0) = %q", got)
	}
	if got := Next(seq, 1); got != Overview {
		t.Errorf("Next(1) = %q, want wrap to overview", got)
	}
	if got := Next(nil, 0); got != "" {
		t.Errorf("Next(nil) = %q, want empty", got)
	}
}
