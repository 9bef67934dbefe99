// Package rotation holds the pure state machine behind the unattended
// display carousel. The host owns the state and the clock; nothing here
// reads wall time or knows how a redraw happens.
package rotation

import "time"

// Overview is the pseudo-team shown before the per-team boards.
const Overview = "Visão Geral"

// State is the carousel position: which entry of the team sequence is
// showing and when it last changed.
type State struct {
	Index        int       `json:"index"`
	LastRotation time.Time `json:"last_rotation"`
}

// Sequence is the full display cycle: Overview first, then the teams in the
// order given (callers pass them sorted).
func Sequence(teams []string) []string {
	seq := make([]string, 0, len(teams)+1)
	seq = append(seq, Overview)
	return append(seq, teams...)
}

// Advance evaluates the carousel against now. When the interval has elapsed
// the index moves forward modulo count and the second return is true,
// telling the host to redraw immediately. Otherwise the state comes back
// unchanged (except for initialization of a zero state).
func Advance(s State, now time.Time, count int, interval time.Duration) (State, bool) {
	if count <= 0 {
		return s, false
	}
	s.Index %= count
	if s.LastRotation.IsZero() {
		s.LastRotation = now
		return s, false
	}
	if now.Sub(s.LastRotation) < interval {
		return s, false
	}
	s.Index = (s.Index + 1) % count
	s.LastRotation = now
	return s, true
}

// Remaining is the time left before the next rotation, floored at zero.
func Remaining(s State, now time.Time, interval time.Duration) time.Duration {
	left := interval - now.Sub(s.LastRotation)
	if left < 0 {
		return 0
	}
	return left
}

// Next is the sequence entry after index, wrapping around.
func Next(seq []string, index int) string {
	if len(seq) == 0 {
		return ""
	}
	return seq[(index+1)%len(seq)]
}
