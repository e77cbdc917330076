// Package gen produces note charts deterministically in half-open
// windows. All randomness is a keyed hash of (seed, slot index), never
// a stateful PRNG, so generating [0,60) equals generating [0,30) then
// [30,60) for the same identity.
package gen

import (
	"errors"
	"math"

	"git.lost.host/meutraa/stepway/internal/game"
	"git.lost.host/meutraa/stepway/internal/tempo"
)

// Version is the running generator version. Cached charts written by a
// different version are never reused.
const Version = 1

var ErrInvalidWindow = errors.New("gen: invalid generation window")

// Window is a half-open time span [Start, End).
type Window struct {
	Start float64
	End   float64
}

func (w Window) valid() bool {
	return !math.IsNaN(w.Start) && !math.IsNaN(w.End) && w.End > w.Start && w.Start >= 0
}

// State is the lane-walk cursor of a rolling chart. A zero-equivalent
// state (from ZeroState) replays from the first slot; the engine keeps
// the state returned by Resume so contiguous windows cost one pass.
type State struct {
	slot int64 // next ungenerated slot index
	lane int   // last assigned lane
	prev int   // lane before that
	run  int   // consecutive notes in the current lane
}

func ZeroState() State {
	return State{lane: -1, prev: -1}
}

// Position is the song time of the first slot the state has not
// generated yet.
func (s State) Position(m tempo.Model) float64 {
	return float64(s.slot) * m.SecondsPerSlot()
}

// Generate returns all notes with time in the window, sorted by time
// with ties broken by lane. Pure: identical arguments yield identical
// output. Internally it replays the lane walk from slot zero so that
// arbitrary windows stay consistent with each other.
func Generate(id game.ChartIdentity, m tempo.Model, curve Curve, win Window) ([]game.Note, error) {
	if !win.valid() {
		return nil, ErrInvalidWindow
	}
	if curve == nil {
		curve = Flat{}
	}
	d := game.Lookup(id.Difficulty)
	notes, _ := advance(ZeroState(), id.Seed, m.SecondsPerSlot(), d, curve, win.Start, win.End)
	return notes, nil
}

// Resume continues a lane walk up to (not including) until, emitting
// every note from the state's current position. The engine guarantees
// successive calls are contiguous and never overlap.
func Resume(st State, id game.ChartIdentity, m tempo.Model, curve Curve, until float64) ([]game.Note, State, error) {
	sps := m.SecondsPerSlot()
	pos := float64(st.slot) * sps
	if math.IsNaN(until) || until <= pos {
		return nil, st, ErrInvalidWindow
	}
	if curve == nil {
		curve = Flat{}
	}
	d := game.Lookup(id.Difficulty)
	notes, next := advance(st, id.Seed, sps, d, curve, 0, until)
	return notes, next, nil
}

func advance(st State, seed uint64, sps float64, d game.Difficulty, curve Curve, emitFrom, until float64) ([]game.Note, State) {
	var notes []game.Note
	for {
		t := float64(st.slot) * sps
		if t >= until {
			break
		}
		slot := st.slot
		st.slot++

		if roll(seed, slot, saltSelect) >= d.Density*curve.At(t) {
			continue
		}

		lane := pickLane(&st, seed, slot, d)
		if lane == st.lane {
			st.run++
		} else {
			st.prev = st.lane
			st.lane = lane
			st.run = 1
		}

		if t < emitFrom {
			// Lane history still advances for slots before the window.
			continue
		}

		if d.Doubles && roll(seed, slot, saltDouble) < d.DoubleRate {
			second := differentLane(seed, slot, saltDoubleLane, lane)
			lo, hi := lane, second
			if hi < lo {
				lo, hi = hi, lo
			}
			notes = append(notes,
				game.Note{Time: t, Lane: lo, Kind: game.KindTap},
				game.Note{Time: t, Lane: hi, Kind: game.KindTap})
			continue
		}
		notes = append(notes, game.Note{Time: t, Lane: lane, Kind: game.KindTap})
	}
	return notes, st
}

// pickLane applies the playability constraints in order: run cap,
// jack chance, opposite-lane ping-pong penalty.
func pickLane(st *State, seed uint64, slot int64, d game.Difficulty) int {
	if st.lane < 0 {
		return int(mix(seed, key(slot, saltLane)) % game.LaneCount)
	}

	if st.run < d.MaxRun && roll(seed, slot, saltJack) < d.JackChance {
		return st.lane
	}

	cand := differentLane(seed, slot, saltLane, st.lane)
	if cand == st.prev && oppositeLanes(cand, st.lane) && roll(seed, slot, saltOpp) < d.OppPenalty {
		cand = (cand + 1) % game.LaneCount
		if cand == st.lane {
			cand = (cand + 1) % game.LaneCount
		}
	}
	return cand
}

func differentLane(seed uint64, slot int64, salt uint64, avoid int) int {
	offset := int(mix(seed, key(slot, salt)) % uint64(game.LaneCount-1))
	return (avoid + 1 + offset) % game.LaneCount
}

// oppositeLanes pairs left/right and up/down on a 4-panel pad.
func oppositeLanes(a, b int) bool {
	return a+b == game.LaneCount-1
}
