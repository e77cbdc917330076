// Package sched keeps a lookahead buffer of notes synchronized to song
// time. Its invariant: after a poll, every note the chart source can
// provide for [song_time, song_time+lookahead) is buffered.
package sched

import (
	"sync"

	"git.lost.host/meutraa/stepway/internal/engine"
	"git.lost.host/meutraa/stepway/internal/game"
)

// Note is a scheduled note plus its judgement state.
type Note struct {
	game.Note
	Judged bool
	Tier   int
	Delta  float64
}

type Scheduler struct {
	mu        sync.Mutex
	src       engine.ChartSource
	lookahead float64
	retain    float64 // judge window max; older judged notes evict

	notes   []*Note
	horizon float64
	polled  bool
}

func New(src engine.ChartSource, lookahead, judgeWindowMax float64) *Scheduler {
	return &Scheduler{src: src, lookahead: lookahead, retain: judgeWindowMax}
}

// Poll extends coverage and the buffer through song_time + lookahead
// and evicts judged notes that have fallen behind the judge window.
// Called at the host's render cadence; it never self-times.
func (s *Scheduler) Poll(songTime float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.polled {
		// Delivery starts where playback is, not at the chart head, so
		// a mid-song start does not flood the judge with stale misses.
		s.horizon = songTime - s.retain
		if s.horizon < 0 {
			s.horizon = 0
		}
		s.polled = true
	}

	target := songTime + s.lookahead
	if err := s.src.EnsureCoverage(target); nil != err {
		return err
	}

	if target > s.horizon {
		for _, n := range s.src.Notes(s.horizon, target) {
			s.notes = append(s.notes, &Note{Note: n})
		}
		s.horizon = target
	}

	evictBefore := songTime - s.retain
	drop := 0
	for drop < len(s.notes) && s.notes[drop].Judged && s.notes[drop].Time < evictBefore {
		drop++
	}
	if drop > 0 {
		s.notes = append([]*Note(nil), s.notes[drop:]...)
	}
	return nil
}

// Buffered returns scheduled notes with time in [from, to).
func (s *Scheduler) Buffered(from, to float64) []*Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*Note{}
	for _, n := range s.notes {
		if n.Time < from {
			continue
		}
		if n.Time >= to {
			break
		}
		out = append(out, n)
	}
	return out
}

// NearestUnjudged finds the closest unjudged note in a lane within the
// window around the target time. Ties keep the earlier note: notes are
// scanned in time order and replaced only on a strictly smaller
// distance.
func (s *Scheduler) NearestUnjudged(lane int, target, window float64) *Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	var closest *Note
	best := window
	for _, n := range s.notes {
		if n.Time > target+window {
			break
		}
		if n.Judged || n.Lane != lane {
			continue
		}
		d := n.Time - target
		if d < 0 {
			d = -d
		}
		if d > window {
			continue
		}
		if closest == nil || d < best {
			best = d
			closest = n
		}
	}
	return closest
}

// ExpiredUnjudged returns pending notes whose judgement deadline has
// passed without an input.
func (s *Scheduler) ExpiredUnjudged(songTime float64) []*Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := []*Note{}
	for _, n := range s.notes {
		if n.Time+s.retain >= songTime {
			break
		}
		if !n.Judged {
			expired = append(expired, n)
		}
	}
	return expired
}

// Judge marks one scheduled note resolved. The scheduler is the sole
// owner of scheduled-note state; the judge goes through here.
func (s *Scheduler) Judge(n *Note, tier int, delta float64) {
	s.mu.Lock()
	n.Judged = true
	n.Tier = tier
	n.Delta = delta
	s.mu.Unlock()
}

// Restart discards the buffer for delivery from song time zero. The
// chart source keeps its coverage; nothing regenerates.
func (s *Scheduler) Restart() {
	s.mu.Lock()
	s.notes = nil
	s.horizon = 0
	s.polled = false
	s.mu.Unlock()
}

func (s *Scheduler) Source() engine.ChartSource {
	return s.src
}
