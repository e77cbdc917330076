// Package score judges inputs against scheduled notes and keeps the
// running score, combo, and life state for a play.
package score

import (
	"math"
	"sync"

	"git.lost.host/meutraa/stepway/internal/game"
	"git.lost.host/meutraa/stepway/internal/sched"
)

const (
	startLife     = 0.5
	statsInterval = 1.0 // song seconds between stats events
)

type Judge struct {
	mu      sync.Mutex
	sched   *sched.Scheduler
	windows []game.Judgement
	emit    func(interface{})

	paused   bool
	failed   bool
	score    int
	combo    int
	maxCombo int
	life     float64
	counts   []int
	inputs   []game.Input
	lastStat float64
}

func NewJudge(s *sched.Scheduler, windows []game.Judgement, emit func(interface{})) *Judge {
	if nil == emit {
		emit = func(interface{}) {}
	}
	return &Judge{
		sched:   s,
		windows: windows,
		emit:    emit,
		life:    startLife,
		counts:  make([]int, len(windows)),
	}
}

// OnInput resolves one key press against the nearest pending note in
// its lane. Inputs with no note within the judge window are ignored;
// the expiry sweep in OnTick is the only source of misses for untouched
// notes.
func (j *Judge) OnInput(in game.Input) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.paused {
		return
	}
	if math.IsNaN(in.Time) || math.IsInf(in.Time, 0) {
		return
	}
	if in.Lane < 0 || in.Lane >= game.LaneCount {
		return
	}

	n := j.sched.NearestUnjudged(in.Lane, in.Time, game.MissBound(j.windows))
	if nil == n {
		return
	}

	delta := in.Time - n.Time
	tier := game.Classify(j.windows, math.Abs(delta))
	j.sched.Judge(n, tier, delta)
	j.inputs = append(j.inputs, in)
	j.resolve(n, tier, delta, in.Time)
}

// OnTick sweeps notes whose judgement deadline passed without an input
// and emits the periodic stats event. songTime drives everything; the
// judge never reads a clock of its own.
func (j *Judge) OnTick(songTime float64) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.paused {
		return
	}

	miss := len(j.windows) - 1
	for _, n := range j.sched.ExpiredUnjudged(songTime) {
		j.sched.Judge(n, miss, 0)
		j.resolve(n, miss, 0, songTime)
	}

	if songTime-j.lastStat >= statsInterval {
		j.lastStat = songTime
		j.emit(game.StatsEvent{
			Time:   songTime,
			Counts: append([]int(nil), j.counts...),
			Score:  j.snapshotLocked(),
		})
	}
}

func (j *Judge) resolve(n *sched.Note, tier int, delta, at float64) {
	w := j.windows[tier]
	j.counts[tier]++
	j.score += w.Score
	if tier == len(j.windows)-1 {
		j.combo = 0
	} else {
		j.combo++
		if j.combo > j.maxCombo {
			j.maxCombo = j.combo
		}
		j.emit(game.LightingEvent{Time: at, Lane: n.Lane, Name: w.Name})
	}

	j.life += w.Life
	if j.life > 1 {
		j.life = 1
	}
	if j.life <= 0 {
		j.life = 0
		if !j.failed {
			j.failed = true
			j.emit(game.FailedEvent{Time: at})
		}
	}

	j.emit(game.JudgementEvent{
		Time:     at,
		NoteTime: n.Time,
		Lane:     n.Lane,
		Delta:    delta,
		Name:     w.Name,
		Score:    j.snapshotLocked(),
	})
}

// Pause stops both input resolution and the expiry sweep, so notes
// pending at pause time are still judgeable on resume.
func (j *Judge) Pause() {
	j.mu.Lock()
	j.paused = true
	j.mu.Unlock()
}

func (j *Judge) Resume() {
	j.mu.Lock()
	j.paused = false
	j.mu.Unlock()
}

// Reset returns the judge to its initial state for a restart.
func (j *Judge) Reset() {
	j.mu.Lock()
	j.failed = false
	j.score = 0
	j.combo = 0
	j.maxCombo = 0
	j.life = startLife
	j.counts = make([]int, len(j.windows))
	j.inputs = nil
	j.lastStat = 0
	j.mu.Unlock()
}

func (j *Judge) Snapshot() game.ScoreSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.snapshotLocked()
}

func (j *Judge) snapshotLocked() game.ScoreSnapshot {
	return game.ScoreSnapshot{
		Score:    j.score,
		Combo:    j.combo,
		MaxCombo: j.maxCombo,
		Life:     j.life,
	}
}

func (j *Judge) Counts() []int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]int(nil), j.counts...)
}

// Inputs returns the accepted inputs of this play, for run history.
func (j *Judge) Inputs() []game.Input {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]game.Input(nil), j.inputs...)
}
