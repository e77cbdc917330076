// Package session owns one play of one chart: the clock, the chart
// source, the note scheduler, the judge, and calibration. The host
// drives it with SetPlayerTime, Tick, and Input; everything it learns
// comes back over the event bus.
package session

import (
	"log"
	"sync"

	"git.lost.host/meutraa/stepway/internal/clock"
	"git.lost.host/meutraa/stepway/internal/engine"
	"git.lost.host/meutraa/stepway/internal/game"
	"git.lost.host/meutraa/stepway/internal/gen"
	"git.lost.host/meutraa/stepway/internal/library"
	"git.lost.host/meutraa/stepway/internal/sched"
	"git.lost.host/meutraa/stepway/internal/score"
	"git.lost.host/meutraa/stepway/internal/tempo"
)

const (
	defaultLookahead   = 30.0
	calibrationSeconds = 10.0
)

type Config struct {
	VideoID    string
	Difficulty string
	Duration   float64 // media duration hint, 0 for unknown
	AVOffset   float64
	Lookahead  float64
	Curve      gen.Curve // nil for a flat chart
	Resolver   *library.Resolver
	Store      *score.Store // optional run history
}

type Session struct {
	mu  sync.Mutex
	cfg Config
	bus *Bus

	diff  game.Difficulty
	model tempo.Model
	clock *clock.Clock
	src   engine.ChartSource
	info  library.Info
	sched *sched.Scheduler
	judge *score.Judge

	cal       *tempo.Calibrator
	calBPM    float64
	calLocked bool

	running bool
	paused  bool
}

func New(cfg Config, bus *Bus) (*Session, error) {
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = defaultLookahead
	}
	if nil == cfg.Curve {
		cfg.Curve = gen.Flat{}
	}
	s := &Session{cfg: cfg, bus: bus}
	if err := s.resolve(); nil != err {
		return nil, err
	}
	return s, nil
}

// resolve builds the per-play pipeline. Holds no lock; callers do.
func (s *Session) resolve() error {
	s.diff = game.Lookup(s.cfg.Difficulty)
	s.model = tempo.Resolve(s.diff, s.calBPM, s.calLocked)

	src, info, err := s.cfg.Resolver.Resolve(
		s.cfg.VideoID, s.diff.Name, s.model,
		s.cfg.Duration, s.cfg.AVOffset, s.cfg.Curve, s.bus.Publish)
	if nil != err {
		return err
	}

	s.src = src
	s.info = info
	s.clock = clock.New(s.cfg.AVOffset)
	s.sched = sched.New(src, s.cfg.Lookahead, game.MissBound(s.diff.Windows))
	s.judge = score.NewJudge(s.sched, s.diff.Windows, s.bus.Publish)
	if !s.calLocked {
		s.cal = tempo.NewCalibrator(calibrationSeconds)
	} else {
		s.cal = nil
	}
	return nil
}

func (s *Session) Start() {
	s.mu.Lock()
	s.running = true
	s.paused = false
	s.mu.Unlock()
}

func (s *Session) Pause() {
	s.mu.Lock()
	if s.running && !s.paused {
		s.paused = true
		s.judge.Pause()
	}
	s.mu.Unlock()
}

func (s *Session) Resume() {
	s.mu.Lock()
	if s.running && s.paused {
		s.paused = false
		s.judge.Resume()
	}
	s.mu.Unlock()
}

// Restart replays the same chart from zero. The chart source keeps the
// coverage it already generated; only play state resets. The host is
// expected to seek its media back to zero as well.
func (s *Session) Restart() {
	s.mu.Lock()
	s.clock.SetPlayerTime(0)
	s.sched.Restart()
	s.judge.Reset()
	s.judge.Resume()
	s.paused = false
	s.mu.Unlock()
}

// ChangeDifficulty rebuilds the pipeline for a new difficulty and
// starts it from zero. A BPM locked by calibration carries over, so the
// new chart is resolved against the calibrated tempo.
func (s *Session) ChangeDifficulty(difficulty string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Difficulty = difficulty
	if err := s.resolve(); nil != err {
		return err
	}
	s.paused = false
	return nil
}

// Stop ends the play and records the run if a store is attached.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false

	if nil != s.cfg.Store {
		snap := s.judge.Snapshot()
		s.cfg.Store.SaveRun(score.Run{
			Sum:      s.info.Identity.Hash(),
			Score:    snap.Score,
			MaxCombo: snap.MaxCombo,
			Life:     snap.Life,
			Counts:   s.judge.Counts(),
			Inputs:   s.judge.Inputs(),
		})
	}
}

// SetPlayerTime feeds the host's playback position in. This is the only
// clock the session has.
func (s *Session) SetPlayerTime(seconds float64) {
	s.mu.Lock()
	s.clock.SetPlayerTime(seconds)
	s.mu.Unlock()
}

// Tick advances scheduling, the miss sweep, and calibration commit.
// Hosts call it at their frame cadence.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.paused {
		return
	}

	songTime := s.clock.SongTime()
	if err := s.sched.Poll(songTime); nil != err {
		log.Println("unable to extend chart coverage", err)
	}
	s.judge.OnTick(songTime)

	if nil != s.cal && !s.cal.Active(songTime) {
		s.commitCalibration()
	}
}

// Input handles one key press in a lane, stamped with current song
// time. During the calibration window presses also count as tempo taps.
func (s *Session) Input(lane int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.paused {
		return
	}

	songTime := s.clock.SongTime()
	if nil != s.cal && s.cal.Active(songTime) {
		s.cal.Tap(songTime)
	}
	s.judge.OnInput(game.Input{Time: songTime, Lane: lane})
}

// commitCalibration runs once when the tap window closes. A lock only
// changes which chart the next resolve builds; the live chart plays on.
func (s *Session) commitCalibration() {
	cal := s.cal
	s.cal = nil
	taps := cal.TapCount()
	bpm, ok := cal.Commit()
	if ok {
		s.calBPM = bpm
		s.calLocked = true
	}
	s.bus.Publish(game.CalibrationEvent{BPM: bpm, Locked: ok, Taps: taps})
}

func (s *Session) Snapshot() game.ScoreSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.judge.Snapshot()
}

func (s *Session) SongTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock.SongTime()
}

// Visible returns scheduled notes in a song-time range, for rendering.
func (s *Session) Visible(from, to float64) []*sched.Note {
	s.mu.Lock()
	sc := s.sched
	s.mu.Unlock()
	return sc.Buffered(from, to)
}

func (s *Session) Info() library.Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *Session) Model() tempo.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *Session) Difficulty() game.Difficulty {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diff
}

func (s *Session) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Duration()
}

func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}
