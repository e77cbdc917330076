package game

// ScoreSnapshot is the read-only view of the judge's score state.
type ScoreSnapshot struct {
	Score    int
	Combo    int
	MaxCombo int
	Life     float64
}

// JudgementEvent is emitted once per resolved note, hit or miss.
type JudgementEvent struct {
	Time     float64 // song time the judgement happened
	NoteTime float64
	Lane     int
	Delta    float64 // input time minus note time, 0 for auto-miss
	Name     string
	Score    ScoreSnapshot
}

// StatsEvent carries periodic aggregate counts per judgement tier.
type StatsEvent struct {
	Time   float64
	Counts []int
	Score  ScoreSnapshot
}

// LightingEvent drives light rigs on hits. No consumer is required.
type LightingEvent struct {
	Time float64
	Lane int
	Name string
}

// FailedEvent fires once when life reaches zero. The session-level
// consequence is the host's decision.
type FailedEvent struct {
	Time float64
}

// CoverageEvent reports rolling generation progress.
type CoverageEvent struct {
	Covered  float64
	Duration float64
}

// FinalizeEvent fires once when a rolling chart reaches full coverage
// and its cache export completes. Err is empty on success.
type FinalizeEvent struct {
	Identity ChartIdentity
	Path     string
	Err      string
}

// CalibrationEvent reports the outcome of tap-to-beat calibration.
type CalibrationEvent struct {
	BPM    float64
	Locked bool
	Taps   int
}
