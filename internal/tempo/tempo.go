// Package tempo resolves the beat grid a chart is generated on and
// implements tap-to-beat calibration.
package tempo

import (
	"git.lost.host/meutraa/stepway/internal/game"
)

type Model struct {
	BPM         float64
	Subdivision game.Subdivision
	Locked      bool
}

// Resolve builds the tempo model for a difficulty. A locked calibrated
// BPM replaces the per-difficulty default. Finer subdivisions are
// gated: the grid halves until the effective note density fits under
// the difficulty's per-second cap.
func Resolve(d game.Difficulty, calibrated float64, locked bool) Model {
	bpm := d.BPM
	if locked && calibrated > 0 {
		bpm = calibrated
	}

	sub := d.Subdivision
	for sub > game.Quarter && bpm/60.0*float64(sub)*d.Density > d.MaxPerSec {
		sub /= 2
	}

	return Model{
		BPM:         bpm,
		Subdivision: sub,
		Locked:      locked && calibrated > 0,
	}
}

// SecondsPerSlot is the spacing of the beat grid.
func (m Model) SecondsPerSlot() float64 {
	return 60.0 / m.BPM / float64(m.Subdivision)
}
