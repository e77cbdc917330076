// Package engine owns the chart a session plays from, behind one
// query contract regardless of whether the chart is a cached static
// file or is being generated just ahead of playback.
package engine

import "git.lost.host/meutraa/stepway/internal/game"

type ChartSource interface {
	// Notes returns every note with time in [from, to) the source has
	// coverage for.
	Notes(from, to float64) []game.Note

	// EnsureCoverage extends generation through the requested song
	// time. A no-op for sources with full coverage.
	EnsureCoverage(until float64) error

	Duration() float64

	// Finalized reports full-duration coverage.
	Finalized() bool
}
