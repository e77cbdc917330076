package engine

import "git.lost.host/meutraa/stepway/internal/game"

// Static wraps a full immutable chart loaded from a curated or cached
// file. Coverage is complete from construction.
type Static struct {
	chart *game.Chart
}

func NewStatic(chart *game.Chart) *Static {
	return &Static{chart: chart}
}

func (s *Static) Notes(from, to float64) []game.Note {
	return s.chart.Slice(from, to)
}

func (s *Static) EnsureCoverage(until float64) error {
	return nil
}

func (s *Static) Duration() float64 {
	return s.chart.Duration
}

func (s *Static) Finalized() bool {
	return true
}
