package game

import "sort"

// Chart is a full immutable note sequence for one video and difficulty.
// Notes are sorted by time, ties broken by lane.
type Chart struct {
	Notes    []Note
	Duration float64
}

// Slice returns all notes with time in [from, to).
func (c *Chart) Slice(from, to float64) []Note {
	lo := sort.Search(len(c.Notes), func(i int) bool {
		return c.Notes[i].Time >= from
	})
	hi := sort.Search(len(c.Notes), func(i int) bool {
		return c.Notes[i].Time >= to
	})
	return c.Notes[lo:hi]
}
