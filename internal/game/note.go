package game

import "sort"

// LaneCount is the number of discrete input channels on the pad.
const LaneCount = 4

type NoteKind uint8

const (
	KindTap NoteKind = iota
)

type Note struct {
	Time float64 // song time in seconds the note should be hit
	Lane int
	Kind NoteKind
}

type Input struct {
	Time float64 // song time in seconds the lane was pressed
	Lane int
}

// Less orders notes by time, ties broken by lane ascending.
func Less(a, b Note) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	return a.Lane < b.Lane
}

func SortNotes(notes []Note) {
	sort.Slice(notes, func(i, j int) bool {
		return Less(notes[i], notes[j])
	})
}
