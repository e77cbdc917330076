package game

// Judgement is one timing window tier. Window is the maximum absolute
// deviation in seconds that still earns this tier. The last tier of a
// set is always the miss tier and its Window is the judge window max:
// inputs further out than that touch nothing, and a pending note whose
// deadline passes it unjudged becomes a miss.
type Judgement struct {
	Window float64
	Name   string
	Score  int
	Life   float64
}

// MissBound returns the judge window max for a tier set.
func MissBound(windows []Judgement) float64 {
	return windows[len(windows)-1].Window
}

// Classify maps an absolute deviation to a tier index. The caller has
// already checked the deviation against MissBound.
func Classify(windows []Judgement, absDelta float64) int {
	for i := 0; i < len(windows)-1; i++ {
		if absDelta <= windows[i].Window {
			return i
		}
	}
	return len(windows) - 1
}
