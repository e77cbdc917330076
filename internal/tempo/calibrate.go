package tempo

import (
	"math"
	"sort"
)

// A Calibrator collects tap timestamps during a bounded window at the
// start of playback and estimates a BPM from the inter-tap intervals.
// Calibration never fails a session: too few usable taps simply leaves
// the default BPM in place.
type Calibrator struct {
	window float64
	taps   []float64
	closed bool
}

const minIntervals = 3

func NewCalibrator(windowSeconds float64) *Calibrator {
	return &Calibrator{window: windowSeconds}
}

// Active reports whether the calibration window is still open.
func (c *Calibrator) Active(songTime float64) bool {
	return !c.closed && songTime < c.window
}

// Tap records one tap. Taps outside the window or out of order are
// ignored rather than rejected.
func (c *Calibrator) Tap(songTime float64) {
	if c.closed || songTime < 0 || songTime >= c.window {
		return
	}
	if n := len(c.taps); n > 0 && songTime <= c.taps[n-1] {
		return
	}
	c.taps = append(c.taps, songTime)
}

func (c *Calibrator) TapCount() int {
	return len(c.taps)
}

// Commit closes the window and estimates a BPM. Intervals more than
// two standard deviations from the median are discarded; the rest are
// averaged. Fewer than minIntervals survivors means no estimate.
func (c *Calibrator) Commit() (bpm float64, ok bool) {
	c.closed = true

	intervals := make([]float64, 0, len(c.taps))
	for i := 1; i < len(c.taps); i++ {
		d := c.taps[i] - c.taps[i-1]
		if d > 0 {
			intervals = append(intervals, d)
		}
	}
	if len(intervals) < minIntervals {
		return 0, false
	}

	med := median(intervals)
	sd := stddev(intervals)

	kept := make([]float64, 0, len(intervals))
	sum := 0.0
	for _, d := range intervals {
		if math.Abs(d-med) > 2*sd {
			continue
		}
		kept = append(kept, d)
		sum += d
	}
	if len(kept) < minIntervals {
		return 0, false
	}

	mean := sum / float64(len(kept))
	if mean <= 0 {
		return 0, false
	}
	return 60.0 / mean, true
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		xi := v - mean
		variance += xi * xi
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}
