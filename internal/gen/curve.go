package gen

// A Curve modulates note density over song time. Values are clamped
// to [0, 1] by the caller's density product only implicitly; curves
// should stay within that range themselves.
type Curve interface {
	At(t float64) float64
}

// Flat is the default energy curve.
type Flat struct{}

func (Flat) At(float64) float64 { return 1 }

type Point struct {
	Time  float64
	Value float64
}

// Ramp interpolates linearly between points sorted by time. Before the
// first point it holds the first value, after the last the last value.
type Ramp struct {
	Points []Point
}

func (r Ramp) At(t float64) float64 {
	pts := r.Points
	if len(pts) == 0 {
		return 1
	}
	if t <= pts[0].Time {
		return pts[0].Value
	}
	for i := 1; i < len(pts); i++ {
		if t > pts[i].Time {
			continue
		}
		a, b := pts[i-1], pts[i]
		span := b.Time - a.Time
		if span <= 0 {
			return b.Value
		}
		return a.Value + (b.Value-a.Value)*(t-a.Time)/span
	}
	return pts[len(pts)-1].Value
}
