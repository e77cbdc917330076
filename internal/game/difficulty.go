package game

// Subdivision is the beat grid resolution as slots per beat.
type Subdivision int

const (
	Quarter   Subdivision = 1
	Eighth    Subdivision = 2
	Sixteenth Subdivision = 4
)

type Difficulty struct {
	Name        string
	BPM         float64 // default BPM before calibration locks one
	Subdivision Subdivision
	Density     float64 // fraction of grid slots that become notes
	MaxPerSec   float64 // hard cap on effective note density
	MaxRun      int     // max consecutive notes in the same lane
	JackChance  float64 // chance of an immediate lane repeat
	Doubles     bool    // simultaneous two-lane notes allowed
	DoubleRate  float64
	OppPenalty  float64 // reroll chance for opposite-lane ping-pong
	Windows     []Judgement
}

func windows(scale float64) []Judgement {
	return []Judgement{
		{Window: 0.05 * scale, Name: "perfect", Score: 3, Life: 0.010},
		{Window: 0.10 * scale, Name: "great", Score: 2, Life: 0.005},
		{Window: 0.15 * scale, Name: "good", Score: 1, Life: 0.0},
		{Window: 0.20 * scale, Name: "miss", Score: 0, Life: -0.080},
	}
}

var Difficulties = map[string]Difficulty{
	"easy": {
		Name:        "easy",
		BPM:         120,
		Subdivision: Quarter,
		Density:     0.50,
		MaxPerSec:   2.0,
		MaxRun:      2,
		JackChance:  0.02,
		OppPenalty:  0.75,
		Windows:     windows(1.25),
	},
	"medium": {
		Name:        "medium",
		BPM:         140,
		Subdivision: Eighth,
		Density:     0.55,
		MaxPerSec:   4.0,
		MaxRun:      3,
		JackChance:  0.08,
		OppPenalty:  0.60,
		Windows:     windows(1.0),
	},
	"hard": {
		Name:        "hard",
		BPM:         160,
		Subdivision: Sixteenth,
		Density:     0.60,
		MaxPerSec:   7.0,
		MaxRun:      4,
		JackChance:  0.15,
		Doubles:     true,
		DoubleRate:  0.06,
		OppPenalty:  0.40,
		Windows:     windows(0.75),
	},
}

// Lookup falls back to medium for unknown names, matching the
// generator's behaviour for unrecognised difficulties.
func Lookup(name string) Difficulty {
	if d, ok := Difficulties[NormalizeDifficulty(name)]; ok {
		return d
	}
	return Difficulties["medium"]
}
