package config

import (
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	VideoID    = kingpin.Arg("video-id", "Identifier of the track to play").Required().String()
	Difficulty = kingpin.Flag("difficulty", "easy, medium or hard").Default("medium").Short('d').String()
	Audio      = kingpin.Flag("audio", "mp3 file that drives the session clock").Short('a').String()
	ChartsDir  = kingpin.Flag("charts", "Curated chart directory").Default("charts").String()
	AutoDir    = kingpin.Flag("auto", "Generated chart cache directory").Default("auto").String()
	ScoresPath = kingpin.Flag("scores", "Run history database").Default("scores.db").String()

	Duration  = kingpin.Flag("duration", "Session length when no audio is given").Default("120s").Duration()
	Offset    = kingpin.Flag("offset", "Audio/visual offset").Default("0ms").Short('o').Duration()
	Delay     = kingpin.Flag("delay", "Start delay").Default("1.5s").Duration()
	Lookahead = kingpin.Flag("lookahead", "Note buffer lookahead").Default("30s").Duration()

	FramePeriod   = kingpin.Flag("frame-period", "Render frame period").Default("16ms").Short('p').Duration()
	ScrollSeconds = kingpin.Flag("scroll", "Song seconds per console row").Default("50ms").Short('s').Duration()
	ColumnSpacing = kingpin.Flag("spacing", "Columns between lanes").Default("6").Short('S').Uint()
	BarRow        = kingpin.Flag("bar-row", "Console row to render hit bar").Default("8").Uint()
	keys          = kingpin.Flag("keys", "Lane keys").Default("_-mp").Short('k').String()
)

// Parse is called from main, never from init, so importing this package
// in a test does not swallow the test binary's flags.
func Parse() {
	kingpin.Version("0.1.0")
	kingpin.Parse()
}

func Keys() []rune {
	return []rune(*keys)
}

func KeyLane(r rune) int {
	for i, c := range Keys() {
		if r == c {
			return i
		}
	}
	return -1
}
