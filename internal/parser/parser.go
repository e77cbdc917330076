package parser

import "git.lost.host/meutraa/stepway/internal/game"

type Source string

const (
	SourceCurated   Source = "curated"
	SourceGenerated Source = "generated"
)

// Meta is the cache file header. Curated files carry only the title,
// offset and BPM tags; generated files add the generator fields.
type Meta struct {
	Title    string
	Offset   float64
	BPM      float64
	VideoID  string
	Version  int
	Seed     uint64
	BPMUsed  float64
	AVOffset float64
	Duration float64
	Source   Source
}

// Block is one difficulty's note list within a chart file.
type Block struct {
	Difficulty string
	Notes      []game.Note
}

type Chartfile struct {
	Meta   Meta
	Blocks []Block
}

// Chart builds the immutable chart for one difficulty, or nil when the
// file has no block for it.
func (f *Chartfile) Chart(difficulty string) *game.Chart {
	difficulty = game.NormalizeDifficulty(difficulty)
	for i := range f.Blocks {
		if f.Blocks[i].Difficulty != difficulty {
			continue
		}
		notes := f.Blocks[i].Notes
		duration := f.Meta.Duration
		if duration <= 0 && len(notes) > 0 {
			duration = notes[len(notes)-1].Time + 2.0
		}
		return &game.Chart{Notes: notes, Duration: duration}
	}
	return nil
}

type Parser interface {
	Parse(file string) (*Chartfile, error)
}
