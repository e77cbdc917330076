package parser

import (
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.lost.host/meutraa/stepway/internal/game"
)

// Save quantization. Sixteen rows per four-beat measure resolves every
// grid the generator emits (quarters through sixteenths).
const rowsPerMeasure = 16

var difficultyLabels = map[string]string{
	"easy":   "Easy",
	"medium": "Medium",
	"hard":   "Hard",
}

// Write serializes one difficulty's notes to the cache format. The
// generator fields are emitted only for generated charts.
func Write(path string, meta Meta, difficulty string, notes []game.Note) error {
	difficulty = game.NormalizeDifficulty(difficulty)
	label, ok := difficultyLabels[difficulty]
	if !ok {
		return fmt.Errorf("unsupported difficulty %q", difficulty)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); nil != err {
		return fmt.Errorf("unable to create chart directory: %w", err)
	}

	bpm := meta.BPMUsed
	if bpm <= 0 {
		bpm = 120
	}

	var b strings.Builder
	fmt.Fprintf(&b, "#TITLE:%s;\n", meta.Title)
	fmt.Fprintf(&b, "#OFFSET:%.6f;\n", meta.Offset)
	fmt.Fprintf(&b, "#BPMS:0.000=%.3f;\n", bpm)
	fmt.Fprintf(&b, "#STEPWAY_VIDEO_ID:%s;\n", meta.VideoID)
	if meta.Source == SourceGenerated {
		fmt.Fprintf(&b, "#STEPWAY_GENERATOR_VERSION:%d;\n", meta.Version)
		fmt.Fprintf(&b, "#STEPWAY_SEED:%d;\n", meta.Seed)
		fmt.Fprintf(&b, "#STEPWAY_BPM_USED:%.3f;\n", bpm)
		fmt.Fprintf(&b, "#STEPWAY_AV_OFFSET:%.6f;\n", meta.AVOffset)
		fmt.Fprintf(&b, "#STEPWAY_DURATION_HINT:%.3f;\n", meta.Duration)
	}
	b.WriteString("\n#NOTES:\n")
	b.WriteString("     dance-single:\n")
	b.WriteString("     :\n")
	fmt.Fprintf(&b, "     %s:\n", label)
	b.WriteString("     1:\n")
	b.WriteString("     0.000,0.000,0.000,0.000,0.000:\n")
	b.WriteString(rowsText(notes, bpm))
	b.WriteString(";\n")

	return ioutil.WriteFile(path, []byte(b.String()), 0o644)
}

func rowsText(notes []game.Note, bpm float64) string {
	beatsPerRow := 4.0 / float64(rowsPerMeasure)

	type placement struct{ measure, row, lane int }
	placements := make([]placement, 0, len(notes))
	last := 0
	for _, n := range notes {
		if n.Time < 0 || n.Lane < 0 || n.Lane >= game.LaneCount {
			continue
		}
		beat := n.Time * bpm / 60.0
		measure := int(beat / 4.0)
		row := int(math.Round((beat - float64(measure)*4.0) / beatsPerRow))
		if row >= rowsPerMeasure {
			measure++
			row = 0
		}
		placements = append(placements, placement{measure, row, n.Lane})
		if measure > last {
			last = measure
		}
	}

	rows := make([][][]byte, last+1)
	for m := range rows {
		rows[m] = make([][]byte, rowsPerMeasure)
		for r := range rows[m] {
			rows[m][r] = []byte("0000")
		}
	}
	for _, p := range placements {
		rows[p.measure][p.row][p.lane] = '1'
	}

	var b strings.Builder
	for m := range rows {
		for _, row := range rows[m] {
			b.Write(row)
			b.WriteByte('\n')
		}
		if m != len(rows)-1 {
			b.WriteString(",\n")
		}
	}
	return b.String()
}
