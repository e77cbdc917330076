package parser

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lost.host/meutraa/stepway/internal/game"
	"git.lost.host/meutraa/stepway/internal/gen"
	"git.lost.host/meutraa/stepway/internal/tempo"
)

const curatedFile = `#TITLE:Test Song;
#OFFSET:0.000000;
#BPMS:0.000=120.000;
#STEPWAY_VIDEO_ID:abc;

#NOTES:
     dance-single:
     :
     Easy:
     1:
     0.000,0.000,0.000,0.000,0.000:
1000
0000
0100
0000
,
0010
0000
0001
0000
;
`

func TestParseCurated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.sm")
	require.NoError(t, ioutil.WriteFile(path, []byte(curatedFile), 0o644))

	p := &DefaultParser{}
	cf, err := p.Parse(path)
	require.NoError(t, err)

	assert.Equal(t, SourceCurated, cf.Meta.Source)
	assert.Equal(t, "abc", cf.Meta.VideoID)
	assert.Equal(t, 120.0, cf.Meta.BPM)

	chart := cf.Chart("easy")
	require.NotNil(t, chart)
	require.Len(t, chart.Notes, 4)

	// Four rows per measure at 120 BPM is one note per half second.
	wantTimes := []float64{0.0, 1.0, 2.0, 3.0}
	wantLanes := []int{0, 1, 2, 3}
	for i, n := range chart.Notes {
		assert.InDelta(t, wantTimes[i], n.Time, 1e-9, "note %d", i)
		assert.Equal(t, wantLanes[i], n.Lane, "note %d", i)
	}

	assert.Nil(t, cf.Chart("hard"))
}

func TestParseRejectsGarbage(t *testing.T) {
	for name, body := range map[string]string{
		"no blocks":  "#TITLE:x;\n",
		"bad symbol": curatedFile[:len(curatedFile)-3] + "00M0\n;\n",
		"bad width":  "#BPMS:0.000=120.000;\n#NOTES:\ndance-single:\n:\nEasy:\n1:\n0:\n00000\n;\n",
		"bad bpm":    "#BPMS:0.000=-3;\n" + curatedFile,
	} {
		path := filepath.Join(t.TempDir(), "chart.sm")
		require.NoError(t, ioutil.WriteFile(path, []byte(body), 0o644))

		p := &DefaultParser{}
		_, err := p.Parse(path)
		assert.Error(t, err, name)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	id := game.NewIdentity("vid42", "hard", gen.Version, 0, false)
	m := tempo.Resolve(game.Lookup("hard"), 0, false)

	notes, err := gen.Generate(id, m, nil, gen.Window{Start: 0, End: 45})
	require.NoError(t, err)
	require.NotEmpty(t, notes)

	meta := Meta{
		Title:    "vid42",
		VideoID:  "vid42",
		Version:  gen.Version,
		Seed:     id.Seed,
		BPMUsed:  m.BPM,
		AVOffset: 0.025,
		Duration: 45,
		Source:   SourceGenerated,
	}
	path := filepath.Join(t.TempDir(), "vid42", "hard_1.sm")
	require.NoError(t, Write(path, meta, "hard", notes))

	p := &DefaultParser{}
	cf, err := p.Parse(path)
	require.NoError(t, err)

	assert.Equal(t, SourceGenerated, cf.Meta.Source)
	assert.Equal(t, gen.Version, cf.Meta.Version)
	assert.Equal(t, id.Seed, cf.Meta.Seed)
	assert.InDelta(t, m.BPM, cf.Meta.BPMUsed, 1e-9)
	assert.InDelta(t, 0.025, cf.Meta.AVOffset, 1e-9)

	chart := cf.Chart("hard")
	require.NotNil(t, chart)
	require.Len(t, chart.Notes, len(notes))
	for i := range notes {
		assert.InDelta(t, notes[i].Time, chart.Notes[i].Time, 1e-6, "note %d", i)
		assert.Equal(t, notes[i].Lane, chart.Notes[i].Lane, "note %d", i)
	}
	assert.InDelta(t, 45, chart.Duration, 1e-9)
}
