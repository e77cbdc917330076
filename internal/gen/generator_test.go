package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lost.host/meutraa/stepway/internal/game"
	"git.lost.host/meutraa/stepway/internal/tempo"
)

func testIdentity(difficulty string) (game.ChartIdentity, tempo.Model) {
	d := game.Lookup(difficulty)
	id := game.NewIdentity("abc", difficulty, Version, 0, false)
	return id, tempo.Resolve(d, 0, false)
}

func TestGenerateDeterministic(t *testing.T) {
	id, m := testIdentity("hard")
	a, err := Generate(id, m, nil, Window{0, 60})
	require.NoError(t, err)
	b, err := Generate(id, m, nil, Window{0, 60})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestGenerateWindowComposability(t *testing.T) {
	for _, difficulty := range []string{"easy", "medium", "hard"} {
		id, m := testIdentity(difficulty)

		whole, err := Generate(id, m, nil, Window{0, 60})
		require.NoError(t, err)

		first, err := Generate(id, m, nil, Window{0, 30})
		require.NoError(t, err)
		second, err := Generate(id, m, nil, Window{30, 60})
		require.NoError(t, err)

		assert.Equal(t, whole, append(first, second...), difficulty)
	}
}

func TestGenerateOrdering(t *testing.T) {
	id, m := testIdentity("hard")
	notes, err := Generate(id, m, nil, Window{0, 120})
	require.NoError(t, err)

	for i := 1; i < len(notes); i++ {
		p, q := notes[i-1], notes[i]
		assert.True(t, p.Time < q.Time || (p.Time == q.Time && p.Lane < q.Lane),
			"notes out of order at %d", i)
	}
	for _, n := range notes {
		assert.GreaterOrEqual(t, n.Lane, 0)
		assert.Less(t, n.Lane, game.LaneCount)
		assert.Equal(t, game.KindTap, n.Kind)
	}
}

func TestGenerateEasyLaneConstraints(t *testing.T) {
	id, m := testIdentity("easy")
	d := game.Lookup("easy")
	notes, err := Generate(id, m, nil, Window{0, 300})
	require.NoError(t, err)
	require.NotEmpty(t, notes)

	run, lane := 0, -1
	for i, n := range notes {
		// No doubles below the difficulty threshold.
		if i > 0 {
			assert.NotEqual(t, notes[i-1].Time, n.Time, "double at %f", n.Time)
		}
		if n.Lane == lane {
			run++
		} else {
			lane = n.Lane
			run = 1
		}
		assert.LessOrEqual(t, run, d.MaxRun, "run too long at %f", n.Time)
	}
}

func TestGenerateDensityCap(t *testing.T) {
	for _, difficulty := range []string{"easy", "medium", "hard"} {
		id, m := testIdentity(difficulty)
		d := game.Lookup(difficulty)

		const span = 600.0
		notes, err := Generate(id, m, nil, Window{0, span})
		require.NoError(t, err)
		assert.LessOrEqual(t, float64(len(notes))/span, d.MaxPerSec, difficulty)
	}
}

func TestGenerateInvalidWindow(t *testing.T) {
	id, m := testIdentity("medium")
	for _, win := range []Window{{10, 10}, {10, 5}, {-1, 5}} {
		_, err := Generate(id, m, nil, win)
		assert.Equal(t, ErrInvalidWindow, err)
	}
}

func TestGenerateWithCurve(t *testing.T) {
	id, m := testIdentity("medium")

	silent := Ramp{Points: []Point{{0, 0}, {60, 0}}}
	notes, err := Generate(id, m, silent, Window{0, 60})
	require.NoError(t, err)
	assert.Empty(t, notes)

	// A zero stretch in the middle leaves surrounding windows intact.
	dip := Ramp{Points: []Point{{0, 1}, {19.99, 1}, {20, 0}, {40, 0}, {40.01, 1}}}
	dipped, err := Generate(id, m, dip, Window{0, 60})
	require.NoError(t, err)
	for _, n := range dipped {
		assert.False(t, n.Time >= 20.5 && n.Time < 40, "note inside dip at %f", n.Time)
	}
}

func TestResumeMatchesGenerate(t *testing.T) {
	id, m := testIdentity("hard")

	whole, err := Generate(id, m, nil, Window{0, 90})
	require.NoError(t, err)

	st := ZeroState()
	var rolled []game.Note
	for _, until := range []float64{30, 60, 90} {
		notes, next, err := Resume(st, id, m, nil, until)
		require.NoError(t, err)
		st = next
		rolled = append(rolled, notes...)
	}
	assert.Equal(t, whole, rolled)

	// until at or behind the cursor is a contract violation.
	_, _, err = Resume(st, id, m, nil, 90)
	assert.Equal(t, ErrInvalidWindow, err)
}

func TestSeedDerivation(t *testing.T) {
	a := game.NewIdentity("abc", "hard", 1, 0, false)
	b := game.NewIdentity("abc", "hard", 1, 0, false)
	assert.Equal(t, a.Seed, b.Seed)

	assert.NotEqual(t, a.Seed, game.NewIdentity("abd", "hard", 1, 0, false).Seed)
	assert.NotEqual(t, a.Seed, game.NewIdentity("abc", "easy", 1, 0, false).Seed)
	assert.NotEqual(t, a.Seed, game.NewIdentity("abc", "hard", 2, 0, false).Seed)
	assert.NotEqual(t, a.Seed, game.NewIdentity("abc", "hard", 1, 128.5, true).Seed)
	// An unlocked BPM does not participate in the seed.
	assert.Equal(t, a.Seed, game.NewIdentity("abc", "hard", 1, 128.5, false).Seed)
}
