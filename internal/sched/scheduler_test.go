package sched

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.lost.host/meutraa/stepway/internal/engine"
	"git.lost.host/meutraa/stepway/internal/game"
)

func staticSource(notes []game.Note, duration float64) engine.ChartSource {
	return engine.NewStatic(&game.Chart{Notes: notes, Duration: duration})
}

func evenNotes(count int, interval float64) []game.Note {
	notes := make([]game.Note, count)
	for i := range notes {
		notes[i] = game.Note{Time: float64(i) * interval, Lane: i % game.LaneCount}
	}
	return notes
}

func TestPollBuffersLookahead(t *testing.T) {
	s := New(staticSource(evenNotes(120, 0.5), 60), 10, 0.2)
	require.NoError(t, s.Poll(0))

	// Every note in [song_time, song_time+lookahead) must be present.
	got := s.Buffered(0, 10)
	require.Len(t, got, 20)
	for i, n := range got {
		require.Equal(t, float64(i)*0.5, n.Time)
	}
	require.Empty(t, s.Buffered(10, 20))
}

func TestPollAdvancesWithoutGaps(t *testing.T) {
	s := New(staticSource(evenNotes(120, 0.5), 60), 5, 0.2)
	for songTime := 0.0; songTime < 50; songTime += 0.7 {
		require.NoError(t, s.Poll(songTime))
		got := s.Buffered(songTime, songTime+5)
		for _, n := range got {
			require.GreaterOrEqual(t, n.Time, songTime)
		}
		want := 0
		for _, n := range evenNotes(120, 0.5) {
			if n.Time >= songTime && n.Time < songTime+5 {
				want++
			}
		}
		require.Len(t, got, want, "song time %v", songTime)
	}
}

func TestEvictionKeepsJudgeWindow(t *testing.T) {
	s := New(staticSource(evenNotes(40, 0.5), 20), 5, 0.2)
	require.NoError(t, s.Poll(0))

	for _, n := range s.Buffered(0, 3) {
		s.Judge(n, 0, 0)
	}
	require.NoError(t, s.Poll(4))

	// Judged notes behind song_time - judge_window_max are gone,
	// everything else stays.
	require.Empty(t, s.Buffered(0, 3))
	require.NotEmpty(t, s.Buffered(3, 4))
}

func TestEvictionSparesUnjudged(t *testing.T) {
	s := New(staticSource(evenNotes(40, 0.5), 20), 5, 0.2)
	require.NoError(t, s.Poll(0))
	require.NoError(t, s.Poll(10))

	// Nothing was judged, so nothing may be evicted even though song
	// time ran far past the notes.
	require.Len(t, s.ExpiredUnjudged(10), 20)
}

func TestNearestUnjudged(t *testing.T) {
	notes := []game.Note{
		{Time: 1.0, Lane: 0},
		{Time: 1.1, Lane: 0},
		{Time: 1.05, Lane: 1},
	}
	s := New(staticSource(notes, 10), 10, 0.2)
	require.NoError(t, s.Poll(0))

	n := s.NearestUnjudged(0, 1.04, 0.2)
	require.NotNil(t, n)
	require.Equal(t, 1.0, n.Time)

	// Equidistant candidates resolve to the earlier note.
	n = s.NearestUnjudged(0, 1.05, 0.2)
	require.NotNil(t, n)
	require.Equal(t, 1.0, n.Time)

	// Lane filter.
	n = s.NearestUnjudged(1, 1.0, 0.2)
	require.NotNil(t, n)
	require.Equal(t, 1.05, n.Time)

	// Judged notes no longer match; the next lane note does.
	s.Judge(s.NearestUnjudged(0, 1.0, 0.2), 0, 0)
	n = s.NearestUnjudged(0, 1.0, 0.2)
	require.NotNil(t, n)
	require.Equal(t, 1.1, n.Time)

	// Outside the window there is no candidate.
	require.Nil(t, s.NearestUnjudged(0, 2.0, 0.2))
	require.Nil(t, s.NearestUnjudged(3, 1.0, 0.2))
}

func TestExpiredUnjudged(t *testing.T) {
	s := New(staticSource(evenNotes(10, 0.5), 10), 10, 0.2)
	require.NoError(t, s.Poll(0))

	require.Empty(t, s.ExpiredUnjudged(0))

	// Note at 0.0 expires once song time passes 0.0 + judge_window_max.
	expired := s.ExpiredUnjudged(0.21)
	require.Len(t, expired, 1)
	require.Equal(t, 0.0, expired[0].Time)

	// A judged note does not expire.
	s.Judge(expired[0], 3, 0)
	require.Empty(t, s.ExpiredUnjudged(0.21))

	expired = s.ExpiredUnjudged(1.3)
	require.Len(t, expired, 2)
}

func TestRestartReplaysFromZero(t *testing.T) {
	s := New(staticSource(evenNotes(40, 0.5), 20), 5, 0.2)
	require.NoError(t, s.Poll(0))
	for _, n := range s.Buffered(0, 2) {
		s.Judge(n, 3, 0)
	}
	require.NoError(t, s.Poll(8))

	s.Restart()
	require.Empty(t, s.Buffered(0, 20))

	// Notes judged before the restart come back pending.
	require.NoError(t, s.Poll(0))
	got := s.Buffered(0, 5)
	require.Len(t, got, 10)
	for _, n := range got {
		require.False(t, n.Judged)
	}
}

func TestMidSongStartSkipsStaleNotes(t *testing.T) {
	s := New(staticSource(evenNotes(40, 0.5), 20), 5, 0.2)
	require.NoError(t, s.Poll(10))

	// Notes already behind playback are never delivered as misses.
	require.Empty(t, s.ExpiredUnjudged(10))
	require.NotEmpty(t, s.Buffered(10, 15))
}
