package library

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.lost.host/meutraa/stepway/internal/engine"
	"git.lost.host/meutraa/stepway/internal/game"
	"git.lost.host/meutraa/stepway/internal/gen"
	"git.lost.host/meutraa/stepway/internal/parser"
	"git.lost.host/meutraa/stepway/internal/tempo"
)

func testResolver(t *testing.T) *Resolver {
	base := t.TempDir()
	return NewResolver(filepath.Join(base, "charts"), filepath.Join(base, "charts_auto"))
}

func writeCurated(t *testing.T, r *Resolver, videoID, name, difficulty string) string {
	path := filepath.Join(r.ChartsDir, videoID, name)
	meta := parser.Meta{Title: videoID, VideoID: videoID, BPMUsed: 120, Source: parser.SourceCurated}
	notes := []game.Note{{Time: 1, Lane: 0}, {Time: 2, Lane: 1}}
	require.NoError(t, parser.Write(path, meta, difficulty, notes))
	return path
}

func resolve(t *testing.T, r *Resolver, videoID, difficulty string) (engine.ChartSource, Info) {
	m := tempo.Resolve(game.Lookup(difficulty), 0, false)
	src, info, err := r.Resolve(videoID, difficulty, m, 90, 0, nil, nil)
	require.NoError(t, err)
	return src, info
}

func TestResolveCuratedWins(t *testing.T) {
	r := testResolver(t)
	path := writeCurated(t, r, "abc", "song.sm", "easy")

	// Even with a cached auto chart present, curated is preferred.
	autoMeta := parser.Meta{
		VideoID: "abc", Version: gen.Version, Seed: 7, BPMUsed: 120,
		Source: parser.SourceGenerated,
	}
	require.NoError(t, parser.Write(r.AutoPath("abc", "easy"), autoMeta, "easy",
		[]game.Note{{Time: 1, Lane: 2}}))

	src, info := resolve(t, r, "abc", "easy")
	assert.Equal(t, KindCurated, info.Kind)
	assert.Equal(t, path, info.Path)
	assert.True(t, src.Finalized())
}

func TestResolveCuratedAnyDifficultyBlock(t *testing.T) {
	r := testResolver(t)
	writeCurated(t, r, "abc", "song.sm", "hard")

	// The requested difficulty is absent from the curated file, so
	// resolution falls through to generation.
	_, info := resolve(t, r, "abc", "easy")
	assert.Equal(t, KindGenerated, info.Kind)
}

func TestResolveCachedAuto(t *testing.T) {
	r := testResolver(t)
	meta := parser.Meta{
		VideoID: "abc", Version: gen.Version, Seed: 7, BPMUsed: 160,
		Duration: 30, Source: parser.SourceGenerated,
	}
	require.NoError(t, parser.Write(r.AutoPath("abc", "hard"), meta, "hard",
		[]game.Note{{Time: 1, Lane: 2}}))

	src, info := resolve(t, r, "abc", "hard")
	assert.Equal(t, KindCached, info.Kind)
	assert.True(t, src.Finalized())
	assert.Len(t, src.Notes(0, 30), 1)
}

func TestResolveStaleVersionRegenerates(t *testing.T) {
	r := testResolver(t)

	// A cache written by an older generator sits at that version's
	// path; the current version's path does not exist.
	meta := parser.Meta{
		VideoID: "abc", Version: gen.Version - 1, Seed: 7, BPMUsed: 160,
		Source: parser.SourceGenerated,
	}
	old := filepath.Join(r.AutoDir, "abc", "hard_0.sm")
	require.NoError(t, parser.Write(old, meta, "hard", []game.Note{{Time: 1, Lane: 2}}))

	_, info := resolve(t, r, "abc", "hard")
	assert.Equal(t, KindGenerated, info.Kind)

	// A stale header at the current path is also treated as absent.
	require.NoError(t, os.Rename(old, r.AutoPath("abc", "hard")))
	_, info = resolve(t, r, "abc", "hard")
	assert.Equal(t, KindGenerated, info.Kind)
}

func TestResolveCorruptCacheIsAMiss(t *testing.T) {
	r := testResolver(t)
	path := r.AutoPath("abc", "hard")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, ioutil.WriteFile(path, []byte("not a chart"), 0o644))

	_, info := resolve(t, r, "abc", "hard")
	assert.Equal(t, KindGenerated, info.Kind)
}

func TestResolveEmptyVideoID(t *testing.T) {
	r := testResolver(t)
	m := tempo.Resolve(game.Lookup("easy"), 0, false)
	_, _, err := r.Resolve("", "easy", m, 90, 0, nil, nil)
	assert.Error(t, err)
}

func TestRollingFinalizeWritesCache(t *testing.T) {
	r := testResolver(t)

	src, info := resolve(t, r, "abc", "hard")
	require.Equal(t, KindGenerated, info.Kind)
	require.NoError(t, src.EnsureCoverage(90))
	require.True(t, src.Finalized())

	// The async write lands at the auto path; the next resolve hits it.
	path := r.AutoPath("abc", "hard")
	waitForFile(t, path)

	cached, cachedInfo := resolve(t, r, "abc", "hard")
	assert.Equal(t, KindCached, cachedInfo.Kind)
	assert.Equal(t, path, cachedInfo.Path)
	assert.True(t, cached.Finalized())
	assert.InDelta(t, 90, cached.Duration(), 1e-9)
}
