// Package library resolves where a session's chart comes from.
//
// Layout on disk:
//
//	<charts>/<video_id>/*.sm                      curated
//	<auto>/<video_id>/<difficulty>_<version>.sm   generated cache
//
// Search order: curated always wins, then a cached auto chart written
// by the running generator version, then live rolling generation.
package library

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"git.lost.host/meutraa/stepway/internal/engine"
	"git.lost.host/meutraa/stepway/internal/game"
	"git.lost.host/meutraa/stepway/internal/gen"
	"git.lost.host/meutraa/stepway/internal/parser"
	"git.lost.host/meutraa/stepway/internal/tempo"
)

const (
	KindCurated   = "curated"
	KindCached    = "cached"
	KindGenerated = "generated"
)

// Rolling generation clamps unknown or absurd durations the same way
// the generator's callers always have.
const (
	minDuration = 10.0
	maxDuration = 3600.0
)

type Resolver struct {
	ChartsDir string
	AutoDir   string
	Parser    parser.Parser
}

type Info struct {
	Kind     string
	Path     string
	Identity game.ChartIdentity
}

func NewResolver(chartsDir, autoDir string) *Resolver {
	return &Resolver{
		ChartsDir: chartsDir,
		AutoDir:   autoDir,
		Parser:    &parser.DefaultParser{},
	}
}

func (r *Resolver) AutoPath(videoID, difficulty string) string {
	name := fmt.Sprintf("%s_%d.sm", game.NormalizeDifficulty(difficulty), gen.Version)
	return filepath.Join(r.AutoDir, videoID, name)
}

// Resolve picks the chart source for one session. Corrupt or stale
// cache files are a cache miss, never a session failure.
func (r *Resolver) Resolve(videoID, difficulty string, m tempo.Model, duration, avOffset float64, curve gen.Curve, emit func(interface{})) (engine.ChartSource, Info, error) {
	if videoID == "" {
		return nil, Info{}, errors.New("library: empty video id")
	}
	difficulty = game.NormalizeDifficulty(difficulty)
	identity := game.NewIdentity(videoID, difficulty, gen.Version, m.BPM, m.Locked)

	if chart, path := r.curated(videoID, difficulty); chart != nil {
		return engine.NewStatic(chart), Info{Kind: KindCurated, Path: path, Identity: identity}, nil
	}

	if chart, path := r.cached(videoID, difficulty); chart != nil {
		return engine.NewStatic(chart), Info{Kind: KindCached, Path: path, Identity: identity}, nil
	}

	if duration < minDuration {
		if duration <= 0 {
			duration = 60
		} else {
			duration = minDuration
		}
	} else if duration > maxDuration {
		duration = maxDuration
	}

	write := func(ex engine.Export) (string, error) {
		path := r.AutoPath(videoID, difficulty)
		meta := parser.Meta{
			Title:    videoID,
			VideoID:  videoID,
			Version:  ex.Identity.Version,
			Seed:     ex.Identity.Seed,
			BPMUsed:  ex.BPM,
			AVOffset: ex.AVOffset,
			Duration: ex.Duration,
			Source:   parser.SourceGenerated,
		}
		return path, parser.Write(path, meta, difficulty, ex.Notes)
	}

	rolling := engine.NewRolling(identity, m, curve, duration, avOffset, write, emit)
	return rolling, Info{Kind: KindGenerated, Identity: identity}, nil
}

// curated scans every simfile under the video's curated directory in
// name order and picks the first with a block for the difficulty.
func (r *Resolver) curated(videoID, difficulty string) (*game.Chart, string) {
	paths, err := filepath.Glob(filepath.Join(r.ChartsDir, videoID, "*.sm"))
	if nil != err || len(paths) == 0 {
		return nil, ""
	}
	sort.Strings(paths)

	for _, path := range paths {
		cf, err := r.Parser.Parse(path)
		if nil != err {
			log.Println("skipping unreadable curated chart:", path, err)
			continue
		}
		if chart := cf.Chart(difficulty); chart != nil {
			return chart, path
		}
	}
	return nil, ""
}

// cached accepts only an auto chart written by the running generator
// version; anything else is treated as absent.
func (r *Resolver) cached(videoID, difficulty string) (*game.Chart, string) {
	path := r.AutoPath(videoID, difficulty)
	if _, err := os.Stat(path); nil != err {
		return nil, ""
	}

	cf, err := r.Parser.Parse(path)
	if nil != err {
		log.Println("skipping unreadable cached chart:", path, err)
		return nil, ""
	}
	if cf.Meta.Source != parser.SourceGenerated || cf.Meta.Version != gen.Version {
		return nil, ""
	}
	return cf.Chart(difficulty), path
}
