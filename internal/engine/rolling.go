package engine

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"git.lost.host/meutraa/stepway/internal/game"
	"git.lost.host/meutraa/stepway/internal/gen"
	"git.lost.host/meutraa/stepway/internal/tempo"
)

// Export is the finalized chart handed to the cache writer.
type Export struct {
	Identity game.ChartIdentity
	BPM      float64
	AVOffset float64
	Duration float64
	Notes    []game.Note
}

// CacheWriter persists an export and returns where it was written.
type CacheWriter func(Export) (string, error)

// Rolling drives the generator in windowed chunks. The coverage cursor
// only ever moves forward, appends are the sole buffer mutation and
// happen under the lock, and concurrent EnsureCoverage calls coalesce:
// the second caller observes the advanced cursor and does nothing.
type Rolling struct {
	mu       sync.Mutex
	id       game.ChartIdentity
	model    tempo.Model
	curve    gen.Curve
	duration float64
	avOffset float64

	state  gen.State
	notes  []game.Note
	cursor float64
	final  bool

	write CacheWriter
	emit  func(interface{})
}

func NewRolling(id game.ChartIdentity, model tempo.Model, curve gen.Curve, duration, avOffset float64, write CacheWriter, emit func(interface{})) *Rolling {
	if emit == nil {
		emit = func(interface{}) {}
	}
	return &Rolling{
		id:       id,
		model:    model,
		curve:    curve,
		duration: duration,
		avOffset: avOffset,
		state:    gen.ZeroState(),
		write:    write,
		emit:     emit,
	}
}

func (r *Rolling) Notes(from, to float64) []game.Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	lo := sort.Search(len(r.notes), func(i int) bool {
		return r.notes[i].Time >= from
	})
	hi := sort.Search(len(r.notes), func(i int) bool {
		return r.notes[i].Time >= to
	})
	return r.notes[lo:hi]
}

func (r *Rolling) EnsureCoverage(until float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	target := until
	if target > r.duration {
		target = r.duration
	}
	if r.final || target <= r.cursor {
		return nil
	}

	// The grid may have no slot inside a sliver of new coverage; the
	// cursor still advances so the range is never re-requested.
	if target > r.state.Position(r.model) {
		notes, next, err := gen.Resume(r.state, r.id, r.model, r.curve, target)
		if nil != err {
			return fmt.Errorf("unable to extend chart coverage: %w", err)
		}
		r.notes = append(r.notes, notes...)
		r.state = next
	}
	r.cursor = target

	r.emit(game.CoverageEvent{Covered: r.cursor, Duration: r.duration})

	if r.cursor >= r.duration {
		r.finalizeLocked()
	}
	return nil
}

func (r *Rolling) Duration() float64 {
	return r.duration
}

func (r *Rolling) Finalized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.final
}

// finalizeLocked exports the accumulated chart exactly once. The cache
// write is best effort and runs off the caller's goroutine so it never
// blocks scheduling, and a failure leaves the in-memory session valid.
func (r *Rolling) finalizeLocked() {
	r.final = true
	if r.write == nil {
		r.emit(game.FinalizeEvent{Identity: r.id})
		return
	}

	export := Export{
		Identity: r.id,
		BPM:      r.model.BPM,
		AVOffset: r.avOffset,
		Duration: r.duration,
		Notes:    append([]game.Note(nil), r.notes...),
	}
	write, emit := r.write, r.emit
	go func() {
		event := game.FinalizeEvent{Identity: export.Identity}
		path, err := write(export)
		event.Path = path
		if nil != err {
			event.Err = err.Error()
			log.Println("unable to cache finalized chart:", err)
		}
		emit(event)
	}()
}
