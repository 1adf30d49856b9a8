package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/semaphore"

	"mediabox/internal/logging"
	"mediabox/internal/media"
)

// ErrPanic marks a codec panic recovered on a worker.
var ErrPanic = errors.New("codec panicked")

// Transcoder routes packets through per-track Transcode state.
type Transcoder struct {
	mu     sync.Mutex
	states map[uint32]Transcode

	sem     *semaphore.Weighted
	workers int
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// Option customises a Transcoder.
type Option func(*Transcoder)

// WithLogger sets the logger used for dropped-track diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transcoder) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithWorkers bounds how many tracks may run codec work at once.
func WithWorkers(n int) Option {
	return func(t *Transcoder) {
		if n > 0 {
			t.workers = n
		}
	}
}

// New returns a Transcoder owning the states in mapping. The map is copied;
// later changes to mapping are not observed.
func New(mapping map[uint32]Transcode, opts ...Option) *Transcoder {
	t := &Transcoder{
		states:  make(map[uint32]Transcode, len(mapping)),
		workers: runtime.GOMAXPROCS(0),
	}
	for id, state := range mapping {
		if state != nil {
			t.states[id] = state
		}
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = logging.NewComponentLogger(t.logger, "transcode")
	t.sem = semaphore.NewWeighted(int64(t.workers))
	return t
}

// Process sends pkt through its track's state and hands the results to emit.
// Packets for tracks without state (never mapped, failed, or currently being
// processed) are passed to emit unchanged.
//
// emit runs on a worker goroutine when the track has state. Process returns
// once that work finishes, or with ctx.Err() if ctx ends first; in that case
// the work still runs to completion and reinstates the state on success.
func (t *Transcoder) Process(ctx context.Context, pkt media.Packet, emit func(media.Packet)) error {
	id := pkt.TrackID
	state, ok := t.take(id)
	if !ok {
		emit(pkt)
		return nil
	}

	if err := t.sem.Acquire(ctx, 1); err != nil {
		t.put(id, state)
		return err
	}

	done := make(chan error, 1)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.sem.Release(1)
		err := apply(state, pkt, emit)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, t.logger), "track transcoding stopped", "transcode_failed",
				logging.TrackID(id),
				logging.Error(err),
				logging.String(logging.FieldImpact, "remaining packets for this track pass through unconverted"),
			)
		} else {
			t.put(id, state)
		}
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("transcode track %d: %w", id, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every dispatched worker has finished.
func (t *Transcoder) Wait() {
	t.wg.Wait()
}

// Flush waits for in-flight work, then flushes every held state that
// buffers output, in ascending track order. It returns the ids of tracks
// whose flush failed; their state is dropped.
func (t *Transcoder) Flush(ctx context.Context, emit func(media.Packet)) []uint32 {
	t.Wait()
	var failed []uint32
	for _, id := range t.Tracks() {
		state, ok := t.take(id)
		if !ok {
			continue
		}
		f, ok := state.(Flusher)
		if !ok {
			t.put(id, state)
			continue
		}
		if err := flush(f, id, emit); err != nil {
			logging.WarnWithContext(logging.WithContext(ctx, t.logger), "track flush failed", "transcode_flush_failed",
				logging.TrackID(id),
				logging.Error(err),
				logging.String(logging.FieldImpact, "buffered output for this track is lost"),
			)
			failed = append(failed, id)
			continue
		}
		t.put(id, state)
	}
	return failed
}

// Tracks lists the track ids whose state is currently held, in ascending
// order. Tracks checked out by an in-flight worker are not listed.
func (t *Transcoder) Tracks() []uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]uint32, 0, len(t.states))
	for id := range t.states {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (t *Transcoder) take(id uint32) (Transcode, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.states[id]
	if ok {
		delete(t.states, id)
	}
	return state, ok
}

func (t *Transcoder) put(id uint32, state Transcode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[id] = state
}

func apply(state Transcode, pkt media.Packet, emit func(media.Packet)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return state.Apply(pkt, emit)
}

func flush(f Flusher, id uint32, emit func(media.Packet)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return f.Flush(id, emit)
}
