package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mediabox/internal/format"
	"mediabox/internal/logging"
	"mediabox/internal/media"
	"mediabox/internal/mediaio"
	"mediabox/internal/registry"
	"mediabox/internal/transcode"
)

// ErrOutputLocked is returned when another session holds the output lock.
var ErrOutputLocked = errors.New("output is locked by another session")

const packetBuffer = 64

// Request describes one conversion.
type Request struct {
	// Input and Output are bare paths or file:// URIs.
	Input  string
	Output string
	// Encoder is the codec subtitle tracks are converted to. Empty copies
	// every track unchanged.
	Encoder string
	// Muxer names the output container. Empty selects it from the output
	// file extension.
	Muxer string
	// Lock guards the output with an advisory <output>.lock file.
	Lock bool
}

// TrackSummary describes one output track.
type TrackSummary struct {
	ID       uint32
	Kind     media.Kind
	From     string
	To       string
	Language string
	Packets  int
	Failed   bool
}

// Summary reports what a run did. It is filled in as far as the run got,
// so failed runs still carry their id and timing.
type Summary struct {
	ID       string
	Input    string
	Output   string
	Demuxer  string
	Muxer    string
	Tracks   []TrackSummary
	Packets  int
	Started  time.Time
	Finished time.Time
}

// Duration is the wall time of the run.
func (s Summary) Duration() time.Duration {
	if s.Finished.IsZero() {
		return 0
	}
	return s.Finished.Sub(s.Started)
}

// Runner executes sessions against a frozen registry.
type Runner struct {
	reg     *registry.Registry
	base    *slog.Logger
	logger  *slog.Logger
	workers int
}

// Option customises a Runner.
type Option func(*Runner)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.base = logger
		}
	}
}

// WithWorkers bounds concurrent codec work per session.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// NewRunner returns a Runner using reg for every lookup.
func NewRunner(reg *registry.Registry, opts ...Option) *Runner {
	r := &Runner{reg: reg}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.base, "session")
	return r
}

// Run performs req.
func (r *Runner) Run(ctx context.Context, req Request) (Summary, error) {
	summary := Summary{
		ID:      uuid.NewString(),
		Input:   req.Input,
		Output:  req.Output,
		Started: time.Now(),
	}
	logger := logging.WithSession(r.logger, summary.ID)
	ctx = logging.ContextWithSession(ctx, summary.ID)

	err := r.run(ctx, req, &summary, logger)
	summary.Finished = time.Now()
	if err != nil {
		logging.ErrorWithContext(logger, "session failed", "session_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the input format and output path"),
		)
		return summary, err
	}
	logger.Info("session complete",
		logging.String("input", req.Input),
		logging.String("output", req.Output),
		logging.Int("packets", summary.Packets),
		logging.Duration("elapsed", summary.Duration()),
	)
	return summary, nil
}

func (r *Runner) run(ctx context.Context, req Request, summary *Summary, logger *slog.Logger) error {
	muxDesc, err := r.resolveMuxer(req)
	if err != nil {
		return err
	}
	summary.Muxer = muxDesc.Name

	if req.Lock {
		unlock, err := lockOutput(req.Output)
		if err != nil {
			return err
		}
		defer unlock()
	}

	in, err := mediaio.Open(ctx, req.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	demuxDesc, err := r.reg.Probe(ctx, in)
	if err != nil {
		return err
	}
	summary.Demuxer = demuxDesc.Name
	logger = logger.With(logging.Demuxer(demuxDesc.Name))
	logger.Debug("input probed", logging.String("input", in.URI()))

	dmx := demuxDesc.New()
	tracks, err := dmx.Start(ctx, in)
	if err != nil {
		return fmt.Errorf("start demuxer %q: %w", demuxDesc.Name, err)
	}

	mapping, outTracks, err := r.plan(ctx, tracks, req.Encoder, summary, logger)
	if err != nil {
		return err
	}

	out, err := mediaio.Create(ctx, req.Output)
	if err != nil {
		return err
	}
	defer out.Close()

	mux := muxDesc.New()
	if err := mux.Start(ctx, out, outTracks); err != nil {
		return fmt.Errorf("start muxer %q: %w", muxDesc.Name, err)
	}

	tr := transcode.New(mapping, transcode.WithLogger(r.base), transcode.WithWorkers(r.workers))
	if err := r.pump(ctx, in, out, dmx, mux, tr, summary); err != nil {
		return err
	}
	if err := mux.Stop(ctx, out); err != nil {
		return fmt.Errorf("stop muxer %q: %w", muxDesc.Name, err)
	}
	return nil
}

func (r *Runner) resolveMuxer(req Request) (format.MuxerDescriptor, error) {
	if req.Muxer != "" {
		return r.reg.Muxer(req.Muxer)
	}
	path, err := mediaio.LocalPath(req.Output)
	if err != nil {
		return format.MuxerDescriptor{}, err
	}
	return r.reg.MuxerForExtension(filepath.Ext(path))
}

// plan builds transcode state for every subtitle track when an encoder is
// requested and lists the tracks the muxer will see.
func (r *Runner) plan(ctx context.Context, tracks []media.Track, encoder string, summary *Summary, logger *slog.Logger) (map[uint32]transcode.Transcode, []media.Track, error) {
	mapping := make(map[uint32]transcode.Transcode)
	outTracks := make([]media.Track, 0, len(tracks))
	for _, track := range tracks {
		ts := TrackSummary{
			ID:       track.ID,
			Kind:     track.Info.Kind(),
			From:     track.Info.Name,
			To:       track.Info.Name,
			Language: track.Info.Language.String(),
		}
		outTrack := track
		if encoder != "" && track.Info.Kind() == media.KindSubtitle && encoder != track.Info.Name {
			state, info, err := transcode.NewSubtitles(r.reg, track, encoder, nil)
			if err != nil {
				return nil, nil, err
			}
			mapping[track.ID] = state
			outTrack.Info = info
			ts.To = info.Name
		}
		logger.LogAttrs(ctx, slog.LevelInfo, "track planned", logging.TrackAttrs(track.ID, ts.From,
			logging.String("output_codec", ts.To),
			logging.String("language", ts.Language),
		)...)
		summary.Tracks = append(summary.Tracks, ts)
		outTracks = append(outTracks, outTrack)
	}
	return mapping, outTracks, nil
}

func (r *Runner) pump(ctx context.Context, in, out *mediaio.IO, dmx format.Demuxer, mux format.Muxer, tr *transcode.Transcoder, summary *Summary) error {
	g, gctx := errgroup.WithContext(ctx)
	packets := make(chan media.Packet, packetBuffer)

	var mu sync.Mutex
	counts := make(map[uint32]int)
	failed := make(map[uint32]bool)

	emit := func(pkt media.Packet) {
		select {
		case packets <- pkt:
		case <-gctx.Done():
		}
	}

	g.Go(func() error {
		defer close(packets)
		defer tr.Wait()
		for {
			pkt, err := dmx.Read(gctx, in)
			if errors.Is(err, io.EOF) {
				ids := tr.Flush(gctx, emit)
				mu.Lock()
				for _, id := range ids {
					failed[id] = true
				}
				mu.Unlock()
				return gctx.Err()
			}
			if err != nil {
				return fmt.Errorf("demux: %w", err)
			}
			if err := tr.Process(gctx, pkt, emit); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				mu.Lock()
				failed[pkt.TrackID] = true
				mu.Unlock()
			}
		}
	})

	g.Go(func() error {
		for pkt := range packets {
			if err := mux.Write(gctx, out, pkt); err != nil {
				return fmt.Errorf("mux: %w", err)
			}
			mu.Lock()
			counts[pkt.TrackID]++
			mu.Unlock()
		}
		return nil
	})

	err := g.Wait()
	for i := range summary.Tracks {
		id := summary.Tracks[i].ID
		summary.Tracks[i].Packets = counts[id]
		summary.Tracks[i].Failed = failed[id]
		summary.Packets += counts[id]
	}
	return err
}

func lockOutput(output string) (func(), error) {
	path, err := mediaio.LocalPath(output)
	if err != nil {
		return nil, err
	}
	lock := flock.New(path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, path)
	}
	return func() { _ = lock.Unlock() }, nil
}
