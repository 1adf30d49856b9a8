package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"mediabox/internal/media"
	"mediabox/internal/mediaio"
	"mediabox/internal/registry"
)

// TrackStats describes one demuxed track and the packets seen for it.
type TrackStats struct {
	Track   media.Track
	Packets int
	// First and Last span the presentation times of the track's packets.
	First time.Duration
	Last  time.Duration
}

// Inspection is the result of reading an input without converting it.
type Inspection struct {
	URI     string
	Demuxer string
	Tracks  []TrackStats
}

// Inspect probes uri, starts its demuxer and reads every packet to collect
// per-track statistics.
func Inspect(ctx context.Context, reg *registry.Registry, uri string) (Inspection, error) {
	in, err := mediaio.Open(ctx, uri)
	if err != nil {
		return Inspection{}, err
	}
	defer in.Close()

	desc, err := reg.Probe(ctx, in)
	if err != nil {
		return Inspection{}, err
	}
	report := Inspection{URI: in.URI(), Demuxer: desc.Name}

	dmx := desc.New()
	tracks, err := dmx.Start(ctx, in)
	if err != nil {
		return report, fmt.Errorf("start demuxer %q: %w", desc.Name, err)
	}
	index := make(map[uint32]int, len(tracks))
	for i, track := range tracks {
		index[track.ID] = i
		report.Tracks = append(report.Tracks, TrackStats{Track: track})
	}

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		pkt, err := dmx.Read(ctx, in)
		if errors.Is(err, io.EOF) {
			return report, nil
		}
		if err != nil {
			return report, fmt.Errorf("read packet: %w", err)
		}
		i, ok := index[pkt.TrackID]
		if !ok {
			continue
		}
		stats := &report.Tracks[i]
		start, end := pkt.Time.Start(), pkt.Time.End()
		if stats.Packets == 0 || start < stats.First {
			stats.First = start
		}
		if end > stats.Last {
			stats.Last = end
		}
		stats.Packets++
	}
}
