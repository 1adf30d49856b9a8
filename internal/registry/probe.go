package registry

import (
	"context"
	"fmt"

	"mediabox/internal/format"
	"mediabox/internal/mediaio"
)

// FindDemuxer scores data against every registered demuxer and returns the
// best one. Equal top scores resolve to the earliest registration. The
// boolean is false when no demuxer scores above Unsure.
func (r *Registry) FindDemuxer(data []byte) (format.DemuxerDescriptor, format.ProbeResult, bool) {
	best := -1
	bestScore := format.Unsure
	for i, d := range r.demuxers {
		score := d.Probe(data)
		if best < 0 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore == format.Unsure {
		return format.DemuxerDescriptor{}, format.Unsure, false
	}
	return r.demuxers[best], bestScore, true
}

// Probe sniffs the unread bytes of in without consuming them and returns the
// demuxer that claims them.
func (r *Registry) Probe(ctx context.Context, in *mediaio.IO) (format.DemuxerDescriptor, error) {
	data, err := in.ReadProbe(ctx)
	if err != nil {
		return format.DemuxerDescriptor{}, fmt.Errorf("failed to probe I/O for data: %w", err)
	}
	d, _, ok := r.FindDemuxer(data)
	if !ok {
		return format.DemuxerDescriptor{}, fmt.Errorf("%w among %d registered for %q", ErrNoDemuxer, len(r.demuxers), in.URI())
	}
	return d, nil
}
