package history

import (
	"time"

	"mediabox/internal/session"
)

// Status is the outcome of a recorded session.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Track is one output track of a recorded session.
type Track struct {
	ID       uint32
	Kind     string
	From     string
	To       string
	Language string
	Packets  int
	Failed   bool
}

// Entry is one recorded session.
type Entry struct {
	ID           string
	Input        string
	Output       string
	Demuxer      string
	Muxer        string
	Status       Status
	ErrorMessage string
	Packets      int
	StartedAt    time.Time
	FinishedAt   time.Time
	Tracks       []Track
}

// Duration is the wall time of the session, zero when it never finished.
func (e Entry) Duration() time.Duration {
	if e.FinishedAt.IsZero() {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// FailedTracks counts tracks whose transcode was abandoned.
func (e Entry) FailedTracks() int {
	n := 0
	for _, t := range e.Tracks {
		if t.Failed {
			n++
		}
	}
	return n
}

// EntryFromSummary converts a session outcome into a history entry.
func EntryFromSummary(sum session.Summary, runErr error) Entry {
	entry := Entry{
		ID:         sum.ID,
		Input:      sum.Input,
		Output:     sum.Output,
		Demuxer:    sum.Demuxer,
		Muxer:      sum.Muxer,
		Status:     statusFor(runErr),
		Packets:    sum.Packets,
		StartedAt:  sum.Started,
		FinishedAt: sum.Finished,
	}
	if runErr != nil {
		entry.ErrorMessage = runErr.Error()
	}
	for _, t := range sum.Tracks {
		entry.Tracks = append(entry.Tracks, Track{
			ID:       t.ID,
			Kind:     t.Kind.String(),
			From:     t.From,
			To:       t.To,
			Language: t.Language,
			Packets:  t.Packets,
			Failed:   t.Failed,
		})
	}
	return entry
}
