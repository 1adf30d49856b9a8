package history_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"mediabox/internal/history"
	"mediabox/internal/media"
	"mediabox/internal/session"
	"mediabox/internal/testsupport"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.OpenPath(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleSummary(id string, started time.Time) session.Summary {
	return session.Summary{
		ID:      id,
		Input:   "/in/movie.srt",
		Output:  "/out/movie.vtt",
		Demuxer: "srt",
		Muxer:   "webvtt",
		Packets: 7,
		Tracks: []session.TrackSummary{
			{ID: 0, Kind: media.KindSubtitle, From: "srt", To: "webvtt", Language: "en", Packets: 7},
		},
		Started:  started,
		Finished: started.Add(1500 * time.Millisecond),
	}
}

func TestOpenUsesConfigPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()
	if store.Path() != cfg.Paths.HistoryDB {
		t.Fatalf("expected path %q, got %q", cfg.Paths.HistoryDB, store.Path())
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	ctx := context.Background()
	if err := store.Record(ctx, history.EntryFromSummary(sampleSummary("a", time.Now()), nil)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(ctx, "a"); err != nil {
		t.Fatalf("expected entry after reopen: %v", err)
	}
}

func TestRecordAndGet(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Record(ctx, history.EntryFromSummary(sampleSummary("s1", started), nil)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entry, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if entry.Status != history.StatusCompleted || entry.ErrorMessage != "" {
		t.Fatalf("unexpected status %q (%q)", entry.Status, entry.ErrorMessage)
	}
	if !entry.StartedAt.Equal(started) || entry.Duration() != 1500*time.Millisecond {
		t.Fatalf("unexpected timing %v %v", entry.StartedAt, entry.Duration())
	}
	if entry.Demuxer != "srt" || entry.Muxer != "webvtt" || entry.Packets != 7 {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if len(entry.Tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(entry.Tracks))
	}
	track := entry.Tracks[0]
	if track.Kind != "subtitle" || track.From != "srt" || track.To != "webvtt" || track.Language != "en" || track.Failed {
		t.Fatalf("unexpected track %+v", track)
	}
}

func TestRecordReplacesExistingEntry(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	sum := sampleSummary("dup", time.Now())
	if err := store.Record(ctx, history.EntryFromSummary(sum, nil)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	sum.Tracks[0].Failed = true
	if err := store.Record(ctx, history.EntryFromSummary(sum, errors.New("boom"))); err != nil {
		t.Fatalf("second Record failed: %v", err)
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected single entry, got %d", len(entries))
	}
	if entries[0].Status != history.StatusFailed || entries[0].ErrorMessage != "boom" {
		t.Fatalf("unexpected replacement %+v", entries[0])
	}
	if entries[0].FailedTracks() != 1 {
		t.Fatalf("expected one failed track, got %d", entries[0].FailedTracks())
	}
}

func TestStatusFromError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want history.Status
	}{
		{name: "success", want: history.StatusCompleted},
		{name: "failure", err: errors.New("bad"), want: history.StatusFailed},
		{name: "cancelled", err: fmt.Errorf("pump: %w", context.Canceled), want: history.StatusCancelled},
		{name: "deadline", err: context.DeadlineExceeded, want: history.StatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := history.EntryFromSummary(sampleSummary("x", time.Now()), tc.err)
			if entry.Status != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, entry.Status)
			}
		})
	}
}

func TestListOrdersNewestFirstAndLimits(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{0, 500 * time.Millisecond, 2 * time.Second} {
		id := fmt.Sprintf("s%d", i)
		if err := store.Record(ctx, history.EntryFromSummary(sampleSummary(id, base.Add(offset)), nil)); err != nil {
			t.Fatalf("Record %s failed: %v", id, err)
		}
	}

	entries, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "s2" || entries[1].ID != "s1" {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if len(entries[0].Tracks) != 1 {
		t.Fatalf("expected tracks to be loaded")
	}
}

func TestGetUnknown(t *testing.T) {
	store := openStore(t)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordRequiresID(t *testing.T) {
	store := openStore(t)
	if err := store.Record(context.Background(), history.Entry{}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestPruneRemovesOldEntriesAndTracks(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for id, started := range map[string]time.Time{"old": old, "recent": recent} {
		if err := store.Record(ctx, history.EntryFromSummary(sampleSummary(id, started), nil)); err != nil {
			t.Fatalf("Record %s failed: %v", id, err)
		}
	}

	removed, err := store.Prune(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "recent" {
		t.Fatalf("unexpected remaining entries %+v", entries)
	}
}
