package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mediabox/internal/config"
)

// ErrNotFound is returned by Get for an unknown session id.
var ErrNotFound = errors.New("session not found")

const entryColumns = "id, input, output, demuxer, muxer, status, error_message, packets, started_at, finished_at"

// Store persists session history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the history database named by the config.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.HistoryDB)
}

// OpenPath initializes or connects to the database at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, errors.New("history database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection; cascading deletes need foreign_keys on every one.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts or replaces an entry and its tracks.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return errors.New("entry id is empty")
	}
	started := entry.StartedAt
	if started.IsZero() {
		started = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, entry.ID); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO sessions (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Input,
		entry.Output,
		nullableString(entry.Demuxer),
		nullableString(entry.Muxer),
		string(entry.Status),
		nullableString(entry.ErrorMessage),
		entry.Packets,
		started.UTC().Format(timeLayout),
		nullableTime(entry.FinishedAt),
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	for _, t := range entry.Tracks {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO session_tracks (
                session_id, track_id, kind, from_codec, to_codec, language, packets, failed
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID,
			int64(t.ID),
			t.Kind,
			nullableString(t.From),
			nullableString(t.To),
			nullableString(t.Language),
			t.Packets,
			boolToInt(t.Failed),
		); err != nil {
			return fmt.Errorf("insert track %d: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first. A non-positive limit
// returns every entry.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM sessions ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	for i := range entries {
		tracks, err := s.tracks(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Tracks = tracks
	}
	return entries, nil
}

// Get fetches one entry by session id.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM sessions WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get session: %w", err)
	}
	entry.Tracks, err = s.tracks(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Prune deletes entries that started before cutoff and reports how many
// were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE started_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) tracks(ctx context.Context, sessionID string) ([]Track, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT track_id, kind, from_codec, to_codec, language, packets, failed
         FROM session_tracks WHERE session_id = ? ORDER BY track_id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var (
			id       int64
			kind     string
			from     sql.NullString
			to       sql.NullString
			language sql.NullString
			packets  int
			failed   int64
		)
		if err := rows.Scan(&id, &kind, &from, &to, &language, &packets, &failed); err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		tracks = append(tracks, Track{
			ID:       uint32(id),
			Kind:     kind,
			From:     from.String,
			To:       to.String,
			Language: language.String,
			Packets:  packets,
			Failed:   failed != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tracks: %w", err)
	}
	return tracks, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry       Entry
		demuxer     sql.NullString
		muxer       sql.NullString
		status      string
		errMessage  sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.Input,
		&entry.Output,
		&demuxer,
		&muxer,
		&status,
		&errMessage,
		&entry.Packets,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return Entry{}, err
	}
	entry.Demuxer = demuxer.String
	entry.Muxer = muxer.String
	entry.Status = Status(status)
	entry.ErrorMessage = errMessage.String
	if started, err := parseTimeString(startedRaw); err == nil {
		entry.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw.String); err == nil {
		entry.FinishedAt = finished
	}
	return entry, nil
}
