package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrNotFound is returned when a bucket or event does not exist.
var ErrNotFound = errors.New("not found")

// TimestampLayout is the fixed-width UTC layout events are stored with, so
// that lexical order in SQLite equals chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Store defines the interface for activity data operations.
type Store interface {
	UpsertBucket(ctx context.Context, bucket *Bucket) error
	ListBuckets(ctx context.Context) ([]Bucket, error)
	BucketIDs(ctx context.Context) ([]string, error)
	CountEvents(ctx context.Context, bucketID string) (int64, error)
	AddEvent(ctx context.Context, event *Event) error
	ImportEvents(ctx context.Context, events []Event) (int64, error)
	SearchEvents(ctx context.Context, query SearchQuery) ([]Event, error)
	EmbeddedEvents(ctx context.Context, query SearchQuery) ([]Event, error)
	EventsMissingEmbedding(ctx context.Context, limit int) ([]Event, error)
	SetEmbedding(ctx context.Context, eventID int64, model string, vec []float32) error
	CountOlderThan(ctx context.Context, olderThan time.Time) (int64, error)
	PruneExpired(ctx context.Context, olderThan time.Time) (int64, error)
	PurgeAll(ctx context.Context) error
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	upsertBucket *sql.Stmt
	insertEvent  *sql.Stmt
	insertFTS    *sql.Stmt
	countEvents  *sql.Stmt
	setEmbedding *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.initFTS(); err != nil {
		return nil, fmt.Errorf("init FTS: %w", err)
	}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.upsertBucket, err = s.db.Prepare(`
		INSERT INTO buckets (id, type, client, hostname, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			client = excluded.client,
			hostname = excluded.hostname
	`)
	if err != nil {
		return err
	}

	s.insertEvent, err = s.db.Prepare(`
		INSERT OR IGNORE INTO events (bucket_id, ts, duration, app, title)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.insertFTS, err = s.db.Prepare(`
		INSERT INTO events_fts (event_id, app, title) VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.countEvents, err = s.db.Prepare(`SELECT COUNT(*) FROM events WHERE bucket_id = ?`)
	if err != nil {
		return err
	}

	s.setEmbedding, err = s.db.Prepare(`
		UPDATE events SET embedding = ?, embed_model = ? WHERE id = ?
	`)
	if err != nil {
		return err
	}

	return nil
}

// initFTS creates the FTS5 virtual table for full-text search if it doesn't exist.
func (s *SQLiteStore) initFTS() error {
	_, err := s.db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS events_fts USING fts5(
			event_id UNINDEXED,
			app,
			title,
			tokenize='unicode61'
		)
	`)
	return err
}

// ftsQuery converts a user search string into a valid FTS5 query.
// Each word becomes a quoted prefix token joined with OR.
func ftsQuery(input string) string {
	words := strings.Fields(input)
	if len(words) == 0 {
		return ""
	}
	var parts []string
	for _, w := range words {
		w = strings.ReplaceAll(w, `"`, `""`)
		parts = append(parts, `"`+w+`"*`)
	}
	return strings.Join(parts, " OR ")
}

// NormalizeTimestamp converts an ISO-8601 timestamp to TimestampLayout in UTC.
// Inputs that do not parse are returned unchanged.
func NormalizeTimestamp(raw string) string {
	t, err := parseTimestamp(raw)
	if err != nil {
		return raw
	}
	return t.UTC().Format(TimestampLayout)
}

// parseTimestamp tries several common timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

func encodeEmbedding(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeEmbedding(buf []byte) []float32 {
	if len(buf) == 0 {
		return nil
	}
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}

// UpsertBucket inserts a bucket or refreshes its metadata.
func (s *SQLiteStore) UpsertBucket(ctx context.Context, bucket *Bucket) error {
	if bucket.ID == "" {
		return fmt.Errorf("bucket id is required")
	}
	if bucket.Created.IsZero() {
		bucket.Created = time.Now()
	}
	_, err := s.upsertBucket.ExecContext(ctx,
		bucket.ID, bucket.Type, bucket.Client, bucket.Hostname,
		bucket.Created.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert bucket: %w", err)
	}
	return nil
}

// ListBuckets returns all buckets ordered by id.
func (s *SQLiteStore) ListBuckets(ctx context.Context) ([]Bucket, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, client, hostname, created_at FROM buckets ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	defer rows.Close()

	buckets := []Bucket{}
	for rows.Next() {
		var b Bucket
		var created string
		if err := rows.Scan(&b.ID, &b.Type, &b.Client, &b.Hostname, &created); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		b.Created, _ = parseTimestamp(created)
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// BucketIDs returns the ids of all buckets.
func (s *SQLiteStore) BucketIDs(ctx context.Context) ([]string, error) {
	buckets, err := s.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(buckets))
	for i, b := range buckets {
		ids[i] = b.ID
	}
	return ids, nil
}

// CountEvents returns the number of events stored for a bucket.
func (s *SQLiteStore) CountEvents(ctx context.Context, bucketID string) (int64, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM buckets WHERE id = ?", bucketID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("bucket %s: %w", bucketID, ErrNotFound)
		}
		return 0, fmt.Errorf("lookup bucket: %w", err)
	}

	var n int64
	if err := s.countEvents.QueryRowContext(ctx, bucketID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// AddEvent inserts a new event. The timestamp is normalized and the ID is
// populated. An exact duplicate (same bucket, timestamp, app and title) is
// silently skipped: ID remains 0 and no error is returned.
func (s *SQLiteStore) AddEvent(ctx context.Context, event *Event) error {
	if event.BucketID == "" {
		return fmt.Errorf("event bucket id is required")
	}
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(TimestampLayout)
	}
	event.Timestamp = NormalizeTimestamp(event.Timestamp)
	if event.Duration < 0 || math.IsNaN(event.Duration) {
		event.Duration = 0
	}

	res, err := s.insertEvent.ExecContext(ctx,
		event.BucketID, event.Timestamp, event.Duration, event.App, event.Title,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	event.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("event id: %w", err)
	}

	if _, err := s.insertFTS.ExecContext(ctx, event.ID, event.App, event.Title); err != nil {
		return fmt.Errorf("insert FTS: %w", err)
	}
	return nil
}

// ImportEvents inserts events in a single transaction and returns how many
// were new. Duplicates are skipped.
func (s *SQLiteStore) ImportEvents(ctx context.Context, events []Event) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	insertEvent := tx.StmtContext(ctx, s.insertEvent)
	insertFTS := tx.StmtContext(ctx, s.insertFTS)

	var inserted int64
	for i := range events {
		e := &events[i]
		if e.BucketID == "" {
			return 0, fmt.Errorf("event %d: bucket id is required", i)
		}
		e.Timestamp = NormalizeTimestamp(e.Timestamp)
		if e.Duration < 0 || math.IsNaN(e.Duration) {
			e.Duration = 0
		}

		res, err := insertEvent.ExecContext(ctx, e.BucketID, e.Timestamp, e.Duration, e.App, e.Title)
		if err != nil {
			return 0, fmt.Errorf("insert event %d: %w", i, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		e.ID, err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("event id: %w", err)
		}
		if _, err := insertFTS.ExecContext(ctx, e.ID, e.App, e.Title); err != nil {
			return 0, fmt.Errorf("insert FTS: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// SearchEvents queries events with optional filters. A non-empty Query uses
// the FTS index ordered by rank; otherwise events are returned newest first.
func (s *SQLiteStore) SearchEvents(ctx context.Context, q SearchQuery) ([]Event, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}

	if strings.TrimSpace(q.Query) != "" {
		return s.searchFTS(ctx, q)
	}

	return s.searchFiltered(ctx, q, false)
}

// EmbeddedEvents returns every event matching the filters that has an
// embedding, newest first. q.Query and q.Limit are ignored.
func (s *SQLiteStore) EmbeddedEvents(ctx context.Context, q SearchQuery) ([]Event, error) {
	q.Limit = -1
	q.Offset = 0
	return s.searchFiltered(ctx, q, true)
}

// filterClauses builds WHERE clauses for the bucket and time filters.
func filterClauses(prefix string, q SearchQuery) ([]string, []interface{}) {
	var clauses []string
	var args []interface{}

	if q.BucketID != "" {
		clauses = append(clauses, prefix+"bucket_id = ?")
		args = append(args, q.BucketID)
	}
	if !q.Since.IsZero() {
		clauses = append(clauses, prefix+"ts >= ?")
		args = append(args, q.Since.UTC().Format(TimestampLayout))
	}
	if !q.Until.IsZero() {
		clauses = append(clauses, prefix+"ts < ?")
		args = append(args, q.Until.UTC().Format(TimestampLayout))
	}
	return clauses, args
}

// searchFTS uses the FTS5 index for keyword search, then joins with events table for filtering.
func (s *SQLiteStore) searchFTS(ctx context.Context, q SearchQuery) ([]Event, error) {
	baseQuery := `
		SELECT e.id, e.bucket_id, e.ts, e.duration, e.app, e.title, e.embedding
		FROM events_fts f
		JOIN events e ON e.id = f.event_id
	`

	clauses := []string{"events_fts MATCH ?"}
	args := []interface{}{ftsQuery(q.Query)}

	fc, fa := filterClauses("e.", q)
	clauses = append(clauses, fc...)
	args = append(args, fa...)

	fullQuery := baseQuery + " WHERE " + strings.Join(clauses, " AND ") +
		" ORDER BY rank, e.ts DESC LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	return s.scanEvents(ctx, fullQuery, args...)
}

// searchFiltered queries events using standard SQL filters (no FTS).
func (s *SQLiteStore) searchFiltered(ctx context.Context, q SearchQuery, embeddedOnly bool) ([]Event, error) {
	baseQuery := `
		SELECT id, bucket_id, ts, duration, app, title, embedding
		FROM events
	`

	clauses, args := filterClauses("", q)
	if embeddedOnly {
		clauses = append(clauses, "embedding IS NOT NULL")
	}

	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	fullQuery := baseQuery + where + " ORDER BY ts DESC LIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset)

	return s.scanEvents(ctx, fullQuery, args...)
}

// scanEvents executes a query and scans results into Event slices.
func (s *SQLiteStore) scanEvents(ctx context.Context, query string, args ...interface{}) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var blob []byte
		if err := rows.Scan(&e.ID, &e.BucketID, &e.Timestamp, &e.Duration, &e.App, &e.Title, &blob); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Embedding = decodeEmbedding(blob)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// EventsMissingEmbedding returns up to limit events without an embedding, oldest id first.
func (s *SQLiteStore) EventsMissingEmbedding(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 16
	}
	return s.scanEvents(ctx, `
		SELECT id, bucket_id, ts, duration, app, title, embedding
		FROM events WHERE embedding IS NULL ORDER BY id LIMIT ?
	`, limit)
}

// SetEmbedding stores the embedding vector computed for an event.
func (s *SQLiteStore) SetEmbedding(ctx context.Context, eventID int64, model string, vec []float32) error {
	res, err := s.setEmbedding.ExecContext(ctx, encodeEmbedding(vec), model, eventID)
	if err != nil {
		return fmt.Errorf("set embedding: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("event %d: %w", eventID, ErrNotFound)
	}
	return nil
}

// CountOlderThan returns how many events PruneExpired would delete.
func (s *SQLiteStore) CountOlderThan(ctx context.Context, olderThan time.Time) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE ts < ?", olderThan.UTC().Format(TimestampLayout),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count expired: %w", err)
	}
	return n, nil
}

// PruneExpired deletes events with timestamps before olderThan.
func (s *SQLiteStore) PruneExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	tsFormatted := olderThan.UTC().Format(TimestampLayout)

	// Clean FTS entries first
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM events_fts WHERE event_id IN (
			SELECT id FROM events WHERE ts < ?
		)`, tsFormatted,
	)
	if err != nil {
		return 0, fmt.Errorf("prune FTS: %w", err)
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE ts < ?", tsFormatted)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}

	return res.RowsAffected()
}

// PurgeAll deletes all events and buckets.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	stmts := []string{
		"DELETE FROM events_fts",
		"DELETE FROM events",
		"DELETE FROM buckets",
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("purge (%s): %w", stmt, err)
		}
	}
	return nil
}

// GetStats returns aggregate statistics about the database.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&stats.TotalEvents)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM buckets").Scan(&stats.TotalBuckets)
	if err != nil {
		return nil, fmt.Errorf("count buckets: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE embedding IS NOT NULL",
	).Scan(&stats.EmbeddedEvents)
	if err != nil {
		return nil, fmt.Errorf("count embedded: %w", err)
	}

	// Oldest and newest (handle empty DB)
	if stats.TotalEvents > 0 {
		err = s.db.QueryRowContext(ctx, "SELECT MIN(ts), MAX(ts) FROM events").
			Scan(&stats.OldestEvent, &stats.NewestEvent)
		if err != nil {
			return nil, fmt.Errorf("event time range: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT app, COUNT(*) AS cnt FROM events
		WHERE app != ''
		GROUP BY app ORDER BY cnt DESC, app LIMIT 10
	`)
	if err != nil {
		return nil, fmt.Errorf("top apps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ac AppCount
		if err := rows.Scan(&ac.App, &ac.Count); err != nil {
			return nil, err
		}
		stats.TopApps = append(stats.TopApps, ac)
	}

	return stats, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{
		s.upsertBucket, s.insertEvent, s.insertFTS,
		s.countEvents, s.setEmbedding,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
