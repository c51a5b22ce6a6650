package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cameronkarthik/synapse-mind-vault-main/store"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	_ "modernc.org/sqlite"
)

var DRIVER string

func init() {
	driver, err := otelsql.Register(
		"sqlite",
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemSqlite),
	)
	if err != nil {
		detail := "failed to register sqlite store with otel"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	DRIVER = driver
}

// timeLayout is RFC3339 with a fixed-width fraction so stored timestamps
// sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS thoughts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	input TEXT NOT NULL,
	output TEXT NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	summary TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_thoughts_timestamp ON thoughts (timestamp);
CREATE TABLE IF NOT EXISTS thought_tags (
	tag TEXT NOT NULL,
	thought_id INTEGER NOT NULL REFERENCES thoughts (id) ON DELETE CASCADE,
	PRIMARY KEY (tag, thought_id)
);
CREATE INDEX IF NOT EXISTS idx_thought_tags_thought ON thought_tags (thought_id);
`

type sqliteStore struct {
	options store.Options
	conn    *sql.DB
}

func (s *sqliteStore) Save(ctx context.Context, thought store.Thought) (int64, error) {
	tagsJson, err := json.Marshal(thought.Tags)
	if err != nil {
		return 0, &store.StorageError{Op: "save", Err: err}
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, &store.StorageError{Op: "save", Err: err}
	}
	defer tx.Rollback()

	query := `
		INSERT INTO thoughts (timestamp, input, output, tags, summary, error)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		thought.Timestamp.UTC().Format(timeLayout),
		thought.Input,
		thought.Output,
		string(tagsJson),
		thought.Summary,
		thought.Error,
	)
	if err != nil {
		return 0, &store.StorageError{Op: "save", Err: err}
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, &store.StorageError{Op: "save", Err: err}
	}

	for _, tag := range thought.Tags {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO thought_tags (tag, thought_id) VALUES (?, ?)`,
			tag,
			id,
		); err != nil {
			return 0, &store.StorageError{Op: "save", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &store.StorageError{Op: "save", Err: err}
	}

	return id, nil
}

func (s *sqliteStore) GetAll(ctx context.Context) ([]store.Thought, error) {
	query := `
		SELECT id, timestamp, input, output, tags, summary, error
		FROM thoughts
		ORDER BY timestamp ASC, id ASC
	`

	return s.query(ctx, "getAll", query)
}

func (s *sqliteStore) GetByTag(ctx context.Context, tag string) ([]store.Thought, error) {
	query := `
		SELECT t.id, t.timestamp, t.input, t.output, t.tags, t.summary, t.error
		FROM thoughts t
		JOIN thought_tags tt ON tt.thought_id = t.id
		WHERE tt.tag = ?
		ORDER BY t.id ASC
	`

	return s.query(ctx, "getByTag", query, tag)
}

func (s *sqliteStore) SearchByContent(ctx context.Context, query string) ([]store.Thought, error) {
	stmt := `
		SELECT id, timestamp, input, output, tags, summary, error
		FROM thoughts
		WHERE instr(lower(input), lower(?)) > 0
		   OR instr(lower(output), lower(?)) > 0
		   OR instr(lower(summary), lower(?)) > 0
		ORDER BY id ASC
	`

	return s.query(ctx, "searchByContent", stmt, query, query, query)
}

func (s *sqliteStore) GetRecent(ctx context.Context, limit int) ([]store.Thought, error) {
	if limit < 1 {
		return nil, nil
	}

	query := `
		SELECT id, timestamp, input, output, tags, summary, error
		FROM thoughts
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	return s.query(ctx, "getRecent", query, limit)
}

func (s *sqliteStore) ClearAll(ctx context.Context) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return &store.StorageError{Op: "clearAll", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM thought_tags`); err != nil {
		return &store.StorageError{Op: "clearAll", Err: err}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM thoughts`); err != nil {
		return &store.StorageError{Op: "clearAll", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &store.StorageError{Op: "clearAll", Err: err}
	}

	return nil
}

func (s *sqliteStore) Close() error {
	return s.conn.Close()
}

func (s *sqliteStore) query(ctx context.Context, op string, stmt string, args ...any) ([]store.Thought, error) {
	rows, err := s.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, &store.StorageError{Op: op, Err: err}
	}
	defer rows.Close()

	var thoughts []store.Thought

	for rows.Next() {
		var t store.Thought
		var timestampStr, tagsJson string

		if err := rows.Scan(&t.Id, &timestampStr, &t.Input, &t.Output, &tagsJson, &t.Summary, &t.Error); err != nil {
			return nil, &store.StorageError{Op: op, Err: err}
		}

		// A malformed row is surfaced, never silently omitted.
		ts, err := time.Parse(timeLayout, timestampStr)
		if err != nil {
			return nil, &store.StorageError{Op: op, Err: fmt.Errorf("record %d: bad timestamp %q: %w", t.Id, timestampStr, err)}
		}
		t.Timestamp = ts

		if err := json.Unmarshal([]byte(tagsJson), &t.Tags); err != nil {
			return nil, &store.StorageError{Op: op, Err: fmt.Errorf("record %d: bad tags: %w", t.Id, err)}
		}

		thoughts = append(thoughts, t)
	}

	if err := rows.Err(); err != nil {
		return nil, &store.StorageError{Op: op, Err: err}
	}

	return thoughts, nil
}

// NewStore opens (or creates) the database at the configured location and
// runs the schema once. Resolved at startup; call sites never poll for the
// handle.
func NewStore(opts ...store.Option) (store.Store, error) {
	options := store.NewOptions(opts...)

	if len(options.Location) == 0 {
		options.Location = "synapse.db"
	}

	conn, err := sql.Open(DRIVER, options.Location)
	if err != nil {
		return nil, &store.StorageError{Op: "open", Err: err}
	}

	if err := conn.PingContext(options.Context); err != nil {
		conn.Close()
		return nil, &store.StorageError{Op: "open", Err: err}
	}

	if _, err := conn.ExecContext(options.Context, schema); err != nil {
		conn.Close()
		return nil, &store.StorageError{Op: "open", Err: err}
	}

	return &sqliteStore{
		options: options,
		conn:    conn,
	}, nil
}
