package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/courier/internal/logging"

	_ "modernc.org/sqlite" // SQLite driver
)

//go:embed schema.sql
var schemaFS embed.FS

var ErrNotFound = errors.New("history entry not found")

// Store persists Entries in SQLite.
type Store struct {
	db     *sql.DB
	logger logging.Logger
	owned  bool
}

// Open opens (creating if needed) the SQLite database at path and applies
// the schema. The returned Store closes the database on Close.
func Open(path string, logger logging.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	// one writer keeps sqlite from reporting SQLITE_BUSY under load
	db.SetMaxOpenConns(1)

	s, err := NewStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewStore wraps an already opened database and applies the schema.
func NewStore(db *sql.DB, logger logging.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if err := applySchema(db); err != nil {
		return nil, err
	}
	return &Store{
		db:     db,
		logger: logger.With(logging.Field{Key: "component", Value: "history"}),
	}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Record inserts e, assigning an ID and CreatedAt when they are empty.
func (s *Store) Record(ctx context.Context, e *Entry) error {
	if e == nil {
		return fmt.Errorf("nil entry")
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	headers, err := json.Marshal(e.Headers)
	if err != nil {
		return fmt.Errorf("encoding headers: %w", err)
	}
	if e.Headers == nil {
		headers = []byte("{}")
	}

	var reqBody, respBody sql.NullString
	if e.RequestBody != nil {
		reqBody = sql.NullString{String: *e.RequestBody, Valid: true}
	}
	if len(e.ResponseBody) > 0 {
		respBody = sql.NullString{String: string(e.ResponseBody), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO history (id, method, url, headers, request_body, status, response_body, error, summary, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Method, e.URL, string(headers), reqBody, int(e.Status), respBody,
		e.Error, e.Summary, e.DurationMS, e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	s.logger.Debug("recorded history entry",
		logging.Field{Key: "id", Value: e.ID},
		logging.Field{Key: "status", Value: e.Status})
	return nil
}

const selectColumns = `id, method, url, headers, request_body, status, response_body, error, summary, duration_ms, created_at`

// List returns the newest entries first. limit <= 0 returns everything.
func (s *Store) List(ctx context.Context, limit int) ([]*Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM history ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := make([]*Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

// Get returns the entry with id or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM history WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Delete removes one entry, returning ErrNotFound when it does not exist.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every entry and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

// Prune keeps the newest keep entries and deletes the rest.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY created_at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Debug("pruned history", logging.Field{Key: "deleted", Value: n})
	}
	return n, nil
}

// Close closes the database when the Store opened it.
func (s *Store) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*Entry, error) {
	var (
		e         Entry
		headers   string
		reqBody   sql.NullString
		respBody  sql.NullString
		status    int
		createdAt int64
	)
	err := sc.Scan(&e.ID, &e.Method, &e.URL, &headers, &reqBody, &status, &respBody,
		&e.Error, &e.Summary, &e.DurationMS, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan history entry: %w", err)
	}

	if headers != "" && headers != "{}" {
		if err := json.Unmarshal([]byte(headers), &e.Headers); err != nil {
			return nil, fmt.Errorf("decode headers of %s: %w", e.ID, err)
		}
	}
	if reqBody.Valid {
		b := reqBody.String
		e.RequestBody = &b
	}
	if respBody.Valid {
		e.ResponseBody = json.RawMessage(respBody.String)
	}
	e.Status = uint16(status)
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	return &e, nil
}
