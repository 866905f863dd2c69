// Package registry persists the table of upstream API sources.
//
// A source is a named base URL pointing at a third-party video catalog.
// Exactly one enabled source may be marked default; the default is what
// dispatch falls back to when a caller names no source.
package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Source is one row of the api_sources table. The JSON field names match
// the wire format the admin endpoints have always exposed.
type Source struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Enabled   int    `json:"is_enabled"`
	Default   int    `json:"is_default"`
	Timeout   int    `json:"timeout"` // milliseconds, per-source override
	Remark    string `json:"remark"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// UpdateFields carries a partial update; nil means "leave unchanged".
type UpdateFields struct {
	Name    *string `json:"name"`
	URL     *string `json:"url"`
	Enabled *int    `json:"is_enabled"`
	Default *int    `json:"is_default"`
	Timeout *int    `json:"timeout"`
	Remark  *string `json:"remark"`
}

// Empty reports whether no field is set.
func (f UpdateFields) Empty() bool {
	return f.Name == nil && f.URL == nil && f.Enabled == nil &&
		f.Default == nil && f.Timeout == nil && f.Remark == nil
}

var (
	// ErrNotFound means no row matched the given id or name.
	ErrNotFound = errors.New("registry: source not found")
	// ErrDuplicateName means the unique name constraint was violated.
	ErrDuplicateName = errors.New("registry: source name already exists")
)

// Store wraps the sqlite database holding the api_sources table.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the registry database at path, initializes the
// schema and seeds the built-in sources on first run.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("registry: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("registry: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry: set WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.seed(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS api_sources (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL UNIQUE,
		url        TEXT NOT NULL,
		is_enabled INTEGER DEFAULT 1,
		is_default INTEGER DEFAULT 0,
		timeout    INTEGER DEFAULT 10000,
		remark     TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_api_sources_name ON api_sources(name);
	CREATE INDEX IF NOT EXISTS idx_api_sources_enabled ON api_sources(is_enabled)`)
	if err != nil {
		return fmt.Errorf("registry: init schema: %w", err)
	}
	return nil
}

// seed inserts the three built-in sources when the table is empty.
func (s *Store) seed() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM api_sources`).Scan(&count); err != nil {
		return fmt.Errorf("registry: count sources: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().Unix()
	_, err := s.db.Exec(`INSERT INTO api_sources
		(name, url, is_enabled, is_default, timeout, remark, created_at, updated_at) VALUES
		('bfzy', 'https://bfzyapi.com/api.php/provide/vod/', 1, 1, 10000, '暴风资源', ?, ?),
		('ffzy', 'https://api.ffzyapi.com/api.php/provide/vod/at/json/', 1, 0, 10000, '非凡资源', ?, ?),
		('lzi', 'https://cj.lziapi.com/api.php/provide/vod/at/json/', 1, 0, 10000, '量子资源', ?, ?)`,
		now, now, now, now, now, now)
	if err != nil {
		return fmt.Errorf("registry: seed: %w", err)
	}
	return nil
}

const sourceColumns = `id, name, url, is_enabled, is_default, timeout, remark, created_at, updated_at`

func scanSource(row interface{ Scan(...any) error }) (Source, error) {
	var src Source
	var remark sql.NullString
	err := row.Scan(&src.ID, &src.Name, &src.URL, &src.Enabled, &src.Default,
		&src.Timeout, &remark, &src.CreatedAt, &src.UpdatedAt)
	src.Remark = remark.String
	return src, err
}

func (s *Store) queryAll(query string, args ...any) ([]Source, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("registry: query: %w", err)
	}
	defer rows.Close()

	sources := []Source{}
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("registry: scan: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// Create inserts a new enabled, non-default source.
func (s *Store) Create(name, url string, timeout int, remark string) (Source, error) {
	if name == "" {
		return Source{}, errors.New("registry: name is required")
	}
	if timeout <= 0 {
		timeout = 10000
	}
	now := time.Now().Unix()
	res, err := s.db.Exec(`INSERT INTO api_sources
		(name, url, is_enabled, is_default, timeout, remark, created_at, updated_at)
		VALUES (?, ?, 1, 0, ?, ?, ?, ?)`,
		name, url, timeout, remark, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return Source{}, ErrDuplicateName
		}
		return Source{}, fmt.Errorf("registry: insert: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.ByID(id)
}

// All returns every source in insertion order.
func (s *Store) All() ([]Source, error) {
	return s.queryAll(`SELECT ` + sourceColumns + ` FROM api_sources ORDER BY id`)
}

// Enabled returns the enabled sources in insertion order.
func (s *Store) Enabled() ([]Source, error) {
	return s.queryAll(`SELECT ` + sourceColumns + ` FROM api_sources WHERE is_enabled = 1 ORDER BY id`)
}

// ByID returns the source with the given id, or ErrNotFound.
func (s *Store) ByID(id int64) (Source, error) {
	src, err := scanSource(s.db.QueryRow(
		`SELECT `+sourceColumns+` FROM api_sources WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, ErrNotFound
	}
	if err != nil {
		return Source{}, fmt.Errorf("registry: get by id: %w", err)
	}
	return src, nil
}

// ByName returns the source with the given name, or ErrNotFound.
func (s *Store) ByName(name string) (Source, error) {
	src, err := scanSource(s.db.QueryRow(
		`SELECT `+sourceColumns+` FROM api_sources WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, ErrNotFound
	}
	if err != nil {
		return Source{}, fmt.Errorf("registry: get by name: %w", err)
	}
	return src, nil
}

// Default returns the enabled source marked default, or ErrNotFound.
// A disabled row keeps its flag but is never resolved as the default.
func (s *Store) Default() (Source, error) {
	src, err := scanSource(s.db.QueryRow(
		`SELECT ` + sourceColumns + ` FROM api_sources WHERE is_default = 1 AND is_enabled = 1 LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, ErrNotFound
	}
	if err != nil {
		return Source{}, fmt.Errorf("registry: get default: %w", err)
	}
	return src, nil
}

// Update applies the supplied fields to the source with the given id and
// refreshes updated_at. Setting is_default=1 clears the flag on every other
// row first; both writes happen in one transaction so readers never observe
// zero or two defaults. Returns false when the id is unknown or no fields
// were supplied.
func (s *Store) Update(id int64, fields UpdateFields) (bool, error) {
	if fields.Empty() {
		return false, nil
	}

	set := []string{}
	args := []any{}
	add := func(col string, v any) {
		set = append(set, col+" = ?")
		args = append(args, v)
	}
	if fields.Name != nil {
		add("name", *fields.Name)
	}
	if fields.URL != nil {
		add("url", *fields.URL)
	}
	if fields.Enabled != nil {
		add("is_enabled", *fields.Enabled)
	}
	if fields.Default != nil {
		add("is_default", *fields.Default)
	}
	if fields.Timeout != nil {
		add("timeout", *fields.Timeout)
	}
	if fields.Remark != nil {
		add("remark", *fields.Remark)
	}
	add("updated_at", time.Now().Unix())
	args = append(args, id)

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("registry: begin: %w", err)
	}
	defer tx.Rollback()

	if fields.Default != nil && *fields.Default == 1 {
		if _, err := tx.Exec(`UPDATE api_sources SET is_default = 0 WHERE is_default = 1 AND id != ?`, id); err != nil {
			return false, fmt.Errorf("registry: clear default: %w", err)
		}
	}

	res, err := tx.Exec(`UPDATE api_sources SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return false, ErrDuplicateName
		}
		return false, fmt.Errorf("registry: update: %w", err)
	}
	changed, _ := res.RowsAffected()
	if changed == 0 {
		// id not found; roll the default-clear back with the deferred Rollback
		return false, nil
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("registry: commit: %w", err)
	}
	return true, nil
}

// Delete removes the source with the given id. Deleting the current default
// leaves no default; callers must then name a source explicitly.
func (s *Store) Delete(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM api_sources WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("registry: delete: %w", err)
	}
	changed, _ := res.RowsAffected()
	return changed > 0, nil
}
