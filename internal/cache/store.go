package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/funvibe/fxfront/internal/constrain"
	"github.com/funvibe/fxfront/internal/symbols"
)

// schemaVersion is bumped when the stored payload format changes.
// Entries written by another version are ignored on load.
const schemaVersion = "v1"

const schema = `
CREATE TABLE IF NOT EXISTS exposed_types (
	module      TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	run_id      TEXT NOT NULL,
	payload     BLOB NOT NULL,
	updated_at  INTEGER NOT NULL
)`

// Store persists the exposed types of solved modules so that a later
// session can skip re-solving unchanged dependencies.
type Store struct {
	db *sql.DB
}

// Entry describes one cached module.
type Entry struct {
	Module      string
	Fingerprint string
	RunID       string
	UpdatedAt   time.Time
}

// Open opens (creating if needed) the cache database at dsn.
// Use ":memory:" for a throwaway store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	// An in-memory database lives on a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Fingerprint computes the cache key of a module from its source and the
// fingerprints of its dependencies.
func Fingerprint(source []byte, deps ...string) string {
	h := sha256.New()
	h.Write(source)
	for _, dep := range deps {
		h.Write([]byte("\x00"))
		h.Write([]byte(dep))
	}
	h.Write([]byte("\x00"))
	h.Write([]byte(schemaVersion))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Save stores the exposed types of module, replacing an older entry.
func (s *Store) Save(ctx context.Context, interns *symbols.Interns, runID, module, fingerprint string, exposed constrain.ExposedModuleTypes) error {
	data, err := Encode(exposed, interns)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", module, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO exposed_types (module, fingerprint, run_id, payload, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(module) DO UPDATE SET
		   fingerprint = excluded.fingerprint,
		   run_id = excluded.run_id,
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		module, fingerprint, runID, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("saving %s: %w", module, err)
	}
	return nil
}

// SaveAll stores every module of a snapshot taken from an ExposedByModule.
// fingerprints maps module ids to their keys; modules without one are skipped.
func (s *Store) SaveAll(ctx context.Context, interns *symbols.Interns, runID string, snapshot map[symbols.ModuleID]constrain.ExposedModuleTypes, fingerprints map[symbols.ModuleID]string) error {
	for _, id := range symbols.SortModuleIDs(snapshot) {
		fp, ok := fingerprints[id]
		if !ok {
			continue
		}
		if err := s.Save(ctx, interns, runID, interns.ModuleName(id), fp, snapshot[id]); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the exposed types stored for module. The boolean is false
// when there is no entry or it was written for another fingerprint.
func (s *Store) Load(ctx context.Context, interns *symbols.Interns, module, fingerprint string) (constrain.ExposedModuleTypes, bool, error) {
	var stored string
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint, payload FROM exposed_types WHERE module = ?`, module).Scan(&stored, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading %s: %w", module, err)
	}
	if stored != fingerprint {
		return nil, false, nil
	}

	exposed, err := Decode(data, interns)
	if err != nil {
		return nil, false, fmt.Errorf("decoding %s: %w", module, err)
	}
	return exposed, true, nil
}

// Entries lists the cached modules ordered by name.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT module, fingerprint, run_id, updated_at FROM exposed_types ORDER BY module`)
	if err != nil {
		return nil, fmt.Errorf("listing cache: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var updated int64
		if err := rows.Scan(&e.Module, &e.Fingerprint, &e.RunID, &updated); err != nil {
			return nil, fmt.Errorf("listing cache: %w", err)
		}
		e.UpdatedAt = time.Unix(updated, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clean removes every cached module.
func (s *Store) Clean(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM exposed_types`); err != nil {
		return fmt.Errorf("cleaning cache: %w", err)
	}
	return nil
}
