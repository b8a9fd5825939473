package sqliterepo

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/radar"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SightingRepo keeps the local history of range entries.
type SightingRepo struct {
	db *sql.DB
}

func Open(path string) (*SightingRepo, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SightingRepo{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sightings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			entity_id TEXT NOT NULL,
			name TEXT NOT NULL,
			range_kind TEXT NOT NULL,
			distance TEXT NOT NULL,
			seen_at_unix_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sightings_entity ON sightings(entity_id, seen_at_unix_ms);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (r *SightingRepo) Close() error {
	return r.db.Close()
}

func (r *SightingRepo) Append(ctx context.Context, rec ports.SightingRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sightings(entity_id, name, range_kind, distance, seen_at_unix_ms) VALUES (?, ?, ?, ?, ?)`,
		rec.EntityID.String(), rec.Name, string(rec.Kind), rec.Distance, rec.SeenAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert sighting: %w", err)
	}
	return nil
}

// ListRecent returns the newest sightings first.
func (r *SightingRepo) ListRecent(ctx context.Context, limit int) ([]ports.SightingRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT entity_id, name, range_kind, distance, seen_at_unix_ms FROM sightings ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sightings: %w", err)
	}
	defer rows.Close()

	out := make([]ports.SightingRecord, 0)
	for rows.Next() {
		var (
			entityID, name, kind, distance string
			seenAt                         int64
		)
		if err := rows.Scan(&entityID, &name, &kind, &distance, &seenAt); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(entityID)
		if err != nil {
			return nil, fmt.Errorf("sighting entity id %q: %w", entityID, err)
		}
		out = append(out, ports.SightingRecord{
			EntityID: id,
			Name:     name,
			Kind:     radar.RangeKind(kind),
			Distance: distance,
			SeenAt:   time.UnixMilli(seenAt),
		})
	}
	return out, rows.Err()
}

// CountByEntity reports how many times id entered any range.
func (r *SightingRepo) CountByEntity(ctx context.Context, id radar.EntityID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sightings WHERE entity_id = ?`, id.String()).Scan(&n)
	return n, err
}
