package history

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/myskyapp/mysky-service/internal/models"
)

// DefaultLimit caps how many searched locations are retained.
const DefaultLimit = 50

const createTable = `
CREATE TABLE IF NOT EXISTS search_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	country TEXT NOT NULL,
	state TEXT NOT NULL DEFAULT '',
	lat REAL NOT NULL,
	lon REAL NOT NULL,
	searched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store persists the search history in SQLite. Re-searching a location moves
// it to the front; the store keeps at most limit entries.
type Store struct {
	db    *sql.DB
	limit int
}

// New opens (creating if needed) the history database at dbPath.
func New(dbPath string, limit int) (*Store, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return &Store{db: db, limit: limit}, nil
}

// Add records a resolved location, replacing any previous entry for the same
// place and trimming the history to the retention limit.
func (s *Store) Add(ctx context.Context, loc models.Location) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM search_history WHERE name = ? AND country = ? AND state = ?`,
		loc.Name, loc.Country, loc.State); err != nil {
		return fmt.Errorf("dedupe history: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO search_history (name, country, state, lat, lon) VALUES (?, ?, ?, ?, ?)`,
		loc.Name, loc.Country, loc.State, loc.Lat, loc.Lon); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM search_history WHERE id NOT IN (SELECT id FROM search_history ORDER BY id DESC LIMIT ?)`,
		s.limit); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return tx.Commit()
}

// Recent returns up to n locations, most recently searched first. n <= 0 or
// n beyond the retention limit returns everything retained.
func (s *Store) Recent(ctx context.Context, n int) ([]models.Location, error) {
	if n <= 0 || n > s.limit {
		n = s.limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, country, state, lat, lon FROM search_history ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []models.Location
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.Name, &loc.Country, &loc.State, &loc.Lat, &loc.Lon); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

// Close closes the underlying database. Call during shutdown.
func (s *Store) Close() error {
	return s.db.Close()
}
