package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// ErrSongNotFound is returned by Song when no row has the requested id.
var ErrSongNotFound = errors.New("song not found")

// schema contains the DDL executed on first open.
const schema = `
CREATE TABLE IF NOT EXISTS songs (
    textage_id TEXT PRIMARY KEY,
    numeric_id INTEGER NOT NULL DEFAULT 0,
    title      TEXT NOT NULL,
    subtitle   TEXT NOT NULL DEFAULT '',
    artist     TEXT NOT NULL DEFAULT '',
    genre      TEXT NOT NULL DEFAULT '',
    version_id INTEGER NOT NULL,
    version    TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS song_levels (
    textage_id TEXT NOT NULL REFERENCES songs(textage_id) ON DELETE CASCADE,
    slot       INTEGER NOT NULL,
    level      INTEGER NOT NULL,
    PRIMARY KEY (textage_id, slot)
);
`

// Store is a song catalog backed by a local SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the catalog database at dbPath and creates the
// schema if needed.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: open database: %w", err)
	}

	// SQLite has one writer; a single connection keeps PRAGMAs in effect.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("catalog: %s: %w", pragma, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Replace swaps the catalog contents for songs in one transaction.
func (s *Store) Replace(ctx context.Context, songs []Song) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM song_levels"); err != nil {
		return fmt.Errorf("catalog: clear levels: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM songs"); err != nil {
		return fmt.Errorf("catalog: clear songs: %w", err)
	}

	songStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO songs (textage_id, numeric_id, title, subtitle, artist, genre, version_id, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("catalog: prepare song insert: %w", err)
	}
	defer songStmt.Close()

	levelStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO song_levels (textage_id, slot, level) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("catalog: prepare level insert: %w", err)
	}
	defer levelStmt.Close()

	for _, song := range songs {
		if _, err := songStmt.ExecContext(ctx, song.ID, song.NumericID, song.Title, song.Subtitle,
			song.Artist, song.Genre, song.VersionID, song.Version); err != nil {
			return fmt.Errorf("catalog: insert song %q: %w", song.ID, err)
		}
		for _, lv := range song.Levels {
			if _, err := levelStmt.ExecContext(ctx, song.ID, lv.Slot, lv.Value); err != nil {
				return fmt.Errorf("catalog: insert level %q/%d: %w", song.ID, lv.Slot, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit: %w", err)
	}
	return nil
}

// Count returns the number of songs in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM songs").Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count songs: %w", err)
	}
	return n, nil
}

// Song returns the song with the given textage id, levels ordered by slot.
func (s *Store) Song(ctx context.Context, id string) (Song, error) {
	var song Song
	err := s.db.QueryRowContext(ctx, `
		SELECT textage_id, numeric_id, title, subtitle, artist, genre, version_id, version
		FROM songs WHERE textage_id = ?`, id).
		Scan(&song.ID, &song.NumericID, &song.Title, &song.Subtitle, &song.Artist,
			&song.Genre, &song.VersionID, &song.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, fmt.Errorf("catalog: %w: %q", ErrSongNotFound, id)
	}
	if err != nil {
		return Song{}, fmt.Errorf("catalog: get song %q: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT slot, level FROM song_levels WHERE textage_id = ? ORDER BY slot", id)
	if err != nil {
		return Song{}, fmt.Errorf("catalog: get levels %q: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var lv Level
		if err := rows.Scan(&lv.Slot, &lv.Value); err != nil {
			return Song{}, fmt.Errorf("catalog: scan level: %w", err)
		}
		song.Levels = append(song.Levels, lv)
	}
	if err := rows.Err(); err != nil {
		return Song{}, fmt.Errorf("catalog: iterate levels: %w", err)
	}
	return song, nil
}
