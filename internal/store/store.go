// Package store keeps the watched list in an in-memory SQLite database.
//
// Nothing is written to disk: every Store owns a private memory database that
// disappears with Close or process exit.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abelbrown/popcorn/internal/movie"
	_ "modernc.org/sqlite"
)

var (
	// ErrAlreadyWatched is returned when adding an id that is already listed.
	ErrAlreadyWatched = errors.New("store: movie already on watched list")

	// ErrNotWatched is returned by Get for an id that is not listed.
	ErrNotWatched = errors.New("store: movie not on watched list")
)

// dbCounter gives each Store its own shared-cache memory database.
var dbCounter atomic.Int64

// Store holds the watched list. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates an empty watched list.
func Open() (*Store, error) {
	// Named memory DB so every pooled connection sees the same data,
	// while two Stores never do.
	dsn := fmt.Sprintf("file:watchlist-%d?mode=memory&cache=shared", dbCounter.Add(1))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS watched (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		imdb_id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		year TEXT,
		poster TEXT,
		imdb_rating REAL NOT NULL DEFAULT 0,
		runtime_minutes INTEGER NOT NULL DEFAULT 0,
		user_rating INTEGER NOT NULL CHECK (user_rating BETWEEN 1 AND 10),
		added_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close releases the database. The list is gone afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Add appends an entry. The rating must be on the 1..MaxRating scale and the
// id must not already be listed.
func (s *Store) Add(e movie.WatchedEntry) error {
	if e.ID == "" {
		return movie.ErrIncompleteDetail
	}
	if err := movie.ValidateRating(e.UserRating); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`
		INSERT INTO watched (
			imdb_id, title, year, poster, imdb_rating, runtime_minutes, user_rating, added_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(imdb_id) DO NOTHING
	`,
		e.ID,
		e.Title,
		e.Year,
		e.PosterURL,
		e.CommunityRating,
		e.RuntimeMinutes,
		e.UserRating,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert watched: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyWatched
	}
	return nil
}

// Remove deletes every entry with id and returns how many were removed.
func (s *Store) Remove(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec("DELETE FROM watched WHERE imdb_id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("delete watched: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// Entries returns the list in insertion order.
func (s *Store) Entries() ([]movie.WatchedEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryEntries(`
		SELECT imdb_id, title, year, poster, imdb_rating, runtime_minutes, user_rating
		FROM watched
		ORDER BY seq
	`)
}

// Get returns the entry for id, or ErrNotWatched.
func (s *Store) Get(id string) (movie.WatchedEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.queryEntries(`
		SELECT imdb_id, title, year, poster, imdb_rating, runtime_minutes, user_rating
		FROM watched
		WHERE imdb_id = ?
	`, id)
	if err != nil {
		return movie.WatchedEntry{}, err
	}
	if len(entries) == 0 {
		return movie.WatchedEntry{}, ErrNotWatched
	}
	return entries[0], nil
}

// Aggregates recomputes the means over the current list.
func (s *Store) Aggregates() (movie.Aggregates, error) {
	entries, err := s.Entries()
	if err != nil {
		return movie.Aggregates{}, err
	}
	return movie.Summarize(entries), nil
}

// queryEntries executes a query and scans the rows into entries.
// Caller must hold s.mu (read lock is sufficient).
func (s *Store) queryEntries(query string, args ...any) ([]movie.WatchedEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []movie.WatchedEntry
	for rows.Next() {
		var e movie.WatchedEntry
		var year, poster sql.NullString
		err := rows.Scan(
			&e.ID,
			&e.Title,
			&year,
			&poster,
			&e.CommunityRating,
			&e.RuntimeMinutes,
			&e.UserRating,
		)
		if err != nil {
			return nil, err
		}
		e.Year = year.String
		e.PosterURL = poster.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
