// Package localcache keeps the highest progress seen on this device in SQLite
package localcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Sab1tov/dombyra-master-sub000/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS progress_cache (
	user_id INTEGER NOT NULL,
	lesson_id INTEGER NOT NULL,
	progress_percent INTEGER NOT NULL DEFAULT 0 CHECK (progress_percent BETWEEN 0 AND 100),
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (user_id, lesson_id)
)`

// Cache is a SQLite-backed progress cache
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the cache at path. The path can be ":memory:".
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Cache{db: db, now: time.Now}, nil
}

// Close closes the underlying database
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached progress, 0 when nothing is cached
func (c *Cache) Get(ctx context.Context, userID, lessonID int) (int, error) {
	var percent int
	err := c.db.QueryRowContext(ctx,
		"SELECT progress_percent FROM progress_cache WHERE user_id = ? AND lesson_id = ?",
		userID, lessonID,
	).Scan(&percent)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cached progress: %w", err)
	}
	return percent, nil
}

// Put records percent, keeping the larger of the cached and the new value
func (c *Cache) Put(ctx context.Context, userID, lessonID, percent int) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO progress_cache (user_id, lesson_id, progress_percent, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, lesson_id) DO UPDATE SET
			progress_percent = MAX(progress_percent, excluded.progress_percent),
			updated_at = excluded.updated_at`,
		userID, lessonID, models.ClampProgress(percent), c.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to cache progress: %w", err)
	}
	return nil
}

// All returns every cached value of a user keyed by lesson ID
func (c *Cache) All(ctx context.Context, userID int) (map[int]int, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT lesson_id, progress_percent FROM progress_cache WHERE user_id = ?",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached progress: %w", err)
	}
	defer rows.Close()

	result := make(map[int]int)
	for rows.Next() {
		var lessonID, percent int
		if err := rows.Scan(&lessonID, &percent); err != nil {
			return nil, fmt.Errorf("failed to scan cached progress: %w", err)
		}
		result[lessonID] = percent
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cached progress: %w", err)
	}
	return result, nil
}
