package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// HistoryEntry is one recorded deck open.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	WithNotes bool      `json:"with_notes"`
	OpenedAt  time.Time `json:"opened_at"`
}

// HistoryStore records and queries deck opens.
type HistoryStore struct {
	db         *sql.DB
	maxEntries int
}

// NewHistoryStore wraps an initialized database. maxEntries <= 0 disables
// pruning.
func NewHistoryStore(database *sql.DB, maxEntries int) *HistoryStore {
	return &HistoryStore{db: database, maxEntries: maxEntries}
}

// RecordOpen inserts one open event and prunes beyond the retention cap.
func (s *HistoryStore) RecordOpen(ctx context.Context, url, title string, withNotes bool) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO open_history (url, title, with_notes) VALUES (?, ?, ?)",
		url, title, boolToInt(withNotes),
	); err != nil {
		return fmt.Errorf("failed to record open: %w", err)
	}

	if s.maxEntries > 0 {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM open_history WHERE id NOT IN
				(SELECT id FROM open_history ORDER BY opened_at DESC, id DESC LIMIT ?)`,
			s.maxEntries,
		); err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
	}
	return nil
}

// UpdateTitle backfills the scraped title for the most recent open of url.
// Titles are only known after the page has loaded.
func (s *HistoryStore) UpdateTitle(ctx context.Context, url, title string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE open_history SET title = ? WHERE id =
			(SELECT id FROM open_history WHERE url = ? ORDER BY opened_at DESC, id DESC LIMIT 1)`,
		title, url,
	)
	if err != nil {
		return fmt.Errorf("failed to update title: %w", err)
	}
	return nil
}

// Recent returns the latest opens, newest first.
func (s *HistoryStore) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, title, with_notes, opened_at FROM open_history
			ORDER BY opened_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var withNotes int
		if err := rows.Scan(&e.ID, &e.URL, &e.Title, &withNotes, &e.OpenedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.WithNotes = withNotes != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
