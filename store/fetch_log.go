package store

import (
	"context"
	"fmt"
	"time"
)

// RecordFetch appends a fetch-log row. Observability only: callers log and
// continue on error, a failing fetch log never blocks polling.
func (s *Store) RecordFetch(ctx context.Context, e *FetchLogEntry) error {
	if e.FetchedAt == 0 {
		e.FetchedAt = time.Now().UnixMilli()
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO fetch_log (id, link_id, status, status_code, item_count,
		new_items, error_message, duration_ms, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.LinkID, e.Status, e.StatusCode, e.ItemCount,
		e.NewItems, e.ErrorMessage, e.DurationMs, e.FetchedAt)
	if err != nil {
		return fmt.Errorf("record fetch: %w", err)
	}
	return nil
}

// FetchHistory returns the most recent fetch-log rows for a link.
func (s *Store) FetchHistory(ctx context.Context, linkID int64, limit int) ([]*FetchLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, link_id, status, status_code, item_count, new_items,
		error_message, duration_ms, fetched_at
		FROM fetch_log WHERE link_id = ?
		ORDER BY fetched_at DESC LIMIT ?`, linkID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*FetchLogEntry
	for rows.Next() {
		var e FetchLogEntry
		if err := rows.Scan(&e.ID, &e.LinkID, &e.Status, &e.StatusCode, &e.ItemCount,
			&e.NewItems, &e.ErrorMessage, &e.DurationMs, &e.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan fetch log: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// CleanupFetchLog deletes fetch-log rows older than the retention window.
func (s *Store) CleanupFetchLog(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UnixMilli()
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM fetch_log WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup fetch log: %w", err)
	}
	return res.RowsAffected()
}
