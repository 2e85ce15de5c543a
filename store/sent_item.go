package store

import (
	"context"
	"fmt"
	"time"
)

// SentItemExists reports whether an item was already recorded for a link.
func (s *Store) SentItemExists(ctx context.Context, itemID, linkID int64) (bool, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sent_items WHERE item_id = ? AND link_id = ?`,
		itemID, linkID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sent item exists: %w", err)
	}
	return n > 0, nil
}

// InsertSentItemIfAbsent records an item for a link unless a record already
// exists. It returns true only when this call performed the insert.
//
// The insert is a single INSERT OR IGNORE backed by the UNIQUE index on
// (item_id, link_id), so two pollers racing on the same item cannot both
// observe "inserted". Never split this into an existence check followed by
// an insert.
func (s *Store) InsertSentItemIfAbsent(ctx context.Context, item *SentItem) (bool, error) {
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().UnixMilli()
	}
	res, err := s.DB.ExecContext(ctx,
		`INSERT OR IGNORE INTO sent_items (item_id, title, img_url, item_url, link_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.ItemID, item.Title, item.ImgURL, item.ItemURL, item.LinkID, item.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert sent item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	item.ID, _ = res.LastInsertId()
	return true, nil
}

// TrimSentItems deletes a link's oldest sent items beyond keep, ordered by
// creation time ascending, and returns the number of rows removed.
func (s *Store) TrimSentItems(ctx context.Context, linkID int64, keep int) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM sent_items WHERE link_id = ? AND id NOT IN (
			SELECT id FROM sent_items WHERE link_id = ?
			ORDER BY created_at DESC, id DESC LIMIT ?
		)`, linkID, linkID, keep)
	if err != nil {
		return 0, fmt.Errorf("trim sent items: %w", err)
	}
	return res.RowsAffected()
}

// CountSentItems returns the number of sent items recorded for a link.
func (s *Store) CountSentItems(ctx context.Context, linkID int64) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sent_items WHERE link_id = ?`, linkID).Scan(&n)
	return n, err
}
