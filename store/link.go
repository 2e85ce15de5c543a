package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/fripe/dbopen"
)

// AddLink adds a tracked link for a user, enforcing the tier quota
// (2 standard, 15 premium). The quota check and insert run in one
// transaction so concurrent adds cannot overshoot the cap.
func (s *Store) AddLink(ctx context.Context, userID int64, url string) (*Link, error) {
	link := &Link{UserID: userID, URL: url, CreatedAt: time.Now().UnixMilli()}

	err := dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		var premium int
		err := tx.QueryRowContext(ctx,
			`SELECT is_premium FROM users WHERE user_id = ?`, userID).Scan(&premium)
		if err == sql.ErrNoRows {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}

		max := MaxLinksStandard
		if premium != 0 {
			max = MaxLinksPremium
		}
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM links WHERE user_id = ?`, userID).Scan(&count); err != nil {
			return fmt.Errorf("count links: %w", err)
		}
		if count >= max {
			return fmt.Errorf("%w: maximum %d links", ErrLinkQuotaExceeded, max)
		}

		res, err := tx.ExecContext(ctx,
			`INSERT INTO links (user_id, url, created_at) VALUES (?, ?, ?)`,
			link.UserID, link.URL, link.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert link: %w", err)
		}
		link.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// ListLinks returns a user's tracked links in insertion order.
func (s *Store) ListLinks(ctx context.Context, userID int64) ([]*Link, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user_id, url, created_at FROM links
		WHERE user_id = ? ORDER BY id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.ID, &l.UserID, &l.URL, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, &l)
	}
	return links, rows.Err()
}

// DeleteLink removes a user's link by URL (cascades to sent_items).
func (s *Store) DeleteLink(ctx context.Context, userID int64, url string) error {
	res, err := s.DB.ExecContext(ctx,
		`DELETE FROM links WHERE user_id = ? AND url = ?`, userID, url)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLinkNotFound
	}
	return nil
}
