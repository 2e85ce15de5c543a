package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// UpsertUser registers a user if unknown and returns the stored row.
// Flags on the argument are only applied on first registration; an existing
// user's flags are left untouched (premium/ban are admin-managed).
func (s *Store) UpsertUser(ctx context.Context, u *User) (*User, error) {
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().UnixMilli()
	}
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO users (user_id, is_premium, is_admin, is_banned, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO NOTHING`,
		u.UserID, u.IsPremium, u.IsAdmin, u.IsBanned, u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return s.GetUser(ctx, u.UserID)
}

// GetUser retrieves a user by Telegram ID. Returns nil if unknown.
func (s *Store) GetUser(ctx context.Context, userID int64) (*User, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT user_id, is_premium, is_admin, is_banned, created_at
		FROM users WHERE user_id = ?`, userID)
	return scanUser(row)
}

// ListUsers returns all registered users.
func (s *Store) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT user_id, is_premium, is_admin, is_banned, created_at
		FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUserRows(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UserWithLinks returns a user with their links eager-loaded.
// Returns nil if the user is unknown.
func (s *Store) UserWithLinks(ctx context.Context, userID int64) (*User, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil || u == nil {
		return u, err
	}
	links, err := s.ListLinks(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.Links = links
	return u, nil
}

// TogglePremium flips a user's premium flag and returns the new value.
func (s *Store) TogglePremium(ctx context.Context, userID int64) (bool, error) {
	return s.toggleFlag(ctx, userID, "is_premium")
}

// ToggleBanned flips a user's banned flag and returns the new value.
func (s *Store) ToggleBanned(ctx context.Context, userID int64) (bool, error) {
	return s.toggleFlag(ctx, userID, "is_banned")
}

func (s *Store) toggleFlag(ctx context.Context, userID int64, column string) (bool, error) {
	// column is always one of the two call sites above, never external input.
	res, err := s.DB.ExecContext(ctx,
		fmt.Sprintf(`UPDATE users SET %s = NOT %s WHERE user_id = ?`, column, column), userID)
	if err != nil {
		return false, fmt.Errorf("toggle %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrUserNotFound
	}
	var v int
	err = s.DB.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM users WHERE user_id = ?`, column), userID).Scan(&v)
	return v != 0, err
}

// DeleteUser removes a user (cascades to links and their sent_items).
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var premium, admin, banned int
	err := row.Scan(&u.UserID, &premium, &admin, &banned, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.IsPremium = premium != 0
	u.IsAdmin = admin != 0
	u.IsBanned = banned != 0
	return &u, nil
}

func scanUserRows(rows *sql.Rows) (*User, error) {
	var u User
	var premium, admin, banned int
	err := rows.Scan(&u.UserID, &premium, &admin, &banned, &u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.IsPremium = premium != 0
	u.IsAdmin = admin != 0
	u.IsBanned = banned != 0
	return &u, nil
}
