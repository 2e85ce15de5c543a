// Package store provides the data access layer for fripe.
//
// One SQLite database holds all users, their tracked links, the per-link
// sent-item history, and the fetch log. The store is safe for concurrent
// use; dedup relies on a UNIQUE index rather than check-then-insert, so
// concurrent pollers racing on the same item cannot double-record it.
package store

import "database/sql"

// Link quotas by account tier.
const (
	MaxLinksStandard = 2
	MaxLinksPremium  = 15
)

// DefaultKeepPerLink is the sent-item retention ceiling per link.
const DefaultKeepPerLink = 100

// Store wraps the fripe database.
type Store struct {
	DB *sql.DB
}

// NewStore creates a Store from an already-opened database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}
