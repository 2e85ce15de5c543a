package store

import "database/sql"

// Schema is the complete fripe schema.
const Schema = `
-- Telegram users
CREATE TABLE IF NOT EXISTS users (
    user_id    INTEGER PRIMARY KEY,
    is_premium INTEGER NOT NULL DEFAULT 0,
    is_admin   INTEGER NOT NULL DEFAULT 0,
    is_banned  INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

-- Tracked search links, owned by a user
CREATE TABLE IF NOT EXISTS links (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    INTEGER NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    url        TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_links_user ON links(user_id);

-- Items already delivered for a link
CREATE TABLE IF NOT EXISTS sent_items (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id    INTEGER NOT NULL,
    title      TEXT NOT NULL DEFAULT '',
    img_url    TEXT NOT NULL DEFAULT '',
    item_url   TEXT NOT NULL DEFAULT '',
    link_id    INTEGER NOT NULL REFERENCES links(id) ON DELETE CASCADE,
    created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_sent_items_item_link ON sent_items(item_id, link_id);
CREATE INDEX IF NOT EXISTS idx_sent_items_link_time ON sent_items(link_id, created_at);

-- Fetch log (observability)
CREATE TABLE IF NOT EXISTS fetch_log (
    id            TEXT PRIMARY KEY,
    link_id       INTEGER NOT NULL REFERENCES links(id) ON DELETE CASCADE,
    status        TEXT NOT NULL,
    status_code   INTEGER NOT NULL DEFAULT 0,
    item_count    INTEGER NOT NULL DEFAULT 0,
    new_items     INTEGER NOT NULL DEFAULT 0,
    error_message TEXT NOT NULL DEFAULT '',
    duration_ms   INTEGER NOT NULL DEFAULT 0,
    fetched_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fetch_log_link ON fetch_log(link_id, fetched_at DESC);
`

// ApplySchema creates all tables and indexes on the given database.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
