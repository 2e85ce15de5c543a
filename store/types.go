package store

// User is a Telegram user known to the bot.
type User struct {
	UserID    int64 `json:"user_id"`
	IsPremium bool  `json:"is_premium"`
	IsAdmin   bool  `json:"is_admin"`
	IsBanned  bool  `json:"is_banned"`
	CreatedAt int64 `json:"created_at"`

	// Links is populated by UserWithLinks, nil otherwise.
	Links []*Link `json:"links,omitempty"`
}

// MaxLinks returns the link quota for this user's tier.
func (u *User) MaxLinks() int {
	if u.IsPremium {
		return MaxLinksPremium
	}
	return MaxLinksStandard
}

// Link is a tracked marketplace search URL owned by a user.
type Link struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"created_at"`
}

// SentItem records that a marketplace item was delivered for a link.
type SentItem struct {
	ID        int64  `json:"id"`
	ItemID    int64  `json:"item_id"`
	Title     string `json:"title"`
	ImgURL    string `json:"img_url"`
	ItemURL   string `json:"item_url"`
	LinkID    int64  `json:"link_id"`
	CreatedAt int64  `json:"created_at"`
}

// FetchLogEntry records one poll attempt for a link.
type FetchLogEntry struct {
	ID           string `json:"id"`
	LinkID       int64  `json:"link_id"`
	Status       string `json:"status"` // "ok", "error"
	StatusCode   int    `json:"status_code"`
	ItemCount    int    `json:"item_count"`
	NewItems     int    `json:"new_items"`
	ErrorMessage string `json:"error_message"`
	DurationMs   int64  `json:"duration_ms"`
	FetchedAt    int64  `json:"fetched_at"`
}

// Stats holds aggregate counters for the admin API.
type Stats struct {
	Users     int `json:"users"`
	Links     int `json:"links"`
	SentItems int `json:"sent_items"`
	FetchLog  int `json:"fetch_log"`
}
