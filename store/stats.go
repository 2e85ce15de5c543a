package store

import "context"

// Stats returns aggregate counters for the admin API.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM users`, &st.Users},
		{`SELECT COUNT(*) FROM links`, &st.Links},
		{`SELECT COUNT(*) FROM sent_items`, &st.SentItems},
		{`SELECT COUNT(*) FROM fetch_log`, &st.FetchLog},
	}
	for _, c := range counts {
		if err := s.DB.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, err
		}
	}
	return &st, nil
}
