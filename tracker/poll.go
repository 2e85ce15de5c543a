package tracker

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/hazyhaar/fripe/store"
	"github.com/hazyhaar/fripe/telegram"
	"github.com/hazyhaar/fripe/vinted"
)

// pollOnce runs one cycle: every non-banned user is polled in its own
// goroutine so one user's slow or broken links cannot delay the others.
func (svc *Service) pollOnce(ctx context.Context) {
	users, err := svc.store.ListUsers(ctx)
	if err != nil {
		svc.logger.Error("tracker: list users", "error", err)
		return
	}

	var wg sync.WaitGroup
	for _, u := range users {
		if u.IsBanned {
			continue
		}
		wg.Add(1)
		go func(u *store.User) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					svc.logger.Error("tracker: user poll panicked",
						"user_id", u.UserID, "panic", r)
				}
			}()
			svc.pollUser(ctx, u)
		}(u)
	}
	wg.Wait()

	if n, err := svc.store.CleanupFetchLog(ctx, svc.config.FetchLogRetention); err != nil {
		svc.logger.Warn("tracker: cleanup fetch log", "error", err)
	} else if n > 0 {
		svc.logger.Debug("tracker: fetch log trimmed", "rows", n)
	}
}

// pollUser walks a user's links sequentially, reusing one session cookie
// per marketplace host within the cycle.
func (svc *Service) pollUser(ctx context.Context, u *store.User) {
	links, err := svc.store.ListLinks(ctx, u.UserID)
	if err != nil {
		svc.logger.Error("tracker: list links", "user_id", u.UserID, "error", err)
		return
	}

	cookies := map[string]string{} // host -> session cookie
	for _, link := range links {
		if ctx.Err() != nil {
			return
		}
		svc.pollLink(ctx, u, link, cookies)
	}
}

// pollLink fetches one link and notifies the user about unseen items.
// Every outcome lands in the fetch log; the log itself is best-effort.
func (svc *Service) pollLink(ctx context.Context, u *store.User, link *store.Link, cookies map[string]string) {
	started := time.Now()
	entry := &store.FetchLogEntry{ID: svc.newID(), LinkID: link.ID, Status: "ok"}
	defer func() {
		entry.DurationMs = time.Since(started).Milliseconds()
		if err := svc.store.RecordFetch(ctx, entry); err != nil {
			svc.logger.Warn("tracker: record fetch", "link_id", link.ID, "error", err)
		}
	}()

	apiURL, err := vinted.ConvertSearchURL(link.URL)
	if err != nil {
		entry.Status = "error"
		entry.ErrorMessage = err.Error()
		svc.logger.Warn("tracker: bad link url", "link_id", link.ID, "error", err)
		return
	}

	cookie, err := svc.sessionFor(ctx, link.URL, cookies)
	if err != nil {
		entry.Status = "error"
		entry.ErrorMessage = err.Error()
		var serr *vinted.SessionError
		if errors.As(err, &serr) {
			entry.StatusCode = serr.LastStatus
		}
		svc.logger.Warn("tracker: session", "link_id", link.ID, "error", err)
		return
	}

	items, err := svc.client.FetchCatalog(ctx, apiURL, cookie)
	if err != nil {
		entry.Status = "error"
		entry.ErrorMessage = err.Error()
		svc.logger.Warn("tracker: fetch catalog", "link_id", link.ID, "error", err)
		return
	}
	entry.ItemCount = len(items)

	newItems := 0
	for _, item := range items {
		inserted, err := svc.store.InsertSentItemIfAbsent(ctx, &store.SentItem{
			ItemID:  item.ID,
			Title:   item.Title,
			ImgURL:  item.PhotoURL,
			ItemURL: item.URL,
			LinkID:  link.ID,
		})
		if err != nil {
			svc.logger.Error("tracker: record item", "link_id", link.ID,
				"item_id", item.ID, "error", err)
			continue
		}
		if !inserted {
			continue
		}
		newItems++
		svc.notify(ctx, u.UserID, item)
	}
	entry.NewItems = newItems

	if newItems > 0 {
		if _, err := svc.store.TrimSentItems(ctx, link.ID, svc.config.KeepPerLink); err != nil {
			svc.logger.Warn("tracker: trim sent items", "link_id", link.ID, "error", err)
		}
	}
}

// sessionFor returns a session cookie for the link's host, acquiring one if
// this cycle has not hit that host yet.
func (svc *Service) sessionFor(ctx context.Context, linkURL string, cookies map[string]string) (string, error) {
	u, err := url.Parse(linkURL)
	if err != nil {
		return "", err
	}
	base := u.Scheme + "://" + u.Host
	if cookie, ok := cookies[u.Host]; ok {
		return cookie, nil
	}
	cookie, err := svc.client.AcquireSession(ctx, base)
	if err != nil {
		return "", err
	}
	cookies[u.Host] = cookie
	return cookie, nil
}

// notify delivers one item, absorbing delivery failures per class so a
// broken recipient never aborts the cycle.
func (svc *Service) notify(ctx context.Context, userID int64, item vinted.Item) {
	err := svc.notifier.NotifyItem(ctx, userID, item)
	if err == nil {
		return
	}

	var blocked *telegram.ErrBlocked
	var notFound *telegram.ErrChatNotFound
	var rateLimited *telegram.ErrRateLimited
	switch {
	case errors.As(err, &blocked):
		svc.logger.Warn("tracker: recipient blocked bot", "user_id", userID)
		if svc.blocked != nil {
			svc.blocked(userID)
		}
	case errors.As(err, &notFound):
		svc.logger.Warn("tracker: chat not found", "user_id", userID)
	case errors.As(err, &rateLimited):
		svc.logger.Warn("tracker: rate limited",
			"user_id", userID, "retry_after", rateLimited.RetryAfter)
	default:
		svc.logger.Error("tracker: notify", "user_id", userID,
			"item_id", item.ID, "error", err)
	}
}
