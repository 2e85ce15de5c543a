package vinted

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// SessionError reports that no usable session cookie could be obtained
// after all attempts. LastStatus is the HTTP status of the final attempt,
// or 0 when no response was ever received.
type SessionError struct {
	URL        string
	LastStatus int
}

func (e *SessionError) Error() string {
	status := "unknown"
	if e.LastStatus != 0 {
		status = fmt.Sprintf("%d", e.LastStatus)
	}
	return fmt.Sprintf("vinted: no session cookie from %s (last status %s)", e.URL, status)
}

// Config tunes the marketplace client.
type Config struct {
	UserAgent   string
	MaxAttempts int           // session acquisition attempts
	BackoffBase time.Duration // doubles per attempt: base, 2*base, 4*base...
	Timeout     time.Duration // per-request timeout
}

func (c *Config) defaults() {
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// Client fetches catalog data from a Vinted host.
type Client struct {
	http *http.Client
	cfg  Config
}

// NewClient builds a Client. A nil httpClient gets a default with the
// configured timeout.
func NewClient(httpClient *http.Client, cfg Config) *Client {
	cfg.defaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{http: httpClient, cfg: cfg}
}

// AcquireSession requests baseURL until a response carries the anonymous
// session cookie, and returns the joined Set-Cookie headers for use as a
// Cookie header on API calls. Attempts back off exponentially; exhaustion
// returns a *SessionError. Session errors are transient: the next poll
// cycle simply tries again.
func (c *Client) AcquireSession(ctx context.Context, baseURL string) (string, error) {
	lastStatus := 0
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.cfg.BackoffBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return "", fmt.Errorf("vinted: new session request: %w", err)
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		lastStatus = resp.StatusCode
		cookies := strings.Join(resp.Header.Values("Set-Cookie"), ", ")
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK && strings.Contains(cookies, "access_token_web=") {
			return cookies, nil
		}
	}
	return "", &SessionError{URL: baseURL, LastStatus: lastStatus}
}
