// Package telegram is a minimal Bot API client covering what a
// notification bot needs: sending messages and photos, and long-polling
// for updates. Failures are classified into typed errors so callers can
// react per class (blocked recipient, rate limit, transient API error).
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Client calls the Telegram Bot API for one bot token.
type Client struct {
	token   string
	apiBase string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithAPIBase overrides the Bot API base URL. Used in tests.
func WithAPIBase(base string) Option {
	return func(c *Client) { c.apiBase = strings.TrimSuffix(base, "/") }
}

// NewClient builds a Client for the given bot token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		token:   token,
		apiBase: defaultAPIBase,
		http:    &http.Client{Timeout: 65 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// call posts a JSON payload to a Bot API method and returns the raw result,
// classifying failures into the package's typed errors.
func (c *Client) call(ctx context.Context, method string, payload, chatID any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("telegram: marshal %s: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("telegram: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("telegram: read %s response: %w", method, err)
	}

	var decoded apiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("telegram: decode %s response (http %d): %w",
			method, resp.StatusCode, err)
	}
	if decoded.OK {
		return decoded.Result, nil
	}
	return nil, classify(&decoded, chatID)
}

func classify(r *apiResponse, chatID any) error {
	id, _ := chatID.(int64)
	desc := strings.ToLower(r.Description)
	switch {
	case r.ErrorCode == http.StatusForbidden:
		return &ErrBlocked{ChatID: id}
	case r.ErrorCode == http.StatusBadRequest &&
		(strings.Contains(desc, "chat not found") || strings.Contains(desc, "user not found")):
		return &ErrChatNotFound{ChatID: id}
	case r.ErrorCode == http.StatusTooManyRequests:
		retry := time.Duration(0)
		if r.Parameters != nil {
			retry = time.Duration(r.Parameters.RetryAfter) * time.Second
		}
		return &ErrRateLimited{RetryAfter: retry}
	default:
		return &ErrAPI{Code: r.ErrorCode, Description: r.Description}
	}
}

// SendMessage sends an HTML-formatted text message.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup any) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	_, err := c.call(ctx, "sendMessage", payload, chatID)
	return err
}

// SendPhoto sends a photo by URL with an HTML caption.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, markup any) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"photo":      photoURL,
		"caption":    caption,
		"parse_mode": "HTML",
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	_, err := c.call(ctx, "sendPhoto", payload, chatID)
	return err
}

// GetUpdates long-polls for incoming updates starting at offset. timeout is
// the server-side hold in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	payload := map[string]any{
		"offset":  offset,
		"timeout": timeout,
	}
	result, err := c.call(ctx, "getUpdates", payload, nil)
	if err != nil {
		return nil, err
	}
	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("telegram: decode updates: %w", err)
	}
	return updates, nil
}
