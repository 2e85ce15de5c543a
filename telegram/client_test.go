package telegram_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/fripe/telegram"
)

// fakeAPI serves a canned Bot API response and records the last request.
type fakeAPI struct {
	status int
	body   string

	lastPath    string
	lastPayload map[string]any
}

func (f *fakeAPI) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.lastPath = r.URL.Path
		f.lastPayload = map[string]any{}
		json.NewDecoder(r.Body).Decode(&f.lastPayload)
		if f.status != 0 {
			w.WriteHeader(f.status)
		}
		w.Write([]byte(f.body))
	}
}

func newTestClient(t *testing.T, f *fakeAPI) *telegram.Client {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return telegram.NewClient("TOKEN", telegram.WithAPIBase(srv.URL))
}

func TestSendPhoto_PayloadShape(t *testing.T) {
	// WHAT: sendPhoto carries chat_id, photo, HTML parse mode and the inline
	// keyboard in one JSON body.
	// WHY: A malformed payload fails silently server-side as a text-less
	// notification; the shape is the contract.
	f := &fakeAPI{body: `{"ok":true,"result":{}}`}
	c := newTestClient(t, f)

	markup := telegram.LinkButton("Show", "https://www.vinted.pl/items/1")
	err := c.SendPhoto(context.Background(), 42, "https://img/1.jpg", "<b>Coat</b>", markup)
	if err != nil {
		t.Fatalf("send photo: %v", err)
	}

	if !strings.HasSuffix(f.lastPath, "/botTOKEN/sendPhoto") {
		t.Errorf("path = %q", f.lastPath)
	}
	if f.lastPayload["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %v", f.lastPayload["parse_mode"])
	}
	if f.lastPayload["photo"] != "https://img/1.jpg" {
		t.Errorf("photo = %v", f.lastPayload["photo"])
	}
	if f.lastPayload["reply_markup"] == nil {
		t.Error("reply_markup missing")
	}
}

func TestSend_BlockedClassification(t *testing.T) {
	// WHAT: A 403 response becomes *ErrBlocked carrying the chat ID.
	// WHY: Callers treat a blocked recipient differently from a transient
	// failure; the class decides whether to keep sending.
	f := &fakeAPI{
		status: http.StatusForbidden,
		body:   `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`,
	}
	c := newTestClient(t, f)

	err := c.SendMessage(context.Background(), 42, "hi", nil)
	var blocked *telegram.ErrBlocked
	if !errors.As(err, &blocked) {
		t.Fatalf("expected *ErrBlocked, got %T: %v", err, err)
	}
	if blocked.ChatID != 42 {
		t.Errorf("ChatID = %d, want 42", blocked.ChatID)
	}
}

func TestSend_ChatNotFoundClassification(t *testing.T) {
	// WHAT: 400 with a "chat not found" description becomes *ErrChatNotFound;
	// other 400s stay generic API errors.
	f := &fakeAPI{
		status: http.StatusBadRequest,
		body:   `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`,
	}
	c := newTestClient(t, f)

	err := c.SendMessage(context.Background(), 7, "hi", nil)
	var nf *telegram.ErrChatNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected *ErrChatNotFound, got %T: %v", err, err)
	}

	f.body = `{"ok":false,"error_code":400,"description":"Bad Request: message is too long"}`
	err = c.SendMessage(context.Background(), 7, "hi", nil)
	var api *telegram.ErrAPI
	if !errors.As(err, &api) {
		t.Fatalf("expected *ErrAPI for other 400, got %T: %v", err, err)
	}
	if api.Code != 400 {
		t.Errorf("Code = %d, want 400", api.Code)
	}
}

func TestSend_RateLimitClassification(t *testing.T) {
	// WHAT: 429 becomes *ErrRateLimited with retry_after decoded to a
	// duration.
	f := &fakeAPI{
		status: http.StatusTooManyRequests,
		body:   `{"ok":false,"error_code":429,"description":"Too Many Requests","parameters":{"retry_after":17}}`,
	}
	c := newTestClient(t, f)

	err := c.SendMessage(context.Background(), 1, "hi", nil)
	var rl *telegram.ErrRateLimited
	if !errors.As(err, &rl) {
		t.Fatalf("expected *ErrRateLimited, got %T: %v", err, err)
	}
	if rl.RetryAfter != 17*time.Second {
		t.Errorf("RetryAfter = %s, want 17s", rl.RetryAfter)
	}
}

func TestGetUpdates(t *testing.T) {
	// WHAT: getUpdates decodes message updates and passes offset/timeout.
	f := &fakeAPI{body: `{"ok":true,"result":[
		{"update_id":100,"message":{"message_id":1,"from":{"id":42,"first_name":"Ann"},"chat":{"id":42},"text":"/start"}},
		{"update_id":101}
	]}`}
	c := newTestClient(t, f)

	updates, err := c.GetUpdates(context.Background(), 99, 30)
	if err != nil {
		t.Fatalf("get updates: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("updates = %d, want 2", len(updates))
	}
	if updates[0].Message == nil || updates[0].Message.Text != "/start" {
		t.Errorf("first update message = %+v", updates[0].Message)
	}
	if updates[1].Message != nil {
		t.Error("second update should have nil message")
	}
	if f.lastPayload["offset"] != float64(99) {
		t.Errorf("offset = %v, want 99", f.lastPayload["offset"])
	}
}
