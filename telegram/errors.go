package telegram

import (
	"fmt"
	"time"
)

// ErrBlocked is returned when the recipient has blocked the bot (HTTP 403).
// The recipient will never receive messages until they unblock it.
type ErrBlocked struct {
	ChatID int64
}

func (e *ErrBlocked) Error() string {
	return fmt.Sprintf("telegram: bot blocked by chat %d", e.ChatID)
}

// ErrChatNotFound is returned when the chat does not exist or the bot has
// never seen it (HTTP 400 with a chat/user not found description).
type ErrChatNotFound struct {
	ChatID int64
}

func (e *ErrChatNotFound) Error() string {
	return fmt.Sprintf("telegram: chat not found: %d", e.ChatID)
}

// ErrRateLimited is returned on HTTP 429. RetryAfter comes from the API's
// parameters.retry_after field.
type ErrRateLimited struct {
	RetryAfter time.Duration
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("telegram: rate limited, retry after %s", e.RetryAfter)
}

// ErrAPI is any other non-ok Bot API response.
type ErrAPI struct {
	Code        int
	Description string
}

func (e *ErrAPI) Error() string {
	return fmt.Sprintf("telegram: api error %d: %s", e.Code, e.Description)
}
