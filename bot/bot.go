// Package bot is the Telegram command layer: it long-polls for updates
// and lets users manage their tracked links, with a small admin command
// set on top.
package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/fripe/store"
	"github.com/hazyhaar/fripe/telegram"
)

// API is the Bot API surface the command layer uses.
type API interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup any) error
	GetUpdates(ctx context.Context, offset int64, timeout int) ([]telegram.Update, error)
}

// Store is the persistence surface the command layer uses.
type Store interface {
	UpsertUser(ctx context.Context, u *store.User) (*store.User, error)
	GetUser(ctx context.Context, userID int64) (*store.User, error)
	UserWithLinks(ctx context.Context, userID int64) (*store.User, error)
	ListUsers(ctx context.Context) ([]*store.User, error)
	AddLink(ctx context.Context, userID int64, url string) (*store.Link, error)
	DeleteLink(ctx context.Context, userID int64, url string) error
	TogglePremium(ctx context.Context, userID int64) (bool, error)
	ToggleBanned(ctx context.Context, userID int64) (bool, error)
}

// pendingState marks what the next free-text message from a chat means.
type pendingState int

const (
	pendingNone pendingState = iota
	pendingAddLink
	pendingRemoveLink
)

// Config configures the bot.
type Config struct {
	// Admins are Telegram user IDs with access to admin commands.
	Admins []int64
	// PollTimeout is the getUpdates long-poll hold in seconds. Default: 30.
	PollTimeout int
}

func (c *Config) defaults() {
	if c.PollTimeout <= 0 {
		c.PollTimeout = 30
	}
}

// Bot dispatches incoming messages to command handlers.
type Bot struct {
	api    API
	store  Store
	admins map[int64]bool
	config Config
	logger *slog.Logger

	mu      sync.Mutex
	pending map[int64]pendingState
	offset  int64
}

// New creates a Bot.
func New(api API, st Store, cfg Config, logger *slog.Logger) *Bot {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	admins := make(map[int64]bool, len(cfg.Admins))
	for _, id := range cfg.Admins {
		admins[id] = true
	}
	return &Bot{
		api:     api,
		store:   st,
		admins:  admins,
		config:  cfg,
		logger:  logger,
		pending: map[int64]pendingState{},
	}
}

// Run long-polls for updates until ctx is cancelled. Admins get startup
// and shutdown notices.
func (b *Bot) Run(ctx context.Context) {
	b.notifyAdmins(ctx, "Bot started.")
	defer func() {
		// ctx is already cancelled at this point.
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		b.notifyAdmins(stopCtx, "Bot stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := b.api.GetUpdates(ctx, b.offset, b.config.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Error("bot: get updates", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= b.offset {
				b.offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			b.handleMessage(ctx, u.Message)
		}
	}
}

func (b *Bot) notifyAdmins(ctx context.Context, text string) {
	for id := range b.admins {
		if err := b.api.SendMessage(ctx, id, text, nil); err != nil {
			b.logger.Warn("bot: notify admin", "admin_id", id, "error", err)
		}
	}
}

func (b *Bot) setPending(chatID int64, s pendingState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s == pendingNone {
		delete(b.pending, chatID)
		return
	}
	b.pending[chatID] = s
}

func (b *Bot) takePending(chatID int64) pendingState {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.pending[chatID]
	delete(b.pending, chatID)
	return s
}

// mainKeyboard is the reply keyboard shown on /start. Admins get an extra
// row for the admin panel.
func (b *Bot) mainKeyboard(isAdmin bool) *telegram.ReplyKeyboardMarkup {
	rows := [][]telegram.KeyboardButton{
		{{Text: "Add Link"}, {Text: "Remove Link"}},
		{{Text: "Show Link list"}, {Text: "Help"}},
	}
	if isAdmin {
		rows = append(rows, []telegram.KeyboardButton{{Text: "Admin panel"}})
	}
	return &telegram.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
}
