// Package tracker runs the poll loop: every cycle it fans out over
// registered users, fetches each tracked link from the marketplace,
// records unseen items and hands them to the notifier.
package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/hazyhaar/fripe/idgen"
	"github.com/hazyhaar/fripe/store"
	"github.com/hazyhaar/fripe/vinted"
)

// Store is the persistence surface the tracker needs.
type Store interface {
	ListUsers(ctx context.Context) ([]*store.User, error)
	ListLinks(ctx context.Context, userID int64) ([]*store.Link, error)
	InsertSentItemIfAbsent(ctx context.Context, item *store.SentItem) (bool, error)
	TrimSentItems(ctx context.Context, linkID int64, keep int) (int64, error)
	RecordFetch(ctx context.Context, e *store.FetchLogEntry) error
	CleanupFetchLog(ctx context.Context, retention time.Duration) (int64, error)
}

// Notifier delivers one new item to a user.
type Notifier interface {
	NotifyItem(ctx context.Context, chatID int64, item vinted.Item) error
}

// Config configures the poll loop.
type Config struct {
	// PollInterval is the pause between cycles. Default: 15 seconds.
	PollInterval time.Duration
	// KeepPerLink is the sent-item retention ceiling per link. Default: 100.
	KeepPerLink int
	// FetchLogRetention bounds the fetch log. Default: 7 days.
	FetchLogRetention time.Duration
}

func (c *Config) defaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = 15 * time.Second
	}
	if c.KeepPerLink <= 0 {
		c.KeepPerLink = store.DefaultKeepPerLink
	}
	if c.FetchLogRetention <= 0 {
		c.FetchLogRetention = 7 * 24 * time.Hour
	}
}

// Service is the poll orchestrator.
type Service struct {
	store    Store
	notifier Notifier
	client   *vinted.Client
	config   Config
	logger   *slog.Logger
	newID    func() string
	blocked  func(userID int64)

	cancel context.CancelFunc
	done   chan struct{}
}

// ServiceOption configures a Service during creation.
type ServiceOption func(*Service)

// WithIDGen overrides the fetch-log ID generator.
func WithIDGen(gen func() string) ServiceOption {
	return func(svc *Service) { svc.newID = gen }
}

// WithBlockedFunc sets a hook invoked when a notification bounces because
// the recipient blocked the bot. Default: log only.
func WithBlockedFunc(fn func(userID int64)) ServiceOption {
	return func(svc *Service) { svc.blocked = fn }
}

// New creates a tracker Service.
func New(st Store, notifier Notifier, client *vinted.Client, cfg Config, logger *slog.Logger, opts ...ServiceOption) *Service {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	svc := &Service{
		store:    st,
		notifier: notifier,
		client:   client,
		config:   cfg,
		logger:   logger,
		newID:    idgen.New,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Start launches the poll loop goroutine. Non-blocking.
func (svc *Service) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	svc.cancel = cancel
	svc.done = make(chan struct{})
	go svc.run(runCtx)
	svc.logger.Info("tracker: started", "poll_interval", svc.config.PollInterval)
}

// Close stops the loop and waits for the in-flight cycle to drain.
func (svc *Service) Close() error {
	if svc.cancel == nil {
		return nil
	}
	svc.cancel()
	<-svc.done
	svc.logger.Info("tracker: closed")
	return nil
}

// run polls on a ticker. The first cycle runs immediately on start.
func (svc *Service) run(ctx context.Context) {
	defer close(svc.done)

	ticker := time.NewTicker(svc.config.PollInterval)
	defer ticker.Stop()

	svc.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.pollOnce(ctx)
		}
	}
}
