// Command fripe runs the marketplace tracker: the Telegram bot for link
// management, the poll loop that watches searches, and a small admin API.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/fripe/bot"
	"github.com/hazyhaar/fripe/dbopen"
	"github.com/hazyhaar/fripe/store"
	"github.com/hazyhaar/fripe/telegram"
	"github.com/hazyhaar/fripe/tracker"
	"github.com/hazyhaar/fripe/vinted"
)

func main() {
	cfg := loadConfig()

	// Logging.
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	if cfg.BotToken == "" {
		slog.Error("BOT_TOKEN is required")
		os.Exit(1)
	}

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Database.
	db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := store.ApplySchema(db); err != nil {
		slog.Error("apply schema", "error", err)
		os.Exit(1)
	}
	st := store.NewStore(db)

	// Telegram + marketplace clients.
	tg := telegram.NewClient(cfg.BotToken)
	market := vinted.NewClient(nil, vinted.Config{UserAgent: cfg.UserAgent})

	// Poll orchestrator.
	svc := tracker.New(st, tracker.NewTelegramNotifier(tg), market, tracker.Config{
		PollInterval: cfg.PollInterval,
		KeepPerLink:  cfg.KeepPerLink,
	}, logger)
	svc.Start(ctx)

	// Bot command loop.
	b := bot.New(tg, st, bot.Config{Admins: cfg.Admins}, logger)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		b.Run(ctx)
	}()

	// Admin API.
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})
	if hash := os.Getenv("ADMIN_PASSWORD_HASH"); hash != "" {
		r.Group(func(r chi.Router) {
			r.Use(basicAuth(hash))
			r.Get("/api/stats", func(w http.ResponseWriter, req *http.Request) {
				stats, err := st.Stats(req.Context())
				if err != nil {
					writeError(w, 500, err)
					return
				}
				writeJSON(w, 200, stats)
			})
			r.Get("/api/users", func(w http.ResponseWriter, req *http.Request) {
				users, err := st.ListUsers(req.Context())
				if err != nil {
					writeError(w, 500, err)
					return
				}
				writeJSON(w, 200, users)
			})
		})
	} else {
		slog.Warn("ADMIN_PASSWORD_HASH not set, admin endpoints disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	// Bot loop exits on the cancelled context, tracker drains its cycle,
	// then the HTTP server stops.
	wg.Wait()
	svc.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

// loadConfig reads the optional YAML file and applies env overrides.
func loadConfig() *Config {
	var cfg *Config
	if path := env("CONFIG_FILE", ""); path != "" {
		c, err := LoadFile(path)
		if err != nil {
			slog.Error("load config", "path", path, "error", err)
			os.Exit(1)
		}
		cfg = c
	} else {
		cfg = &Config{}
		cfg.applyDefaults()
	}

	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.BotToken = v
	}
	if v := os.Getenv("ADMIN_IDS"); v != "" {
		cfg.Admins = parseAdminIDs(v)
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

// parseAdminIDs parses a comma-separated list of Telegram user IDs,
// skipping malformed entries.
func parseAdminIDs(s string) []int64 {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			slog.Warn("invalid admin id", "value", part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// basicAuth guards admin endpoints with a bcrypt-hashed password.
func basicAuth(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, pass, ok := r.BasicAuth()
			if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="fripe admin"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
