package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hazyhaar/fripe/store"
)

// maxMessageLen keeps replies under the Bot API message limit.
const maxMessageLen = 4000

func (b *Bot) cmdAdminPanel(ctx context.Context, chatID int64) {
	if !b.admins[chatID] {
		b.reply(ctx, chatID, "You are not admin.")
		return
	}
	b.reply(ctx, chatID,
		"You are logged into the admin panel. Available commands:\n"+
			"/view_users - Show all users\n"+
			"/grant_premium <user_id> - Toggle premium access for a user\n"+
			"/ban_user <user_id> - Toggle ban for a user")
}

func (b *Bot) cmdViewUsers(ctx context.Context, chatID int64) {
	if !b.admins[chatID] {
		b.reply(ctx, chatID, "You are not an admin.")
		return
	}
	users, err := b.store.ListUsers(ctx)
	if err != nil {
		b.logger.Error("bot: list users", "error", err)
		b.reply(ctx, chatID, "Could not load users.")
		return
	}
	if len(users) == 0 {
		b.reply(ctx, chatID, "No users found.")
		return
	}

	var sb strings.Builder
	sb.WriteString("User List:\n")
	for _, u := range users {
		full, err := b.store.UserWithLinks(ctx, u.UserID)
		if err != nil || full == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("\nUser ID: %d\nPremium: %s, Admin: %s, Banned: %s\nLinks:\n",
			full.UserID, yesNo(full.IsPremium), yesNo(full.IsAdmin), yesNo(full.IsBanned)))
		if len(full.Links) == 0 {
			sb.WriteString("  No links\n")
			continue
		}
		for _, l := range full.Links {
			sb.WriteString("  - " + l.URL + "\n")
		}
	}
	for _, part := range splitMessage(sb.String(), maxMessageLen) {
		b.reply(ctx, chatID, part)
	}
}

func (b *Bot) cmdGrantPremium(ctx context.Context, chatID int64, text string) {
	targetID, ok := b.parseAdminTarget(ctx, chatID, text, "/grant_premium")
	if !ok {
		return
	}
	premium, err := b.store.TogglePremium(ctx, targetID)
	if err != nil {
		b.reply(ctx, chatID,
			fmt.Sprintf("User with ID %d not found or could not be updated.", targetID))
		return
	}
	if premium {
		b.reply(ctx, chatID, fmt.Sprintf("User with ID %d now has premium access.", targetID))
	} else {
		b.reply(ctx, chatID, fmt.Sprintf("User with ID %d is no longer premium.", targetID))
	}
}

func (b *Bot) cmdBanUser(ctx context.Context, chatID int64, text string) {
	targetID, ok := b.parseAdminTarget(ctx, chatID, text, "/ban_user")
	if !ok {
		return
	}
	banned, err := b.store.ToggleBanned(ctx, targetID)
	if err != nil {
		b.reply(ctx, chatID,
			fmt.Sprintf("User with ID %d not found or could not be updated.", targetID))
		return
	}
	if banned {
		b.reply(ctx, chatID, fmt.Sprintf("User with ID %d got banned.", targetID))
	} else {
		b.reply(ctx, chatID, fmt.Sprintf("User with ID %d is unbanned.", targetID))
	}
}

// parseAdminTarget validates admin access and extracts the "<cmd> <user_id>"
// argument, replying with usage hints on malformed input.
func (b *Bot) parseAdminTarget(ctx context.Context, chatID int64, text, cmd string) (int64, bool) {
	if !b.admins[chatID] {
		b.reply(ctx, chatID, "You are not an admin.")
		return 0, false
	}
	parts := strings.Fields(text)
	if len(parts) < 2 {
		b.reply(ctx, chatID, fmt.Sprintf("Usage: %s <user_id>", cmd))
		return 0, false
	}
	targetID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		b.reply(ctx, chatID, "Invalid user_id format. Please provide a valid integer ID.")
		return 0, false
	}
	return targetID, true
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// splitMessage breaks a long text into parts at newline boundaries.
func splitMessage(text string, maxLen int) []string {
	var parts []string
	for len(text) > maxLen {
		cut := strings.LastIndex(text[:maxLen], "\n")
		if cut <= 0 {
			cut = maxLen
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	return append(parts, text)
}

var _ Store = (*store.Store)(nil)
