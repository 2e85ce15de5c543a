package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/hazyhaar/fripe/store"
	"github.com/hazyhaar/fripe/telegram"
)

const linkPrefix = "https://www.vinted."

const helpText = "This bot helps you track products on the Vinted website.\n\n" +
	"Here are the available commands:\n" +
	"/start - Start the bot\n" +
	"Add Link - Send a link that the bot will track\n" +
	" - Use the web version of Vinted: search for what you want and filter by size, price, category.\n" +
	" - IMPORTANT! Select sorting 'newest first'.\n" +
	" - Then copy the resulting link from the browser and send it here.\n" +
	"Remove Link - Remove a link from tracking\n" +
	"Show Link list - Show all added tracking links\n" +
	"Help - Information about the bot"

// handleMessage routes one incoming message. A pending state (set by
// "Add Link" / "Remove Link") consumes the next free-text message unless
// it is itself a command.
func (b *Bot) handleMessage(ctx context.Context, msg *telegram.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case text == "/start":
		b.setPending(chatID, pendingNone)
		b.cmdStart(ctx, msg)
	case text == "Add Link":
		b.setPending(chatID, pendingAddLink)
		b.reply(ctx, chatID, "Please send tracking link!")
	case text == "Remove Link":
		b.setPending(chatID, pendingRemoveLink)
		b.reply(ctx, chatID, "Please send link for removing.")
	case text == "Show Link list":
		b.setPending(chatID, pendingNone)
		b.cmdShowLinks(ctx, chatID)
	case text == "Help":
		b.setPending(chatID, pendingNone)
		b.reply(ctx, chatID, helpText)
	case text == "Admin panel":
		b.setPending(chatID, pendingNone)
		b.cmdAdminPanel(ctx, chatID)
	case text == "/view_users":
		b.cmdViewUsers(ctx, chatID)
	case strings.HasPrefix(text, "/grant_premium"):
		b.cmdGrantPremium(ctx, chatID, text)
	case strings.HasPrefix(text, "/ban_user"):
		b.cmdBanUser(ctx, chatID, text)
	default:
		switch b.takePending(chatID) {
		case pendingAddLink:
			b.saveLink(ctx, chatID, text)
		case pendingRemoveLink:
			b.removeLink(ctx, chatID, text)
		}
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string, markup ...any) {
	var m any
	if len(markup) > 0 {
		m = markup[0]
	}
	if err := b.api.SendMessage(ctx, chatID, html.EscapeString(text), m); err != nil {
		b.logger.Warn("bot: reply", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) cmdStart(ctx context.Context, msg *telegram.Message) {
	chatID := msg.Chat.ID
	u, err := b.store.UpsertUser(ctx, &store.User{
		UserID:  chatID,
		IsAdmin: b.admins[chatID],
	})
	if err != nil {
		b.logger.Error("bot: register user", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, "Something went wrong, please try again.")
		return
	}
	if u.IsBanned {
		b.reply(ctx, chatID, "You are banned and cannot use this bot.")
		b.logger.Warn("bot: banned user tried to start", "chat_id", chatID)
		return
	}
	b.reply(ctx, chatID,
		"Hi! I am Vinted tracker bot!\nSelect an action using the buttons below:",
		b.mainKeyboard(b.admins[chatID]))
	b.logger.Info("bot: user started", "chat_id", chatID)
}

func (b *Bot) saveLink(ctx context.Context, chatID int64, text string) {
	if !strings.HasPrefix(text, linkPrefix) {
		b.reply(ctx, chatID, "Please send the correct link starting with 'https://www.vinted.'.")
		return
	}
	link := escapeURL(text)
	if _, err := b.store.AddLink(ctx, chatID, link); err != nil {
		switch {
		case errors.Is(err, store.ErrLinkQuotaExceeded):
			b.reply(ctx, chatID, "You have reached the maximum number of links allowed.")
		case errors.Is(err, store.ErrUserNotFound):
			b.reply(ctx, chatID, "Please run /start first.")
		default:
			b.logger.Error("bot: add link", "chat_id", chatID, "error", err)
			b.reply(ctx, chatID, "Could not add the link, please try again.")
		}
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("Link %s added for tracking.", text))
	b.logger.Info("bot: link added", "chat_id", chatID, "link", link)
}

func (b *Bot) removeLink(ctx context.Context, chatID int64, text string) {
	if !strings.HasPrefix(text, linkPrefix) {
		b.reply(ctx, chatID,
			"This appears to be an incorrect link. The link must start with 'https://www.vinted.'.")
		return
	}
	if err := b.store.DeleteLink(ctx, chatID, escapeURL(text)); err != nil {
		if errors.Is(err, store.ErrLinkNotFound) {
			b.reply(ctx, chatID, "This link was not found in your list.")
			return
		}
		b.logger.Error("bot: remove link", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, "Could not remove the link, please try again.")
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf("Link %s has been removed from tracking.", text))
}

func (b *Bot) cmdShowLinks(ctx context.Context, chatID int64) {
	u, err := b.store.UserWithLinks(ctx, chatID)
	if err != nil {
		b.logger.Error("bot: show links", "chat_id", chatID, "error", err)
		b.reply(ctx, chatID, "Something went wrong, please try again.")
		return
	}
	if u == nil {
		b.reply(ctx, chatID, "User not found.")
		return
	}
	if len(u.Links) == 0 {
		b.reply(ctx, chatID, "You don't have any links added yet.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Your links:")
	for _, l := range u.Links {
		sb.WriteString("\n- " + l.URL)
	}
	b.reply(ctx, chatID, sb.String())
}

// escapeURL percent-encodes a pasted URL, leaving URL structure characters
// intact so the stored form is stable for exact-match removal.
func escapeURL(raw string) string {
	const safe = ":/?&=.%-_~+[]"
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			sb.WriteByte(c)
		case strings.IndexByte(safe, c) >= 0:
			sb.WriteByte(c)
		default:
			sb.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return sb.String()
}
