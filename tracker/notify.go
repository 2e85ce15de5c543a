package tracker

import (
	"context"
	"fmt"
	"html"

	"github.com/hazyhaar/fripe/telegram"
	"github.com/hazyhaar/fripe/vinted"
)

// Sender is the outbound Telegram surface the notifier uses.
type Sender interface {
	SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, markup any) error
	SendMessage(ctx context.Context, chatID int64, text string, markup any) error
}

// TelegramNotifier delivers new items as photo messages with a "Show"
// button linking back to the listing.
type TelegramNotifier struct {
	sender Sender
}

// NewTelegramNotifier wraps a Telegram client (or any Sender).
func NewTelegramNotifier(sender Sender) *TelegramNotifier {
	return &TelegramNotifier{sender: sender}
}

// NotifyItem sends one listing. Items without a photo fall back to a text
// message so the user still gets the alert.
func (n *TelegramNotifier) NotifyItem(ctx context.Context, chatID int64, item vinted.Item) error {
	caption := itemCaption(item)
	markup := telegram.LinkButton("Show", item.URL)
	if item.PhotoURL == "" {
		return n.sender.SendMessage(ctx, chatID, caption, markup)
	}
	return n.sender.SendPhoto(ctx, chatID, item.PhotoURL, caption, markup)
}

// itemCaption renders the HTML caption. User-controlled marketplace text is
// escaped so a listing title cannot inject markup.
func itemCaption(item vinted.Item) string {
	caption := fmt.Sprintf("<b>%s</b>", html.EscapeString(item.Title))
	if item.BrandTitle != "" {
		caption += "\n" + html.EscapeString(item.BrandTitle)
	}
	if item.Price != "" {
		caption += fmt.Sprintf("\n<b>%s</b>", html.EscapeString(item.Price))
	}
	return caption
}
