package telegram

// InlineKeyboardButton is one button of an inline keyboard. Only URL
// buttons are used here.
type InlineKeyboardButton struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// InlineKeyboardMarkup attaches buttons beneath a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// KeyboardButton is one button of a reply keyboard.
type KeyboardButton struct {
	Text string `json:"text"`
}

// ReplyKeyboardMarkup replaces the user's keyboard with command buttons.
type ReplyKeyboardMarkup struct {
	Keyboard       [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard,omitempty"`
}

// LinkButton builds a single-button inline keyboard pointing at url.
func LinkButton(text, url string) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{
		InlineKeyboard: [][]InlineKeyboardButton{{{Text: text, URL: url}}},
	}
}

// Update is one incoming event from getUpdates. Only message updates are
// consumed; everything else is skipped by offset advancement.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming chat message.
type Message struct {
	MessageID int64   `json:"message_id"`
	From      *TgUser `json:"from"`
	Chat      Chat    `json:"chat"`
	Text      string  `json:"text"`
}

// TgUser identifies the sender of a message.
type TgUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}
