package core

import "time"

// InboundMessage represents a text message received from Telegram.
type InboundMessage struct {
	UpdateID  int64
	ChatID    int64
	UserID    int64
	Text      string
	Timestamp time.Time
}

// CallbackQuery represents an inline button press received from Telegram.
// Data carries the button's callback payload ("<action>_<leadID>").
type CallbackQuery struct {
	UpdateID  int64
	ID        string
	ChatID    int64
	MessageID int64
	UserID    int64
	Data      string
	Timestamp time.Time
}

// MessageHandler processes an inbound message.
type MessageHandler func(msg InboundMessage)

// CallbackHandler processes an inline button press.
type CallbackHandler func(cb CallbackQuery)
