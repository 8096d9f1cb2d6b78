package core

import "context"

// Button is one inline keyboard button. Data is the callback payload sent
// back when the operator presses it.
type Button struct {
	Text string
	Data string
}

// Keyboard is rows of inline buttons.
type Keyboard [][]Button

// Message is an outbound chat message, optionally carrying a keyboard.
type Message struct {
	ChatID   int64
	Text     string
	Markdown bool
	Keyboard Keyboard
}

// Messenger sends and edits chat messages. Implementations wrap a single
// chat platform; retracting a message's controls is done by removing its
// keyboard.
type Messenger interface {
	Send(ctx context.Context, msg Message) (messageID int64, err error)
	RemoveKeyboard(ctx context.Context, chatID, messageID int64) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}
