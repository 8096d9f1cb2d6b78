package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"leadwatch/core/actions"
	"leadwatch/core/ops"
	"leadwatch/core/policy"
)

const (
	opTimeout     = 30 * time.Second
	actionTimeout = 15 * time.Second
	sendTimeout   = 10 * time.Second
)

// Dispatcher authorizes inbound updates and routes them: slash commands to
// the op registry, button callbacks to the action handler. The receiver's
// long-poll loop serializes invocations, so handling is synchronous.
type Dispatcher struct {
	policy    *policy.Policy
	ops       *ops.Registry
	actions   *actions.Handler
	messenger Messenger
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(pol *policy.Policy, opsReg *ops.Registry, actionHandler *actions.Handler, messenger Messenger, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		policy:    pol,
		ops:       opsReg,
		actions:   actionHandler,
		messenger: messenger,
		logger:    logger,
	}
}

// HandleMessage processes an inbound text message: authorize, parse,
// execute, respond.
func (d *Dispatcher) HandleMessage(msg InboundMessage) {
	if err := d.policy.Authorize(msg.ChatID, msg.UpdateID, msg.Timestamp); err != nil {
		d.logger.Debug("message rejected by policy", "chat_id", msg.ChatID, "error", err)
		return
	}

	cmd, args := parseCommand(msg.Text)
	if cmd == "" {
		return
	}

	op := d.ops.Get(cmd)
	if op == nil {
		d.respond(msg.ChatID, fmt.Sprintf("Unknown command: /%s\nSend /help for available commands.", cmd))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	result, err := op.Execute(ctx, msg.ChatID, args)
	if err != nil {
		d.logger.Error("op failed", "op", cmd, "error", err)
		d.respond(msg.ChatID, fmt.Sprintf("Error running /%s: %s", cmd, err))
		return
	}

	if result != "" {
		d.respond(msg.ChatID, result)
	}
}

// HandleCallback processes a button press. Exactly one acknowledgment goes
// back to the operator; the message's buttons are retracted only when the
// action fully succeeded, so a failed postpone can be retried by pressing
// again.
func (d *Dispatcher) HandleCallback(cb CallbackQuery) {
	if err := d.policy.Authorize(cb.ChatID, cb.UpdateID, cb.Timestamp); err != nil {
		d.logger.Debug("callback rejected by policy", "chat_id", cb.ChatID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	action, err := actions.ParseData(cb.Data)
	if err != nil {
		d.logger.Warn("malformed callback", "data", cb.Data, "error", err)
		d.answer(ctx, cb.ID, "❌ Unknown action")
		return
	}

	res := d.actions.Handle(ctx, action)
	d.answer(ctx, cb.ID, res.Text)

	if res.Outcome == actions.OutcomeOK {
		if err := d.messenger.RemoveKeyboard(ctx, cb.ChatID, cb.MessageID); err != nil {
			d.logger.Error("keyboard retraction failed",
				"chat_id", cb.ChatID, "message_id", cb.MessageID, "error", err)
		}
	}
}

func (d *Dispatcher) respond(chatID int64, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	if _, err := d.messenger.Send(ctx, Message{ChatID: chatID, Text: text}); err != nil {
		d.logger.Error("failed to send response", "chat_id", chatID, "error", err)
	}
}

func (d *Dispatcher) answer(ctx context.Context, callbackID, text string) {
	if err := d.messenger.AnswerCallback(ctx, callbackID, text, true); err != nil {
		d.logger.Error("failed to answer callback", "callback_id", callbackID, "error", err)
	}
}

// parseCommand extracts the command name and arguments from a message.
// It handles "/command", "/command args", and "/command@botname args".
func parseCommand(text string) (cmd, args string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}

	text = text[1:] // strip leading "/"
	parts := strings.SplitN(text, " ", 2)
	cmd = parts[0]
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	// Strip @botname suffix.
	if at := strings.Index(cmd, "@"); at != -1 {
		cmd = cmd[:at]
	}

	cmd = strings.ToLower(cmd)
	return cmd, args
}
