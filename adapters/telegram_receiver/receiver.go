package telegram_receiver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"leadwatch/core"
)

const (
	defaultBaseURL  = "https://api.telegram.org"
	longPollTimeout = 30
	httpTimeout     = 35 * time.Second
	errorBackoff    = 5 * time.Second
)

type apiResponse struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
}

type update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *message       `json:"message"`
	CallbackQuery *callbackQuery `json:"callback_query"`
}

type message struct {
	MessageID int64  `json:"message_id"`
	From      *user  `json:"from"`
	Chat      chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text"`
}

type callbackQuery struct {
	ID      string   `json:"id"`
	From    *user    `json:"from"`
	Message *message `json:"message"`
	Data    string   `json:"data"`
}

type user struct {
	ID int64 `json:"id"`
}

type chat struct {
	ID int64 `json:"id"`
}

// Receiver long-polls Telegram for inbound messages and button presses.
type Receiver struct {
	botToken  string
	onMessage core.MessageHandler
	onButton  core.CallbackHandler
	logger    *slog.Logger
	client    *http.Client
	baseURL   string
	offset    int64
	now       func() time.Time
}

// New creates a Telegram receiver.
func New(botToken string, onMessage core.MessageHandler, onButton core.CallbackHandler, logger *slog.Logger) *Receiver {
	return &Receiver{
		botToken:  botToken,
		onMessage: onMessage,
		onButton:  onButton,
		logger:    logger,
		client:    &http.Client{Timeout: httpTimeout},
		baseURL:   defaultBaseURL,
		now:       time.Now,
	}
}

// WithBaseURL overrides the Telegram API base URL (for testing).
func (r *Receiver) WithBaseURL(url string) *Receiver {
	r.baseURL = url
	return r
}

// Start begins the long-poll loop. Blocks until ctx is cancelled.
func (r *Receiver) Start(ctx context.Context) error {
	r.logger.Info("telegram receiver started")
	for {
		if err := ctx.Err(); err != nil {
			r.logger.Info("telegram receiver stopped")
			return nil
		}

		updates, err := r.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info("telegram receiver stopped")
				return nil
			}
			r.logger.Error("poll error", "error", err)
			select {
			case <-time.After(errorBackoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		for _, u := range updates {
			r.dispatch(u)
			r.offset = u.UpdateID + 1
		}
	}
}

func (r *Receiver) dispatch(u update) {
	switch {
	case u.CallbackQuery != nil:
		cb := u.CallbackQuery
		if cb.Message == nil || cb.Data == "" {
			return
		}

		var userID int64
		if cb.From != nil {
			userID = cb.From.ID
		}

		// Telegram does not timestamp callback queries, only the message
		// they were attached to. Use receipt time for freshness checks.
		r.onButton(core.CallbackQuery{
			UpdateID:  u.UpdateID,
			ID:        cb.ID,
			ChatID:    cb.Message.Chat.ID,
			MessageID: cb.Message.MessageID,
			UserID:    userID,
			Data:      cb.Data,
			Timestamp: r.now(),
		})

	case u.Message != nil && u.Message.Text != "":
		var userID int64
		if u.Message.From != nil {
			userID = u.Message.From.ID
		}

		r.onMessage(core.InboundMessage{
			UpdateID:  u.UpdateID,
			ChatID:    u.Message.Chat.ID,
			UserID:    userID,
			Text:      u.Message.Text,
			Timestamp: time.Unix(u.Message.Date, 0),
		})
	}
}

func (r *Receiver) poll(ctx context.Context) ([]update, error) {
	url := fmt.Sprintf("%s/bot%s/getUpdates?offset=%d&timeout=%d",
		r.baseURL, r.botToken, r.offset, longPollTimeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api status: %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if !apiResp.OK {
		return nil, fmt.Errorf("api returned ok=false")
	}

	var updates []update
	if err := json.Unmarshal(apiResp.Result, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}

	return updates, nil
}
