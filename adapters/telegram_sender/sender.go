package telegram_sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"leadwatch/core"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	httpTimeout    = 10 * time.Second
)

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID      int64           `json:"chat_id"`
	Text        string          `json:"text"`
	ParseMode   string          `json:"parse_mode,omitempty"`
	ReplyMarkup *inlineKeyboard `json:"reply_markup,omitempty"`
}

type editMarkupRequest struct {
	ChatID      int64          `json:"chat_id"`
	MessageID   int64          `json:"message_id"`
	ReplyMarkup inlineKeyboard `json:"reply_markup"`
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
	ShowAlert       bool   `json:"show_alert,omitempty"`
}

// Result is raw because its shape varies per method: a message object for
// sendMessage, a bare bool for answerCallbackQuery.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// Sender delivers messages and keyboard edits via the Telegram Bot API.
type Sender struct {
	botToken string
	client   *http.Client
	baseURL  string
}

// New creates a Telegram sender with the given bot token.
func New(botToken string) *Sender {
	return &Sender{
		botToken: botToken,
		client:   &http.Client{Timeout: httpTimeout},
		baseURL:  defaultBaseURL,
	}
}

// WithBaseURL sets a custom base URL (for testing).
func (s *Sender) WithBaseURL(baseURL string) *Sender {
	s.baseURL = baseURL
	return s
}

// Send delivers a message and returns the Telegram message ID.
func (s *Sender) Send(ctx context.Context, msg core.Message) (int64, error) {
	req := sendMessageRequest{
		ChatID:      msg.ChatID,
		Text:        msg.Text,
		ReplyMarkup: toInlineKeyboard(msg.Keyboard),
	}
	if msg.Markdown {
		req.ParseMode = "Markdown"
	}

	resp, err := s.call(ctx, "sendMessage", req)
	if err != nil {
		return 0, err
	}

	var sent struct {
		MessageID int64 `json:"message_id"`
	}
	if err := json.Unmarshal(resp.Result, &sent); err != nil {
		return 0, fmt.Errorf("decode sent message: %w", err)
	}
	return sent.MessageID, nil
}

// RemoveKeyboard retracts the inline keyboard from a previously sent
// message, leaving its text in place.
func (s *Sender) RemoveKeyboard(ctx context.Context, chatID, messageID int64) error {
	_, err := s.call(ctx, "editMessageReplyMarkup", editMarkupRequest{
		ChatID:    chatID,
		MessageID: messageID,
	})
	return err
}

// AnswerCallback acknowledges a button press with a short notice.
func (s *Sender) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	_, err := s.call(ctx, "answerCallbackQuery", answerCallbackRequest{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	return err
}

func (s *Sender) call(ctx context.Context, method string, payload any) (*apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", s.baseURL, s.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK || !apiResp.OK {
		return nil, fmt.Errorf("telegram API error %d: %s", resp.StatusCode, apiResp.Description)
	}

	return &apiResp, nil
}

func toInlineKeyboard(kb core.Keyboard) *inlineKeyboard {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]inlineButton, len(kb))
	for i, row := range kb {
		buttons := make([]inlineButton, len(row))
		for j, b := range row {
			buttons[j] = inlineButton{Text: b.Text, CallbackData: b.Data}
		}
		rows[i] = buttons
	}
	return &inlineKeyboard{InlineKeyboard: rows}
}
