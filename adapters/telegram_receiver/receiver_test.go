package telegram_receiver_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"leadwatch/adapters/telegram_receiver"
	"leadwatch/core"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type collector struct {
	mu        sync.Mutex
	messages  []core.InboundMessage
	callbacks []core.CallbackQuery
}

func (c *collector) onMessage(msg core.InboundMessage) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}

func (c *collector) onButton(cb core.CallbackQuery) {
	c.mu.Lock()
	c.callbacks = append(c.callbacks, cb)
	c.mu.Unlock()
}

// serveOnce returns a server whose first response is the given update batch;
// all later polls block until the request context is cancelled.
func serveOnce(t *testing.T, result any) *httptest.Server {
	t.Helper()
	callCount := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		if callCount == 1 {
			json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
		} else {
			<-r.Context().Done()
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runReceiver(t *testing.T, srv *httptest.Server, c *collector) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	recv := telegram_receiver.New("test-token", c.onMessage, c.onButton, testLogger()).WithBaseURL(srv.URL)
	recv.Start(ctx)
}

func TestPollMessage(t *testing.T) {
	srv := serveOnce(t, []map[string]any{
		{
			"update_id": 100,
			"message": map[string]any{
				"message_id": 1,
				"from":       map[string]any{"id": 42},
				"chat":       map[string]any{"id": 123},
				"date":       time.Now().Unix(),
				"text":       "/leads",
			},
		},
	})

	c := &collector{}
	runReceiver(t, srv, c)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) != 1 {
		t.Fatalf("received %d messages, want 1", len(c.messages))
	}
	msg := c.messages[0]
	if msg.Text != "/leads" {
		t.Errorf("text = %q, want /leads", msg.Text)
	}
	if msg.ChatID != 123 {
		t.Errorf("chatID = %d, want 123", msg.ChatID)
	}
	if msg.UserID != 42 {
		t.Errorf("userID = %d, want 42", msg.UserID)
	}
	if msg.UpdateID != 100 {
		t.Errorf("updateID = %d, want 100", msg.UpdateID)
	}
	if len(c.callbacks) != 0 {
		t.Errorf("received %d callbacks, want 0", len(c.callbacks))
	}
}

func TestPollCallbackQuery(t *testing.T) {
	srv := serveOnce(t, []map[string]any{
		{
			"update_id": 101,
			"callback_query": map[string]any{
				"id":   "cb-77",
				"from": map[string]any{"id": 42},
				"message": map[string]any{
					"message_id": 9,
					"chat":       map[string]any{"id": 123},
					"date":       time.Now().Unix(),
				},
				"data": "called_17",
			},
		},
	})

	c := &collector{}
	before := time.Now()
	runReceiver(t, srv, c)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.callbacks) != 1 {
		t.Fatalf("received %d callbacks, want 1", len(c.callbacks))
	}
	cb := c.callbacks[0]
	if cb.ID != "cb-77" {
		t.Errorf("id = %q, want cb-77", cb.ID)
	}
	if cb.Data != "called_17" {
		t.Errorf("data = %q, want called_17", cb.Data)
	}
	if cb.ChatID != 123 {
		t.Errorf("chatID = %d, want 123", cb.ChatID)
	}
	if cb.MessageID != 9 {
		t.Errorf("messageID = %d, want 9", cb.MessageID)
	}
	if cb.UpdateID != 101 {
		t.Errorf("updateID = %d, want 101", cb.UpdateID)
	}
	if cb.Timestamp.Before(before) {
		t.Errorf("timestamp %v predates the poll", cb.Timestamp)
	}
	if len(c.messages) != 0 {
		t.Errorf("received %d messages, want 0", len(c.messages))
	}
}

func TestSkipsEmptyUpdates(t *testing.T) {
	srv := serveOnce(t, []map[string]any{
		{
			"update_id": 50,
			"message": map[string]any{
				"message_id": 1,
				"chat":       map[string]any{"id": 10},
				"date":       time.Now().Unix(),
				"text":       "",
			},
		},
		{
			"update_id": 51,
			"callback_query": map[string]any{
				"id":   "cb-1",
				"data": "",
				"message": map[string]any{
					"message_id": 2,
					"chat":       map[string]any{"id": 10},
				},
			},
		},
	})

	c := &collector{}
	runReceiver(t, srv, c)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.messages) != 0 || len(c.callbacks) != 0 {
		t.Errorf("received %d messages and %d callbacks, want 0/0",
			len(c.messages), len(c.callbacks))
	}
}

func TestOffsetAdvancesPastCallbacks(t *testing.T) {
	var mu sync.Mutex
	var offsets []string
	callCount := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		offsets = append(offsets, r.URL.Query().Get("offset"))
		mu.Unlock()
		callCount++
		if callCount == 1 {
			json.NewEncoder(w).Encode(map[string]any{
				"ok": true,
				"result": []map[string]any{
					{
						"update_id": 200,
						"callback_query": map[string]any{
							"id":   "cb-1",
							"from": map[string]any{"id": 1},
							"message": map[string]any{
								"message_id": 3,
								"chat":       map[string]any{"id": 1},
							},
							"data": "postpone_5",
						},
					},
				},
			})
		} else {
			<-r.Context().Done()
		}
	}))
	defer srv.Close()

	c := &collector{}
	runReceiver(t, srv, c)

	mu.Lock()
	defer mu.Unlock()
	if len(offsets) < 2 {
		t.Fatalf("expected at least 2 polls, got %d", len(offsets))
	}
	if offsets[0] != "0" {
		t.Errorf("first offset = %q, want '0'", offsets[0])
	}
	if offsets[1] != "201" {
		t.Errorf("second offset = %q, want '201'", offsets[1])
	}
}

func TestContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())

	c := &collector{}
	recv := telegram_receiver.New("tok", c.onMessage, c.onButton, testLogger()).WithBaseURL(srv.URL)

	done := make(chan struct{})
	go func() {
		recv.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("receiver did not stop after context cancellation")
	}
}

func TestAPIErrorBackoff(t *testing.T) {
	callCount := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		if callCount <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
		} else {
			<-r.Context().Done()
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 12*time.Second)
	defer cancel()

	c := &collector{}
	recv := telegram_receiver.New("tok", c.onMessage, c.onButton, testLogger()).WithBaseURL(srv.URL)
	recv.Start(ctx)

	if callCount < 2 {
		t.Errorf("expected at least 2 calls (with backoff), got %d", callCount)
	}
}
