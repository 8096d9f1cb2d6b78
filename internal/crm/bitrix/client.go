package bitrix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	httpTimeout    = 10 * time.Second
	deadlineLayout = "2006-01-02 15:04:05"
	maxBodyBytes   = 1 << 20
)

// StatusConverted is the lead status this bot reviews.
const StatusConverted = "CONVERTED"

// Client talks to a Bitrix24 inbound-webhook endpoint. Every call is a single
// attempt with a bounded timeout; there are no retries.
type Client struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for the given webhook base URL
// (e.g. https://example.bitrix24.com/rest/1/<key>/).
func NewClient(webhookURL string, logger *slog.Logger) *Client {
	return &Client{
		webhookURL: strings.TrimRight(webhookURL, "/"),
		client:     &http.Client{Timeout: httpTimeout},
		logger:     logger,
	}
}

// WithHTTPClient overrides the HTTP client (for testing).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

// ListLeads fetches leads filtered by status. Records that fail to decode are
// logged and skipped so one malformed entry never hides the rest.
func (c *Client) ListLeads(ctx context.Context, status string) ([]RawLead, error) {
	endpoint := fmt.Sprintf("%s/crm.lead.list?filter[STATUS_ID]=%s",
		c.webhookURL, url.QueryEscape(status))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var resp listLeadsResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("crm.lead.list: %w", err)
	}

	leads := make([]RawLead, 0, len(resp.Result))
	for _, raw := range resp.Result {
		var lead RawLead
		if err := json.Unmarshal(raw, &lead); err != nil {
			c.logger.Warn("skipping malformed lead record", "error", err)
			continue
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// UpdateLead writes a free-text comment onto a lead. A decoded result of
// false counts as a remote failure.
func (c *Client) UpdateLead(ctx context.Context, id, comment string) error {
	payload := updateLeadRequest{ID: id}
	payload.Fields.Comments = comment

	req, err := c.newPost(ctx, "crm.lead.update", payload)
	if err != nil {
		return err
	}

	var resp updateLeadResponse
	if err := c.do(req, &resp); err != nil {
		return fmt.Errorf("crm.lead.update: %w", err)
	}
	if !resp.Result {
		return fmt.Errorf("crm.lead.update: crm reported failure for lead %s", id)
	}
	return nil
}

// AddTask creates a follow-up task with the given deadline and returns the
// new task's ID.
func (c *Client) AddTask(ctx context.Context, title, description string, deadline time.Time, responsibleID int) (string, error) {
	payload := addTaskRequest{
		Fields: taskFields{
			Title:         title,
			Description:   description,
			Deadline:      deadline.Format(deadlineLayout),
			ResponsibleID: responsibleID,
		},
	}

	req, err := c.newPost(ctx, "tasks.task.add", payload)
	if err != nil {
		return "", err
	}

	var resp addTaskResponse
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("tasks.task.add: %w", err)
	}

	id, ok := taskIDFromResult(resp.Result)
	if !ok {
		return "", fmt.Errorf("tasks.task.add: no task id in response")
	}
	return id, nil
}

func (c *Client) newPost(ctx context.Context, method string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.webhookURL+"/"+method, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(buf)))
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// taskIDFromResult handles both result shapes tasks.task.add is known to
// return: a nested {"task":{"id":...}} object and a bare ID.
func taskIDFromResult(raw json.RawMessage) (string, bool) {
	var nested struct {
		Task struct {
			ID json.Number `json:"id"`
		} `json:"task"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && nested.Task.ID != "" {
		return nested.Task.ID.String(), true
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil && num != "" {
		return num.String(), true
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil && str != "" {
		return str, true
	}

	return "", false
}
