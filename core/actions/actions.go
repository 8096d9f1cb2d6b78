// Package actions maps inline button payloads to CRM operations and gives
// each press exactly one operator-facing outcome.
package actions

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"leadwatch/internal/activity"
	"leadwatch/internal/admin"
	"leadwatch/internal/leads"
)

// Kind is the operator action encoded in a button's callback payload.
type Kind string

const (
	KindCalled   Kind = "called"
	KindWrote    Kind = "wrote"
	KindPostpone Kind = "postpone"
)

// Action is one parsed button press.
type Action struct {
	Kind   Kind
	LeadID string
}

// Data renders the wire form carried in the callback payload.
func (a Action) Data() string {
	return string(a.Kind) + "_" + a.LeadID
}

// ParseData decodes "<kind>_<leadID>" callback payloads.
func ParseData(data string) (Action, error) {
	kind, leadID, ok := strings.Cut(data, "_")
	if !ok || leadID == "" {
		return Action{}, fmt.Errorf("malformed callback data: %q", data)
	}

	switch Kind(kind) {
	case KindCalled, KindWrote, KindPostpone:
		return Action{Kind: Kind(kind), LeadID: leadID}, nil
	default:
		return Action{}, fmt.Errorf("unknown action kind: %q", kind)
	}
}

// Outcome classifies how an action resolved.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeFailed
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Result is the uniform outcome of any action. Text is shown to the operator
// verbatim; the dispatcher retracts the message's buttons iff Outcome is OK.
type Result struct {
	Outcome Outcome
	Text    string
}

// Operator-facing acknowledgment texts.
const (
	textCalledOK     = "✅ Lead updated: marked as called"
	textWroteOK      = "✅ Lead updated: marked as wrote"
	textUpdateFailed = "❌ Error updating lead"
	textPostponeOK   = "✅ Follow-up task created"
	textPostponeFail = "❌ Error creating task"
	textNotFound     = "❌ Lead not found"
)

// LeadService is the slice of the leads service the handler needs.
type LeadService interface {
	MarkContacted(ctx context.Context, id string, how leads.ContactMethod) bool
	Postpone(ctx context.Context, id string) leads.PostponeResult
}

// Handler resolves parsed actions against the CRM and reports each outcome
// to the activity feed.
type Handler struct {
	svc       LeadService
	publisher activity.Publisher
	logger    *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(svc LeadService, publisher activity.Publisher, logger *slog.Logger) *Handler {
	return &Handler{
		svc:       svc,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes one action and returns its uniform result. All CRM
// failures surface as Result values; Handle never returns an error.
func (h *Handler) Handle(ctx context.Context, a Action) Result {
	var res Result
	var taskID string

	switch a.Kind {
	case KindCalled:
		res = contactedResult(h.svc.MarkContacted(ctx, a.LeadID, leads.ContactCalled), textCalledOK)
	case KindWrote:
		res = contactedResult(h.svc.MarkContacted(ctx, a.LeadID, leads.ContactWrote), textWroteOK)
	case KindPostpone:
		postponed := h.svc.Postpone(ctx, a.LeadID)
		taskID = postponed.TaskID
		res = postponeResult(postponed.Status)
	default:
		res = Result{Outcome: OutcomeFailed, Text: textUpdateFailed}
	}

	admin.RecordAction(string(a.Kind), res.Outcome.String())
	h.record(ctx, a, res, taskID)
	return res
}

func contactedResult(ok bool, successText string) Result {
	if !ok {
		return Result{Outcome: OutcomeFailed, Text: textUpdateFailed}
	}
	return Result{Outcome: OutcomeOK, Text: successText}
}

func postponeResult(status leads.PostponeStatus) Result {
	switch status {
	case leads.PostponeCreated:
		return Result{Outcome: OutcomeOK, Text: textPostponeOK}
	case leads.PostponeNotFound:
		return Result{Outcome: OutcomeNotFound, Text: textNotFound}
	default:
		return Result{Outcome: OutcomeFailed, Text: textPostponeFail}
	}
}

func (h *Handler) record(ctx context.Context, a Action, res Result, taskID string) {
	event := activity.NewEvent(a.LeadID, string(a.Kind), res.Outcome.String(), taskID)
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Error("activity publish failed", "lead_id", a.LeadID, "error", err)
	}
}
