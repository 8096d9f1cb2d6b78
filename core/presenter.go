package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"leadwatch/core/actions"
	"leadwatch/internal/admin"
	"leadwatch/internal/leads"
)

const noExpiredLeadsText = "✅ No expired leads. All good!"

// LeadReviewer produces the current set of expired leads.
type LeadReviewer interface {
	Review(ctx context.Context) []leads.Lead
}

// Presenter runs the review cycle: fetch and filter leads, then push one
// message with action buttons per lead into the operator chat. Stateless
// across cycles apart from the lead cache the reviewer fills.
type Presenter struct {
	reviewer  LeadReviewer
	messenger Messenger
	logger    *slog.Logger
}

// NewPresenter creates a Presenter.
func NewPresenter(reviewer LeadReviewer, messenger Messenger, logger *slog.Logger) *Presenter {
	return &Presenter{
		reviewer:  reviewer,
		messenger: messenger,
		logger:    logger,
	}
}

// RunCycle presents the current expired leads to the given chat. An empty
// set yields a single acknowledgment; a delivery failure for one lead logs
// and moves on to the next.
func (p *Presenter) RunCycle(ctx context.Context, chatID int64) {
	logger := p.logger.With("cycle_id", uuid.New().String())

	expired := p.reviewer.Review(ctx)
	admin.RecordReviewCycle(len(expired))

	if len(expired) == 0 {
		if _, err := p.messenger.Send(ctx, Message{ChatID: chatID, Text: noExpiredLeadsText}); err != nil {
			logger.Error("acknowledgment send failed", "error", err)
		}
		return
	}

	sent := 0
	for _, lead := range expired {
		msg := Message{
			ChatID:   chatID,
			Text:     fmt.Sprintf("🔹 *%s*\n📞 %s", lead.Name, lead.Phone),
			Markdown: true,
			Keyboard: leadKeyboard(lead.ID),
		}
		if _, err := p.messenger.Send(ctx, msg); err != nil {
			logger.Error("lead notification failed", "lead_id", lead.ID, "error", err)
			continue
		}
		sent++
	}

	logger.Info("review cycle presented", "expired", len(expired), "sent", sent)
}

func leadKeyboard(leadID string) Keyboard {
	return Keyboard{
		{
			Button{Text: "✅ Called", Data: actions.Action{Kind: actions.KindCalled, LeadID: leadID}.Data()},
			Button{Text: "💬 Wrote", Data: actions.Action{Kind: actions.KindWrote, LeadID: leadID}.Data()},
		},
		{
			Button{Text: "⏳ Postpone", Data: actions.Action{Kind: actions.KindPostpone, LeadID: leadID}.Data()},
		},
	}
}
