package leads

import (
	"context"
	"log/slog"
	"time"

	"leadwatch/internal/admin"
	"leadwatch/internal/config"
	"leadwatch/internal/crm/bitrix"
)

// Comment texts written onto a lead when the operator resolves it.
const (
	CommentCalled = "manager called"
	CommentWrote  = "manager wrote"
)

// ContactMethod says how the operator reached the lead.
type ContactMethod string

const (
	ContactCalled ContactMethod = "called"
	ContactWrote  ContactMethod = "wrote"
)

// Comment returns the fixed CRM comment for the contact method.
func (m ContactMethod) Comment() string {
	if m == ContactWrote {
		return CommentWrote
	}
	return CommentCalled
}

// PostponeStatus classifies the outcome of a postpone request.
type PostponeStatus int

const (
	PostponeCreated PostponeStatus = iota
	PostponeNotFound
	PostponeFailed
)

// PostponeResult carries the postpone outcome and, on success, the created
// task's ID.
type PostponeResult struct {
	Status PostponeStatus
	TaskID string
}

// CRM is the slice of the Bitrix client the service needs.
type CRM interface {
	ListLeads(ctx context.Context, status string) ([]bitrix.RawLead, error)
	UpdateLead(ctx context.Context, id, comment string) error
	AddTask(ctx context.Context, title, description string, deadline time.Time, responsibleID int) (string, error)
}

// Service implements the lead lifecycle against the CRM. Per the error
// design, CRM failures never escape as errors: Review degrades to an empty
// list and the write operations report success or failure as values, so
// callers can hand the operator immediate feedback.
type Service struct {
	crm      CRM
	cache    *Cache
	settings *config.Store
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a Service.
func NewService(crm CRM, cache *Cache, settings *config.Store, logger *slog.Logger) *Service {
	return &Service{
		crm:      crm,
		cache:    cache,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Review fetches converted leads, keeps the ones older than the staleness
// threshold, and memoizes them for later button callbacks. A fetch failure
// logs and returns an empty list.
func (s *Service) Review(ctx context.Context) []Lead {
	raw, err := s.crm.ListLeads(ctx, bitrix.StatusConverted)
	admin.RecordCRMRequest("lead.list", err == nil)
	if err != nil {
		s.logger.Error("lead fetch failed", "error", err)
		return nil
	}

	threshold := s.settings.Current().StalenessThreshold.Std()
	expired := SelectExpired(raw, s.now(), threshold, s.logger)

	for _, lead := range expired {
		s.cache.Put(lead)
	}

	s.logger.Info("review complete", "fetched", len(raw), "expired", len(expired))
	return expired
}

// MarkContacted writes the fixed contact comment onto the lead. Returns
// whether the update succeeded.
func (s *Service) MarkContacted(ctx context.Context, id string, how ContactMethod) bool {
	err := s.crm.UpdateLead(ctx, id, how.Comment())
	admin.RecordCRMRequest("lead.update", err == nil)
	if err != nil {
		s.logger.Error("lead update failed", "lead_id", id, "error", err)
		return false
	}

	s.logger.Info("lead updated", "lead_id", id, "comment", how.Comment())
	return true
}

// Postpone creates a follow-up task for a cached lead with a deadline of
// now plus the configured offset. An uncached ID resolves to not-found
// without any CRM call.
func (s *Service) Postpone(ctx context.Context, id string) PostponeResult {
	lead, ok := s.cache.Get(id)
	if !ok {
		s.logger.Warn("postpone for unknown lead", "lead_id", id)
		return PostponeResult{Status: PostponeNotFound}
	}

	settings := s.settings.Current()
	deadline := s.now().Add(settings.TaskDeadlineOffset.Std())

	taskID, err := s.crm.AddTask(ctx,
		"Follow up: "+lead.Name,
		"Postponed lead: "+id,
		deadline,
		settings.ResponsibleID)
	admin.RecordCRMRequest("task.add", err == nil)
	if err != nil {
		s.logger.Error("follow-up task creation failed", "lead_id", id, "error", err)
		return PostponeResult{Status: PostponeFailed}
	}

	s.logger.Info("follow-up task created", "lead_id", id, "task_id", taskID, "deadline", deadline)
	return PostponeResult{Status: PostponeCreated, TaskID: taskID}
}

// CachedCount reports how many leads are currently memoized.
func (s *Service) CachedCount() int {
	return s.cache.Len()
}
