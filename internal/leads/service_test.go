package leads_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadwatch/internal/config"
	"leadwatch/internal/crm/bitrix"
	"leadwatch/internal/leads"
)

type update struct {
	id      string
	comment string
}

type task struct {
	title         string
	description   string
	deadline      time.Time
	responsibleID int
}

type fakeCRM struct {
	leads   []bitrix.RawLead
	listErr error

	updates   []update
	updateErr error

	tasks   []task
	taskID  string
	taskErr error
}

func (f *fakeCRM) ListLeads(_ context.Context, _ string) ([]bitrix.RawLead, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.leads, nil
}

func (f *fakeCRM) UpdateLead(_ context.Context, id, comment string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, update{id: id, comment: comment})
	return nil
}

func (f *fakeCRM) AddTask(_ context.Context, title, description string, deadline time.Time, responsibleID int) (string, error) {
	if f.taskErr != nil {
		return "", f.taskErr
	}
	f.tasks = append(f.tasks, task{title, description, deadline, responsibleID})
	return f.taskID, nil
}

func newService(crm *fakeCRM) *leads.Service {
	store := config.NewStore(config.DefaultSettings())
	return leads.NewService(crm, leads.NewCache(), store, testLogger())
}

func TestReview(t *testing.T) {
	now := time.Now().UTC()
	crm := &fakeCRM{leads: []bitrix.RawLead{
		{ID: "5", Name: "Acme", Phone: "+100", DateCreate: now.Add(-90 * time.Second).Format(time.RFC3339)},
		{ID: "6", Name: "Globex", DateCreate: now.Add(-10 * time.Second).Format(time.RFC3339)},
	}}
	svc := newService(crm)

	got := svc.Review(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, "5", got[0].ID)
	assert.Equal(t, 1, svc.CachedCount())
}

func TestReviewFetchFailureYieldsEmpty(t *testing.T) {
	crm := &fakeCRM{listErr: errors.New("connection refused")}
	svc := newService(crm)

	got := svc.Review(context.Background())

	assert.Empty(t, got)
	assert.Equal(t, 0, svc.CachedCount())
}

func TestReviewIsIdempotent(t *testing.T) {
	now := time.Now().UTC()
	crm := &fakeCRM{leads: []bitrix.RawLead{
		{ID: "5", Name: "Acme", DateCreate: now.Add(-time.Hour).Format(time.RFC3339)},
		{ID: "7", Name: "Initech", DateCreate: now.Add(-time.Hour).Format(time.RFC3339)},
	}}
	svc := newService(crm)

	first := svc.Review(context.Background())
	second := svc.Review(context.Background())

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestMarkContacted(t *testing.T) {
	crm := &fakeCRM{}
	svc := newService(crm)

	ok := svc.MarkContacted(context.Background(), "5", leads.ContactCalled)

	assert.True(t, ok)
	require.Len(t, crm.updates, 1)
	assert.Equal(t, update{id: "5", comment: "manager called"}, crm.updates[0])
}

func TestMarkContactedWrote(t *testing.T) {
	crm := &fakeCRM{}
	svc := newService(crm)

	ok := svc.MarkContacted(context.Background(), "5", leads.ContactWrote)

	assert.True(t, ok)
	require.Len(t, crm.updates, 1)
	assert.Equal(t, "manager wrote", crm.updates[0].comment)
}

func TestMarkContactedFailure(t *testing.T) {
	crm := &fakeCRM{updateErr: errors.New("boom")}
	svc := newService(crm)

	ok := svc.MarkContacted(context.Background(), "5", leads.ContactCalled)

	assert.False(t, ok)
	assert.Empty(t, crm.updates)
}

func TestPostponeUncachedLead(t *testing.T) {
	crm := &fakeCRM{taskID: "817"}
	svc := newService(crm)

	res := svc.Postpone(context.Background(), "999")

	assert.Equal(t, leads.PostponeNotFound, res.Status)
	assert.Empty(t, crm.tasks, "no CRM call for an uncached lead")
}

func TestPostponeCachedLead(t *testing.T) {
	now := time.Now().UTC()
	crm := &fakeCRM{
		taskID: "817",
		leads: []bitrix.RawLead{
			{ID: "5", Name: "Acme", DateCreate: now.Add(-time.Hour).Format(time.RFC3339)},
		},
	}
	svc := newService(crm)
	require.Len(t, svc.Review(context.Background()), 1)

	res := svc.Postpone(context.Background(), "5")

	require.Equal(t, leads.PostponeCreated, res.Status)
	assert.Equal(t, "817", res.TaskID)

	require.Len(t, crm.tasks, 1)
	created := crm.tasks[0]
	assert.Equal(t, "Follow up: Acme", created.title)
	assert.Equal(t, "Postponed lead: 5", created.description)
	assert.Equal(t, 1, created.responsibleID)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), created.deadline, 5*time.Second)
}

func TestPostponeTaskCreationFailure(t *testing.T) {
	now := time.Now().UTC()
	crm := &fakeCRM{
		taskErr: errors.New("boom"),
		leads: []bitrix.RawLead{
			{ID: "5", Name: "Acme", DateCreate: now.Add(-time.Hour).Format(time.RFC3339)},
		},
	}
	svc := newService(crm)
	svc.Review(context.Background())

	res := svc.Postpone(context.Background(), "5")

	assert.Equal(t, leads.PostponeFailed, res.Status)
	assert.Empty(t, res.TaskID)
}
