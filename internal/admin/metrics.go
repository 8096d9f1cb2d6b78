package admin

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reviewCycles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadwatch_review_cycles_total",
			Help: "Total number of review cycles run",
		},
	)

	leadsPresented = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leadwatch_leads_presented_total",
			Help: "Total number of lead notifications sent to the operator",
		},
	)

	crmRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadwatch_crm_requests_total",
			Help: "Total number of CRM API calls",
		},
		[]string{"op", "status"},
	)

	actionsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadwatch_actions_total",
			Help: "Total number of operator actions handled",
		},
		[]string{"kind", "outcome"},
	)
)

// RecordReviewCycle counts one review cycle and the leads it presented.
func RecordReviewCycle(presented int) {
	reviewCycles.Inc()
	leadsPresented.Add(float64(presented))
}

// RecordCRMRequest counts one CRM call by operation and outcome.
func RecordCRMRequest(op string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	crmRequests.WithLabelValues(op, status).Inc()
}

// RecordAction counts one handled operator action.
func RecordAction(kind, outcome string) {
	actionsHandled.WithLabelValues(kind, outcome).Inc()
}
