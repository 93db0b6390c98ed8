// Package metrics holds the pipeline's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stageTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendee_stage_transitions_total",
			Help: "Total number of committed attendee stage changes",
		},
		[]string{"stage"},
	)

	outcomeEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outcome_emails_total",
			Help: "Total number of outcome email sends",
		},
		[]string{"type", "status"},
	)

	chatNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_notifications_total",
			Help: "Total number of sales chat notifications",
		},
		[]string{"status"},
	)

	crmSyncs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_syncs_total",
			Help: "Total number of CRM deal syncs",
		},
		[]string{"outcome", "status"},
	)

	importedSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imported_submissions_total",
			Help: "Total number of imported form submissions by merge action",
		},
		[]string{"kind", "action"},
	)
)

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

func RecordStageTransition(stage string) {
	stageTransitions.WithLabelValues(stage).Inc()
}

func RecordOutcomeEmail(emailType string, err error) {
	outcomeEmails.WithLabelValues(emailType, status(err)).Inc()
}

func RecordChatNotification(err error) {
	chatNotifications.WithLabelValues(status(err)).Inc()
}

func RecordCRMSync(outcome string, err error) {
	crmSyncs.WithLabelValues(outcome, status(err)).Inc()
}

// RecordImportedSubmission counts one merged submission; action is created, updated or error.
func RecordImportedSubmission(kind, action string) {
	importedSubmissions.WithLabelValues(kind, action).Inc()
}
