package domain

import (
	"context"
	"strings"
)

// Decision is the caller's answer to a pending outcome email confirmation.
type Decision string

const (
	DecisionConfirm Decision = "confirm"
	DecisionCancel  Decision = "cancel"
)

// MinDenialReasonLength is the minimum trimmed length of a denial reason.
const MinDenialReasonLength = 10

// ValidateDenialReason trims reason and checks its length.
func ValidateDenialReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < MinDenialReasonLength {
		return "", NewValidationError("denial_reason", "Denial reason must be at least 10 characters")
	}
	return reason, nil
}

// TransitionResult describes what a stage request did.
// swagger:model TransitionResult
type TransitionResult struct {
	Attendee             *Attendee `json:"attendee"`
	Committed            bool      `json:"committed"`
	PendingConfirmation  *Stage    `json:"pending_confirmation"`
	EmailSent            bool      `json:"email_sent"`
	EmailError           string    `json:"email_error,omitempty"`
	DenialReasonRequired bool      `json:"denial_reason_required"`
}

// StageService drives the attendee stage state machine.
type StageService interface {
	// RequestTransition commits non-emailable targets and already-notified outcomes;
	// otherwise it returns a pending confirmation without writing anything.
	RequestTransition(ctx context.Context, attendeeID string, target Stage) (*TransitionResult, error)
	// ResolveConfirmation commits target and sends the outcome email when decision is confirm.
	ResolveConfirmation(ctx context.Context, attendeeID string, target Stage, decision Decision) (*TransitionResult, error)
	SubmitDenialReason(ctx context.Context, attendeeID, reason string) (*Attendee, error)
	// SendCurrentOutcomeEmail sends the email for the attendee's current stage if not yet sent.
	SendCurrentOutcomeEmail(ctx context.Context, attendeeID string) (*TransitionResult, error)
	History(ctx context.Context, attendeeID string) ([]*EmailAuditEntry, error)
}
