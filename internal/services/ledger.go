package services

import (
	"context"
	"fmt"
	"time"

	"forumregistrations/internal/domain"
)

type ledgerService struct {
	repo domain.EmailAuditRepository
}

// NewNotificationLedger returns the ledger over the append-only email audit log.
func NewNotificationLedger(repo domain.EmailAuditRepository) domain.NotificationLedger {
	return &ledgerService{repo: repo}
}

// HasBeenSent is true iff a sent entry exists for exactly (attendeeID, outcome).
func (l *ledgerService) HasBeenSent(ctx context.Context, attendeeID string, outcome domain.Stage) (bool, error) {
	sent, err := l.repo.ExistsSent(ctx, attendeeID, outcome)
	if err != nil {
		return false, fmt.Errorf("check email ledger: %w", err)
	}
	return sent, nil
}

func (l *ledgerService) RecordSend(ctx context.Context, e *domain.EmailAuditEntry) error {
	if e.AttendeeID == "" || e.EmailType == "" {
		return domain.NewValidationError("email_audit", "attendee id and email type are required")
	}
	if e.Status == "" {
		e.Status = domain.EmailStatusSent
	}
	if e.SentAt.IsZero() {
		e.SentAt = time.Now().UTC()
	}
	if err := l.repo.Create(ctx, e); err != nil {
		return fmt.Errorf("record email send: %w", err)
	}
	return nil
}

func (l *ledgerService) History(ctx context.Context, attendeeID string) ([]*domain.EmailAuditEntry, error) {
	entries, err := l.repo.ListByAttendee(ctx, attendeeID)
	if err != nil {
		return nil, fmt.Errorf("list email history: %w", err)
	}
	if entries == nil {
		entries = []*domain.EmailAuditEntry{}
	}
	return entries, nil
}
