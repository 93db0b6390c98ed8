package postgres

import (
	"context"
	"database/sql"

	"forumregistrations/internal/domain"
)

// emailAuditRepository is append-only: it has no update or delete.
type emailAuditRepository struct {
	DB *sql.DB
}

func NewEmailAuditRepository(db *sql.DB) domain.EmailAuditRepository {
	return &emailAuditRepository{
		DB: db,
	}
}

func (r *emailAuditRepository) Create(ctx context.Context, e *domain.EmailAuditEntry) error {
	query := `
		INSERT INTO email_audit_log (attendee_id, email_type, recipient_email, recipient_name, status, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.DB.QueryRowContext(ctx, query,
		e.AttendeeID, e.EmailType, e.RecipientEmail, e.RecipientName, e.Status, e.SentAt,
	).Scan(&e.ID, &e.CreatedAt)
}

func (r *emailAuditRepository) ExistsSent(ctx context.Context, attendeeID string, emailType domain.Stage) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM email_audit_log
			WHERE attendee_id = $1 AND email_type = $2 AND status = 'sent'
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, attendeeID, emailType).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *emailAuditRepository) ListByAttendee(ctx context.Context, attendeeID string) ([]*domain.EmailAuditEntry, error) {
	query := `
		SELECT id, attendee_id, email_type, recipient_email, recipient_name, status, sent_at, created_at
		FROM email_audit_log
		WHERE attendee_id = $1
		ORDER BY sent_at DESC, created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, attendeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]*domain.EmailAuditEntry, 0)
	for rows.Next() {
		e := &domain.EmailAuditEntry{}
		if err := rows.Scan(&e.ID, &e.AttendeeID, &e.EmailType, &e.RecipientEmail, &e.RecipientName, &e.Status, &e.SentAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
