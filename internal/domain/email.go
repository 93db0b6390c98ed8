package domain

import (
	"context"
	"time"
)

// EmailStatus is the delivery status of a ledger entry.
type EmailStatus string

const (
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
	EmailStatusPending EmailStatus = "pending"
)

// EmailAuditEntry is an immutable record of an outcome email dispatch.
// swagger:model EmailAuditEntry
type EmailAuditEntry struct {
	ID             string      `json:"id"`
	AttendeeID     string      `json:"attendee_id"`
	EmailType      Stage       `json:"email_type"`
	RecipientEmail string      `json:"recipient_email"`
	RecipientName  string      `json:"recipient_name"`
	Status         EmailStatus `json:"status"`
	SentAt         time.Time   `json:"sent_at"`
	CreatedAt      time.Time   `json:"created_at"`
}

// EmailAuditRepository is the append-only store behind the notification ledger.
type EmailAuditRepository interface {
	Create(ctx context.Context, e *EmailAuditEntry) error
	ExistsSent(ctx context.Context, attendeeID string, emailType Stage) (bool, error)
	ListByAttendee(ctx context.Context, attendeeID string) ([]*EmailAuditEntry, error)
}

// NotificationLedger answers whether an outcome email was already sent.
type NotificationLedger interface {
	HasBeenSent(ctx context.Context, attendeeID string, outcome Stage) (bool, error)
	RecordSend(ctx context.Context, e *EmailAuditEntry) error
	History(ctx context.Context, attendeeID string) ([]*EmailAuditEntry, error)
}

// OutcomeEmailData is the substitution data passed to outcome email templates.
type OutcomeEmailData struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Company      string `json:"company"`
	Title        string `json:"title"`
	EventName    string `json:"eventName"`
	EventDate    string `json:"eventDate"`
	EventCity    string `json:"eventCity"`
	EventVenue   string `json:"eventVenue"`
	EventSponsor string `json:"eventSponsor"`
	ForumName    string `json:"forumName"`
}

// TemplateMessage is a templated email addressed to one recipient.
// TemplateID is the provider template; TemplateName is the local fallback template.
type TemplateMessage struct {
	To           string
	ToName       string
	TemplateID   string
	TemplateName string
	Data         OutcomeEmailData
}

// Mailer sends templated emails (infrastructure port).
type Mailer interface {
	SendTemplate(ctx context.Context, msg TemplateMessage) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// ChatNotifier posts a plain text message to the sales team channel.
type ChatNotifier interface {
	Send(ctx context.Context, text string) error
}

// OutcomeNotifier sends outcome emails and sales chat messages.
type OutcomeNotifier interface {
	// SendOutcomeEmail sends the outcome email and records it in the ledger on success.
	SendOutcomeEmail(ctx context.Context, a *Attendee, forum *Forum, outcome Stage) error
	// NotifyApproval posts the chat message for approved or preliminary_approved.
	NotifyApproval(ctx context.Context, a *Attendee, forum *Forum, stage Stage) error
}
