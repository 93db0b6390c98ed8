package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"forumregistrations/internal/domain"
	"forumregistrations/internal/metrics"
)

const eventDateLayout = "January 2, 2006"

var urgencyPhrases = []string{
	"Strike while the iron's hot!",
	"Time to move fast!",
	"Act now while they're engaged!",
	"Don't let this opportunity cool off!",
	"Momentum is key - follow up ASAP!",
	"The timing is perfect - reach out now!",
	"Capture their interest while it's fresh!",
	"Speed matters - connect immediately!",
	"Hot lead alert - engage quickly!",
	"Window of opportunity - act fast!",
}

func randomUrgency() string {
	return urgencyPhrases[rand.IntN(len(urgencyPhrases))]
}

type outcomeNotifier struct {
	mailer    domain.Mailer
	chat      domain.ChatNotifier
	ledger    domain.NotificationLedger
	forums    domain.ForumService
	defaults  domain.TemplateOverrides
	logger    *slog.Logger
	urgencyFn func() string
}

// NewOutcomeNotifier returns an OutcomeNotifier. defaults holds the template id
// used per outcome when a forum has no override.
func NewOutcomeNotifier(
	mailer domain.Mailer,
	chat domain.ChatNotifier,
	ledger domain.NotificationLedger,
	forums domain.ForumService,
	defaults domain.TemplateOverrides,
	logger *slog.Logger,
) domain.OutcomeNotifier {
	return &outcomeNotifier{
		mailer:    mailer,
		chat:      chat,
		ledger:    ledger,
		forums:    forums,
		defaults:  defaults,
		logger:    logger,
		urgencyFn: randomUrgency,
	}
}

// templateID picks the forum override, else the default for outcome.
func (n *outcomeNotifier) templateID(ctx context.Context, forumID string, outcome domain.Stage) (string, error) {
	st, err := n.forums.Settings(ctx, forumID)
	if err != nil {
		return "", err
	}
	if id := st.Templates.For(outcome); id != "" {
		return id, nil
	}
	if id := n.defaults.For(outcome); id != "" {
		return id, nil
	}
	return "", domain.NewValidationError("template", fmt.Sprintf("no email template configured for %s", outcome))
}

func outcomeEmailData(a *domain.Attendee, forum *domain.Forum) domain.OutcomeEmailData {
	data := domain.OutcomeEmailData{
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Company:      a.Company,
		Title:        a.Title,
		EventName:    forum.Name,
		EventCity:    forum.City,
		EventVenue:   forum.Venue,
		EventSponsor: forum.Brand,
		ForumName:    forum.Name,
	}
	if forum.Date != nil {
		data.EventDate = forum.Date.Format(eventDateLayout)
	}
	return data
}

func (n *outcomeNotifier) SendOutcomeEmail(ctx context.Context, a *domain.Attendee, forum *domain.Forum, outcome domain.Stage) error {
	if !outcome.Emailable() && outcome != domain.StagePreliminaryApproved {
		return domain.NewValidationError("email_type", fmt.Sprintf("%s has no outcome email", outcome))
	}
	templateID, err := n.templateID(ctx, a.ForumID, outcome)
	if err != nil {
		return err
	}

	msg := domain.TemplateMessage{
		To:           a.Email,
		ToName:       a.Name(),
		TemplateID:   templateID,
		TemplateName: string(outcome),
		Data:         outcomeEmailData(a, forum),
	}
	err = n.mailer.SendTemplate(ctx, msg)
	metrics.RecordOutcomeEmail(string(outcome), err)
	if err != nil {
		n.logger.ErrorContext(ctx, "outcome email failed", "attendee_id", a.ID, "email_type", outcome, "err", err)
		return err
	}

	entry := &domain.EmailAuditEntry{
		AttendeeID:     a.ID,
		EmailType:      outcome,
		RecipientEmail: a.Email,
		RecipientName:  a.Name(),
		Status:         domain.EmailStatusSent,
	}
	// A failed ledger write after a successful send leaves the email unrecorded.
	if err := n.ledger.RecordSend(ctx, entry); err != nil {
		n.logger.ErrorContext(ctx, "email sent but ledger write failed", "attendee_id", a.ID, "email_type", outcome, "err", err)
	}
	n.logger.InfoContext(ctx, "outcome email sent", "attendee_id", a.ID, "email_type", outcome)
	return nil
}

// approvalText returns the sales chat text for stage, or "" when the stage posts nothing.
func (n *outcomeNotifier) approvalText(a *domain.Attendee, forum *domain.Forum, stage domain.Stage) string {
	switch stage {
	case domain.StageApproved:
		return fmt.Sprintf("An approval was issued for %s for %s. Please visit the forum backoffice to fill in details about this attendee so the deal can be created in HubSpot.",
			a.Name(), forum.Name)
	case domain.StagePreliminaryApproved:
		return fmt.Sprintf("A preliminary approval was issued for %s for %s and their registration is pending submission of their full Executive Profile. %s",
			a.Name(), forum.Name, n.urgencyFn())
	}
	return ""
}

func (n *outcomeNotifier) NotifyApproval(ctx context.Context, a *domain.Attendee, forum *domain.Forum, stage domain.Stage) error {
	text := n.approvalText(a, forum, stage)
	if text == "" {
		return nil
	}
	err := n.chat.Send(ctx, text)
	metrics.RecordChatNotification(err)
	if err != nil {
		return fmt.Errorf("post approval message: %w", err)
	}
	return nil
}

// providerMessage returns the text shown to staff for a failed send.
func providerMessage(err error) string {
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		return perr.Message
	}
	return err.Error()
}
