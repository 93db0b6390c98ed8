package services

import (
	"context"
	"errors"
	"testing"

	"forumregistrations/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAttendee(p *pipeline, stage domain.Stage) *domain.Attendee {
	return p.attendees.seed(&domain.Attendee{
		ForumID: "forum-1",
		Stage:   stage,
		AttendeeProfile: domain.AttendeeProfile{
			FirstName: "Ann", LastName: "Lee", Email: "ann@acme.com", Company: "Acme",
		},
	})
}

func TestRequestTransition_InvalidStage(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)

	_, err := p.stage.RequestTransition(context.Background(), a.ID, domain.Stage("shortlisted"))
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	stored, _ := p.attendees.GetByID(context.Background(), a.ID)
	assert.Equal(t, domain.StageInQueue, stored.Stage)
}

func TestRequestTransition_NonEmailableCommitsImmediately(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageWaitlisted)

	res, err := p.stage.RequestTransition(context.Background(), a.ID, domain.StageInQueue)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Nil(t, res.PendingConfirmation)
	assert.Equal(t, domain.StageInQueue, res.Attendee.Stage)
	assert.Empty(t, p.mailer.sent)
	assert.Empty(t, p.chat.texts)
}

func TestRequestTransition_PreliminaryPostsChat(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)

	res, err := p.stage.RequestTransition(context.Background(), a.ID, domain.StagePreliminaryApproved)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	require.Len(t, p.chat.texts, 1)
	assert.Contains(t, p.chat.texts[0], "A preliminary approval was issued for Ann Lee for CIO Forum Austin")
	assert.Empty(t, p.mailer.sent)
}

func TestRequestTransition_PreliminaryWithoutForumStillCommits(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)
	delete(p.forums.byID, "forum-1")

	res, err := p.stage.RequestTransition(context.Background(), a.ID, domain.StagePreliminaryApproved)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.Empty(t, p.chat.texts)
}

func TestRequestTransition_EmailableWithoutLedgerEntryIsPending(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)

	res, err := p.stage.RequestTransition(context.Background(), a.ID, domain.StageApproved)
	require.NoError(t, err)
	assert.False(t, res.Committed)
	require.NotNil(t, res.PendingConfirmation)
	assert.Equal(t, domain.StageApproved, *res.PendingConfirmation)

	stored, _ := p.attendees.GetByID(context.Background(), a.ID)
	assert.Equal(t, domain.StageInQueue, stored.Stage, "nothing is written before confirmation")
	assert.Empty(t, p.mailer.sent)
}

func TestRequestTransition_ForumUnavailable(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)
	delete(p.forums.byID, "forum-1")

	_, err := p.stage.RequestTransition(context.Background(), a.ID, domain.StageDenied)
	require.ErrorIs(t, err, domain.ErrForumUnavailable)
	stored, _ := p.attendees.GetByID(context.Background(), a.ID)
	assert.Equal(t, domain.StageInQueue, stored.Stage)
}

func TestRequestTransition_ForumSyncedFromSource(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)
	delete(p.forums.byID, "forum-1")
	p.source.byID["forum-1"] = testForum()

	res, err := p.stage.RequestTransition(context.Background(), a.ID, domain.StageWaitlisted)
	require.NoError(t, err)
	assert.NotNil(t, res.PendingConfirmation)
	assert.Equal(t, 1, p.forums.upserts)
}

func TestConfirmApproved_SendsAndRecords(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)
	ctx := context.Background()

	res, err := p.stage.ResolveConfirmation(ctx, a.ID, domain.StageApproved, domain.DecisionConfirm)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.True(t, res.EmailSent)
	assert.False(t, res.DenialReasonRequired)
	assert.Equal(t, domain.StageApproved, res.Attendee.Stage)

	require.Len(t, p.mailer.sent, 1)
	msg := p.mailer.sent[0]
	assert.Equal(t, "d-approved", msg.TemplateID)
	assert.Equal(t, "approved", msg.TemplateName)
	assert.Equal(t, "ann@acme.com", msg.To)
	assert.Equal(t, "May 1, 2025", msg.Data.EventDate)
	assert.Equal(t, "SINC", msg.Data.EventSponsor)
	assert.Equal(t, 1, p.audit.sentCount(a.ID, domain.StageApproved))

	require.Len(t, p.chat.texts, 1)
	assert.Equal(t, "An approval was issued for Ann Lee for CIO Forum Austin. Please visit the forum backoffice to fill in details about this attendee so the deal can be created in HubSpot.", p.chat.texts[0])

	// Once sent, the same outcome is never offered again.
	again, err := p.stage.RequestTransition(ctx, a.ID, domain.StageApproved)
	require.NoError(t, err)
	assert.True(t, again.Committed)
	assert.Nil(t, again.PendingConfirmation)
	assert.Len(t, p.mailer.sent, 1)
}

func TestConfirm_AlreadySentDoesNotResend(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)
	ctx := context.Background()

	_, err := p.stage.ResolveConfirmation(ctx, a.ID, domain.StageWaitlisted, domain.DecisionConfirm)
	require.NoError(t, err)
	res, err := p.stage.ResolveConfirmation(ctx, a.ID, domain.StageWaitlisted, domain.DecisionConfirm)
	require.NoError(t, err)
	assert.False(t, res.EmailSent)
	assert.Len(t, p.mailer.sent, 1)
	assert.Equal(t, 1, p.audit.sentCount(a.ID, domain.StageWaitlisted))
}

func TestConfirmDenied_RequiresReason(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)
	ctx := context.Background()

	res, err := p.stage.ResolveConfirmation(ctx, a.ID, domain.StageDenied, domain.DecisionConfirm)
	require.NoError(t, err)
	assert.True(t, res.EmailSent)
	assert.True(t, res.DenialReasonRequired)
	assert.Empty(t, p.chat.texts)

	_, err = p.stage.SubmitDenialReason(ctx, a.ID, "no")
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Denial reason must be at least 10 characters", verr.Message)

	_, err = p.stage.SubmitDenialReason(ctx, a.ID, "   short    ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	updated, err := p.stage.SubmitDenialReason(ctx, a.ID, "  Not a fit for this audience  ")
	require.NoError(t, err)
	require.NotNil(t, updated.DenialReason)
	assert.Equal(t, "Not a fit for this audience", *updated.DenialReason)
	assert.Equal(t, domain.StageDenied, updated.Stage, "stage commit is never undone")
}

func TestConfirm_SendFailureKeepsStage(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)
	p.mailer.err = &domain.ProviderError{Provider: "ses", Op: "send templated email", Message: "Template does not exist"}

	res, err := p.stage.ResolveConfirmation(context.Background(), a.ID, domain.StageDenied, domain.DecisionConfirm)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.False(t, res.EmailSent)
	assert.False(t, res.DenialReasonRequired)
	assert.Equal(t, "Template does not exist", res.EmailError)
	assert.Equal(t, domain.StageDenied, res.Attendee.Stage)
	assert.Empty(t, p.audit.entries, "no ledger entry on failure")
}

func TestConfirm_LedgerWriteFailureStillReportsSent(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)
	p.audit.createErr = errors.New("db down")

	res, err := p.stage.ResolveConfirmation(context.Background(), a.ID, domain.StageWaitlisted, domain.DecisionConfirm)
	require.NoError(t, err)
	assert.True(t, res.EmailSent)
	assert.Len(t, p.mailer.sent, 1)
}

func TestCancel_CommitsWithoutSending(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)

	res, err := p.stage.ResolveConfirmation(context.Background(), a.ID, domain.StageApproved, domain.DecisionCancel)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.False(t, res.EmailSent)
	assert.Equal(t, domain.StageApproved, res.Attendee.Stage)
	assert.Empty(t, p.mailer.sent)
	assert.Empty(t, p.audit.entries)
	assert.Len(t, p.chat.texts, 1, "approval chat is independent of the email decision")
}

func TestResolveConfirmation_Validation(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)
	ctx := context.Background()

	_, err := p.stage.ResolveConfirmation(ctx, a.ID, domain.StageInQueue, domain.DecisionConfirm)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = p.stage.ResolveConfirmation(ctx, a.ID, domain.StageApproved, domain.Decision("maybe"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = p.stage.ResolveConfirmation(ctx, "missing", domain.StageApproved, domain.DecisionConfirm)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatFailureNeverBlocksCommit(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)
	p.chat.err = errors.New("webhook gone")

	res, err := p.stage.ResolveConfirmation(context.Background(), a.ID, domain.StageApproved, domain.DecisionConfirm)
	require.NoError(t, err)
	assert.True(t, res.Committed)
	assert.True(t, res.EmailSent)
}

func TestStageAlwaysInEnum(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)
	ctx := context.Background()

	targets := []domain.Stage{
		domain.StagePreliminaryApproved, domain.StageApproved, domain.StageInQueue,
		domain.StageDenied, domain.StageWaitlisted, domain.Stage(""), domain.Stage("APPROVED"),
	}
	for _, target := range targets {
		_, _ = p.stage.RequestTransition(ctx, a.ID, target)
		_, _ = p.stage.ResolveConfirmation(ctx, a.ID, target, domain.DecisionCancel)
		stored, err := p.attendees.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, stored.Stage.Valid(), "stage %q", stored.Stage)
	}
}

func TestSendCurrentOutcomeEmail(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageWaitlisted)
	ctx := context.Background()

	res, err := p.stage.SendCurrentOutcomeEmail(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, res.EmailSent)
	assert.False(t, res.Committed)

	_, err = p.stage.SendCurrentOutcomeEmail(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadySent)

	q := seedAttendee(p, domain.StageInQueue)
	_, err = p.stage.SendCurrentOutcomeEmail(ctx, q.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistory(t *testing.T) {
	p := newPipeline()
	a := seedAttendee(p, domain.StageInQueue)
	ctx := context.Background()

	_, err := p.stage.ResolveConfirmation(ctx, a.ID, domain.StageWaitlisted, domain.DecisionConfirm)
	require.NoError(t, err)
	_, err = p.stage.ResolveConfirmation(ctx, a.ID, domain.StageApproved, domain.DecisionConfirm)
	require.NoError(t, err)

	history, err := p.stage.History(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StageApproved, history[0].EmailType)
	assert.Equal(t, domain.StageWaitlisted, history[1].EmailType)

	_, err = p.stage.History(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
