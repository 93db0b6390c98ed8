package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"forumregistrations/internal/domain"
	"forumregistrations/internal/metrics"
)

type stageService struct {
	attendees      domain.AttendeeRepository
	forums         domain.ForumService
	ledger         domain.NotificationLedger
	notifier       domain.OutcomeNotifier
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewStageService creates the StageService. Confirmation is a caller round trip:
// RequestTransition reports a pending confirmation and ResolveConfirmation
// completes it. No pending state is held server side.
func NewStageService(
	attendees domain.AttendeeRepository,
	forums domain.ForumService,
	ledger domain.NotificationLedger,
	notifier domain.OutcomeNotifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.StageService {
	return &stageService{
		attendees:      attendees,
		forums:         forums,
		ledger:         ledger,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *stageService) getAttendee(ctx context.Context, id string) (*domain.Attendee, error) {
	a, err := s.attendees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendee: %w", err)
	}
	return a, nil
}

func (s *stageService) RequestTransition(ctx context.Context, attendeeID string, target domain.Stage) (*domain.TransitionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !target.Valid() {
		return nil, domain.NewValidationError("stage", fmt.Sprintf("unknown stage %q", target))
	}
	a, err := s.getAttendee(ctx, attendeeID)
	if err != nil {
		return nil, err
	}

	if !target.Emailable() {
		updated, err := s.commit(ctx, a, target)
		if err != nil {
			return nil, err
		}
		return &domain.TransitionResult{Attendee: updated, Committed: true}, nil
	}

	// Emailable: the forum must resolve before anything is written.
	forum, err := s.forums.Resolve(ctx, a.ForumID)
	if err != nil {
		return nil, err
	}
	sent, err := s.ledger.HasBeenSent(ctx, a.ID, target)
	if err != nil {
		return nil, err
	}
	if !sent {
		pending := target
		return &domain.TransitionResult{Attendee: a, PendingConfirmation: &pending}, nil
	}

	updated, err := s.commitWithForum(ctx, a, forum, target)
	if err != nil {
		return nil, err
	}
	return &domain.TransitionResult{
		Attendee:             updated,
		Committed:            true,
		DenialReasonRequired: denialReasonRequired(updated, target),
	}, nil
}

func (s *stageService) ResolveConfirmation(ctx context.Context, attendeeID string, target domain.Stage, decision domain.Decision) (*domain.TransitionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !target.Emailable() {
		return nil, domain.NewValidationError("stage", fmt.Sprintf("%s does not require confirmation", target))
	}
	if decision != domain.DecisionConfirm && decision != domain.DecisionCancel {
		return nil, domain.NewValidationError("decision", fmt.Sprintf("unknown decision %q", decision))
	}
	a, err := s.getAttendee(ctx, attendeeID)
	if err != nil {
		return nil, err
	}
	forum, err := s.forums.Resolve(ctx, a.ForumID)
	if err != nil {
		return nil, err
	}

	updated, err := s.commitWithForum(ctx, a, forum, target)
	if err != nil {
		return nil, err
	}
	res := &domain.TransitionResult{Attendee: updated, Committed: true}
	if decision == domain.DecisionCancel {
		return res, nil
	}

	sent, err := s.ledger.HasBeenSent(ctx, updated.ID, target)
	if err != nil {
		return nil, err
	}
	if !sent {
		if err := s.notifier.SendOutcomeEmail(ctx, updated, forum, target); err != nil {
			// The stage stays committed; staff can resend manually.
			res.EmailError = providerMessage(err)
			return res, nil
		}
		res.EmailSent = true
	}
	res.DenialReasonRequired = denialReasonRequired(updated, target)
	return res, nil
}

func (s *stageService) SubmitDenialReason(ctx context.Context, attendeeID, reason string) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reason, err := domain.ValidateDenialReason(reason)
	if err != nil {
		return nil, err
	}
	a, err := s.attendees.SetDenialReason(ctx, attendeeID, reason)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("set denial reason: %w", err)
	}
	return a, nil
}

func (s *stageService) SendCurrentOutcomeEmail(ctx context.Context, attendeeID string) (*domain.TransitionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	a, err := s.getAttendee(ctx, attendeeID)
	if err != nil {
		return nil, err
	}
	if !a.Stage.Emailable() {
		return nil, domain.NewValidationError("stage", fmt.Sprintf("%s has no outcome email", a.Stage))
	}
	forum, err := s.forums.Resolve(ctx, a.ForumID)
	if err != nil {
		return nil, err
	}
	sent, err := s.ledger.HasBeenSent(ctx, a.ID, a.Stage)
	if err != nil {
		return nil, err
	}
	if sent {
		return nil, domain.ErrAlreadySent
	}

	res := &domain.TransitionResult{Attendee: a}
	if err := s.notifier.SendOutcomeEmail(ctx, a, forum, a.Stage); err != nil {
		res.EmailError = providerMessage(err)
		return res, nil
	}
	res.EmailSent = true
	res.DenialReasonRequired = denialReasonRequired(a, a.Stage)
	return res, nil
}

func (s *stageService) History(ctx context.Context, attendeeID string) ([]*domain.EmailAuditEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getAttendee(ctx, attendeeID); err != nil {
		return nil, err
	}
	return s.ledger.History(ctx, attendeeID)
}

// commit writes a non-emailable stage. Entering preliminary_approved posts to
// sales chat when the forum resolves.
func (s *stageService) commit(ctx context.Context, a *domain.Attendee, target domain.Stage) (*domain.Attendee, error) {
	var forum *domain.Forum
	if target == domain.StagePreliminaryApproved {
		f, err := s.forums.Resolve(ctx, a.ForumID)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping approval message, forum unavailable", "attendee_id", a.ID, "forum_id", a.ForumID, "err", err)
		}
		forum = f
	}
	return s.commitWithForum(ctx, a, forum, target)
}

func (s *stageService) commitWithForum(ctx context.Context, a *domain.Attendee, forum *domain.Forum, target domain.Stage) (*domain.Attendee, error) {
	updated, err := s.attendees.UpdateStage(ctx, a.ID, target)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update stage: %w", err)
	}
	metrics.RecordStageTransition(string(target))
	s.logger.InfoContext(ctx, "stage committed", "attendee_id", a.ID, "from", a.Stage, "to", target)

	if forum != nil && (target == domain.StageApproved || target == domain.StagePreliminaryApproved) {
		if err := s.notifier.NotifyApproval(ctx, updated, forum, target); err != nil {
			s.logger.WarnContext(ctx, "approval message failed", "attendee_id", a.ID, "stage", target, "err", err)
		}
	}
	return updated, nil
}

// denialReasonRequired reports whether a denied attendee whose email went out
// still lacks a reason.
func denialReasonRequired(a *domain.Attendee, target domain.Stage) bool {
	return target == domain.StageDenied && (a.DenialReason == nil || *a.DenialReason == "")
}
