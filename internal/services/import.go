package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"forumregistrations/internal/domain"
	"forumregistrations/internal/formdata"
	"forumregistrations/internal/metrics"
)

const attendeesTable = "attendees"

type importService struct {
	source         domain.FormSource
	attendees      domain.AttendeeRepository
	enrichment     domain.EnrichmentService
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewImportService creates an ImportService. timeout bounds a whole import run,
// including every page fetch and merge.
func NewImportService(
	source domain.FormSource,
	attendees domain.AttendeeRepository,
	enrichment domain.EnrichmentService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ImportService {
	return &importService{
		source:         source,
		attendees:      attendees,
		enrichment:     enrichment,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// Import fetches a form's submissions. With Persist and a forum they are merged
// into attendees (executive profiles are then enriched); with a forum but no
// Persist only the duplicate preview is computed.
func (s *importService) Import(ctx context.Context, req domain.ImportRequest) (*domain.ImportResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !req.Kind.Valid() {
		return nil, domain.NewValidationError("kind", fmt.Sprintf("unknown import kind %q", req.Kind))
	}
	if req.FormID == "" {
		return nil, domain.NewValidationError("form_id", "form id is required")
	}

	subs, pages, err := s.source.FetchSubmissions(ctx, req.FormID, req.Credentials)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions: %w", err)
	}
	res := &domain.ImportResult{
		FormID:           req.FormID,
		TotalSubmissions: len(subs),
		Submissions:      subs,
		Pages:            pages,
	}
	if req.ForumID == "" {
		return res, nil
	}

	if !req.Persist {
		emails := make([]string, 0, len(subs))
		for _, sub := range subs {
			email, _ := formdata.Collapse(sub.Values).Email()
			emails = append(emails, email)
		}
		preview, err := s.previewDuplicates(ctx, req.ForumID, emails)
		if err != nil {
			return nil, err
		}
		res.Preview = preview
		return res, nil
	}

	saved := s.mergeSubmissions(ctx, req.Kind, req.ForumID, subs)
	res.SaveResults = &saved
	s.logger.InfoContext(ctx, "submissions merged",
		"forum_id", req.ForumID, "form_id", req.FormID, "kind", req.Kind,
		"saved", len(saved.Saved), "errors", len(saved.Errors))

	if req.Kind == domain.ImportExecutiveProfile && s.enrichment != nil {
		enriched, err := s.enrichment.EnrichExecutiveProfiles(ctx, req.ForumID, req.FormID, req.Credentials)
		if err != nil {
			enriched = &domain.EnrichmentResult{Errors: []string{err.Error()}}
		}
		res.EnrichmentResults = enriched
	}
	return res, nil
}

// mergeSubmissions processes every submission in order. A failing submission
// is recorded and never stops the batch.
func (s *importService) mergeSubmissions(ctx context.Context, kind domain.ImportKind, forumID string, subs []domain.RawSubmission) domain.SaveResult {
	res := domain.SaveResult{Saved: []domain.SavedAttendee{}, Errors: []domain.SaveError{}}
	for _, sub := range subs {
		saved, err := s.mergeOne(ctx, kind, forumID, sub)
		if err != nil {
			metrics.RecordImportedSubmission(string(kind), "error")
			res.Errors = append(res.Errors, domain.SaveError{Submission: sub, Error: err.Error()})
			continue
		}
		metrics.RecordImportedSubmission(string(kind), saved.Action)
		res.Saved = append(res.Saved, saved)
	}
	return res
}

func (s *importService) mergeOne(ctx context.Context, kind domain.ImportKind, forumID string, sub domain.RawSubmission) (domain.SavedAttendee, error) {
	rec, err := formdata.Normalize(kind, sub)
	if err != nil {
		return domain.SavedAttendee{}, err
	}
	key, err := lookupEmail(rec.Profile.Email)
	if err != nil {
		return domain.SavedAttendee{}, err
	}
	saved := domain.SavedAttendee{Email: rec.Profile.Email, Name: rec.Name(), Table: attendeesTable}
	now := time.Now().UTC()

	existing, err := s.attendees.FindByForumAndEmail(ctx, forumID, key)
	switch {
	case err == nil:
		// Existing attendees keep their stage and their stored email casing.
		email := existing.Email
		existing.Merge(rec.Profile)
		existing.Email = email
		applyExecutiveProfile(existing, kind, rec)
		existing.UpdatedAt = now
		if err := s.attendees.UpdateProfile(ctx, existing); err != nil {
			return domain.SavedAttendee{}, fmt.Errorf("update attendee: %w", err)
		}
		saved.Action = domain.ActionUpdated
	case errors.Is(err, domain.ErrNotFound):
		a := &domain.Attendee{
			ForumID:         forumID,
			Stage:           domain.StageInQueue,
			AttendeeProfile: rec.Profile,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		applyExecutiveProfile(a, kind, rec)
		if err := s.attendees.Create(ctx, a); err != nil {
			return domain.SavedAttendee{}, fmt.Errorf("create attendee: %w", err)
		}
		saved.Action = domain.ActionCreated
	default:
		return domain.SavedAttendee{}, fmt.Errorf("find attendee: %w", err)
	}
	return saved, nil
}

// lookupEmail returns the (forum, email) identity key for a submitted address.
// Merge and preview both go through it, so an address the preview calls
// invalid is rejected by the merge too.
func lookupEmail(raw string) (string, error) {
	email := domain.NormalizeEmail(raw)
	if !validEmail(email) {
		return "", domain.NewValidationError("email", fmt.Sprintf("invalid email %q", strings.TrimSpace(raw)))
	}
	return email, nil
}

// applyExecutiveProfile stores fresh raw profile data and clears the
// enrichment marker so the next enrichment run picks it up.
func applyExecutiveProfile(a *domain.Attendee, kind domain.ImportKind, rec formdata.Record) {
	if kind != domain.ImportExecutiveProfile {
		return
	}
	a.ExecutiveProfileReceived = true
	a.ExecutiveProfileData = rec.ExecutiveProfile
	a.ExecutiveProfileEnriched = false
}

func (s *importService) PreviewDuplicates(ctx context.Context, forumID string, emails []string) (*domain.DuplicatePreview, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.previewDuplicates(ctx, forumID, emails)
}

// previewDuplicates classifies emails with the same lookup the merge uses.
// Nothing is written.
func (s *importService) previewDuplicates(ctx context.Context, forumID string, emails []string) (*domain.DuplicatePreview, error) {
	if forumID == "" {
		return nil, domain.NewValidationError("forum_id", "forum id is required")
	}
	preview := &domain.DuplicatePreview{New: []string{}, Duplicate: []domain.DuplicateMatch{}, Invalid: []string{}}
	seen := make(map[string]struct{}, len(emails))
	for _, raw := range emails {
		email, err := lookupEmail(raw)
		if err != nil {
			preview.Invalid = append(preview.Invalid, raw)
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}

		existing, err := s.attendees.FindByForumAndEmail(ctx, forumID, email)
		switch {
		case err == nil:
			preview.Duplicate = append(preview.Duplicate, domain.DuplicateMatch{
				Email:      email,
				AttendeeID: existing.ID,
				Stage:      existing.Stage,
			})
		case errors.Is(err, domain.ErrNotFound):
			preview.New = append(preview.New, email)
		default:
			return nil, fmt.Errorf("find attendee: %w", err)
		}
	}
	return preview, nil
}
