package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"forumregistrations/internal/domain"
)

var validate = validator.New()

// validEmail reports whether email is a syntactically valid address.
func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

type attendeeService struct {
	repo           domain.AttendeeRepository
	contextTimeout time.Duration
}

// NewAttendeeService creates an AttendeeService for staff edits.
func NewAttendeeService(repo domain.AttendeeRepository, timeout time.Duration) domain.AttendeeService {
	return &attendeeService{repo: repo, contextTimeout: timeout}
}

func (s *attendeeService) Get(ctx context.Context, id string) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendee: %w", err)
	}
	return a, nil
}

func (s *attendeeService) ListByForum(ctx context.Context, forumID string, params domain.PaginationParams) ([]*domain.Attendee, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, total, err := s.repo.ListByForum(ctx, forumID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list attendees: %w", err)
	}
	if list == nil {
		list = []*domain.Attendee{}
	}
	return list, total, nil
}

func (s *attendeeService) Create(ctx context.Context, forumID string, profile domain.AttendeeProfile, flags domain.AttendeeFlags) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(forumID) == "" {
		return nil, domain.NewValidationError("forum_id", "forum id is required")
	}
	profile.Email = strings.TrimSpace(profile.Email)
	if !validEmail(profile.Email) {
		return nil, domain.NewValidationError("email", "a valid email is required")
	}

	if _, err := s.repo.FindByForumAndEmail(ctx, forumID, profile.Email); err == nil {
		return nil, domain.ErrDuplicateAttendee
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("find attendee: %w", err)
	}

	now := time.Now().UTC()
	a := &domain.Attendee{
		ForumID:         forumID,
		Stage:           domain.StageInQueue,
		AttendeeProfile: profile,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	applyFlags(a, flags)
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, domain.ErrDuplicateAttendee) {
			return nil, domain.ErrDuplicateAttendee
		}
		return nil, fmt.Errorf("create attendee: %w", err)
	}
	return a, nil
}

// UpdateProfile replaces the editable profile. Stage is never touched here.
func (s *attendeeService) UpdateProfile(ctx context.Context, id string, profile domain.AttendeeProfile, flags domain.AttendeeFlags) (*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	profile.Email = strings.TrimSpace(profile.Email)
	if !validEmail(profile.Email) {
		return nil, domain.NewValidationError("email", "a valid email is required")
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendee: %w", err)
	}

	if domain.NormalizeEmail(profile.Email) != domain.NormalizeEmail(a.Email) {
		other, err := s.repo.FindByForumAndEmail(ctx, a.ForumID, profile.Email)
		if err == nil && other.ID != a.ID {
			return nil, domain.ErrDuplicateAttendee
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("find attendee: %w", err)
		}
	}

	a.AttendeeProfile = profile
	applyFlags(a, flags)
	a.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateProfile(ctx, a); err != nil {
		if errors.Is(err, domain.ErrDuplicateAttendee) {
			return nil, domain.ErrDuplicateAttendee
		}
		return nil, fmt.Errorf("update attendee: %w", err)
	}
	return a, nil
}

func (s *attendeeService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete attendee: %w", err)
	}
	return nil
}

func applyFlags(a *domain.Attendee, f domain.AttendeeFlags) {
	if f.Speaker != nil {
		a.Speaker = *f.Speaker
	}
	if f.Rebook != nil {
		a.Rebook = *f.Rebook
	}
	if f.CouncilMember != nil {
		a.CouncilMember = *f.CouncilMember
	}
}
