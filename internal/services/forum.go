package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"forumregistrations/internal/domain"
)

type forumService struct {
	forums         domain.ForumRepository
	source         domain.ForumSource
	settings       domain.ForumSettingsRepository
	contextTimeout time.Duration
}

// NewForumService creates a ForumService backed by the local mirror, the
// external forums source and the settings store.
func NewForumService(forums domain.ForumRepository, source domain.ForumSource, settings domain.ForumSettingsRepository, timeout time.Duration) domain.ForumService {
	return &forumService{
		forums:         forums,
		source:         source,
		settings:       settings,
		contextTimeout: timeout,
	}
}

func (s *forumService) Resolve(ctx context.Context, id string) (*domain.Forum, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	f, err := s.forums.GetByID(ctx, id)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get forum: %w", err)
	}

	f, err = s.sync(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForumUnavailable
		}
		return nil, err
	}
	return f, nil
}

func (s *forumService) Sync(ctx context.Context, id string) (*domain.Forum, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.sync(ctx, id)
}

// sync copies the source record into the local mirror. The mirror is never
// written from local data.
func (s *forumService) sync(ctx context.Context, id string) (*domain.Forum, error) {
	f, err := s.source.GetForum(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("read source forum: %w", err)
	}
	f.SyncedAt = time.Now().UTC()
	if err := s.forums.Upsert(ctx, f); err != nil {
		return nil, fmt.Errorf("upsert forum: %w", err)
	}
	return f, nil
}

func (s *forumService) Settings(ctx context.Context, forumID string) (*domain.ForumSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	st, err := s.settings.GetByForumID(ctx, forumID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DefaultForumSettings(forumID), nil
		}
		return nil, fmt.Errorf("get forum settings: %w", err)
	}
	if st.EventType == "" {
		st.EventType = domain.EventTypeForum
	}
	return st, nil
}

func (s *forumService) SaveSettings(ctx context.Context, st *domain.ForumSettings) (*domain.ForumSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if strings.TrimSpace(st.ForumID) == "" {
		return nil, domain.NewValidationError("forum_id", "forum id is required")
	}
	if st.EventType == "" {
		st.EventType = domain.EventTypeForum
	}
	if !st.EventType.Valid() {
		return nil, domain.NewValidationError("event_type", fmt.Sprintf("unknown event type %q", st.EventType))
	}
	st.InitialRegistrationFormID = strings.TrimSpace(st.InitialRegistrationFormID)
	st.ExecutiveProfileFormID = strings.TrimSpace(st.ExecutiveProfileFormID)
	st.DealCode = strings.TrimSpace(st.DealCode)
	st.Templates = domain.TemplateOverrides{
		Approved:            strings.TrimSpace(st.Templates.Approved),
		Denied:              strings.TrimSpace(st.Templates.Denied),
		Waitlisted:          strings.TrimSpace(st.Templates.Waitlisted),
		PreliminaryApproved: strings.TrimSpace(st.Templates.PreliminaryApproved),
	}
	st.UpdatedAt = time.Now().UTC()

	if err := s.settings.Upsert(ctx, st); err != nil {
		return nil, fmt.Errorf("save forum settings: %w", err)
	}
	return st, nil
}
