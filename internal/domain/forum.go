package domain

import (
	"context"
	"time"
)

// Forum is the local mirror of an event owned by the external forums system.
// swagger:model Forum
type Forum struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Brand    string     `json:"brand"`
	Date     *time.Time `json:"date"`
	City     string     `json:"city"`
	Venue    string     `json:"venue"`
	SyncedAt time.Time  `json:"synced_at"`
}

// EventType selects the CRM pipeline family a forum's deals land in.
type EventType string

const (
	EventTypeForum             EventType = "forum"
	EventTypeDinner            EventType = "dinner"
	EventTypeVEB               EventType = "veb"
	EventTypeVirtualRoundtable EventType = "virtual_roundtable"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeForum, EventTypeDinner, EventTypeVEB, EventTypeVirtualRoundtable:
		return true
	}
	return false
}

// TemplateOverrides are per-forum outcome email template ids. Empty means use the default.
type TemplateOverrides struct {
	Approved            string `json:"approved"`
	Denied              string `json:"denied"`
	Waitlisted          string `json:"waitlisted"`
	PreliminaryApproved string `json:"preliminary_approved"`
}

// For returns the override for stage, or "" when none is set.
func (t TemplateOverrides) For(stage Stage) string {
	switch stage {
	case StageApproved:
		return t.Approved
	case StageDenied:
		return t.Denied
	case StageWaitlisted:
		return t.Waitlisted
	case StagePreliminaryApproved:
		return t.PreliminaryApproved
	}
	return ""
}

// ForumSettings is per-forum configuration for imports, notifications and CRM sync.
// swagger:model ForumSettings
type ForumSettings struct {
	ForumID                   string            `json:"forum_id"`
	InitialRegistrationFormID string            `json:"initial_registration_form_id"`
	ExecutiveProfileFormID    string            `json:"executive_profile_form_id"`
	DealCode                  string            `json:"deal_code"`
	EventType                 EventType         `json:"event_type"`
	Templates                 TemplateOverrides `json:"templates"`
	UpdatedAt                 time.Time         `json:"updated_at"`
}

// DefaultForumSettings returns the settings used when a forum has none stored.
func DefaultForumSettings(forumID string) *ForumSettings {
	return &ForumSettings{ForumID: forumID, EventType: EventTypeForum}
}

// ForumRepository stores the local forum mirror.
type ForumRepository interface {
	GetByID(ctx context.Context, id string) (*Forum, error)
	Upsert(ctx context.Context, f *Forum) error
}

// ForumSource reads forums from the external system of record.
type ForumSource interface {
	GetForum(ctx context.Context, id string) (*Forum, error)
}

// ForumSettingsRepository stores per-forum settings.
type ForumSettingsRepository interface {
	GetByForumID(ctx context.Context, forumID string) (*ForumSettings, error)
	Upsert(ctx context.Context, s *ForumSettings) error
}

// ForumService resolves forums and manages their settings.
type ForumService interface {
	// Resolve returns the local forum, syncing it from the source when missing.
	// Returns ErrForumUnavailable when neither has it.
	Resolve(ctx context.Context, id string) (*Forum, error)
	Sync(ctx context.Context, id string) (*Forum, error)
	// Settings returns stored settings or defaults.
	Settings(ctx context.Context, forumID string) (*ForumSettings, error)
	SaveSettings(ctx context.Context, s *ForumSettings) (*ForumSettings, error)
}
