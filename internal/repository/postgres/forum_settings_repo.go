package postgres

import (
	"context"
	"database/sql"
	"errors"

	"forumregistrations/internal/domain"
)

type forumSettingsRepository struct {
	DB *sql.DB
}

func NewForumSettingsRepository(db *sql.DB) domain.ForumSettingsRepository {
	return &forumSettingsRepository{
		DB: db,
	}
}

func (r *forumSettingsRepository) GetByForumID(ctx context.Context, forumID string) (*domain.ForumSettings, error) {
	query := `
		SELECT forum_id, initial_registration_form_id, executive_profile_form_id, deal_code, event_type,
			approved_email_template_id, denied_email_template_id, waitlisted_email_template_id,
			preliminary_approved_email_template_id, updated_at
		FROM forum_settings
		WHERE forum_id = $1
	`
	s := &domain.ForumSettings{}
	err := r.DB.QueryRowContext(ctx, query, forumID).Scan(
		&s.ForumID, &s.InitialRegistrationFormID, &s.ExecutiveProfileFormID, &s.DealCode, &s.EventType,
		&s.Templates.Approved, &s.Templates.Denied, &s.Templates.Waitlisted,
		&s.Templates.PreliminaryApproved, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *forumSettingsRepository) Upsert(ctx context.Context, s *domain.ForumSettings) error {
	query := `
		INSERT INTO forum_settings (forum_id, initial_registration_form_id, executive_profile_form_id, deal_code, event_type,
			approved_email_template_id, denied_email_template_id, waitlisted_email_template_id,
			preliminary_approved_email_template_id, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (forum_id) DO UPDATE SET
			initial_registration_form_id = EXCLUDED.initial_registration_form_id,
			executive_profile_form_id = EXCLUDED.executive_profile_form_id,
			deal_code = EXCLUDED.deal_code,
			event_type = EXCLUDED.event_type,
			approved_email_template_id = EXCLUDED.approved_email_template_id,
			denied_email_template_id = EXCLUDED.denied_email_template_id,
			waitlisted_email_template_id = EXCLUDED.waitlisted_email_template_id,
			preliminary_approved_email_template_id = EXCLUDED.preliminary_approved_email_template_id,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query,
		s.ForumID, s.InitialRegistrationFormID, s.ExecutiveProfileFormID, s.DealCode, s.EventType,
		s.Templates.Approved, s.Templates.Denied, s.Templates.Waitlisted, s.Templates.PreliminaryApproved,
		s.UpdatedAt,
	)
	return err
}
