package services

import (
	"context"
	"errors"
	"testing"

	"forumregistrations/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileDefinition() *domain.FormDefinition {
	return &domain.FormDefinition{ID: "form-1", FieldGroups: []domain.FieldGroup{{Fields: []domain.FormField{
		{
			Name: "topics", Label: "Topics of interest", FieldType: "multiple_checkboxes",
			Options: []domain.FieldOption{{Label: "Cloud", Value: "cloud"}, {Label: "AI &amp; ML", Value: "ai"}},
		},
	}}}}
}

func TestEnrichExecutiveProfiles_OnlyPending(t *testing.T) {
	repo := newFakeAttendeeRepo()
	raw := []domain.ProfileAnswer{{Question: "topics", Answer: domain.TextAnswer("cloud;ai;")}}
	pending := repo.seed(&domain.Attendee{ForumID: "forum-1", ExecutiveProfileReceived: true, ExecutiveProfileData: raw,
		AttendeeProfile: domain.AttendeeProfile{Email: "p@x.com"}})
	done := repo.seed(&domain.Attendee{ForumID: "forum-1", ExecutiveProfileReceived: true, ExecutiveProfileEnriched: true,
		ExecutiveProfileData: []domain.ProfileAnswer{{Question: "Topics of interest", Answer: domain.ListAnswer([]string{"Cloud"})}},
		AttendeeProfile:      domain.AttendeeProfile{Email: "d@x.com"}})
	repo.seed(&domain.Attendee{ForumID: "forum-1", AttendeeProfile: domain.AttendeeProfile{Email: "none@x.com"}})

	svc := NewEnrichmentService(&fakeFormSource{def: profileDefinition()}, repo, discardLogger(), testTimeout)
	res, err := svc.EnrichExecutiveProfiles(context.Background(), "forum-1", "form-1", domain.ProviderCredentials{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Enriched)
	assert.Empty(t, res.Errors)

	got, _ := repo.GetByID(context.Background(), pending.ID)
	assert.Equal(t, []domain.ProfileAnswer{{Question: "Topics of interest", Answer: domain.ListAnswer([]string{"Cloud", "AI & ML"})}}, got.ExecutiveProfileData)

	untouched, _ := repo.GetByID(context.Background(), done.ID)
	assert.Equal(t, []string{"Cloud"}, untouched.ExecutiveProfileData[0].Answer.List)

	// A second run finds nothing left to enrich.
	res, err = svc.EnrichExecutiveProfiles(context.Background(), "forum-1", "form-1", domain.ProviderCredentials{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Enriched)
	again, _ := repo.GetByID(context.Background(), pending.ID)
	assert.Equal(t, got.ExecutiveProfileData, again.ExecutiveProfileData)
}

func TestEnrichExecutiveProfiles_DefinitionFailure(t *testing.T) {
	repo := newFakeAttendeeRepo()
	source := &fakeFormSource{defErr: &domain.ProviderError{Provider: "hubspot", Op: "fetch form definition", StatusCode: 404, Message: "form not found"}}
	svc := NewEnrichmentService(source, repo, discardLogger(), testTimeout)

	res, err := svc.EnrichExecutiveProfiles(context.Background(), "forum-1", "form-1", domain.ProviderCredentials{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Enriched)
	assert.Equal(t, []string{"fetch form definition: form not found"}, res.Errors)
}

func TestEnrichExecutiveProfiles_PerAttendeeErrors(t *testing.T) {
	repo := newFakeAttendeeRepo()
	raw := []domain.ProfileAnswer{{Question: "topics", Answer: domain.TextAnswer("cloud")}}
	repo.seed(&domain.Attendee{ForumID: "forum-1", ExecutiveProfileReceived: true, ExecutiveProfileData: raw, AttendeeProfile: domain.AttendeeProfile{Email: "bad@x.com"}})
	repo.seed(&domain.Attendee{ForumID: "forum-1", ExecutiveProfileReceived: true, ExecutiveProfileData: raw, AttendeeProfile: domain.AttendeeProfile{Email: "ok@x.com"}})
	repo.failEmails["bad@x.com"] = errors.New("write failed")

	svc := NewEnrichmentService(&fakeFormSource{def: profileDefinition()}, repo, discardLogger(), testTimeout)
	res, err := svc.EnrichExecutiveProfiles(context.Background(), "forum-1", "form-1", domain.ProviderCredentials{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Enriched)
	assert.Equal(t, []string{"bad@x.com: write failed"}, res.Errors)
}
