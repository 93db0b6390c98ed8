package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"forumregistrations/internal/domain"
	"forumregistrations/internal/formdata"
)

type enrichmentService struct {
	source         domain.FormSource
	attendees      domain.AttendeeRepository
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEnrichmentService creates the executive profile EnrichmentService.
func NewEnrichmentService(source domain.FormSource, attendees domain.AttendeeRepository, logger *slog.Logger, timeout time.Duration) domain.EnrichmentService {
	return &enrichmentService{
		source:         source,
		attendees:      attendees,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// EnrichExecutiveProfiles rewrites the raw profile data of every attendee of
// forumID not yet enriched. A definition fetch failure is reported as the
// single error entry of the result.
func (s *enrichmentService) EnrichExecutiveProfiles(ctx context.Context, forumID, formID string, creds domain.ProviderCredentials) (*domain.EnrichmentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	res := &domain.EnrichmentResult{Errors: []string{}}
	def, err := s.source.FetchFormDefinition(ctx, formID, creds)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("fetch form definition: %s", providerMessage(err)))
		return res, nil
	}
	ix := formdata.NewFieldIndex(def)

	pending, err := s.attendees.ListPendingEnrichment(ctx, forumID)
	if err != nil {
		return nil, fmt.Errorf("list pending enrichment: %w", err)
	}
	for _, a := range pending {
		enriched := formdata.Enrich(a.ExecutiveProfileData, ix)
		if err := s.attendees.SetEnrichedProfileData(ctx, a.ID, enriched); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", a.Email, err))
			continue
		}
		res.Enriched++
	}
	s.logger.InfoContext(ctx, "executive profiles enriched",
		"forum_id", forumID, "form_id", formID, "fields", ix.Len(),
		"enriched", res.Enriched, "errors", len(res.Errors))
	return res, nil
}
