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

type crmSyncService struct {
	attendees      domain.AttendeeRepository
	forums         domain.ForumService
	client         domain.CRMClient
	routing        domain.DealRouting
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

// NewCRMSyncService creates a CRMSyncService. Every sync creates a new deal and
// the attendee's stored deal id is replaced with it.
func NewCRMSyncService(
	attendees domain.AttendeeRepository,
	forums domain.ForumService,
	client domain.CRMClient,
	routing domain.DealRouting,
	logger *slog.Logger,
	timeout time.Duration,
) domain.CRMSyncService {
	return &crmSyncService{
		attendees:      attendees,
		forums:         forums,
		client:         client,
		routing:        routing,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

// dealCode returns the forum's configured deal code, else "<forum>-<attendee prefix>".
func dealCode(st *domain.ForumSettings, a *domain.Attendee) string {
	if st.DealCode != "" {
		return st.DealCode
	}
	prefix := a.ID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return a.ForumID + "-" + prefix
}

func (s *crmSyncService) SyncDeal(ctx context.Context, attendeeID string, outcome domain.Stage) (res *domain.CRMSyncResult, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !outcome.Emailable() {
		return nil, domain.NewValidationError("outcome", fmt.Sprintf("%s cannot be synced to the CRM", outcome))
	}
	defer func() { metrics.RecordCRMSync(string(outcome), err) }()

	a, err := s.attendees.GetByID(ctx, attendeeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get attendee: %w", err)
	}
	st, err := s.forums.Settings(ctx, a.ForumID)
	if err != nil {
		return nil, err
	}
	eventType := st.EventType
	if eventType == "" {
		eventType = domain.EventTypeForum
	}
	target, ok := s.routing.Pipeline(eventType, outcome)
	if !ok {
		return nil, domain.NewValidationError("outcome", fmt.Sprintf("no CRM pipeline configured for %s %s", eventType, outcome))
	}

	res = &domain.CRMSyncResult{
		AttendeeID: a.ID,
		DealName:   dealCode(st, a),
		PipelineID: target.PipelineID,
		StageID:    target.StageID,
	}

	contact, err := s.client.FindContactByEmail(ctx, a.Email)
	switch {
	case err == nil:
		res.ContactID = contact.ID
	case errors.Is(err, domain.ErrNotFound):
		id, err := s.client.CreateContact(ctx, domain.CRMContact{
			Email:     a.Email,
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Company:   a.Company,
			JobTitle:  a.Title,
			Industry:  a.Industry,
		})
		if err != nil {
			return nil, err
		}
		res.ContactID = id
		res.ContactCreated = true
	default:
		return nil, err
	}

	deal := domain.CRMDeal{
		Name:         res.DealName,
		PipelineID:   target.PipelineID,
		StageID:      target.StageID,
		CloseDate:    s.now(),
		CompanyName:  a.Company,
		ContactEmail: a.Email,
		ContactName:  a.FirstName + " " + a.LastName,
		Industry:     a.Industry,
		DealType:     s.routing.DealType(),
	}
	if owner, ok := s.routing.OwnerID(a.SalesRep); ok {
		deal.OwnerID = owner
	}
	res.DealID, err = s.client.CreateDeal(ctx, deal)
	if err != nil {
		return nil, err
	}
	if err := s.client.AssociateDealContact(ctx, res.DealID, res.ContactID); err != nil {
		return nil, err
	}
	if err := s.attendees.SetHubspotDealID(ctx, a.ID, res.DealID); err != nil {
		return nil, fmt.Errorf("store deal id: %w", err)
	}

	s.logger.InfoContext(ctx, "crm deal created",
		"attendee_id", a.ID, "deal_id", res.DealID, "contact_id", res.ContactID,
		"pipeline", target.PipelineID, "stage", target.StageID)
	return res, nil
}
