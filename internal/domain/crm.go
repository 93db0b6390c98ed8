package domain

import (
	"context"
	"time"
)

// CRMContact is a contact in the external CRM.
type CRMContact struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Company   string
	JobTitle  string
	Industry  string
}

// CRMDeal is a deal to create in the external CRM.
type CRMDeal struct {
	Name         string
	PipelineID   string
	StageID      string
	CloseDate    time.Time
	CompanyName  string
	ContactEmail string
	ContactName  string
	Industry     string
	DealType     string
	OwnerID      string
}

// CRMClient talks to the external CRM.
type CRMClient interface {
	// FindContactByEmail returns ErrNotFound when no contact matches.
	FindContactByEmail(ctx context.Context, email string) (*CRMContact, error)
	CreateContact(ctx context.Context, c CRMContact) (string, error)
	CreateDeal(ctx context.Context, d CRMDeal) (string, error)
	AssociateDealContact(ctx context.Context, dealID, contactID string) error
}

// PipelineTarget is a CRM pipeline and the deal stage within it.
type PipelineTarget struct {
	PipelineID string `yaml:"pipeline" json:"pipeline"`
	StageID    string `yaml:"stage" json:"stage"`
}

// DealRouting maps outcomes to CRM pipelines and sales reps to CRM owners.
type DealRouting interface {
	Pipeline(eventType EventType, outcome Stage) (PipelineTarget, bool)
	OwnerID(salesRep string) (string, bool)
	DealType() string
}

// CRMSyncResult reports what a deal sync created.
// swagger:model CRMSyncResult
type CRMSyncResult struct {
	AttendeeID     string `json:"attendee_id"`
	ContactID      string `json:"contact_id"`
	ContactCreated bool   `json:"contact_created"`
	DealID         string `json:"deal_id"`
	DealName       string `json:"deal_name"`
	PipelineID     string `json:"pipeline_id"`
	StageID        string `json:"stage_id"`
}

// CRMSyncService pushes attendee outcomes to the CRM as deals.
type CRMSyncService interface {
	SyncDeal(ctx context.Context, attendeeID string, outcome Stage) (*CRMSyncResult, error)
}
