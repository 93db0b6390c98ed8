package domain

import "context"

// ImportKind selects how submissions map onto attendee attributes.
type ImportKind string

const (
	ImportInitialRegistration ImportKind = "initial_registration"
	ImportExecutiveProfile    ImportKind = "executive_profile"
)

// Valid reports whether k is a known import kind.
func (k ImportKind) Valid() bool {
	return k == ImportInitialRegistration || k == ImportExecutiveProfile
}

// Merge actions reported per saved attendee.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
)

// ImportRequest describes one bulk import run.
type ImportRequest struct {
	Kind        ImportKind
	FormID      string
	ForumID     string
	Persist     bool
	Credentials ProviderCredentials
}

// SavedAttendee reports one successfully merged submission.
type SavedAttendee struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Table  string `json:"table"`
	Action string `json:"action"`
}

// SaveError reports one submission that could not be merged.
type SaveError struct {
	Submission RawSubmission `json:"submission"`
	Error      string        `json:"error"`
}

// SaveResult is the outcome of merging a batch of submissions.
type SaveResult struct {
	Saved  []SavedAttendee `json:"saved"`
	Errors []SaveError     `json:"errors"`
}

// EnrichmentResult is the outcome of an enrichment run.
type EnrichmentResult struct {
	Enriched int      `json:"enriched"`
	Errors   []string `json:"errors"`
}

// DuplicateMatch is an incoming email that already has an attendee in the forum.
type DuplicateMatch struct {
	Email      string `json:"email"`
	AttendeeID string `json:"attendee_id"`
	Stage      Stage  `json:"stage"`
}

// DuplicatePreview classifies incoming emails without writing anything.
type DuplicatePreview struct {
	New       []string         `json:"new"`
	Duplicate []DuplicateMatch `json:"duplicate"`
	Invalid   []string         `json:"invalid"`
}

// ImportResult is returned by an import run.
// swagger:model ImportResult
type ImportResult struct {
	FormID            string            `json:"form_id"`
	TotalSubmissions  int               `json:"total_submissions"`
	Submissions       []RawSubmission   `json:"submissions"`
	SaveResults       *SaveResult       `json:"save_results,omitempty"`
	EnrichmentResults *EnrichmentResult `json:"enrichment_results,omitempty"`
	Preview           *DuplicatePreview `json:"preview,omitempty"`
	Pages             []PageInfo        `json:"pages"`
}

// ImportService imports form submissions into attendees.
type ImportService interface {
	Import(ctx context.Context, req ImportRequest) (*ImportResult, error)
	PreviewDuplicates(ctx context.Context, forumID string, emails []string) (*DuplicatePreview, error)
}

// EnrichmentService rewrites stored executive profile data with form labels.
type EnrichmentService interface {
	EnrichExecutiveProfiles(ctx context.Context, forumID, formID string, creds ProviderCredentials) (*EnrichmentResult, error)
}
