package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Stage is the approval stage of an attendee.
type Stage string

const (
	StageInQueue             Stage = "in_queue"
	StagePreliminaryApproved Stage = "preliminary_approved"
	StageApproved            Stage = "approved"
	StageDenied              Stage = "denied"
	StageWaitlisted          Stage = "waitlisted"
)

// Stages lists every legal stage in display order.
var Stages = []Stage{StageInQueue, StagePreliminaryApproved, StageApproved, StageDenied, StageWaitlisted}

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	for _, st := range Stages {
		if s == st {
			return true
		}
	}
	return false
}

// Emailable reports whether entering s offers an outcome email.
func (s Stage) Emailable() bool {
	return s == StageApproved || s == StageDenied || s == StageWaitlisted
}

// ParseStage validates a raw stage value.
func ParseStage(raw string) (Stage, error) {
	s := Stage(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", NewValidationError("stage", fmt.Sprintf("unknown stage %q", raw))
	}
	return s, nil
}

// Answer is a profile answer: either a single text value or a list of values.
// It is serialized as a JSON string or a JSON array of strings.
type Answer struct {
	Text string
	List []string
}

// TextAnswer returns a scalar Answer.
func TextAnswer(s string) Answer { return Answer{Text: s} }

// ListAnswer returns a list Answer.
func ListAnswer(v []string) Answer { return Answer{List: v} }

// IsList reports whether the answer holds multiple values.
func (a Answer) IsList() bool { return a.List != nil }

// String joins list answers with "; ".
func (a Answer) String() string {
	if a.IsList() {
		return strings.Join(a.List, "; ")
	}
	return a.Text
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.IsList() {
		return json.Marshal(a.List)
	}
	return json.Marshal(a.Text)
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '[' {
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		if list == nil {
			list = []string{}
		}
		*a = Answer{List: list}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*a = Answer{Text: s}
	return nil
}

// ProfileAnswer is one question/answer pair of an executive profile.
// swagger:model ProfileAnswer
type ProfileAnswer struct {
	Question string `json:"question"`
	Answer   Answer `json:"answer" swaggertype:"string"`
}

// AttendeeProfile holds the descriptive attendee attributes that imports and
// manual edits write.
type AttendeeProfile struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Company         string `json:"company"`
	Title           string `json:"title"`
	ManagementLevel string `json:"management_level"`
	Industry        string `json:"industry"`
	CompanySize     string `json:"company_size"`
	Cellphone       string `json:"cellphone"`
	Linkedin        string `json:"linkedin"`
	City            string `json:"city"`
	State           string `json:"state"`
	Airport         string `json:"airport"`
	Hotel           string `json:"hotel"`
	Flight          string `json:"flight"`
	DietaryNotes    string `json:"dietary_notes"`
	Gender          string `json:"gender"`
	Notes           string `json:"notes"`
	SalesRep        string `json:"sinc_rep"`
	CallSetter      string `json:"call_setter"`
}

func (p *AttendeeProfile) fields() []*string {
	return []*string{
		&p.FirstName, &p.LastName, &p.Email, &p.Company, &p.Title, &p.ManagementLevel,
		&p.Industry, &p.CompanySize, &p.Cellphone, &p.Linkedin, &p.City, &p.State,
		&p.Airport, &p.Hotel, &p.Flight, &p.DietaryNotes, &p.Gender, &p.Notes,
		&p.SalesRep, &p.CallSetter,
	}
}

// Merge copies every non-blank field of in over p. Blank incoming values never
// clear existing data.
func (p *AttendeeProfile) Merge(in AttendeeProfile) {
	dst := p.fields()
	src := in.fields()
	for i := range dst {
		if strings.TrimSpace(*src[i]) != "" {
			*dst[i] = *src[i]
		}
	}
}

// NormalizeEmail is the canonical form used for (forum, email) identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Attendee is a person registered for a forum and moving through approval stages.
// swagger:model Attendee
type Attendee struct {
	ID      string `json:"id"`
	ForumID string `json:"forum_id"`
	Stage   Stage  `json:"stage"`
	AttendeeProfile
	Speaker                  bool            `json:"speaker"`
	Rebook                   bool            `json:"rebook"`
	CouncilMember            bool            `json:"council_member"`
	DenialReason             *string         `json:"denial_reason"`
	ExecutiveProfileReceived bool            `json:"executive_profile_received"`
	ExecutiveProfileData     []ProfileAnswer `json:"executive_profile_data"`
	ExecutiveProfileEnriched bool            `json:"executive_profile_enriched"`
	HubspotDealID            *string         `json:"hubspot_deal_id"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
}

// Name returns "first last", falling back to the email address.
func (a *Attendee) Name() string {
	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if name == "" {
		return a.Email
	}
	return name
}

// AttendeeFlags are the boolean attributes editable by staff.
type AttendeeFlags struct {
	Speaker       *bool `json:"speaker"`
	Rebook        *bool `json:"rebook"`
	CouncilMember *bool `json:"council_member"`
}

// AttendeeRepository defines storage operations for attendees.
type AttendeeRepository interface {
	Create(ctx context.Context, a *Attendee) error
	GetByID(ctx context.Context, id string) (*Attendee, error)
	// FindByForumAndEmail matches the email case-insensitively.
	FindByForumAndEmail(ctx context.Context, forumID, email string) (*Attendee, error)
	ListByForum(ctx context.Context, forumID string, params PaginationParams) ([]*Attendee, int, error)
	ListPendingEnrichment(ctx context.Context, forumID string) ([]*Attendee, error)
	// UpdateProfile writes profile fields, flags and executive profile columns. Stage is untouched.
	UpdateProfile(ctx context.Context, a *Attendee) error
	UpdateStage(ctx context.Context, id string, stage Stage) (*Attendee, error)
	SetDenialReason(ctx context.Context, id, reason string) (*Attendee, error)
	SetEnrichedProfileData(ctx context.Context, id string, data []ProfileAnswer) error
	SetHubspotDealID(ctx context.Context, id, dealID string) error
	Delete(ctx context.Context, id string) error
}

// AttendeeService defines staff-facing attendee management.
type AttendeeService interface {
	Get(ctx context.Context, id string) (*Attendee, error)
	ListByForum(ctx context.Context, forumID string, params PaginationParams) ([]*Attendee, int, error)
	// Create adds an attendee manually in stage in_queue. Returns ErrDuplicateAttendee
	// when the forum already has an attendee with the same email.
	Create(ctx context.Context, forumID string, profile AttendeeProfile, flags AttendeeFlags) (*Attendee, error)
	UpdateProfile(ctx context.Context, id string, profile AttendeeProfile, flags AttendeeFlags) (*Attendee, error)
	Delete(ctx context.Context, id string) error
}
