package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"forumregistrations/internal/domain"
)

var attendeeColumns = []string{
	"id", "forum_id", "stage",
	"first_name", "last_name", "email", "company", "title", "management_level",
	"industry", "company_size", "cellphone", "linkedin", "city", "state",
	"airport", "hotel", "flight", "dietary_notes", "gender", "notes",
	"sinc_rep", "call_setter",
	"speaker", "rebook", "council_member", "denial_reason",
	"executive_profile_received", "executive_profile_data", "executive_profile_enriched",
	"hubspot_deal_id", "created_at", "updated_at",
}

var attendeeSelect = strings.Join(attendeeColumns, ", ")

type attendeeRepository struct {
	DB *sql.DB
}

func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttendee(s rowScanner) (*domain.Attendee, error) {
	a := &domain.Attendee{}
	var denialNull, dealNull sql.NullString
	var profileData []byte
	p := &a.AttendeeProfile
	err := s.Scan(
		&a.ID, &a.ForumID, &a.Stage,
		&p.FirstName, &p.LastName, &p.Email, &p.Company, &p.Title, &p.ManagementLevel,
		&p.Industry, &p.CompanySize, &p.Cellphone, &p.Linkedin, &p.City, &p.State,
		&p.Airport, &p.Hotel, &p.Flight, &p.DietaryNotes, &p.Gender, &p.Notes,
		&p.SalesRep, &p.CallSetter,
		&a.Speaker, &a.Rebook, &a.CouncilMember, &denialNull,
		&a.ExecutiveProfileReceived, &profileData, &a.ExecutiveProfileEnriched,
		&dealNull, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if denialNull.Valid {
		a.DenialReason = &denialNull.String
	}
	if dealNull.Valid {
		a.HubspotDealID = &dealNull.String
	}
	if len(profileData) > 0 {
		if err := json.Unmarshal(profileData, &a.ExecutiveProfileData); err != nil {
			return nil, fmt.Errorf("decode executive_profile_data: %w", err)
		}
	}
	return a, nil
}

func profileArgs(p domain.AttendeeProfile) []any {
	return []any{
		p.FirstName, p.LastName, p.Email, p.Company, p.Title, p.ManagementLevel,
		p.Industry, p.CompanySize, p.Cellphone, p.Linkedin, p.City, p.State,
		p.Airport, p.Hotel, p.Flight, p.DietaryNotes, p.Gender, p.Notes,
		p.SalesRep, p.CallSetter,
	}
}

// encodeProfileData returns nil (SQL NULL) for an absent profile.
func encodeProfileData(data []domain.ProfileAnswer) (any, error) {
	if data == nil {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode executive_profile_data: %w", err)
	}
	return b, nil
}

func (r *attendeeRepository) Create(ctx context.Context, a *domain.Attendee) error {
	query := `
		INSERT INTO attendees (forum_id, stage,
			first_name, last_name, email, company, title, management_level,
			industry, company_size, cellphone, linkedin, city, state,
			airport, hotel, flight, dietary_notes, gender, notes,
			sinc_rep, call_setter,
			speaker, rebook, council_member,
			executive_profile_received, executive_profile_data, executive_profile_enriched,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30)
		RETURNING id
	`
	data, err := encodeProfileData(a.ExecutiveProfileData)
	if err != nil {
		return err
	}
	args := []any{a.ForumID, a.Stage}
	args = append(args, profileArgs(a.AttendeeProfile)...)
	args = append(args, a.Speaker, a.Rebook, a.CouncilMember,
		a.ExecutiveProfileReceived, data, a.ExecutiveProfileEnriched,
		a.CreatedAt, a.UpdatedAt)
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&a.ID)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23505" {
			return domain.ErrDuplicateAttendee
		}
		return err
	}
	return nil
}

func (r *attendeeRepository) GetByID(ctx context.Context, id string) (*domain.Attendee, error) {
	query := `SELECT ` + attendeeSelect + ` FROM attendees WHERE id = $1`
	a, err := scanAttendee(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *attendeeRepository) FindByForumAndEmail(ctx context.Context, forumID, email string) (*domain.Attendee, error) {
	query := `SELECT ` + attendeeSelect + ` FROM attendees WHERE forum_id = $1 AND lower(email) = $2`
	a, err := scanAttendee(r.DB.QueryRowContext(ctx, query, forumID, domain.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *attendeeRepository) ListByForum(ctx context.Context, forumID string, params domain.PaginationParams) ([]*domain.Attendee, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendees WHERE forum_id = $1`, forumID).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `SELECT ` + attendeeSelect + ` FROM attendees WHERE forum_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`
	list, err := r.list(ctx, query, forumID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *attendeeRepository) ListPendingEnrichment(ctx context.Context, forumID string) ([]*domain.Attendee, error) {
	query := `SELECT ` + attendeeSelect + ` FROM attendees
		WHERE forum_id = $1
		  AND executive_profile_received
		  AND executive_profile_data IS NOT NULL
		  AND NOT executive_profile_enriched
		ORDER BY created_at`
	return r.list(ctx, query, forumID)
}

func (r *attendeeRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Attendee, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	attendees := make([]*domain.Attendee, 0)
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}

func (r *attendeeRepository) UpdateProfile(ctx context.Context, a *domain.Attendee) error {
	query := `
		UPDATE attendees SET
			first_name = $2, last_name = $3, email = $4, company = $5, title = $6, management_level = $7,
			industry = $8, company_size = $9, cellphone = $10, linkedin = $11, city = $12, state = $13,
			airport = $14, hotel = $15, flight = $16, dietary_notes = $17, gender = $18, notes = $19,
			sinc_rep = $20, call_setter = $21,
			speaker = $22, rebook = $23, council_member = $24,
			executive_profile_received = $25, executive_profile_data = $26, executive_profile_enriched = $27,
			updated_at = $28
		WHERE id = $1
	`
	data, err := encodeProfileData(a.ExecutiveProfileData)
	if err != nil {
		return err
	}
	args := []any{a.ID}
	args = append(args, profileArgs(a.AttendeeProfile)...)
	args = append(args, a.Speaker, a.Rebook, a.CouncilMember,
		a.ExecutiveProfileReceived, data, a.ExecutiveProfileEnriched, a.UpdatedAt)
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23505" {
			return domain.ErrDuplicateAttendee
		}
		return err
	}
	return requireAffected(res)
}

func (r *attendeeRepository) UpdateStage(ctx context.Context, id string, stage domain.Stage) (*domain.Attendee, error) {
	query := `UPDATE attendees SET stage = $2, updated_at = now() WHERE id = $1 RETURNING ` + attendeeSelect
	return r.updateReturning(ctx, query, id, stage)
}

func (r *attendeeRepository) SetDenialReason(ctx context.Context, id, reason string) (*domain.Attendee, error) {
	query := `UPDATE attendees SET denial_reason = $2, updated_at = now() WHERE id = $1 RETURNING ` + attendeeSelect
	return r.updateReturning(ctx, query, id, reason)
}

func (r *attendeeRepository) updateReturning(ctx context.Context, query string, args ...any) (*domain.Attendee, error) {
	a, err := scanAttendee(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *attendeeRepository) SetEnrichedProfileData(ctx context.Context, id string, data []domain.ProfileAnswer) error {
	encoded, err := encodeProfileData(data)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE attendees
		SET executive_profile_data = $2, executive_profile_enriched = true, updated_at = now()
		WHERE id = $1
	`, id, encoded)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *attendeeRepository) SetHubspotDealID(ctx context.Context, id, dealID string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE attendees SET hubspot_deal_id = $2, updated_at = now() WHERE id = $1`, id, dealID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *attendeeRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM attendees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
