package controllers

import (
	"log/slog"
	"net/http"

	"forumregistrations/internal/delivery/http/helpers"
	"forumregistrations/internal/domain"
)

type AttendeeController struct {
	Logger  *slog.Logger
	Service domain.AttendeeService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService) *AttendeeController {
	return &AttendeeController{
		Logger:  logger,
		Service: svc,
	}
}

// AttendeeRequest is the request body for creating or replacing an attendee.
// Flags left null are unchanged on update and false on create.
type AttendeeRequest struct {
	FirstName       string `json:"first_name" validate:"max=200"`
	LastName        string `json:"last_name" validate:"max=200"`
	Email           string `json:"email" validate:"required,email"`
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
	Speaker         *bool  `json:"speaker"`
	Rebook          *bool  `json:"rebook"`
	CouncilMember   *bool  `json:"council_member"`
}

func (req AttendeeRequest) profile() domain.AttendeeProfile {
	return domain.AttendeeProfile{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Company:         req.Company,
		Title:           req.Title,
		ManagementLevel: req.ManagementLevel,
		Industry:        req.Industry,
		CompanySize:     req.CompanySize,
		Cellphone:       req.Cellphone,
		Linkedin:        req.Linkedin,
		City:            req.City,
		State:           req.State,
		Airport:         req.Airport,
		Hotel:           req.Hotel,
		Flight:          req.Flight,
		DietaryNotes:    req.DietaryNotes,
		Gender:          req.Gender,
		Notes:           req.Notes,
		SalesRep:        req.SalesRep,
		CallSetter:      req.CallSetter,
	}
}

func (req AttendeeRequest) flags() domain.AttendeeFlags {
	return domain.AttendeeFlags{Speaker: req.Speaker, Rebook: req.Rebook, CouncilMember: req.CouncilMember}
}

// AttendeeSuccessResponse is the success envelope for single-attendee endpoints.
type AttendeeSuccessResponse struct {
	Data  *domain.Attendee  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListAttendeesSuccessResponse is the success envelope for GET /forums/{forumID}/attendees.
type ListAttendeesSuccessResponse struct {
	Data       []*domain.Attendee     `json:"data"`
	Pagination helpers.PaginationMeta `json:"pagination"`
	Error      *helpers.APIError      `json:"error"`
}

// forumIDParam returns the forumID path value. Forum ids come from the forums
// system and are opaque strings.
func forumIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("forumID")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing forumID")
		return "", false
	}
	return id, true
}

// ListAttendees godoc
// @Summary List a forum's attendees
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param forumID path string true "Forum ID"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 50, max 500)"
// @Success 200 {object} controllers.ListAttendeesSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /forums/{forumID}/attendees [get]
func (c *AttendeeController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	forumID, ok := forumIDParam(w, r)
	if !ok {
		return
	}
	params := helpers.ParsePagination(r)
	attendees, total, err := c.Service.ListByForum(r.Context(), forumID, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONPage(w, attendees, helpers.NewPaginationMeta(params, total))
}

// CreateAttendee godoc
// @Summary Add an attendee manually
// @Description Creates an attendee in stage in_queue. Emails are unique per forum, case-insensitively.
// @Tags attendees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param forumID path string true "Forum ID"
// @Param attendee body AttendeeRequest true "Attendee profile"
// @Success 201 {object} controllers.AttendeeSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /forums/{forumID}/attendees [post]
func (c *AttendeeController) CreateAttendee(w http.ResponseWriter, r *http.Request) {
	forumID, ok := forumIDParam(w, r)
	if !ok {
		return
	}
	var req AttendeeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	a, err := c.Service.Create(r.Context(), forumID, req.profile(), req.flags())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, a)
}

// GetAttendee godoc
// @Summary Get an attendee
// @Tags attendees
// @Produce json
// @Security BearerAuth
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Success 200 {object} controllers.AttendeeSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /attendees/{attendeeID} [get]
func (c *AttendeeController) GetAttendee(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "attendeeID")
	if !ok {
		return
	}
	a, err := c.Service.Get(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, a)
}

// UpdateAttendee godoc
// @Summary Replace an attendee's profile
// @Description Replaces every profile field. Stage, denial reason and executive profile are untouched.
// @Tags attendees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Param attendee body AttendeeRequest true "Attendee profile"
// @Success 200 {object} controllers.AttendeeSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /attendees/{attendeeID} [put]
func (c *AttendeeController) UpdateAttendee(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "attendeeID")
	if !ok {
		return
	}
	var req AttendeeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	a, err := c.Service.UpdateProfile(r.Context(), id, req.profile(), req.flags())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, a)
}

// DeleteAttendee godoc
// @Summary Delete an attendee
// @Tags attendees
// @Security BearerAuth
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Success 204
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /attendees/{attendeeID} [delete]
func (c *AttendeeController) DeleteAttendee(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "attendeeID")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
