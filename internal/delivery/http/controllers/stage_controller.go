package controllers

import (
	"log/slog"
	"net/http"

	"forumregistrations/internal/delivery/http/helpers"
	"forumregistrations/internal/domain"
)

// StageController exposes the approval state machine and outcome email actions.
type StageController struct {
	Logger  *slog.Logger
	Service domain.StageService
}

func NewStageController(logger *slog.Logger, svc domain.StageService) *StageController {
	return &StageController{
		Logger:  logger,
		Service: svc,
	}
}

// StageRequest is the request body for POST /attendees/{attendeeID}/stage.
type StageRequest struct {
	Stage string `json:"stage" validate:"required,oneof=in_queue preliminary_approved approved denied waitlisted"`
}

// ConfirmationRequest is the request body for POST /attendees/{attendeeID}/stage/confirmation.
type ConfirmationRequest struct {
	Stage    string `json:"stage" validate:"required,oneof=approved denied waitlisted"`
	Decision string `json:"decision" validate:"required,oneof=confirm cancel"`
}

// DenialReasonRequest is the request body for PUT /attendees/{attendeeID}/denial-reason.
type DenialReasonRequest struct {
	DenialReason string `json:"denial_reason" validate:"required"`
}

// Validate checks the trimmed length, which the tag rules cannot.
func (req DenialReasonRequest) Validate() []string {
	if _, err := domain.ValidateDenialReason(req.DenialReason); err != nil {
		return []string{err.Error()}
	}
	return nil
}

// TransitionSuccessResponse is the success envelope for stage actions.
type TransitionSuccessResponse struct {
	Data  *domain.TransitionResult `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// EmailHistorySuccessResponse is the success envelope for GET /attendees/{attendeeID}/emails.
type EmailHistorySuccessResponse struct {
	Data  []*domain.EmailAuditEntry `json:"data"`
	Error *helpers.APIError         `json:"error"`
}

// RequestTransition godoc
// @Summary Request a stage change
// @Description Non-emailable stages and outcomes whose email was already sent are committed at once.
// @Description Otherwise nothing is written and data.pending_confirmation names the stage awaiting confirm or cancel.
// @Tags stages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Param body body StageRequest true "Target stage"
// @Success 200 {object} controllers.TransitionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (forum unavailable)"
// @Router /attendees/{attendeeID}/stage [post]
func (c *StageController) RequestTransition(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "attendeeID")
	if !ok {
		return
	}
	var req StageRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.RequestTransition(r.Context(), id, domain.Stage(req.Stage))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ResolveConfirmation godoc
// @Summary Confirm or cancel a pending outcome
// @Description Both decisions commit the stage. confirm also sends the outcome email unless the ledger shows it was sent.
// @Description A failed send is reported in data.email_error; the stage stays committed.
// @Tags stages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Param body body ConfirmationRequest true "Stage and decision"
// @Success 200 {object} controllers.TransitionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (forum unavailable)"
// @Router /attendees/{attendeeID}/stage/confirmation [post]
func (c *StageController) ResolveConfirmation(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "attendeeID")
	if !ok {
		return
	}
	var req ConfirmationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.ResolveConfirmation(r.Context(), id, domain.Stage(req.Stage), domain.Decision(req.Decision))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// SubmitDenialReason godoc
// @Summary Record why an attendee was denied
// @Tags stages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Param body body DenialReasonRequest true "Reason, at least 10 characters after trimming"
// @Success 200 {object} controllers.AttendeeSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /attendees/{attendeeID}/denial-reason [put]
func (c *StageController) SubmitDenialReason(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "attendeeID")
	if !ok {
		return
	}
	var req DenialReasonRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	a, err := c.Service.SubmitDenialReason(r.Context(), id, req.DenialReason)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, a)
}

// SendOutcomeEmail godoc
// @Summary Send the outcome email for the current stage
// @Description Used when a confirmation was cancelled earlier. Fails with 409 when the email was already sent.
// @Tags stages
// @Produce json
// @Security BearerAuth
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Success 200 {object} controllers.TransitionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /attendees/{attendeeID}/outcome-email [post]
func (c *StageController) SendOutcomeEmail(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "attendeeID")
	if !ok {
		return
	}
	result, err := c.Service.SendCurrentOutcomeEmail(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// EmailHistory godoc
// @Summary List outcome emails sent to an attendee
// @Tags stages
// @Produce json
// @Security BearerAuth
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Success 200 {object} controllers.EmailHistorySuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /attendees/{attendeeID}/emails [get]
func (c *StageController) EmailHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "attendeeID")
	if !ok {
		return
	}
	entries, err := c.Service.History(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}
