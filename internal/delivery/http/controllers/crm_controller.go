package controllers

import (
	"log/slog"
	"net/http"

	"forumregistrations/internal/delivery/http/helpers"
	"forumregistrations/internal/domain"
)

type CRMController struct {
	Logger  *slog.Logger
	Service domain.CRMSyncService
}

func NewCRMController(logger *slog.Logger, svc domain.CRMSyncService) *CRMController {
	return &CRMController{
		Logger:  logger,
		Service: svc,
	}
}

// CRMSyncRequest is the request body for POST /attendees/{attendeeID}/crm-sync.
type CRMSyncRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=approved denied waitlisted"`
}

// CRMSyncSuccessResponse is the success envelope for POST /attendees/{attendeeID}/crm-sync.
type CRMSyncSuccessResponse struct {
	Data  *domain.CRMSyncResult `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// SyncDeal godoc
// @Summary Create a CRM deal for an attendee outcome
// @Description Finds or creates the contact, creates a deal in the pipeline for the forum's event type and outcome, and links them.
// @Description Every call creates a new deal; the stored deal id is replaced.
// @Tags crm
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Param body body CRMSyncRequest true "Outcome"
// @Success 200 {object} controllers.CRMSyncSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /attendees/{attendeeID}/crm-sync [post]
func (c *CRMController) SyncDeal(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathUUID(w, r, "attendeeID")
	if !ok {
		return
	}
	var req CRMSyncRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Service.SyncDeal(r.Context(), id, domain.Stage(req.Outcome))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
