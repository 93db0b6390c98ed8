package controllers

import (
	"log/slog"
	"net/http"

	"forumregistrations/internal/delivery/http/helpers"
	"forumregistrations/internal/domain"
)

// ForumController exposes the local forum mirror and per-forum settings.
type ForumController struct {
	Logger  *slog.Logger
	Service domain.ForumService
}

func NewForumController(logger *slog.Logger, svc domain.ForumService) *ForumController {
	return &ForumController{
		Logger:  logger,
		Service: svc,
	}
}

// ForumSettingsRequest is the request body for PUT /forums/{forumID}/settings.
// Empty template ids fall back to the configured defaults.
type ForumSettingsRequest struct {
	InitialRegistrationFormID string                   `json:"initial_registration_form_id"`
	ExecutiveProfileFormID    string                   `json:"executive_profile_form_id"`
	DealCode                  string                   `json:"deal_code" validate:"max=64"`
	EventType                 string                   `json:"event_type" validate:"omitempty,oneof=forum dinner veb virtual_roundtable"`
	Templates                 domain.TemplateOverrides `json:"templates"`
}

// ForumSuccessResponse is the success envelope for forum endpoints.
type ForumSuccessResponse struct {
	Data  *domain.Forum     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ForumSettingsSuccessResponse is the success envelope for settings endpoints.
type ForumSettingsSuccessResponse struct {
	Data  *domain.ForumSettings `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// GetForum godoc
// @Summary Get a forum
// @Description Returns the local mirror, copying it from the forums system on first use.
// @Tags forums
// @Produce json
// @Security BearerAuth
// @Param forumID path string true "Forum ID"
// @Success 200 {object} controllers.ForumSuccessResponse
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (forum unavailable)"
// @Router /forums/{forumID} [get]
func (c *ForumController) GetForum(w http.ResponseWriter, r *http.Request) {
	forumID, ok := forumIDParam(w, r)
	if !ok {
		return
	}
	f, err := c.Service.Resolve(r.Context(), forumID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, f)
}

// SyncForum godoc
// @Summary Refresh a forum from the forums system
// @Tags forums
// @Produce json
// @Security BearerAuth
// @Param forumID path string true "Forum ID"
// @Success 200 {object} controllers.ForumSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /forums/{forumID}/sync [post]
func (c *ForumController) SyncForum(w http.ResponseWriter, r *http.Request) {
	forumID, ok := forumIDParam(w, r)
	if !ok {
		return
	}
	f, err := c.Service.Sync(r.Context(), forumID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, f)
}

// GetSettings godoc
// @Summary Get a forum's settings
// @Tags forums
// @Produce json
// @Security BearerAuth
// @Param forumID path string true "Forum ID"
// @Success 200 {object} controllers.ForumSettingsSuccessResponse
// @Router /forums/{forumID}/settings [get]
func (c *ForumController) GetSettings(w http.ResponseWriter, r *http.Request) {
	forumID, ok := forumIDParam(w, r)
	if !ok {
		return
	}
	s, err := c.Service.Settings(r.Context(), forumID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, s)
}

// SaveSettings godoc
// @Summary Replace a forum's settings
// @Tags forums
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param forumID path string true "Forum ID"
// @Param body body ForumSettingsRequest true "Settings"
// @Success 200 {object} controllers.ForumSettingsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /forums/{forumID}/settings [put]
func (c *ForumController) SaveSettings(w http.ResponseWriter, r *http.Request) {
	forumID, ok := forumIDParam(w, r)
	if !ok {
		return
	}
	var req ForumSettingsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	s, err := c.Service.SaveSettings(r.Context(), &domain.ForumSettings{
		ForumID:                   forumID,
		InitialRegistrationFormID: req.InitialRegistrationFormID,
		ExecutiveProfileFormID:    req.ExecutiveProfileFormID,
		DealCode:                  req.DealCode,
		EventType:                 domain.EventType(req.EventType),
		Templates:                 req.Templates,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, s)
}
