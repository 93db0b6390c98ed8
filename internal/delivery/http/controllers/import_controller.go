package controllers

import (
	"log/slog"
	"net/http"

	"forumregistrations/internal/delivery/http/helpers"
	"forumregistrations/internal/domain"
)

// ImportController exposes form submission imports, duplicate previews and
// executive profile enrichment.
type ImportController struct {
	Logger     *slog.Logger
	Imports    domain.ImportService
	Enrichment domain.EnrichmentService
}

func NewImportController(logger *slog.Logger, imports domain.ImportService, enrichment domain.EnrichmentService) *ImportController {
	return &ImportController{
		Logger:     logger,
		Imports:    imports,
		Enrichment: enrichment,
	}
}

// ImportRequest is the request body for POST /imports.
// Without forum_id only the raw submissions are returned. With forum_id and
// persist=false a duplicate preview is returned and nothing is written.
type ImportRequest struct {
	Kind    string `json:"kind" validate:"required,oneof=initial_registration executive_profile"`
	FormID  string `json:"form_id" validate:"required"`
	ForumID string `json:"forum_id"`
	Persist bool   `json:"persist"`
	APIKey  string `json:"api_key"`
}

// Validate rejects persist without a forum.
func (req ImportRequest) Validate() []string {
	if req.Persist && req.ForumID == "" {
		return []string{"forum_id is required when persist is true"}
	}
	return nil
}

// PreviewRequest is the request body for POST /forums/{forumID}/duplicates.
type PreviewRequest struct {
	Emails []string `json:"emails" validate:"required"`
}

// EnrichRequest is the request body for POST /forums/{forumID}/enrichment.
type EnrichRequest struct {
	FormID string `json:"form_id" validate:"required"`
	APIKey string `json:"api_key"`
}

// ImportSuccessResponse is the success envelope for POST /imports.
type ImportSuccessResponse struct {
	Data  *domain.ImportResult `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// PreviewSuccessResponse is the success envelope for POST /forums/{forumID}/duplicates.
type PreviewSuccessResponse struct {
	Data  *domain.DuplicatePreview `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// EnrichSuccessResponse is the success envelope for POST /forums/{forumID}/enrichment.
type EnrichSuccessResponse struct {
	Data  *domain.EnrichmentResult `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// Import godoc
// @Summary Import form submissions
// @Description Fetches every submission of a form and, with persist, merges them into the forum's attendees by email.
// @Description Per-record failures are reported in data.save_results.errors; a failed page aborts the whole import.
// @Tags imports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ImportRequest true "Import parameters"
// @Success 200 {object} controllers.ImportSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /imports [post]
func (c *ImportController) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Imports.Import(r.Context(), domain.ImportRequest{
		Kind:        domain.ImportKind(req.Kind),
		FormID:      req.FormID,
		ForumID:     req.ForumID,
		Persist:     req.Persist,
		Credentials: domain.ProviderCredentials{APIKey: req.APIKey},
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// PreviewDuplicates godoc
// @Summary Classify emails against a forum's attendees
// @Description Read-only. Each email lands in exactly one of new, duplicate or invalid.
// @Tags imports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param forumID path string true "Forum ID"
// @Param body body PreviewRequest true "Emails to classify"
// @Success 200 {object} controllers.PreviewSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /forums/{forumID}/duplicates [post]
func (c *ImportController) PreviewDuplicates(w http.ResponseWriter, r *http.Request) {
	forumID, ok := forumIDParam(w, r)
	if !ok {
		return
	}
	var req PreviewRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	preview, err := c.Imports.PreviewDuplicates(r.Context(), forumID, req.Emails)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, preview)
}

// EnrichProfiles godoc
// @Summary Relabel executive profiles with form metadata
// @Description Rewrites raw field names and option values of not-yet-enriched executive profiles into labels.
// @Tags imports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param forumID path string true "Forum ID"
// @Param body body EnrichRequest true "Executive profile form"
// @Success 200 {object} controllers.EnrichSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /forums/{forumID}/enrichment [post]
func (c *ImportController) EnrichProfiles(w http.ResponseWriter, r *http.Request) {
	forumID, ok := forumIDParam(w, r)
	if !ok {
		return
	}
	var req EnrichRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Enrichment.EnrichExecutiveProfiles(r.Context(), forumID, req.FormID, domain.ProviderCredentials{APIKey: req.APIKey})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
