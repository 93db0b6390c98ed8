package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"forumregistrations/internal/delivery/http/controllers"
	"forumregistrations/internal/delivery/http/middleware"
	"forumregistrations/internal/domain"
)

// Controllers groups the route handlers mounted by NewRouter.
type Controllers struct {
	Attendees *controllers.AttendeeController
	Stages    *controllers.StageController
	Imports   *controllers.ImportController
	Forums    *controllers.ForumController
	CRM       *controllers.CRMController
}

// RouterConfig configures NewRouter.
type RouterConfig struct {
	Verifier       domain.TokenVerifier
	Logger         *slog.Logger
	AllowedOrigins []string
}

// NewRouter registers all application routes and wraps them with CORS,
// request logging and metrics. Every API route requires a bearer token and
// the permission listed next to it.
func NewRouter(cfg RouterConfig, c Controllers) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)
	can := func(perm domain.Permission, h http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequirePermission(perm)(h))
	}

	// Forums
	mux.HandleFunc("GET /forums/{forumID}", can(domain.PermViewAttendees, c.Forums.GetForum))
	mux.HandleFunc("POST /forums/{forumID}/sync", can(domain.PermManageSettings, c.Forums.SyncForum))
	mux.HandleFunc("GET /forums/{forumID}/settings", can(domain.PermViewAttendees, c.Forums.GetSettings))
	mux.HandleFunc("PUT /forums/{forumID}/settings", can(domain.PermManageSettings, c.Forums.SaveSettings))

	// Attendees
	mux.HandleFunc("GET /forums/{forumID}/attendees", can(domain.PermViewAttendees, c.Attendees.ListAttendees))
	mux.HandleFunc("POST /forums/{forumID}/attendees", can(domain.PermEditAttendees, c.Attendees.CreateAttendee))
	mux.HandleFunc("GET /attendees/{attendeeID}", can(domain.PermViewAttendees, c.Attendees.GetAttendee))
	mux.HandleFunc("PUT /attendees/{attendeeID}", can(domain.PermEditAttendees, c.Attendees.UpdateAttendee))
	mux.HandleFunc("DELETE /attendees/{attendeeID}", can(domain.PermDeleteAttendees, c.Attendees.DeleteAttendee))

	// Stages and outcome emails
	mux.HandleFunc("POST /attendees/{attendeeID}/stage", can(domain.PermApproveStages, c.Stages.RequestTransition))
	mux.HandleFunc("POST /attendees/{attendeeID}/stage/confirmation", can(domain.PermApproveStages, c.Stages.ResolveConfirmation))
	mux.HandleFunc("PUT /attendees/{attendeeID}/denial-reason", can(domain.PermApproveStages, c.Stages.SubmitDenialReason))
	mux.HandleFunc("POST /attendees/{attendeeID}/outcome-email", can(domain.PermSendEmails, c.Stages.SendOutcomeEmail))
	mux.HandleFunc("GET /attendees/{attendeeID}/emails", can(domain.PermViewAttendees, c.Stages.EmailHistory))

	// Imports
	mux.HandleFunc("POST /imports", can(domain.PermImport, c.Imports.Import))
	mux.HandleFunc("POST /forums/{forumID}/duplicates", can(domain.PermImport, c.Imports.PreviewDuplicates))
	mux.HandleFunc("POST /forums/{forumID}/enrichment", can(domain.PermImport, c.Imports.EnrichProfiles))

	// CRM
	mux.HandleFunc("POST /attendees/{attendeeID}/crm-sync", can(domain.PermSyncCRM, c.CRM.SyncDeal))

	// Ops
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var h http.Handler = middleware.Metrics(mux)
	h = middleware.LoggingMiddleware(cfg.Logger, h)
	return middleware.CORS(cfg.AllowedOrigins, h)
}
