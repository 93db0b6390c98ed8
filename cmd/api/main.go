package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"forumregistrations/config"
	"forumregistrations/internal/adapters/auth"
	"forumregistrations/internal/adapters/chat"
	"forumregistrations/internal/adapters/email"
	"forumregistrations/internal/adapters/hubspot"
	apphttp "forumregistrations/internal/delivery/http"
	"forumregistrations/internal/delivery/http/controllers"
	"forumregistrations/internal/domain"
	"forumregistrations/internal/repository/postgres"
	"forumregistrations/internal/services"
)

// @title Forum Registrations API
// @version 1.0
// @description Attendee imports, approval stages, outcome emails and CRM sync for executive forums.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("database ready")

	forumsDB := db
	if cfg.ForumsDBUrl != cfg.DBUrl {
		forumsDB, err = postgres.Open(ctx, cfg.ForumsDBUrl)
		if err != nil {
			return err
		}
		defer forumsDB.Close()
	}

	crmCfg, err := config.LoadCRMConfig(cfg.HubSpot.CRMConfigFile)
	if err != nil {
		return err
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AWSAccessKeyID,
			SecretAccessKey: cfg.Email.AWSSecretAccessKey,
		},
		SMTP: email.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			User:     cfg.Email.SMTPUser,
			Password: cfg.Email.SMTPPassword,
		},
	})
	if err != nil {
		return err
	}
	chatNotifier, err := chat.NewNotifier(chat.Config{
		Provider:         cfg.Chat.Provider,
		SlackWebhookURL:  cfg.Chat.SlackWebhookURL,
		DiscordBotToken:  cfg.Chat.DiscordBotToken,
		DiscordChannelID: cfg.Chat.DiscordChannelID,
	})
	if err != nil {
		return err
	}
	hubspotClient := hubspot.NewClient(hubspot.Config{BaseURL: cfg.HubSpot.BaseURL, APIKey: cfg.HubSpot.APIKey}, nil)

	// Repositories
	attendeeRepo := postgres.NewAttendeeRepository(db)
	forumRepo := postgres.NewForumRepository(db)
	settingsRepo := postgres.NewForumSettingsRepository(db)
	auditRepo := postgres.NewEmailAuditRepository(db)
	forumSource := postgres.NewForumSourceRepository(forumsDB)

	// Services
	forumSvc := services.NewForumService(forumRepo, forumSource, settingsRepo, cfg.RequestTimeout)
	ledger := services.NewNotificationLedger(auditRepo)
	notifier := services.NewOutcomeNotifier(mailer, chatNotifier, ledger, forumSvc, domain.TemplateOverrides{
		Approved:            cfg.Templates.Approved,
		Denied:              cfg.Templates.Denied,
		Waitlisted:          cfg.Templates.Waitlisted,
		PreliminaryApproved: cfg.Templates.PreliminaryApproved,
	}, logger)
	attendeeSvc := services.NewAttendeeService(attendeeRepo, cfg.RequestTimeout)
	stageSvc := services.NewStageService(attendeeRepo, forumSvc, ledger, notifier, logger, cfg.RequestTimeout)
	enrichmentSvc := services.NewEnrichmentService(hubspotClient, attendeeRepo, logger, cfg.ImportTimeout)
	importSvc := services.NewImportService(hubspotClient, attendeeRepo, enrichmentSvc, logger, cfg.ImportTimeout)
	crmSvc := services.NewCRMSyncService(attendeeRepo, forumSvc, hubspotClient, crmCfg, logger, cfg.RequestTimeout)

	handler := apphttp.NewRouter(apphttp.RouterConfig{
		Verifier:       auth.NewJWTVerifier(cfg.JWTSecret),
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, apphttp.Controllers{
		Attendees: controllers.NewAttendeeController(logger, attendeeSvc),
		Stages:    controllers.NewStageController(logger, stageSvc),
		Imports:   controllers.NewImportController(logger, importSvc, enrichmentSvc),
		Forums:    controllers.NewForumController(logger, forumSvc),
		CRM:       controllers.NewCRMController(logger, crmSvc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Imports page through the form provider and can run for minutes.
		WriteTimeout: cfg.ImportTimeout + 30*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
