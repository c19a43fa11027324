// @title Formdesk API
// @version 1.0
// @description Insurance KYC and claim intake: wizard sessions, uploads, submissions and the review back office.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "formdesk/docs"
	"formdesk/internal/config"
	"formdesk/internal/email/noop"
	"formdesk/internal/email/ses"
	"formdesk/internal/form"
	"formdesk/internal/form/catalog"
	"formdesk/internal/handler"
	"formdesk/internal/logger"
	"formdesk/internal/port"
	"formdesk/internal/repository/firestore"
	"formdesk/internal/repository/postgres"
	"formdesk/internal/router"
	"formdesk/internal/service"
	gcsstorage "formdesk/internal/storage/gcs"
	s3storage "formdesk/internal/storage/s3"
	"formdesk/internal/wizard"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

// stores bundles the repositories of one backend.
type stores struct {
	reviewers port.ReviewerRepository
	subs      port.SubmissionRepository
	audit     port.SubmissionAuditRepository
	files     port.UploadedFileRepository
	drafts    port.DraftRepository
	stats     port.StatsRepository
	ping      handler.ReadinessCheck
	close     func() error
}

func openStores(cfg *config.Config, formTypes []string) (*stores, error) {
	switch cfg.Store.Provider {
	case "firestore":
		p := firestore.NewProvider(cfg.Store)
		return &stores{
			reviewers: firestore.NewReviewerRepo(p),
			subs:      firestore.NewSubmissionRepo(p, formTypes),
			audit:     firestore.NewSubmissionAuditRepo(p),
			files:     firestore.NewUploadedFileRepo(p),
			drafts:    firestore.NewDraftRepo(p),
			stats:     firestore.NewStatsRepo(p, formTypes),
			ping:      p.Ping,
			close:     p.Close,
		}, nil
	default:
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return &stores{
			reviewers: postgres.NewReviewerRepo(db),
			subs:      postgres.NewSubmissionRepo(db),
			audit:     postgres.NewSubmissionAuditRepo(db),
			files:     postgres.NewUploadedFileRepo(db),
			drafts:    postgres.NewDraftRepo(db),
			stats:     postgres.NewStatsRepo(db),
			ping:      db.PingContext,
			close:     db.Close,
		}, nil
	}
}

func openStorage(ctx context.Context, cfg *config.StorageConfig) (port.ObjectStorage, error) {
	if cfg.Provider == "gcs" {
		return gcsstorage.NewGCSClient(ctx, cfg)
	}
	return s3storage.NewS3Client(cfg)
}

func openEmail(cfg *config.EmailConfig, logger *zap.Logger) (port.EmailSender, error) {
	if cfg.Provider == "ses" {
		return ses.NewSESSender(cfg)
	}
	return noop.NewNoopSender(cfg.FrontendURL, logger), nil
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("failed to load form catalog: %w", err)
	}

	st, err := openStores(cfg, cat.Types())
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	objects, err := openStorage(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", cfg.Storage.Provider, err)
	}
	mailer, err := openEmail(&cfg.Email, zlog)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	// Initialize services
	validator := form.NewValidator()
	authSvc := service.NewAuthService(st.reviewers, cfg.JWT)
	reviewerSvc := service.NewReviewerService(st.reviewers)
	statsSvc := service.NewStatsService(st.stats)
	uploadSvc := service.NewUploadService(st.files, objects, cat, &cfg.Storage, zlog)
	submissionSvc := service.NewSubmissionService(st.subs, st.audit, mailer, cat, validator, zlog)

	// Background workers
	autosaver := wizard.NewAutosaver(st.drafts, zlog, cfg.Wizard.AutosaveQueueSize)
	manager := wizard.NewManager(cat, uploadSvc, submissionSvc, autosaver, wizard.ManagerConfig{
		SessionTTL:    cfg.Wizard.SessionTTL,
		SubmitTimeout: cfg.Wizard.SubmitTimeout,
		UploadTimeout: cfg.Wizard.UploadTimeout,
	}, zlog)
	go manager.Run(ctx)

	notifier := service.NewNotificationWorker(st.subs, st.reviewers, st.audit, mailer, service.NotificationConfig{
		PollInterval: time.Duration(cfg.Notify.PollIntervalSecs) * time.Second,
		BatchSize:    cfg.Notify.BatchSize,
		Concurrency:  cfg.Notify.Concurrency,
	}, zlog)
	go notifier.Start(ctx)

	// Initialize handlers
	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Health:     handler.NewHealthHandler(map[string]handler.ReadinessCheck{"store": st.ping}),
		Intake:     handler.NewIntakeHandler(submissionSvc),
		Forms:      handler.NewFormHandler(cat),
		Uploads:    handler.NewUploadHandler(uploadSvc),
		Wizard:     handler.NewWizardHandler(manager),
		Submission: handler.NewSubmissionHandler(submissionSvc),
		Reviewer:   handler.NewReviewerHandler(reviewerSvc),
		Stats:      handler.NewStatsHandler(statsSvc),
	}
	r := router.Setup(authSvc, handlers, cat.Types(), cfg.CORS.AllowedOrigins, zlog)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("store", cfg.Store.Provider),
			zap.String("storage", cfg.Storage.Provider),
			zap.Strings("forms", cat.Types()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("http shutdown", zap.Error(err))
	}
	notifier.Wait()
	if err := autosaver.Flush(shutdownCtx); err != nil {
		zlog.Warn("draft flush incomplete", zap.Error(err))
	}
	autosaver.Close()
	return nil
}
