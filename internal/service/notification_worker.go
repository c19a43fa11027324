package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"formdesk/internal/domain"
	"formdesk/internal/port"
)

// NotificationConfig holds settings for the reviewer notification worker.
type NotificationConfig struct {
	PollInterval time.Duration
	BatchSize    int
	Concurrency  int
}

// NotificationWorker polls for submissions reviewers have not been told about
// and emails every active reviewer.
type NotificationWorker struct {
	subRepo      port.SubmissionRepository
	reviewerRepo port.ReviewerRepository
	auditRepo    port.SubmissionAuditRepository
	email        port.EmailSender
	cfg          NotificationConfig
	logger       *zap.Logger
	wg           sync.WaitGroup
}

// NewNotificationWorker creates a new NotificationWorker.
func NewNotificationWorker(
	subRepo port.SubmissionRepository,
	reviewerRepo port.ReviewerRepository,
	auditRepo port.SubmissionAuditRepository,
	email port.EmailSender,
	cfg NotificationConfig,
	logger *zap.Logger,
) *NotificationWorker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 15 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = cfg.Concurrency
	}
	return &NotificationWorker{
		subRepo:      subRepo,
		reviewerRepo: reviewerRepo,
		auditRepo:    auditRepo,
		email:        email,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight notifications have finished.
func (w *NotificationWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	w.logger.Info("notification worker started",
		zap.Duration("poll", w.cfg.PollInterval),
		zap.Int("batch", w.cfg.BatchSize),
		zap.Int("concurrency", w.cfg.Concurrency))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker shutting down, waiting for in-flight sends")
			w.wg.Wait()
			w.logger.Info("notification worker stopped")
			return
		case <-ticker.C:
			w.Poll(ctx, sem)
		}
	}
}

// Poll claims one batch and dispatches it. It returns once every send of the
// batch has been started; use Wait to block on completion.
func (w *NotificationWorker) Poll(ctx context.Context, sem chan struct{}) {
	available := cap(sem) - len(sem)
	if available <= 0 {
		return
	}
	limit := w.cfg.BatchSize
	if limit > available {
		limit = available
	}

	subs, err := w.subRepo.ClaimUnnotified(ctx, limit)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("claiming unnotified submissions", zap.Error(err))
		}
		return
	}
	if len(subs) == 0 {
		return
	}

	recipients, err := w.reviewerRepo.ListActiveEmails(ctx)
	if err != nil {
		w.logger.Error("listing reviewer emails", zap.Error(err))
		return
	}

	for i := range subs {
		sub := subs[i]

		sem <- struct{}{}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-sem }()

			// In-flight sends finish even when the poll context is canceled.
			sendCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			w.notify(sendCtx, &sub, recipients)
		}()
	}
}

// Wait blocks until every dispatched notification has finished.
func (w *NotificationWorker) Wait() { w.wg.Wait() }

func (w *NotificationWorker) notify(ctx context.Context, sub *domain.Submission, recipients []string) {
	log := w.logger.With(zap.String("form_type", sub.FormType), zap.String("id", sub.ID.String()))

	if len(recipients) > 0 {
		if err := w.email.SendSubmissionNotice(ctx, recipients, sub); err != nil {
			// Left unmarked so the next lease expiry retries it.
			log.Warn("reviewer notification failed", zap.Error(err))
			return
		}
	}
	if err := w.subRepo.MarkNotified(ctx, sub.FormType, sub.ID); err != nil {
		log.Error("marking submission notified", zap.Error(err))
		return
	}

	if w.auditRepo == nil {
		return
	}
	changes, _ := json.Marshal(map[string]int{"recipients": len(recipients)})
	entry := &domain.SubmissionAuditEntry{
		ID:           uuid.New(),
		SubmissionID: sub.ID,
		FormType:     sub.FormType,
		Action:       string(domain.AuditSubmissionNotified),
		Changes:      changes,
	}
	if err := w.auditRepo.Create(ctx, entry); err != nil {
		log.Warn("failed to write audit entry", zap.Error(err))
	}
	log.Info("reviewers notified", zap.Int("recipients", len(recipients)))
}
