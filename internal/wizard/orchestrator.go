package wizard

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"formdesk/internal/domain"
	"formdesk/internal/form"
)

// DefaultSubmitTimeout bounds a single submission write.
const DefaultSubmitTimeout = 30 * time.Second

// Submitter persists a submission envelope.
type Submitter interface {
	Create(ctx context.Context, formType string, payload map[string]any) (*domain.Submission, error)
}

// UploadedFile is a resolved upload for one file field.
type UploadedFile struct {
	URL          string `json:"url"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
}

// Envelope is the flat payload written for one submission.
type Envelope map[string]any

// BuildEnvelope merges values and uploads into the submission payload. File
// fields are filled only from uploads, each contributing its URL; anything a
// caller left in values for a file field is dropped. The fixed status,
// formType and timestamp keys are set last.
func BuildEnvelope(schema *form.Schema, formType string, values form.Values, uploads map[string]UploadedFile, now time.Time) Envelope {
	env := make(Envelope, len(values)+len(uploads)+3)
	for k, v := range values {
		if rule, ok := schema.Rule(k); ok && rule.Type == form.FieldFile {
			continue
		}
		switch v.(type) {
		case form.FileRef, *form.FileRef:
			continue
		}
		env[k] = v
	}
	for k, u := range uploads {
		if rule, ok := schema.Rule(k); ok && rule.Type == form.FieldFile {
			env[k] = u.URL
		}
	}
	env["status"] = string(domain.StatusProcessing)
	env["formType"] = formType
	env["timestamp"] = now.UTC().Format(time.RFC3339)
	return env
}

// SubmitRequest is the snapshot handed to the orchestrator.
type SubmitRequest struct {
	Definition *form.Definition
	Values     form.Values
	Uploads    map[string]UploadedFile
}

// SubmitResult describes a confirmed submission.
type SubmitResult struct {
	ID       string   `json:"id"`
	Envelope Envelope `json:"envelope"`
}

// Orchestrator writes a submission at most once at a time and reports the
// outcome through a Notifier. The caller drops the draft and resets its state
// after a confirmed write.
type Orchestrator struct {
	submitter Submitter
	notifier  Notifier
	timeout   time.Duration
	now       func() time.Time
	logger    *zap.Logger

	inFlight atomic.Bool
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(submitter Submitter, notifier Notifier, timeout time.Duration, logger *zap.Logger) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		submitter: submitter,
		notifier:  notifier,
		timeout:   timeout,
		now:       time.Now,
		logger:    logger,
	}
}

// InFlight reports whether a submission is being written.
func (o *Orchestrator) InFlight() bool { return o.inFlight.Load() }

// Submit performs the single write. A call made while another is in flight
// returns ErrSubmissionInFlight without touching the store.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer o.inFlight.Store(false)

	formType := req.Definition.Type
	env := BuildEnvelope(req.Definition.Schema, formType, req.Values, req.Uploads, o.now())

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	sub, err := o.submitter.Create(ctx, formType, env)
	if err != nil {
		o.logger.Warn("submission failed", zap.String("form_type", formType), zap.Error(err))
		o.notifier.Notify(Notice{
			Kind:      NoticeError,
			Message:   "We could not submit your form. Your answers have been kept, please try again.",
			Retryable: true,
		})
		return nil, fmt.Errorf("wizard.Submit: %w", err)
	}

	o.notifier.Notify(Notice{Kind: NoticeSuccess, Message: "Your form has been submitted successfully."})
	o.logger.Info("submission stored", zap.String("form_type", formType), zap.String("id", sub.ID.String()))
	return &SubmitResult{ID: sub.ID.String(), Envelope: env}, nil
}
