package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"formdesk/internal/domain"
	"formdesk/internal/form"
	"formdesk/internal/port"
)

// DefaultUploadTimeout bounds a single file upload.
const DefaultUploadTimeout = 60 * time.Second

// Uploader stores an attached file and returns where it can be fetched.
type Uploader interface {
	Upload(ctx context.Context, in port.FileUpload, progress port.ProgressFunc) (*domain.UploadedFile, error)
}

// Deps are the collaborators a Session works with.
type Deps struct {
	Validator     *form.Validator
	Uploader      Uploader
	Submitter     Submitter
	Autosaver     *Autosaver
	Logger        *zap.Logger
	SubmitTimeout time.Duration
	UploadTimeout time.Duration
}

// Session drives one person through the steps of one form.
type Session struct {
	ID       string
	ClientID string

	def           *form.Definition
	validator     *form.Validator
	uploader      Uploader
	orchestrator  *Orchestrator
	autosaver     *Autosaver
	notices       *NoticeBuffer
	logger        *zap.Logger
	uploadTimeout time.Duration

	mu        sync.Mutex
	step      int
	values    form.Values
	errs      form.Errors
	touched   map[string]bool
	revealed  map[string]bool
	uploads   map[string]UploadedFile
	progress  map[string]int
	uploading map[string]bool

	lastActive atomic.Int64
}

// NewSession creates a session positioned on the first step.
func NewSession(id, clientID string, def *form.Definition, deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	v := deps.Validator
	if v == nil {
		v = form.NewValidator()
	}
	uploadTimeout := deps.UploadTimeout
	if uploadTimeout <= 0 {
		uploadTimeout = DefaultUploadTimeout
	}
	notices := NewNoticeBuffer(0)
	s := &Session{
		ID:            id,
		ClientID:      clientID,
		def:           def,
		validator:     v,
		uploader:      deps.Uploader,
		autosaver:     deps.Autosaver,
		notices:       notices,
		logger:        logger.With(zap.String("session", id), zap.String("form_type", def.Type)),
		uploadTimeout: uploadTimeout,
	}
	s.orchestrator = NewOrchestrator(deps.Submitter, notices, deps.SubmitTimeout, s.logger)
	s.reset()
	s.Touch(time.Now())
	return s
}

// Definition returns the form this session fills.
func (s *Session) Definition() *form.Definition { return s.def }

// DraftKey is the key the session autosaves under.
func (s *Session) DraftKey() string { return domain.DraftKey(s.def.Type, s.ClientID) }

// Touch records activity at t.
func (s *Session) Touch(t time.Time) { s.lastActive.Store(t.UnixNano()) }

// LastActive returns the time of the latest activity.
func (s *Session) LastActive() time.Time { return time.Unix(0, s.lastActive.Load()) }

// Step returns the active step index.
func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// SetValue updates one field.
func (s *Session) SetValue(ctx context.Context, key string, value any) error {
	return s.SetValues(ctx, map[string]any{key: value})
}

// SetValues updates several fields at once. Unknown keys and file fields reject
// the whole batch; file fields only change through AttachFile.
// Errors are recomputed for the active step, every field currently in error and
// every field whose requiredness depends on a changed key.
func (s *Session) SetValues(_ context.Context, changes map[string]any) error {
	for key := range changes {
		rule, ok := s.def.Schema.Rule(key)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
		if rule.Type == form.FieldFile {
			return fmt.Errorf("%w: %s", ErrFileFieldValue, key)
		}
	}

	s.mu.Lock()
	scope := make([]string, 0, len(changes))
	for key, v := range changes {
		s.values[key] = v
		s.touched[key] = true
		scope = append(scope, key)
		scope = append(scope, s.def.Schema.Dependents(key)...)
	}
	s.recompute(scope)
	s.save()
	s.mu.Unlock()
	return nil
}

// Next validates only the active step and advances when it passes.
func (s *Session) Next(_ context.Context) error {
	s.mu.Lock()
	keys := s.def.StepKeys(s.step)
	errs := s.validator.Validate(s.def.Schema, s.merged(), keys)
	for k, msg := range errs {
		s.errs[k] = msg
	}
	if errs.HasErrors() {
		for _, k := range keys {
			s.revealed[k] = true
		}
		stepID := s.def.Steps[s.step].ID
		s.mu.Unlock()
		return &StepBlockedError{StepID: stepID, Fields: errs.Failed()}
	}
	if s.step < len(s.def.Steps)-1 {
		s.step++
		s.recompute(nil)
	}
	s.save()
	s.mu.Unlock()
	return nil
}

// Previous moves back one step without validating.
func (s *Session) Previous() {
	s.mu.Lock()
	if s.step == 0 {
		s.mu.Unlock()
		return
	}
	s.step--
	s.save()
	s.mu.Unlock()
}

// AttachFile uploads a file for a file field and records its URL on success.
// Uploads for different fields may run concurrently.
func (s *Session) AttachFile(ctx context.Context, key string, in port.FileUpload) (*UploadedFile, error) {
	rule, ok := s.def.Schema.Rule(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	if rule.Type != form.FieldFile {
		return nil, fmt.Errorf("%w: %s", ErrNotFileField, key)
	}
	in.FormType = s.def.Type
	in.FieldKey = key

	s.mu.Lock()
	s.values[key] = form.FileRef{Name: in.FileName, Size: in.Size, MimeType: in.ContentType}
	s.touched[key] = true
	s.progress[key] = 0
	s.uploading[key] = true
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	res, err := s.uploader.Upload(ctx, in, func(pct int) {
		s.mu.Lock()
		if pct > s.progress[key] {
			s.progress[key] = pct
		}
		s.mu.Unlock()
	})

	s.mu.Lock()
	delete(s.uploading, key)
	if err != nil {
		delete(s.progress, key)
		s.mu.Unlock()
		s.logger.Warn("upload failed", zap.String("field", key), zap.Error(err))
		s.notices.Notify(Notice{
			Kind:    NoticeError,
			Field:   key,
			Message: fmt.Sprintf("Upload failed for %s: %v", rule.Label, err),
		})
		return nil, err
	}
	up := UploadedFile{URL: res.URL, OriginalName: res.OriginalName, MimeType: res.ContentType}
	s.uploads[key] = up
	s.progress[key] = 100
	s.errs[key] = ""
	s.save()
	s.mu.Unlock()
	return &up, nil
}

// Submit validates every step and hands the merged payload to the orchestrator.
// On success the session is reset to a fresh first step.
func (s *Session) Submit(ctx context.Context) (*SubmitResult, error) {
	s.mu.Lock()
	if s.step != len(s.def.Steps)-1 {
		s.mu.Unlock()
		return nil, ErrNotOnLastStep
	}
	keys := s.def.AllKeys()
	errs := s.validator.Validate(s.def.Schema, s.merged(), keys)
	for k, msg := range errs {
		s.errs[k] = msg
	}
	if errs.HasErrors() {
		for _, k := range keys {
			s.revealed[k] = true
		}
		first := len(s.def.Steps)
		for _, k := range errs.Keys() {
			if i := s.def.StepOf(k); i >= 0 && i < first {
				first = i
			}
		}
		s.mu.Unlock()
		return nil, &ValidationError{Fields: errs.Failed(), FirstStep: first}
	}
	req := SubmitRequest{
		Definition: s.def,
		Values:     s.values.Clone(),
		Uploads:    make(map[string]UploadedFile, len(s.uploads)),
	}
	for k, u := range s.uploads {
		req.Uploads[k] = u
	}
	s.mu.Unlock()

	res, err := s.orchestrator.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.reset()
	s.dropDraft()
	s.mu.Unlock()
	return res, nil
}

// Submitting reports whether a submission is in flight.
func (s *Session) Submitting() bool { return s.orchestrator.InFlight() }

// Restore loads a saved draft into the session.
func (s *Session) Restore(d *domain.Draft) error {
	var values form.Values
	if len(d.Values) > 0 {
		if err := json.Unmarshal(d.Values, &values); err != nil {
			return fmt.Errorf("wizard.Restore values: %w", err)
		}
	}
	if values == nil {
		values = form.Values{}
	}
	var uploads map[string]UploadedFile
	if len(d.Uploads) > 0 {
		if err := json.Unmarshal(d.Uploads, &uploads); err != nil {
			return fmt.Errorf("wizard.Restore uploads: %w", err)
		}
	}
	if uploads == nil {
		uploads = map[string]UploadedFile{}
	}
	for k := range values {
		rule, ok := s.def.Schema.Rule(k)
		if !ok || rule.Type == form.FieldFile {
			delete(values, k)
		}
	}
	for k := range uploads {
		if rule, ok := s.def.Schema.Rule(k); !ok || rule.Type != form.FieldFile {
			delete(uploads, k)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values
	s.uploads = uploads
	s.step = d.Step
	if s.step < 0 || s.step >= len(s.def.Steps) {
		s.step = 0
	}
	return nil
}

// Reset discards all state, drops the saved draft and returns to the first step.
func (s *Session) Reset() {
	s.mu.Lock()
	s.reset()
	s.dropDraft()
	s.mu.Unlock()
}

func (s *Session) reset() {
	s.step = 0
	s.values = form.Values{}
	s.errs = form.Errors{}
	s.touched = map[string]bool{}
	s.revealed = map[string]bool{}
	s.uploads = map[string]UploadedFile{}
	s.progress = map[string]int{}
	s.uploading = map[string]bool{}
}

// merged is the validation view of the state. File fields hold only resolved
// upload URLs, so a pending FileRef counts as empty. Callers must hold s.mu.
func (s *Session) merged() form.Values {
	out := s.values.Clone()
	for _, k := range s.def.Schema.FileKeys() {
		delete(out, k)
	}
	for k, u := range s.uploads {
		out[k] = u.URL
	}
	return out
}

// recompute re-validates the active step, every errored key and extra.
// Callers must hold s.mu.
func (s *Session) recompute(extra []string) {
	seen := map[string]bool{}
	var keys []string
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, k := range s.def.StepKeys(s.step) {
		add(k)
	}
	for k, msg := range s.errs {
		if msg != "" {
			add(k)
		}
	}
	for _, k := range extra {
		add(k)
	}
	for k, msg := range s.validator.Validate(s.def.Schema, s.merged(), keys) {
		s.errs[k] = msg
	}
}

// snapshot builds the draft for the current state. Callers must hold s.mu.
func (s *Session) snapshot() *domain.Draft {
	if s.autosaver == nil {
		return nil
	}
	values, err := json.Marshal(s.values)
	if err != nil {
		s.logger.Warn("draft encode failed", zap.Error(err))
		return nil
	}
	uploads, err := json.Marshal(s.uploads)
	if err != nil {
		s.logger.Warn("draft encode failed", zap.Error(err))
		return nil
	}
	return &domain.Draft{
		Key:       s.DraftKey(),
		FormType:  s.def.Type,
		ClientID:  s.ClientID,
		Step:      s.step,
		Values:    values,
		Uploads:   uploads,
		UpdatedAt: time.Now().UTC(),
	}
}

// save queues the current state as the draft. Queueing happens under s.mu so
// drafts reach the autosaver in the order the state changed. Callers must hold s.mu.
func (s *Session) save() {
	if d := s.snapshot(); d != nil {
		s.autosaver.Save(d)
	}
}

// dropDraft queues deletion of the stored draft. Callers must hold s.mu.
func (s *Session) dropDraft() {
	if s.autosaver != nil {
		s.autosaver.Delete(s.DraftKey())
	}
}
