package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"formdesk/internal/csvexport"
	"formdesk/internal/domain"
	"formdesk/internal/form"
	"formdesk/internal/form/catalog"
	"formdesk/internal/port"
	"formdesk/internal/xlsxexport"
)

// Envelope keys every submission carries besides its schema fields.
const (
	keyStatus    = "status"
	keyFormType  = "formType"
	keyTimestamp = "timestamp"
)

// InvalidSubmissionError lists the fields that failed server-side validation.
type InvalidSubmissionError struct {
	Fields map[string]string
}

func (e *InvalidSubmissionError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "submission has invalid fields: " + strings.Join(keys, ", ")
}

// UpdateStatusInput is the DTO for a reviewer status change.
type UpdateStatusInput struct {
	FormType   string
	ID         uuid.UUID
	Status     domain.SubmissionStatus
	Comment    string
	ReviewerID *uuid.UUID
}

// UpdateDataInput is the DTO for a reviewer correction of submitted values.
type UpdateDataInput struct {
	FormType   string
	ID         uuid.UUID
	Changes    map[string]any
	ReviewerID *uuid.UUID
}

// SubmissionService defines the submission intake and review contract.
type SubmissionService interface {
	Create(ctx context.Context, formType string, payload map[string]any) (*domain.Submission, error)
	GetByID(ctx context.Context, formType string, id uuid.UUID) (*domain.Submission, error)
	List(ctx context.Context, filter domain.SubmissionFilter) ([]domain.Submission, int, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*domain.Submission, error)
	UpdateData(ctx context.Context, input UpdateDataInput) (*domain.Submission, error)
	Delete(ctx context.Context, formType string, id uuid.UUID, reviewerID *uuid.UUID) error
	ListAudit(ctx context.Context, formType string, id uuid.UUID, offset, limit int) ([]domain.SubmissionAuditEntry, int, error)
	ExportCSV(ctx context.Context, formType string, w io.Writer) error
	ExportXLSX(ctx context.Context, formTypes []string, w io.Writer) error
}

type submissionService struct {
	subRepo   port.SubmissionRepository
	auditRepo port.SubmissionAuditRepository
	email     port.EmailSender
	catalog   *catalog.Catalog
	validator *form.Validator
	policy    *bluemonday.Policy
	logger    *zap.Logger
}

// NewSubmissionService creates a new SubmissionService implementation.
// auditRepo and email may be nil.
func NewSubmissionService(
	subRepo port.SubmissionRepository,
	auditRepo port.SubmissionAuditRepository,
	email port.EmailSender,
	cat *catalog.Catalog,
	validator *form.Validator,
	logger *zap.Logger,
) SubmissionService {
	if validator == nil {
		validator = form.NewValidator()
	}
	return &submissionService{
		subRepo:   subRepo,
		auditRepo: auditRepo,
		email:     email,
		catalog:   cat,
		validator: validator,
		policy:    bluemonday.StrictPolicy(),
		logger:    logger,
	}
}

func (s *submissionService) Create(ctx context.Context, formType string, payload map[string]any) (*domain.Submission, error) {
	def, err := s.catalog.Get(formType)
	if err != nil {
		return nil, err
	}

	values := s.clean(def, payload)
	if fields := s.check(def, values); len(fields) > 0 {
		return nil, &InvalidSubmissionError{Fields: fields}
	}

	status := domain.StatusProcessing
	if st, ok := payload[keyStatus].(string); ok && domain.SubmissionStatus(st) == domain.StatusPending {
		status = domain.StatusPending
	}
	values[keyStatus] = string(status)
	values[keyFormType] = def.Type

	var clientTS *time.Time
	if raw, ok := payload[keyTimestamp].(string); ok {
		if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(raw)); err == nil {
			ts = ts.UTC()
			clientTS = &ts
			values[keyTimestamp] = ts.Format(time.RFC3339)
		}
	}

	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("submissionService.Create: encoding data: %w", err)
	}

	sub := &domain.Submission{
		ID:              uuid.New(),
		FormType:        def.Type,
		Category:        def.Category,
		Status:          status,
		Data:            data,
		SubmitterEmail:  submitterEmail(def, values),
		ClientTimestamp: clientTS,
	}
	if err := s.subRepo.Create(ctx, sub); err != nil {
		s.logger.Error("failed to store submission", zap.String("form_type", def.Type), zap.Error(err))
		return nil, fmt.Errorf("submissionService.Create: %w", err)
	}

	changes, _ := json.Marshal(map[string]string{"status": string(status)})
	s.audit(ctx, sub, nil, domain.AuditSubmissionCreated, changes)
	s.logger.Info("submission created", zap.String("form_type", def.Type), zap.String("id", sub.ID.String()))
	return sub, nil
}

func (s *submissionService) GetByID(ctx context.Context, formType string, id uuid.UUID) (*domain.Submission, error) {
	if !s.catalog.Has(formType) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownFormType, formType)
	}
	return s.subRepo.GetByID(ctx, formType, id)
}

func (s *submissionService) List(ctx context.Context, filter domain.SubmissionFilter) ([]domain.Submission, int, error) {
	if filter.FormType != "" && !s.catalog.Has(filter.FormType) {
		return nil, 0, fmt.Errorf("%w: %s", domain.ErrUnknownFormType, filter.FormType)
	}
	if filter.Status != "" && !domain.ValidSubmissionStatuses[filter.Status] {
		return nil, 0, domain.ErrInvalidStatus
	}
	return s.subRepo.List(ctx, filter)
}

func (s *submissionService) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*domain.Submission, error) {
	if !domain.ValidSubmissionStatuses[input.Status] {
		return nil, domain.ErrInvalidStatus
	}
	sub, err := s.GetByID(ctx, input.FormType, input.ID)
	if err != nil {
		return nil, err
	}
	if !sub.Status.CanTransitionTo(input.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, sub.Status, input.Status)
	}

	prev := sub.Status
	now := time.Now().UTC()
	sub.Status = input.Status
	sub.ReviewerComment = strings.TrimSpace(s.sanitize(input.Comment))
	sub.ReviewedBy = input.ReviewerID
	sub.ReviewedAt = &now

	if err := s.subRepo.UpdateStatus(ctx, sub); err != nil {
		return nil, fmt.Errorf("submissionService.UpdateStatus: %w", err)
	}

	changes, _ := json.Marshal(map[string]string{
		"from":    string(prev),
		"to":      string(sub.Status),
		"comment": sub.ReviewerComment,
	})
	s.audit(ctx, sub, input.ReviewerID, domain.AuditSubmissionStatusChanged, changes)

	if s.email != nil && sub.SubmitterEmail != "" {
		if err := s.email.SendStatusUpdate(ctx, sub.SubmitterEmail, sub, sub.ReviewerComment); err != nil {
			s.logger.Warn("status update email failed",
				zap.String("id", sub.ID.String()), zap.Error(err))
		}
	}
	return sub, nil
}

func (s *submissionService) UpdateData(ctx context.Context, input UpdateDataInput) (*domain.Submission, error) {
	def, err := s.catalog.Get(input.FormType)
	if err != nil {
		return nil, err
	}
	sub, err := s.subRepo.GetByID(ctx, input.FormType, input.ID)
	if err != nil {
		return nil, err
	}

	current := sub.Fields()
	changed := s.clean(def, input.Changes)
	if len(changed) == 0 {
		return sub, nil
	}
	merged := make(map[string]any, len(current)+len(changed))
	for k, v := range current {
		merged[k] = v
	}
	diff := make(map[string]any, len(changed))
	for k, v := range changed {
		diff[k] = map[string]any{"from": current[k], "to": v}
		merged[k] = v
	}
	if fields := s.check(def, merged); len(fields) > 0 {
		return nil, &InvalidSubmissionError{Fields: fields}
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("submissionService.UpdateData: encoding data: %w", err)
	}
	sub.Data = data
	sub.SubmitterEmail = submitterEmail(def, merged)
	if err := s.subRepo.UpdateData(ctx, sub); err != nil {
		return nil, fmt.Errorf("submissionService.UpdateData: %w", err)
	}

	changes, _ := json.Marshal(diff)
	s.audit(ctx, sub, input.ReviewerID, domain.AuditSubmissionUpdated, changes)
	return sub, nil
}

func (s *submissionService) Delete(ctx context.Context, formType string, id uuid.UUID, reviewerID *uuid.UUID) error {
	if !s.catalog.Has(formType) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownFormType, formType)
	}
	if err := s.subRepo.Delete(ctx, formType, id); err != nil {
		return err
	}
	fields := []zap.Field{zap.String("form_type", formType), zap.String("id", id.String())}
	if reviewerID != nil {
		fields = append(fields, zap.String("reviewer_id", reviewerID.String()))
	}
	s.logger.Info("submission deleted", fields...)
	return nil
}

func (s *submissionService) ListAudit(ctx context.Context, formType string, id uuid.UUID, offset, limit int) ([]domain.SubmissionAuditEntry, int, error) {
	if s.auditRepo == nil {
		return []domain.SubmissionAuditEntry{}, 0, nil
	}
	if _, err := s.GetByID(ctx, formType, id); err != nil {
		return nil, 0, err
	}
	return s.auditRepo.ListBySubmission(ctx, id, offset, limit)
}

func (s *submissionService) ExportCSV(ctx context.Context, formType string, w io.Writer) error {
	def, err := s.catalog.Get(formType)
	if err != nil {
		return err
	}
	subs, err := s.subRepo.ListAll(ctx, formType)
	if err != nil {
		return fmt.Errorf("submissionService.ExportCSV: %w", err)
	}

	if _, err := w.Write(csvexport.BOM); err != nil {
		return err
	}
	cw := csvexport.NewWriter(w, def)
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	if err := cw.WriteSubmissions(subs); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func (s *submissionService) ExportXLSX(ctx context.Context, formTypes []string, w io.Writer) error {
	defs := make([]*form.Definition, 0, len(formTypes))
	for _, t := range formTypes {
		def, err := s.catalog.Get(t)
		if err != nil {
			return err
		}
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		defs = s.catalog.All()
	}

	wb, err := xlsxexport.New()
	if err != nil {
		return err
	}
	defer wb.Close()

	for _, def := range defs {
		subs, err := s.subRepo.ListAll(ctx, def.Type)
		if err != nil {
			return fmt.Errorf("submissionService.ExportXLSX: %w", err)
		}
		if err := wb.AddSheet(def, subs); err != nil {
			return err
		}
	}
	_, err = wb.WriteTo(w)
	return err
}

// clean keeps schema fields only and strips markup from every string.
func (s *submissionService) clean(def *form.Definition, payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		if _, ok := def.Schema.Rule(k); !ok {
			continue
		}
		out[k] = s.sanitizeValue(v)
	}
	return out
}

func (s *submissionService) sanitizeValue(v any) any {
	switch t := v.(type) {
	case string:
		return s.sanitize(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = s.sanitizeValue(item)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, item := range t {
			out[i] = s.sanitize(item)
		}
		return out
	}
	return v
}

// sanitize removes tags; entities the policy escapes are turned back into text.
func (s *submissionService) sanitize(v string) string {
	return html.UnescapeString(s.policy.Sanitize(v))
}

// check runs the full schema and requires file fields to hold URLs.
func (s *submissionService) check(def *form.Definition, values map[string]any) map[string]string {
	errs := s.validator.Validate(def.Schema, form.Values(values), def.AllKeys())
	failed := errs.Failed()
	for _, key := range def.Schema.FileKeys() {
		if _, bad := failed[key]; bad {
			continue
		}
		raw, ok := values[key].(string)
		if !ok || raw == "" {
			continue
		}
		if !isURL(raw) {
			rule, _ := def.Schema.Rule(key)
			failed[key] = fmt.Sprintf("%s must be an uploaded file URL", rule.Label)
		}
	}
	return failed
}

func isURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// submitterEmail returns the "email" field when present, else the first
// email-typed field with a value.
func submitterEmail(def *form.Definition, values map[string]any) string {
	if v, ok := values["email"].(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	for _, rule := range def.Schema.Rules() {
		if rule.Type != form.FieldEmail {
			continue
		}
		if v, ok := values[rule.Key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (s *submissionService) audit(ctx context.Context, sub *domain.Submission, reviewerID *uuid.UUID, action domain.AuditAction, changes json.RawMessage) {
	if s.auditRepo == nil {
		return
	}
	if changes == nil {
		changes = json.RawMessage("{}")
	}
	entry := &domain.SubmissionAuditEntry{
		ID:           uuid.New(),
		SubmissionID: sub.ID,
		FormType:     sub.FormType,
		ReviewerID:   reviewerID,
		Action:       string(action),
		Changes:      changes,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit entry",
			zap.String("action", string(action)), zap.String("id", sub.ID.String()), zap.Error(err))
	}
}

// IsInvalidSubmission extracts field errors from err.
func IsInvalidSubmission(err error) (map[string]string, bool) {
	var inv *InvalidSubmissionError
	if errors.As(err, &inv) {
		return inv.Fields, true
	}
	return nil, false
}
