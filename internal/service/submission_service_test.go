package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"formdesk/internal/csvexport"
	"formdesk/internal/domain"
	"formdesk/internal/service"
	"formdesk/mocks"
)

type submissionDeps struct {
	subs  *mocks.MockSubmissionRepo
	audit *mocks.MockSubmissionAuditRepo
	email *mocks.MockEmailSender
}

func newSubmissionService(t *testing.T) (service.SubmissionService, submissionDeps) {
	deps := submissionDeps{
		subs:  new(mocks.MockSubmissionRepo),
		audit: new(mocks.MockSubmissionAuditRepo),
		email: new(mocks.MockEmailSender),
	}
	svc := service.NewSubmissionService(deps.subs, deps.audit, deps.email, testCatalog(t), nil, zap.NewNop())
	return svc, deps
}

func validPayload() map[string]any {
	return map[string]any{
		"fullName":      "Ada <b>Obi</b>",
		"email":         "ada@example.com",
		"country":       "Nigeria",
		"stateOfOrigin": "Lagos",
		"idCard":        "https://cdn.example.com/kyc/idCard/1_id.pdf",
		"status":        "processing",
		"formType":      "individual-kyc",
		"timestamp":     "2025-03-01T10:00:00Z",
		"injected":      "dropped",
	}
}

func TestSubmissionService_Create(t *testing.T) {
	svc, deps := newSubmissionService(t)

	var stored *domain.Submission
	deps.subs.On("Create", mock.Anything, mock.AnythingOfType("*domain.Submission")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Submission) }).
		Return(nil)
	deps.audit.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.SubmissionAuditEntry) bool {
		return e.Action == string(domain.AuditSubmissionCreated)
	})).Return(nil)

	sub, err := svc.Create(context.Background(), "individual-kyc", validPayload())

	require.NoError(t, err)
	assert.Same(t, stored, sub)
	assert.NotEqual(t, uuid.Nil, sub.ID)
	assert.Equal(t, domain.StatusProcessing, sub.Status)
	assert.Equal(t, "kyc", sub.Category)
	assert.Equal(t, "ada@example.com", sub.SubmitterEmail)
	require.NotNil(t, sub.ClientTimestamp)
	assert.Equal(t, 2025, sub.ClientTimestamp.Year())

	fields := sub.Fields()
	assert.Equal(t, "Ada Obi", fields["fullName"], "markup is stripped")
	assert.Equal(t, "processing", fields["status"])
	assert.Equal(t, "individual-kyc", fields["formType"])
	assert.NotContains(t, fields, "injected")
	deps.audit.AssertExpectations(t)
}

func TestSubmissionService_Create_DefaultsStatus(t *testing.T) {
	svc, deps := newSubmissionService(t)
	deps.subs.On("Create", mock.Anything, mock.Anything).Return(nil)
	deps.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	payload := validPayload()
	payload["status"] = "approved"
	delete(payload, "timestamp")

	sub, err := svc.Create(context.Background(), "individual-kyc", payload)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, sub.Status)
	assert.Nil(t, sub.ClientTimestamp)
}

func TestSubmissionService_Create_ValidationFailure(t *testing.T) {
	svc, deps := newSubmissionService(t)

	payload := validPayload()
	delete(payload, "stateOfOrigin")
	payload["idCard"] = "id.pdf"

	_, err := svc.Create(context.Background(), "individual-kyc", payload)

	fields, ok := service.IsInvalidSubmission(err)
	require.True(t, ok)
	assert.Equal(t, "State of Origin is required", fields["stateOfOrigin"])
	assert.Equal(t, "ID Card must be an uploaded file URL", fields["idCard"])
	deps.subs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmissionService_Create_ConditionalNotRequired(t *testing.T) {
	svc, deps := newSubmissionService(t)
	deps.subs.On("Create", mock.Anything, mock.Anything).Return(nil)
	deps.audit.On("Create", mock.Anything, mock.Anything).Return(nil)

	payload := validPayload()
	payload["country"] = "Ghana"
	delete(payload, "stateOfOrigin")

	_, err := svc.Create(context.Background(), "individual-kyc", payload)
	assert.NoError(t, err)
}

func TestSubmissionService_Create_UnknownForm(t *testing.T) {
	svc, _ := newSubmissionService(t)

	_, err := svc.Create(context.Background(), "ghost", validPayload())
	assert.ErrorIs(t, err, domain.ErrUnknownFormType)
}

func TestSubmissionService_Create_StoreFailure(t *testing.T) {
	svc, deps := newSubmissionService(t)
	deps.subs.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := svc.Create(context.Background(), "individual-kyc", validPayload())

	assert.Error(t, err)
	_, invalid := service.IsInvalidSubmission(err)
	assert.False(t, invalid)
	deps.audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func storedSubmission(status domain.SubmissionStatus) *domain.Submission {
	data, _ := json.Marshal(map[string]any{
		"fullName": "Ada Obi",
		"email":    "ada@example.com",
		"country":  "Ghana",
		"idCard":   "https://cdn.example.com/kyc/idCard/1_id.pdf",
	})
	return &domain.Submission{
		ID:             uuid.New(),
		FormType:       "individual-kyc",
		Status:         status,
		Data:           data,
		SubmitterEmail: "ada@example.com",
	}
}

func TestSubmissionService_UpdateStatus(t *testing.T) {
	svc, deps := newSubmissionService(t)
	sub := storedSubmission(domain.StatusProcessing)
	reviewerID := uuid.New()

	deps.subs.On("GetByID", mock.Anything, "individual-kyc", sub.ID).Return(sub, nil)
	deps.subs.On("UpdateStatus", mock.Anything, sub).Return(nil)
	deps.audit.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.SubmissionAuditEntry) bool {
		return e.Action == string(domain.AuditSubmissionStatusChanged) && *e.ReviewerID == reviewerID
	})).Return(nil)
	deps.email.On("SendStatusUpdate", mock.Anything, "ada@example.com", sub, "Documents verified").Return(nil)

	updated, err := svc.UpdateStatus(context.Background(), service.UpdateStatusInput{
		FormType:   "individual-kyc",
		ID:         sub.ID,
		Status:     domain.StatusApproved,
		Comment:    "Documents <i>verified</i>",
		ReviewerID: &reviewerID,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Status)
	assert.NotNil(t, updated.ReviewedAt)
	deps.subs.AssertExpectations(t)
	deps.audit.AssertExpectations(t)
	deps.email.AssertExpectations(t)
}

func TestSubmissionService_UpdateStatus_EmailFailureIsNotFatal(t *testing.T) {
	svc, deps := newSubmissionService(t)
	sub := storedSubmission(domain.StatusProcessing)

	deps.subs.On("GetByID", mock.Anything, "individual-kyc", sub.ID).Return(sub, nil)
	deps.subs.On("UpdateStatus", mock.Anything, sub).Return(nil)
	deps.audit.On("Create", mock.Anything, mock.Anything).Return(nil)
	deps.email.On("SendStatusUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("ses throttled"))

	_, err := svc.UpdateStatus(context.Background(), service.UpdateStatusInput{
		FormType: "individual-kyc", ID: sub.ID, Status: domain.StatusUnderReview,
	})
	assert.NoError(t, err)
}

func TestSubmissionService_UpdateStatus_Rejections(t *testing.T) {
	svc, deps := newSubmissionService(t)
	closed := storedSubmission(domain.StatusClosed)
	deps.subs.On("GetByID", mock.Anything, "individual-kyc", closed.ID).Return(closed, nil)

	_, err := svc.UpdateStatus(context.Background(), service.UpdateStatusInput{
		FormType: "individual-kyc", ID: closed.ID, Status: "shipped",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.UpdateStatus(context.Background(), service.UpdateStatusInput{
		FormType: "individual-kyc", ID: closed.ID, Status: domain.StatusApproved,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.UpdateStatus(context.Background(), service.UpdateStatusInput{
		FormType: "ghost", ID: closed.ID, Status: domain.StatusApproved,
	})
	assert.ErrorIs(t, err, domain.ErrUnknownFormType)

	deps.subs.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestSubmissionService_UpdateData(t *testing.T) {
	svc, deps := newSubmissionService(t)
	sub := storedSubmission(domain.StatusUnderReview)

	deps.subs.On("GetByID", mock.Anything, "individual-kyc", sub.ID).Return(sub, nil)
	deps.subs.On("UpdateData", mock.Anything, sub).Return(nil)
	deps.audit.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.SubmissionAuditEntry) bool {
		var diff map[string]map[string]any
		_ = json.Unmarshal(e.Changes, &diff)
		return e.Action == string(domain.AuditSubmissionUpdated) &&
			diff["email"]["from"] == "ada@example.com" && diff["email"]["to"] == "ada.obi@example.com"
	})).Return(nil)

	updated, err := svc.UpdateData(context.Background(), service.UpdateDataInput{
		FormType: "individual-kyc",
		ID:       sub.ID,
		Changes:  map[string]any{"email": "ada.obi@example.com", "unknown": 1},
	})

	require.NoError(t, err)
	assert.Equal(t, "ada.obi@example.com", updated.SubmitterEmail)
	assert.Equal(t, "ada.obi@example.com", updated.Fields()["email"])
	deps.audit.AssertExpectations(t)
}

func TestSubmissionService_UpdateData_Invalid(t *testing.T) {
	svc, deps := newSubmissionService(t)
	sub := storedSubmission(domain.StatusUnderReview)
	deps.subs.On("GetByID", mock.Anything, "individual-kyc", sub.ID).Return(sub, nil)

	_, err := svc.UpdateData(context.Background(), service.UpdateDataInput{
		FormType: "individual-kyc", ID: sub.ID, Changes: map[string]any{"country": "Nigeria"},
	})

	fields, ok := service.IsInvalidSubmission(err)
	require.True(t, ok)
	assert.Contains(t, fields, "stateOfOrigin")
	deps.subs.AssertNotCalled(t, "UpdateData", mock.Anything, mock.Anything)
}

func TestSubmissionService_ListAudit_NotFound(t *testing.T) {
	svc, deps := newSubmissionService(t)
	id := uuid.New()
	deps.subs.On("GetByID", mock.Anything, "individual-kyc", id).Return(nil, domain.ErrNotFound)

	_, _, err := svc.ListAudit(context.Background(), "individual-kyc", id, 0, 20)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmissionService_List_Filters(t *testing.T) {
	svc, deps := newSubmissionService(t)

	_, _, err := svc.List(context.Background(), domain.SubmissionFilter{Status: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, _, err = svc.List(context.Background(), domain.SubmissionFilter{FormType: "ghost"})
	assert.ErrorIs(t, err, domain.ErrUnknownFormType)

	filter := domain.SubmissionFilter{FormType: "individual-kyc", Limit: 10}
	deps.subs.On("List", mock.Anything, filter).Return([]domain.Submission{}, 0, nil)
	_, total, err := svc.List(context.Background(), filter)
	assert.NoError(t, err)
	assert.Zero(t, total)
}

func TestSubmissionService_ExportCSV(t *testing.T) {
	svc, deps := newSubmissionService(t)
	deps.subs.On("ListAll", mock.Anything, "individual-kyc").
		Return([]domain.Submission{*storedSubmission(domain.StatusProcessing)}, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), "individual-kyc", &buf))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, csvexport.BOM))
	assert.Contains(t, string(out), "Full Name")
	assert.Contains(t, string(out), "Ada Obi")
}

func TestSubmissionService_ExportXLSX(t *testing.T) {
	svc, deps := newSubmissionService(t)
	deps.subs.On("ListAll", mock.Anything, "individual-kyc").Return([]domain.Submission{}, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportXLSX(context.Background(), nil, &buf))

	// xlsx files are zip archives.
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))
	deps.subs.AssertExpectations(t)
}
