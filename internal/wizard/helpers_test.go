package wizard_test

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"formdesk/internal/domain"
	"formdesk/internal/form"
	"formdesk/internal/port"
)

func kycDefinition() *form.Definition {
	schema := form.NewSchema(
		form.FieldRule{Key: "fullName", Label: "Full Name", Type: form.FieldText, Required: true, MaxLength: 50},
		form.FieldRule{Key: "country", Label: "Country", Type: form.FieldEnum, Required: true, Options: []string{"Nigeria", "Kenya"}},
		form.FieldRule{
			Key: "stateOfOrigin", Label: "State of Origin", Type: form.FieldText,
			DependsOn: &form.Condition{Field: "country", Equals: "Nigeria", ThenRequired: true},
		},
		form.FieldRule{Key: "email", Label: "Email", Type: form.FieldEmail, Required: true},
		form.FieldRule{Key: "idCard", Label: "ID Card", Type: form.FieldFile, Required: true},
		form.FieldRule{Key: "proofOfAddress", Label: "Proof of Address", Type: form.FieldFile},
	)
	return &form.Definition{
		Type:     "individual-kyc",
		Category: "kyc",
		Title:    "Individual KYC",
		Schema:   schema,
		Steps: []form.Step{
			{ID: "personal", Title: "Personal", FieldKeys: []string{"fullName", "country"}},
			{ID: "contact", Title: "Contact", FieldKeys: []string{"stateOfOrigin", "email"}},
			{ID: "documents", Title: "Documents", FieldKeys: []string{"idCard", "proofOfAddress"}},
		},
		MaxUploadBytes: 1024,
	}
}

type fakeUploader struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeUploader) Upload(_ context.Context, in port.FileUpload, progress port.ProgressFunc) (*domain.UploadedFile, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if _, ok := domain.AllowedContentTypes[in.ContentType]; !ok {
		return nil, domain.ErrInvalidFileType
	}
	if in.Size > 1024 {
		return nil, domain.ErrFileTooLarge
	}
	progress(50)
	progress(100)
	return &domain.UploadedFile{
		ID:           uuid.New(),
		FormType:     in.FormType,
		FieldKey:     in.FieldKey,
		OriginalName: in.FileName,
		ContentType:  in.ContentType,
		URL:          "https://files.example.com/" + in.FormType + "/" + in.FieldKey + "/" + in.FileName,
		Status:       domain.FileStatusUploaded,
	}, nil
}

type recordingSubmitter struct {
	mu       sync.Mutex
	payloads []map[string]any
	err      error
	started  chan struct{}
	release  chan struct{}
}

func (r *recordingSubmitter) Create(_ context.Context, formType string, payload map[string]any) (*domain.Submission, error) {
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.release != nil {
		<-r.release
	}
	r.mu.Lock()
	r.payloads = append(r.payloads, payload)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return &domain.Submission{ID: uuid.New(), FormType: formType, Status: domain.StatusProcessing}, nil
}

func (r *recordingSubmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

// blockingSubmitter never answers; it returns once the caller gives up.
type blockingSubmitter struct {
	calls atomic.Int32
}

func (b *blockingSubmitter) Create(ctx context.Context, _ string, _ map[string]any) (*domain.Submission, error) {
	b.calls.Add(1)
	<-ctx.Done()
	return nil, ctx.Err()
}

func pdfUpload(name string) port.FileUpload {
	body := []byte("%PDF-1.4 test document")
	return port.FileUpload{
		FileName:    name,
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	}
}
