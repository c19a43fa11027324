package port

import (
	"context"

	"github.com/google/uuid"

	"formdesk/internal/domain"
)

// ReviewerRepository defines the contract for reviewer persistence.
type ReviewerRepository interface {
	Create(ctx context.Context, reviewer *domain.Reviewer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reviewer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Reviewer, error)
	List(ctx context.Context, offset, limit int) ([]domain.Reviewer, int, error)
	ListActiveEmails(ctx context.Context) ([]string, error)
	Update(ctx context.Context, reviewer *domain.Reviewer) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SubmissionRepository defines the contract for submission persistence.
// formType addresses the collection a submission lives in.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) error
	GetByID(ctx context.Context, formType string, id uuid.UUID) (*domain.Submission, error)
	List(ctx context.Context, filter domain.SubmissionFilter) ([]domain.Submission, int, error)
	ListAll(ctx context.Context, formType string) ([]domain.Submission, error)
	UpdateStatus(ctx context.Context, sub *domain.Submission) error
	UpdateData(ctx context.Context, sub *domain.Submission) error
	Delete(ctx context.Context, formType string, id uuid.UUID) error
	// ClaimUnnotified returns up to limit submissions whose reviewers have not been emailed.
	ClaimUnnotified(ctx context.Context, limit int) ([]domain.Submission, error)
	MarkNotified(ctx context.Context, formType string, id uuid.UUID) error
}

// UploadedFileRepository defines the contract for file metadata persistence.
type UploadedFileRepository interface {
	Create(ctx context.Context, file *domain.UploadedFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadedFile, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus, url string) error
}

// DraftRepository defines the contract for autosaved wizard drafts.
type DraftRepository interface {
	Save(ctx context.Context, draft *domain.Draft) error
	Get(ctx context.Context, key string) (*domain.Draft, error)
	Delete(ctx context.Context, key string) error
}
