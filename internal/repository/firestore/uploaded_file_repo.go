package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"formdesk/internal/domain"
	"formdesk/internal/port"
)

const uploadsCollection = "uploaded_files"

type uploadedFileRecord struct {
	FormType     string    `firestore:"formType"`
	FieldKey     string    `firestore:"fieldKey"`
	OriginalName string    `firestore:"originalName"`
	FileType     string    `firestore:"fileType"`
	FileSize     int64     `firestore:"fileSize"`
	Bucket       string    `firestore:"bucket"`
	StorageKey   string    `firestore:"storageKey"`
	URL          string    `firestore:"url"`
	ContentType  string    `firestore:"contentType"`
	Status       string    `firestore:"status"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

type uploadedFileRepo struct {
	provider *Provider
}

// NewUploadedFileRepo creates a Firestore-backed UploadedFileRepository.
func NewUploadedFileRepo(provider *Provider) port.UploadedFileRepository {
	return &uploadedFileRepo{provider: provider}
}

func (r *uploadedFileRepo) doc(ctx context.Context, id uuid.UUID) (*firestore.DocumentRef, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(uploadsCollection).Doc(id.String()), nil
}

func (r *uploadedFileRepo) Create(ctx context.Context, file *domain.UploadedFile) error {
	now := time.Now().UTC()
	file.CreatedAt = now
	file.UpdatedAt = now
	ref, err := r.doc(ctx, file.ID)
	if err != nil {
		return err
	}
	_, err = ref.Create(ctx, uploadedFileRecord{
		FormType:     file.FormType,
		FieldKey:     file.FieldKey,
		OriginalName: file.OriginalName,
		FileType:     string(file.FileType),
		FileSize:     file.FileSize,
		Bucket:       file.Bucket,
		StorageKey:   file.StorageKey,
		URL:          file.URL,
		ContentType:  file.ContentType,
		Status:       string(file.Status),
		CreatedAt:    file.CreatedAt,
		UpdatedAt:    file.UpdatedAt,
	})
	if err != nil {
		return wrapError("firestore.uploadedFileRepo.Create", err)
	}
	return nil
}

func (r *uploadedFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadedFile, error) {
	ref, err := r.doc(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return nil, wrapError("firestore.uploadedFileRepo.GetByID", err)
	}
	var rec uploadedFileRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("firestore.uploadedFileRepo.GetByID decode: %w", err)
	}
	return &domain.UploadedFile{
		ID:           id,
		FormType:     rec.FormType,
		FieldKey:     rec.FieldKey,
		OriginalName: rec.OriginalName,
		FileType:     domain.FileType(rec.FileType),
		FileSize:     rec.FileSize,
		Bucket:       rec.Bucket,
		StorageKey:   rec.StorageKey,
		URL:          rec.URL,
		ContentType:  rec.ContentType,
		Status:       domain.FileStatus(rec.Status),
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}, nil
}

func (r *uploadedFileRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus, url string) error {
	ref, err := r.doc(ctx, id)
	if err != nil {
		return err
	}
	_, err = ref.Update(ctx, []firestore.Update{
		{Path: "status", Value: string(status)},
		{Path: "url", Value: url},
		{Path: "updatedAt", Value: time.Now().UTC()},
	})
	if err != nil {
		return wrapError("firestore.uploadedFileRepo.UpdateStatus", err)
	}
	return nil
}
