package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"formdesk/internal/config"
	"formdesk/internal/domain"
	"formdesk/internal/form"
	"formdesk/internal/form/catalog"
	"formdesk/internal/port"
	"formdesk/internal/storage"
)

// sniffLen is the number of bytes http.DetectContentType looks at.
const sniffLen = 512

// defaultLinkExpiry applies when storage.presign_expiry is unset.
const defaultLinkExpiry int64 = 900

// FileLink is a time-limited download URL for a stored upload.
type FileLink struct {
	URL         string    `json:"url"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// UploadService stores files attached to form fields.
type UploadService interface {
	Upload(ctx context.Context, in port.FileUpload, progress port.ProgressFunc) (*domain.UploadedFile, error)
	DownloadLink(ctx context.Context, id uuid.UUID) (*FileLink, error)
}

type uploadService struct {
	fileRepo port.UploadedFileRepository
	storage  port.ObjectStorage
	catalog  *catalog.Catalog
	cfg      *config.StorageConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewUploadService creates a new UploadService implementation.
func NewUploadService(
	fileRepo port.UploadedFileRepository,
	storage port.ObjectStorage,
	cat *catalog.Catalog,
	cfg *config.StorageConfig,
	logger *zap.Logger,
) UploadService {
	return &uploadService{
		fileRepo: fileRepo,
		storage:  storage,
		catalog:  cat,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *uploadService) Upload(ctx context.Context, in port.FileUpload, progress port.ProgressFunc) (*domain.UploadedFile, error) {
	if s.cfg.Bucket == "" {
		return nil, fmt.Errorf("uploadService.Upload: %w: storage bucket", domain.ErrMissingConfig)
	}
	def, err := s.catalog.Get(in.FormType)
	if err != nil {
		return nil, err
	}
	if rule, ok := def.Schema.Rule(in.FieldKey); !ok || rule.Type != form.FieldFile {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotUploadField, in.FieldKey)
	}
	if in.Body == nil {
		return nil, domain.ErrInvalidFileType
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(in.FileName), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrInvalidFileType
	}

	size, err := in.Body.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("measuring file: %w", err)
	}
	limit := def.MaxUploadBytes
	if limit <= 0 {
		limit = s.cfg.MaxUploadBytes()
	}
	if limit > 0 && size > limit {
		return nil, domain.ErrFileTooLarge
	}
	if _, err := in.Body.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	// Read first 512 bytes for magic-byte content type detection
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Body, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	detected := http.DetectContentType(buf[:n])
	if domain.AllowedContentTypes[detected] != fileType {
		return nil, domain.ErrInvalidFileType
	}
	if _, err := in.Body.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	contentType := domain.AllowedFileTypes[fileType]
	key := storage.ObjectKey(def.Category, in.FieldKey, in.FileName, s.now())
	meta := &domain.UploadedFile{
		ID:           uuid.New(),
		FormType:     def.Type,
		FieldKey:     in.FieldKey,
		OriginalName: in.FileName,
		FileType:     fileType,
		FileSize:     size,
		Bucket:       s.cfg.Bucket,
		StorageKey:   key,
		ContentType:  contentType,
		Status:       domain.FileStatusPending,
	}

	log := s.logger.With(
		zap.String("file_id", meta.ID.String()),
		zap.String("form_type", meta.FormType),
		zap.String("field", meta.FieldKey),
	)
	log.Info("uploading file", zap.String("name", in.FileName), zap.String("content_type", contentType), zap.Int64("size", size))

	if err := s.fileRepo.Create(ctx, meta); err != nil {
		log.Error("failed to create file metadata", zap.Error(err))
		return nil, fmt.Errorf("creating file metadata: %w", err)
	}

	report(progress, 0)
	out, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        newProgressReader(in.Body, size, progress),
		ContentType: contentType,
		Size:        size,
	})
	if err != nil {
		log.Error("storage upload failed", zap.Error(err))
		// ctx may already be done; the failed mark must still land.
		markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = s.fileRepo.UpdateStatus(markCtx, meta.ID, domain.FileStatusFailed, "")
		return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	meta.URL = out.Location
	if err := s.fileRepo.UpdateStatus(ctx, meta.ID, domain.FileStatusUploaded, meta.URL); err != nil {
		log.Error("failed to mark file uploaded, removing object", zap.Error(err))
		s.discard(ctx, meta, log)
		return nil, fmt.Errorf("updating file status: %w", err)
	}
	meta.Status = domain.FileStatusUploaded
	report(progress, 100)

	log.Info("file uploaded", zap.String("url", meta.URL))
	return meta, nil
}

// discard removes an object whose metadata could not be confirmed and marks
// the row failed. ctx may already be done, so both run detached.
func (s *uploadService) discard(ctx context.Context, meta *domain.UploadedFile, log *zap.Logger) {
	cleanCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.storage.Delete(cleanCtx, meta.Bucket, meta.StorageKey); err != nil {
		log.Warn("orphaned object left in storage", zap.String("key", meta.StorageKey), zap.Error(err))
	}
	_ = s.fileRepo.UpdateStatus(cleanCtx, meta.ID, domain.FileStatusFailed, "")
}

func (s *uploadService) DownloadLink(ctx context.Context, id uuid.UUID) (*FileLink, error) {
	file, err := s.fileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if file.Status != domain.FileStatusUploaded {
		return nil, fmt.Errorf("%w: file %s is %s", domain.ErrNotFound, id, file.Status)
	}

	expiry := s.cfg.PresignExpiry
	if expiry <= 0 {
		expiry = defaultLinkExpiry
	}
	url, err := s.storage.GetPresignedURL(ctx, file.Bucket, file.StorageKey, expiry)
	if err != nil {
		return nil, fmt.Errorf("uploadService.DownloadLink: %w", err)
	}
	return &FileLink{
		URL:         url,
		Name:        file.OriginalName,
		ContentType: file.ContentType,
		ExpiresAt:   s.now().Add(time.Duration(expiry) * time.Second).UTC(),
	}, nil
}

func report(fn port.ProgressFunc, pct int) {
	if fn != nil {
		fn(pct)
	}
}

// progressReader reports whole-percent progress as the body is consumed.
// 100 is left to the caller so it only fires once the store has confirmed.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	last  int
	fn    port.ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn port.ProgressFunc) io.Reader {
	if fn == nil || total <= 0 {
		return r
	}
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	pct := int(p.read * 100 / p.total)
	if pct > 99 {
		pct = 99
	}
	if pct > p.last {
		p.last = pct
		p.fn(pct)
	}
	return n, err
}
