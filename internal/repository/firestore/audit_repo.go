package firestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"formdesk/internal/domain"
	"formdesk/internal/port"
)

const auditCollection = "submission_audit"

type auditRepo struct {
	provider *Provider
}

// NewSubmissionAuditRepo creates a Firestore-backed SubmissionAuditRepository.
func NewSubmissionAuditRepo(provider *Provider) port.SubmissionAuditRepository {
	return &auditRepo{provider: provider}
}

func (r *auditRepo) Create(ctx context.Context, entry *domain.SubmissionAuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	rec, err := toAuditRecord(entry)
	if err != nil {
		return fmt.Errorf("firestore.auditRepo.Create: %w", err)
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	if _, err := client.Collection(auditCollection).Doc(entry.ID.String()).Set(ctx, rec); err != nil {
		return wrapError("firestore.auditRepo.Create", err)
	}
	return nil
}

func (r *auditRepo) ListBySubmission(ctx context.Context, submissionID uuid.UUID, offset, limit int) ([]domain.SubmissionAuditEntry, int, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, 0, err
	}
	q := client.Collection(auditCollection).Where("submissionId", "==", submissionID.String())

	var entries []domain.SubmissionAuditEntry
	err = each(ctx, "firestore.auditRepo.ListBySubmission", q, func(snap *firestore.DocumentSnapshot) error {
		var rec auditRecord
		if err := snap.DataTo(&rec); err != nil {
			return fmt.Errorf("firestore: decode audit %s: %w", snap.Ref.ID, err)
		}
		entry, err := fromAuditRecord(snap.Ref.ID, rec)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	total := len(entries)
	start := min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(start+limit, total)
	}
	return entries[start:end], total, nil
}
