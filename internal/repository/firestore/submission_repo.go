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

type submissionRepo struct {
	provider  *Provider
	formTypes []string
}

// NewSubmissionRepo creates a Firestore-backed SubmissionRepository. formTypes
// names the collections scanned by cross-form listings.
func NewSubmissionRepo(provider *Provider, formTypes []string) port.SubmissionRepository {
	return &submissionRepo{provider: provider, formTypes: append([]string(nil), formTypes...)}
}

func (r *submissionRepo) collection(ctx context.Context, formType string) (*firestore.CollectionRef, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(formType), nil
}

func (r *submissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	now := time.Now().UTC()
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	sub.CreatedAt = now
	sub.UpdatedAt = now

	rec, err := toSubmissionRecord(sub)
	if err != nil {
		return fmt.Errorf("firestore.submissionRepo.Create: %w", err)
	}
	coll, err := r.collection(ctx, sub.FormType)
	if err != nil {
		return err
	}
	if _, err := coll.Doc(sub.ID.String()).Create(ctx, rec); err != nil {
		return wrapError("firestore.submissionRepo.Create", err)
	}
	return nil
}

func (r *submissionRepo) GetByID(ctx context.Context, formType string, id uuid.UUID) (*domain.Submission, error) {
	coll, err := r.collection(ctx, formType)
	if err != nil {
		return nil, err
	}
	snap, err := coll.Doc(id.String()).Get(ctx)
	if err != nil {
		return nil, wrapError("firestore.submissionRepo.GetByID", err)
	}
	sub, err := decodeSubmission(snap)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func decodeSubmission(snap *firestore.DocumentSnapshot) (domain.Submission, error) {
	var rec submissionRecord
	if err := snap.DataTo(&rec); err != nil {
		return domain.Submission{}, fmt.Errorf("firestore: decode %s: %w", snap.Ref.ID, err)
	}
	if rec.FormType == "" {
		rec.FormType = snap.Ref.Parent.ID
	}
	return fromSubmissionRecord(snap.Ref.ID, rec)
}

func (r *submissionRepo) scan(ctx context.Context, formType string, build func(firestore.Query) firestore.Query) ([]domain.Submission, error) {
	coll, err := r.collection(ctx, formType)
	if err != nil {
		return nil, err
	}
	q := coll.Query
	if build != nil {
		q = build(q)
	}
	var out []domain.Submission
	err = each(ctx, "firestore.submissionRepo.scan", q, func(snap *firestore.DocumentSnapshot) error {
		sub, err := decodeSubmission(snap)
		if err != nil {
			return err
		}
		out = append(out, sub)
		return nil
	})
	return out, err
}

// List reads the matching collections and orders in memory: newest client
// timestamp first, falling back to creation time, then id.
func (r *submissionRepo) List(ctx context.Context, filter domain.SubmissionFilter) ([]domain.Submission, int, error) {
	types := r.formTypes
	if filter.FormType != "" {
		types = []string{filter.FormType}
	}

	var all []domain.Submission
	for _, ft := range types {
		subs, err := r.scan(ctx, ft, func(q firestore.Query) firestore.Query {
			if filter.Status != "" {
				return q.Where("status", "==", string(filter.Status))
			}
			return q
		})
		if err != nil {
			return nil, 0, err
		}
		all = append(all, subs...)
	}
	sortSubmissions(all)

	total := len(all)
	start := min(max(filter.Offset, 0), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	return all[start:end], total, nil
}

func sortSubmissions(subs []domain.Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		ti, tj := subs[i].SortTime(), subs[j].SortTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return subs[i].ID.String() < subs[j].ID.String()
	})
}

func (r *submissionRepo) ListAll(ctx context.Context, formType string) ([]domain.Submission, error) {
	subs, err := r.scan(ctx, formType, nil)
	if err != nil {
		return nil, err
	}
	sortSubmissions(subs)
	return subs, nil
}

func (r *submissionRepo) update(ctx context.Context, op, formType string, id uuid.UUID, updates []firestore.Update) error {
	coll, err := r.collection(ctx, formType)
	if err != nil {
		return err
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: time.Now().UTC()})
	if _, err := coll.Doc(id.String()).Update(ctx, updates); err != nil {
		return wrapError(op, err)
	}
	return nil
}

func (r *submissionRepo) UpdateStatus(ctx context.Context, sub *domain.Submission) error {
	reviewedBy := ""
	if sub.ReviewedBy != nil {
		reviewedBy = sub.ReviewedBy.String()
	}
	sub.UpdatedAt = time.Now().UTC()
	return r.update(ctx, "firestore.submissionRepo.UpdateStatus", sub.FormType, sub.ID, []firestore.Update{
		{Path: "status", Value: string(sub.Status)},
		{Path: "reviewerComment", Value: sub.ReviewerComment},
		{Path: "reviewedBy", Value: reviewedBy},
		{Path: "reviewedAt", Value: sub.ReviewedAt},
	})
}

func (r *submissionRepo) UpdateData(ctx context.Context, sub *domain.Submission) error {
	data, err := decodeObject(sub.Data)
	if err != nil {
		return fmt.Errorf("firestore.submissionRepo.UpdateData: %w", err)
	}
	sub.UpdatedAt = time.Now().UTC()
	return r.update(ctx, "firestore.submissionRepo.UpdateData", sub.FormType, sub.ID, []firestore.Update{
		{Path: "data", Value: data},
		{Path: "submitterEmail", Value: sub.SubmitterEmail},
	})
}

func (r *submissionRepo) Delete(ctx context.Context, formType string, id uuid.UUID) error {
	coll, err := r.collection(ctx, formType)
	if err != nil {
		return err
	}
	ref := coll.Doc(id.String())
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		return wrapError("firestore.submissionRepo.Delete", err)
	}
	return nil
}

// ClaimUnnotified returns un-notified submissions across all form types.
// Firestore has no row locks, so only one worker should poll a project.
func (r *submissionRepo) ClaimUnnotified(ctx context.Context, limit int) ([]domain.Submission, error) {
	var out []domain.Submission
	for _, ft := range r.formTypes {
		remaining := limit - len(out)
		if remaining <= 0 {
			break
		}
		subs, err := r.scan(ctx, ft, func(q firestore.Query) firestore.Query {
			return q.Where("notified", "==", false).Limit(remaining)
		})
		if err != nil {
			return nil, err
		}
		out = append(out, subs...)
	}
	return out, nil
}

func (r *submissionRepo) MarkNotified(ctx context.Context, formType string, id uuid.UUID) error {
	return r.update(ctx, "firestore.submissionRepo.MarkNotified", formType, id, []firestore.Update{
		{Path: "notified", Value: true},
		{Path: "notifiedAt", Value: time.Now().UTC()},
	})
}
