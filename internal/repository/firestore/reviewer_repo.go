package firestore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"formdesk/internal/domain"
	"formdesk/internal/port"
)

const reviewersCollection = "reviewers"

type reviewerRepo struct {
	provider *Provider
}

// NewReviewerRepo creates a Firestore-backed ReviewerRepository.
func NewReviewerRepo(provider *Provider) port.ReviewerRepository {
	return &reviewerRepo{provider: provider}
}

func (r *reviewerRepo) coll(ctx context.Context) (*firestore.CollectionRef, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(reviewersCollection), nil
}

func (r *reviewerRepo) Create(ctx context.Context, reviewer *domain.Reviewer) error {
	if _, err := r.GetByEmail(ctx, reviewer.Email); err == nil {
		return domain.ErrDuplicateEmail
	}
	reviewer.ID = uuid.New()
	now := time.Now().UTC()
	reviewer.CreatedAt = now
	reviewer.UpdatedAt = now

	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	if _, err := coll.Doc(reviewer.ID.String()).Create(ctx, toReviewerRecord(reviewer)); err != nil {
		if isAlreadyExists(err) {
			return domain.ErrDuplicateEmail
		}
		return wrapError("firestore.reviewerRepo.Create", err)
	}
	return nil
}

func (r *reviewerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reviewer, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := coll.Doc(id.String()).Get(ctx)
	if err != nil {
		return nil, wrapError("firestore.reviewerRepo.GetByID", err)
	}
	return decodeReviewer(snap)
}

func decodeReviewer(snap *firestore.DocumentSnapshot) (*domain.Reviewer, error) {
	var rec reviewerRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("firestore: decode reviewer %s: %w", snap.Ref.ID, err)
	}
	reviewer, err := fromReviewerRecord(snap.Ref.ID, rec)
	if err != nil {
		return nil, err
	}
	return &reviewer, nil
}

func (r *reviewerRepo) GetByEmail(ctx context.Context, email string) (*domain.Reviewer, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var found *domain.Reviewer
	q := coll.Where("emailLower", "==", strings.ToLower(email)).Limit(1)
	err = each(ctx, "firestore.reviewerRepo.GetByEmail", q, func(snap *firestore.DocumentSnapshot) error {
		rv, err := decodeReviewer(snap)
		found = rv
		return err
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

func (r *reviewerRepo) all(ctx context.Context, q firestore.Query) ([]domain.Reviewer, error) {
	var out []domain.Reviewer
	err := each(ctx, "firestore.reviewerRepo.list", q, func(snap *firestore.DocumentSnapshot) error {
		rv, err := decodeReviewer(snap)
		if err != nil {
			return err
		}
		out = append(out, *rv)
		return nil
	})
	return out, err
}

func (r *reviewerRepo) List(ctx context.Context, offset, limit int) ([]domain.Reviewer, int, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, 0, err
	}
	reviewers, err := r.all(ctx, coll.Query)
	if err != nil {
		return nil, 0, err
	}
	sort.SliceStable(reviewers, func(i, j int) bool {
		return reviewers[i].CreatedAt.After(reviewers[j].CreatedAt)
	})
	total := len(reviewers)
	start := min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(start+limit, total)
	}
	return reviewers[start:end], total, nil
}

func (r *reviewerRepo) ListActiveEmails(ctx context.Context) ([]string, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	reviewers, err := r.all(ctx, coll.Where("isActive", "==", true))
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(reviewers))
	for _, rv := range reviewers {
		emails = append(emails, rv.Email)
	}
	sort.Strings(emails)
	return emails, nil
}

func (r *reviewerRepo) Update(ctx context.Context, reviewer *domain.Reviewer) error {
	if other, err := r.GetByEmail(ctx, reviewer.Email); err == nil && other.ID != reviewer.ID {
		return domain.ErrDuplicateEmail
	}
	reviewer.UpdatedAt = time.Now().UTC()
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	rec := toReviewerRecord(reviewer)
	_, err = coll.Doc(reviewer.ID.String()).Update(ctx, []firestore.Update{
		{Path: "email", Value: rec.Email},
		{Path: "emailLower", Value: rec.EmailLower},
		{Path: "fullName", Value: rec.FullName},
		{Path: "role", Value: rec.Role},
		{Path: "isActive", Value: rec.IsActive},
		{Path: "passwordHash", Value: rec.PasswordHash},
		{Path: "updatedAt", Value: rec.UpdatedAt},
	})
	if err != nil {
		return wrapError("firestore.reviewerRepo.Update", err)
	}
	return nil
}

func (r *reviewerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	if _, err := coll.Doc(id.String()).Delete(ctx, firestore.Exists); err != nil {
		return wrapError("firestore.reviewerRepo.Delete", err)
	}
	return nil
}
