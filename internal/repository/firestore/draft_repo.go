package firestore

import (
	"context"
	"fmt"
	"time"

	"formdesk/internal/domain"
	"formdesk/internal/port"
)

const draftsCollection = "drafts"

type draftRepo struct {
	provider *Provider
}

// NewDraftRepo creates a Firestore-backed DraftRepository.
func NewDraftRepo(provider *Provider) port.DraftRepository {
	return &draftRepo{provider: provider}
}

func (r *draftRepo) Save(ctx context.Context, draft *domain.Draft) error {
	draft.UpdatedAt = time.Now().UTC()
	rec, err := toDraftRecord(draft)
	if err != nil {
		return fmt.Errorf("firestore.draftRepo.Save: %w", err)
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	if _, err := client.Collection(draftsCollection).Doc(docID(draft.Key)).Set(ctx, rec); err != nil {
		return wrapError("firestore.draftRepo.Save", err)
	}
	return nil
}

func (r *draftRepo) Get(ctx context.Context, key string) (*domain.Draft, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := client.Collection(draftsCollection).Doc(docID(key)).Get(ctx)
	if err != nil {
		return nil, wrapError("firestore.draftRepo.Get", err)
	}
	var rec draftRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("firestore.draftRepo.Get decode: %w", err)
	}
	draft, err := fromDraftRecord(key, rec)
	if err != nil {
		return nil, fmt.Errorf("firestore.draftRepo.Get: %w", err)
	}
	return &draft, nil
}

func (r *draftRepo) Delete(ctx context.Context, key string) error {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return err
	}
	if _, err := client.Collection(draftsCollection).Doc(docID(key)).Delete(ctx); err != nil {
		return wrapError("firestore.draftRepo.Delete", err)
	}
	return nil
}
