package firestore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"

	"formdesk/internal/domain"
	"formdesk/internal/port"
)

type statsRepo struct {
	provider  *Provider
	formTypes []string
}

// NewStatsRepo creates a Firestore-backed StatsRepository over formTypes.
func NewStatsRepo(provider *Provider, formTypes []string) port.StatsRepository {
	return &statsRepo{provider: provider, formTypes: append([]string(nil), formTypes...)}
}

// CountByFormTypeAndStatus reads only the status field of each submission.
func (r *statsRepo) CountByFormTypeAndStatus(ctx context.Context) ([]domain.StatusCount, error) {
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}

	var out []domain.StatusCount
	for _, ft := range r.formTypes {
		counts := map[string]int{}
		q := client.Collection(ft).Select("status")
		err := each(ctx, "firestore.statsRepo.CountByFormTypeAndStatus", q, func(snap *firestore.DocumentSnapshot) error {
			status, _ := snap.Data()["status"].(string)
			counts[status]++
			return nil
		})
		if err != nil {
			return nil, err
		}
		statuses := make([]string, 0, len(counts))
		for s := range counts {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)
		for _, s := range statuses {
			out = append(out, domain.StatusCount{FormType: ft, Status: domain.SubmissionStatus(s), Count: counts[s]})
		}
	}
	return out, nil
}
