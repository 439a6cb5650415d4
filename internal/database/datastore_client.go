package database

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"cloud.google.com/go/datastore"
	"github.com/locvowork/bi_dashboard/internal/domain"
)

// EngagementKind is the Datastore kind holding monthly survey results.
const EngagementKind = "EngagementScore"

// DatastoreClient wraps the cloud datastore client and implements
// domain.EngagementStore.
type DatastoreClient struct {
	client *datastore.Client
}

var _ domain.EngagementStore = (*DatastoreClient)(nil)

// WrapDatastoreClient wraps existing datastore client
func WrapDatastoreClient(client *datastore.Client) *DatastoreClient {
	if client == nil {
		return nil
	}
	return &DatastoreClient{client: client}
}

// engagementKey keys a score by month and department so reseeding overwrites.
func engagementKey(s domain.EngagementScore) *datastore.Key {
	name := s.Month
	if s.Department != "" {
		name += "-" + s.Department
	}
	return datastore.NameKey(EngagementKind, name, nil)
}

// SaveScores upserts engagement scores.
func (dc *DatastoreClient) SaveScores(ctx context.Context, scores []domain.EngagementScore) error {
	if dc == nil || dc.client == nil {
		return fmt.Errorf("datastore client is nil")
	}
	if len(scores) == 0 {
		return nil
	}

	keys := make([]*datastore.Key, len(scores))
	for i := range scores {
		keys[i] = engagementKey(scores[i])
	}
	if _, err := dc.client.PutMulti(ctx, keys, scores); err != nil {
		return fmt.Errorf("failed to save engagement scores: %w", err)
	}
	return nil
}

// ListScores returns the scores of one department, or every score when
// department is empty, ordered by month.
func (dc *DatastoreClient) ListScores(ctx context.Context, department string) ([]domain.EngagementScore, error) {
	if dc == nil || dc.client == nil {
		return nil, fmt.Errorf("datastore client is nil")
	}

	q := datastore.NewQuery(EngagementKind)
	if department != "" {
		q = q.FilterField("Department", "=", department)
	}

	var result []domain.EngagementScore
	if _, err := dc.client.GetAll(ctx, q, &result); err != nil {
		return nil, fmt.Errorf("failed to list engagement scores: %w", err)
	}
	slices.SortStableFunc(result, func(a, b domain.EngagementScore) int {
		return cmp.Compare(a.Month, b.Month)
	})
	return result, nil
}
