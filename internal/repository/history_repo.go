package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/resteretter/mailcow-monitor/pkg/model"
)

// HistoryRepository persists monitoring output so the latest summary and the
// trend buffer survive restarts. It is optional; the in-memory buffer remains
// the source of truth for queries.
type HistoryRepository struct {
	client *firestore.Client
}

func NewHistoryRepository(client *firestore.Client) *HistoryRepository {
	return &HistoryRepository{client: client}
}

// SaveLatest overwrites the singleton latest-summary document.
func (r *HistoryRepository) SaveLatest(ctx context.Context, s model.Summary) error {
	ref := r.client.Collection("monitor").Doc("latest")
	if _, err := ref.Set(ctx, s); err != nil {
		return fmt.Errorf("save latest summary: %w", err)
	}
	return nil
}

// AppendPoint stores one trend point, keyed by its unix timestamp so repeated
// writes for the same cycle are idempotent.
func (r *HistoryRepository) AppendPoint(ctx context.Context, p model.HistoricalPoint) error {
	ref := r.client.Collection("history").Doc(fmt.Sprintf("%d", p.Timestamp.Unix()))
	if _, err := ref.Set(ctx, p); err != nil {
		return fmt.Errorf("append trend point: %w", err)
	}
	return nil
}

// LoadRecent returns up to limit trend points in insertion order (oldest of
// the window first), for warm-starting the in-memory buffer.
func (r *HistoryRepository) LoadRecent(ctx context.Context, limit int) ([]model.HistoricalPoint, error) {
	iter := r.client.Collection("history").
		OrderBy("timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	var points []model.HistoricalPoint
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load trend points: %w", err)
		}
		var p model.HistoricalPoint
		if err := snap.DataTo(&p); err != nil {
			return nil, fmt.Errorf("decode trend point: %w", err)
		}
		points = append(points, p)
	}

	// Query is newest-first; callers want insertion order.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}
