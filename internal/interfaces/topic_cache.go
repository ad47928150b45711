package interfaces

import (
	"context"

	"forum-server/internal/models"
)

// TopicCache caches the latest-topics listing.
type TopicCache interface {
	// GetLatest returns (nil, false, nil) on a cache miss.
	GetLatest(ctx context.Context, limit int) ([]*models.TopicData, bool, error)
	SetLatest(ctx context.Context, limit int, topics []*models.TopicData) error
	// Invalidate drops every cached listing.
	Invalidate(ctx context.Context) error
}
