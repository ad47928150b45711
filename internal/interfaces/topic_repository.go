package interfaces

import (
	"context"

	"forum-server/internal/models"
)

// TopicRepository defines persistence for topics. Reads never return soft-deleted rows.
type TopicRepository interface {
	// Create inserts a topic owned by creatorID and returns it with the creator embedded.
	Create(ctx context.Context, querier DBTX, creatorID int64, input models.TopicInput) (*models.TopicData, error)

	// GetOne returns the topic with its creator and post count, or models.ErrTopicNotFound.
	GetOne(ctx context.Context, querier DBTX, id int64) (*models.TopicData, error)

	// GetOneForUpdate returns the topic without the post count and holds a row
	// lock until the transaction behind querier ends.
	GetOneForUpdate(ctx context.Context, querier DBTX, id int64) (*models.TopicData, error)

	// Update writes the given columns. Columns outside the mutable set yield
	// models.ErrKeyImmutable. Returns true iff a row was affected.
	Update(ctx context.Context, querier DBTX, id int64, fields map[string]any) (bool, error)

	// Delete soft-deletes the topic. Returns true iff a row was affected.
	Delete(ctx context.Context, querier DBTX, id int64) (bool, error)

	// GetLatest lists topics newest first.
	GetLatest(ctx context.Context, querier DBTX, limit int) ([]*models.TopicData, error)
}
