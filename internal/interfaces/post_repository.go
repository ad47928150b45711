package interfaces

import (
	"context"

	"forum-server/internal/models"
)

// PostPageSize is the fixed number of posts in one topic page.
const PostPageSize = 10

// PostRepository defines persistence for posts. Reads never return soft-deleted rows.
type PostRepository interface {
	Create(ctx context.Context, querier DBTX, authorID int64, input models.PostInput) (*models.PostData, error)
	GetOne(ctx context.Context, querier DBTX, id int64) (*models.PostData, error)
	// GetOneForUpdate is GetOne holding a row lock until the transaction ends.
	GetOneForUpdate(ctx context.Context, querier DBTX, id int64) (*models.PostData, error)
	Update(ctx context.Context, querier DBTX, id int64, fields map[string]any) (bool, error)
	Delete(ctx context.Context, querier DBTX, id int64) (bool, error)

	// GetPageForTopic returns page (zero-based) of the topic's posts, oldest
	// first, PostPageSize per page, each with its author embedded.
	GetPageForTopic(ctx context.Context, querier DBTX, topicID int64, page int) ([]*models.PostData, error)
}
