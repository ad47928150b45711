package interfaces

import (
	"context"

	"forum-server/internal/models"
)

// UserRepository defines persistence for users. Reads never return soft-deleted rows.
type UserRepository interface {
	// Create inserts a user with the default role. Duplicate usernames yield models.ErrUserAlreadyExists.
	Create(ctx context.Context, querier DBTX, username string) (*models.UserData, error)
	GetOne(ctx context.Context, querier DBTX, id int64) (*models.UserData, error)
	// GetOneForUpdate is GetOne holding a row lock until the transaction ends.
	GetOneForUpdate(ctx context.Context, querier DBTX, id int64) (*models.UserData, error)
	GetByUsername(ctx context.Context, querier DBTX, username string) (*models.UserData, error)
	Update(ctx context.Context, querier DBTX, id int64, fields map[string]any) (bool, error)
	Delete(ctx context.Context, querier DBTX, id int64) (bool, error)
}
