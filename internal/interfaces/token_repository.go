package interfaces

import (
	"context"
	"time"
)

// TokenRepository tracks issued access tokens so they can be revoked before expiry.
type TokenRepository interface {
	// SetToken stores the token id for userID until ttl elapses.
	SetToken(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error
	// GetUserIDByTokenID returns models.ErrTokenNotFound for unknown or revoked ids.
	GetUserIDByTokenID(ctx context.Context, tokenID string) (int64, error)
	// DeleteToken revokes a single token id. Returns the number of keys removed.
	DeleteToken(ctx context.Context, tokenID string) (int64, error)
	// DeleteTokensByUserID revokes every token issued to userID. Returns the
	// number of live tokens removed.
	DeleteTokensByUserID(ctx context.Context, userID int64) (int64, error)
}
