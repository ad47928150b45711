package interfaces

import (
	"context"

	"forum-server/internal/models"
)

// ForumEventPublisher delivers committed forum events to subscribers.
type ForumEventPublisher interface {
	PublishForumEvent(ctx context.Context, event models.ForumEvent) error
}
