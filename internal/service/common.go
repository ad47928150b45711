package service

import (
	"context"
	"time"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultLatestTopicsLimit = 10
	maxLatestTopicsLimit     = 50
)

// normalizeLatestLimit applies the default and the upper bound to a listing size.
func normalizeLatestLimit(limit int) int {
	if limit <= 0 {
		return defaultLatestTopicsLimit
	}
	if limit > maxLatestTopicsLimit {
		return maxLatestTopicsLimit
	}
	return limit
}

// publishEvent stamps and sends an event after commit. Failures are logged only.
func publishEvent(ctx context.Context, publisher interfaces.ForumEventPublisher, logger *zap.Logger, event models.ForumEvent) {
	if publisher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.OccurredAt = time.Now().UTC()

	if err := publisher.PublishForumEvent(ctx, event); err != nil {
		logger.Error("Failed to publish forum event",
			zap.String("eventID", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err),
		)
	}
}
