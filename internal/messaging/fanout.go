package messaging

import (
	"context"
	"errors"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"
)

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishForumEvent(context.Context, models.ForumEvent) error { return nil }

// FanoutPublisher delivers each event to every publisher and joins their errors.
type FanoutPublisher struct {
	publishers []interfaces.ForumEventPublisher
}

// NewFanoutPublisher skips nil publishers.
func NewFanoutPublisher(publishers ...interfaces.ForumEventPublisher) *FanoutPublisher {
	f := &FanoutPublisher{}
	for _, p := range publishers {
		if p != nil {
			f.publishers = append(f.publishers, p)
		}
	}
	return f
}

func (f *FanoutPublisher) PublishForumEvent(ctx context.Context, event models.ForumEvent) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.PublishForumEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
