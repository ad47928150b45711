package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"forum-server/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChannel struct {
	failures  int
	published []amqp.Publishing
	keys      []string
	exchanges []string
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("channel closed")
	}
	f.exchanges = append(f.exchanges, exchange)
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func TestRabbitMQEventPublisher_RoutesByEventType(t *testing.T) {
	ch := &fakeChannel{}
	p := newRabbitMQEventPublisher(ch, "forum.events", zap.NewNop())

	event := models.ForumEvent{
		ID:         "evt-1",
		Type:       models.EventPostCreated,
		TopicID:    3,
		PostID:     9,
		OccurredAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishForumEvent(context.Background(), event))

	require.Len(t, ch.published, 1)
	assert.Equal(t, "forum.events", ch.exchanges[0])
	assert.Equal(t, "post.created", ch.keys[0])
	assert.Equal(t, "evt-1", ch.published[0].MessageId)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)

	var decoded models.ForumEvent
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &decoded))
	assert.Equal(t, int64(9), decoded.PostID)
}

func TestRabbitMQEventPublisher_Retries(t *testing.T) {
	ch := &fakeChannel{failures: 2}
	p := newRabbitMQEventPublisher(ch, "forum.events", zap.NewNop())
	require.NoError(t, p.PublishForumEvent(context.Background(), models.ForumEvent{Type: models.EventTopicCreated}))
	assert.Len(t, ch.published, 1)

	ch = &fakeChannel{failures: publishAttempts}
	p = newRabbitMQEventPublisher(ch, "forum.events", zap.NewNop())
	assert.Error(t, p.PublishForumEvent(context.Background(), models.ForumEvent{Type: models.EventTopicCreated}))
}

type recordingPublisher struct {
	events []models.ForumEvent
	err    error
}

func (r *recordingPublisher) PublishForumEvent(_ context.Context, e models.ForumEvent) error {
	r.events = append(r.events, e)
	return r.err
}

func TestFanoutPublisher(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("down")}
	f := NewFanoutPublisher(ok, nil, failing, NoopPublisher{})

	err := f.PublishForumEvent(context.Background(), models.ForumEvent{Type: models.EventUserCreated})
	assert.ErrorContains(t, err, "down")
	assert.Len(t, ok.events, 1)
	assert.Len(t, failing.events, 1)
}
