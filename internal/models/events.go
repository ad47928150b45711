package models

import "time"

// EventType names a forum lifecycle event.
type EventType string

const (
	EventTopicCreated EventType = "topic.created"
	EventTopicUpdated EventType = "topic.updated"
	EventTopicDeleted EventType = "topic.deleted"
	EventPostCreated  EventType = "post.created"
	EventPostUpdated  EventType = "post.updated"
	EventPostDeleted  EventType = "post.deleted"
	EventUserCreated  EventType = "user.created"
	EventUserUpdated  EventType = "user.updated"
	EventUserDeleted  EventType = "user.deleted"
)

// ForumEvent is published after a mutation has been committed.
type ForumEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	TopicID    int64     `json:"topic_id,omitempty"`
	PostID     int64     `json:"post_id,omitempty"`
	UserID     int64     `json:"user_id,omitempty"`
	ActorID    int64     `json:"actor_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}
