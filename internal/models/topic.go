package models

import (
	"context"
	"strings"
	"time"
)

// TopicData is a topic row with its creator embedded under created_by.
type TopicData struct {
	TopicID    int64      `json:"topic_id"`
	Title      string     `json:"title"`
	Category   int64      `json:"category"`
	Created    time.Time  `json:"created"`
	LastEdited *time.Time `json:"last_edited"`
	Deleted    *time.Time `json:"deleted"`
	Disabled   bool       `json:"disabled"`
	// NoOfPosts is only populated by single topic reads.
	NoOfPosts *int64   `json:"no_of_posts,omitempty"`
	CreatedBy UserData `json:"created_by"`
}

// TopicInput is the payload for creating a topic.
type TopicInput struct {
	Title    string `json:"title"`
	Category int64  `json:"category"`
}

// TopicPatch carries the topic fields an editor may change.
type TopicPatch struct {
	Title *string `json:"title"`
}

// TopicChanges is the merged set of mutable topic columns to persist.
type TopicChanges struct {
	Title string `json:"title"`
}

// Columns maps the changes onto topics table columns.
func (c TopicChanges) Columns() map[string]any {
	return map[string]any{"title": c.Title}
}

// TopicWithPosts is one page of a topic's posts together with the topic.
type TopicWithPosts struct {
	Topic *TopicData  `json:"topic"`
	Posts []*PostData `json:"posts"`
}

// TopicFetcher loads a non-deleted topic row by id.
type TopicFetcher func(ctx context.Context, id int64) (*TopicData, error)

// Topic is the topic entity.
type Topic struct {
	data      TopicData
	createdBy *User
}

// NewTopic builds a topic. A nil createdBy is rebuilt from data.CreatedBy
// with an empty permission.
func NewTopic(data TopicData, createdBy *User) *Topic {
	if createdBy == nil {
		createdBy = NewUser(data.CreatedBy)
	}
	return &Topic{data: data, createdBy: createdBy}
}

// TopicFromDB loads a topic by id and hydrates its creator with resolved permission.
func TopicFromDB(ctx context.Context, id int64, fetch TopicFetcher) (*Topic, error) {
	data, err := fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrTopicNotFound
	}
	return NewTopic(*data, UserFromIdentity(data.CreatedBy)), nil
}

func (t *Topic) ID() int64        { return t.data.TopicID }
func (t *Topic) Title() string    { return t.data.Title }
func (t *Topic) CreatedBy() *User { return t.createdBy }

// EditorHasPermission checks ownership first, then the editor's topic capabilities.
func (t *Topic) EditorHasPermission(editor *User, action Action) bool {
	if editor == nil {
		return false
	}
	switch action {
	case ActionUpdate:
		return editor.ID() == t.createdBy.ID() || editor.permission.EditTopic
	case ActionDelete:
		return editor.ID() == t.createdBy.ID() || editor.permission.DeleteTopic
	}
	return false
}

// Update merges patch into the topic after the authorization check and
// returns the mutable columns to persist. On error the topic is unchanged.
func (t *Topic) Update(patch TopicPatch, editor *User) (TopicChanges, error) {
	if !t.EditorHasPermission(editor, ActionUpdate) {
		return TopicChanges{}, ErrForbidden
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return TopicChanges{}, InvalidInputf("title cannot be empty")
		}
		if err := ValidateTitle(title); err != nil {
			return TopicChanges{}, err
		}
		t.data.Title = title
	}
	return TopicChanges{Title: t.data.Title}, nil
}

// ToData returns the serializable view with the creator converted by its own ToData.
func (t *Topic) ToData() TopicData {
	data := t.data
	data.CreatedBy = t.createdBy.ToData()
	return data
}
