package service

import (
	"context"
	"testing"

	"forum-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPostServiceForTest() (PostService, *mockPostRepo, *mockTopicRepo, *mockPublisher) {
	posts := new(mockPostRepo)
	topics := new(mockTopicRepo)
	publisher := new(mockPublisher)
	svc := NewPostService(nil, &mockTransactor{}, posts, topics, publisher, zap.NewNop())
	return svc, posts, topics, publisher
}

func samplePost(id int64, author models.UserData) *models.PostData {
	return &models.PostData{PostID: id, TopicID: 10, Body: "hello", Author: author}
}

func TestPostService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, posts, topics, publisher := newPostServiceForTest()
		input := models.PostInput{TopicID: 10, Body: "hello"}
		topics.On("GetOne", ctx, mock.Anything, int64(10)).Return(sampleTopic(10, alice), nil).Once()
		posts.On("Create", ctx, mock.Anything, bob.UserID, input).Return(samplePost(5, bob), nil).Once()
		publisher.On("PublishForumEvent", ctx, mock.MatchedBy(func(e models.ForumEvent) bool {
			return e.Type == models.EventPostCreated && e.TopicID == 10 && e.PostID == 5
		})).Return(nil).Once()

		got, err := svc.Create(ctx, input, bob)
		require.NoError(t, err)
		assert.Equal(t, bob, got.Author)
		publisher.AssertExpectations(t)
	})

	t.Run("unknown topic", func(t *testing.T) {
		svc, posts, topics, _ := newPostServiceForTest()
		topics.On("GetOne", ctx, mock.Anything, int64(10)).Return(nil, models.ErrTopicNotFound).Once()

		_, err := svc.Create(ctx, models.PostInput{TopicID: 10, Body: "hello"}, bob)
		assert.ErrorIs(t, err, models.ErrTopicNotFound)
		posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty body", func(t *testing.T) {
		svc, _, _, _ := newPostServiceForTest()
		_, err := svc.Create(ctx, models.PostInput{TopicID: 10, Body: "  "}, bob)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}

func TestPostService_Update(t *testing.T) {
	ctx := context.Background()
	body := "edited"

	t.Run("author edits body and keeps title", func(t *testing.T) {
		svc, posts, _, publisher := newPostServiceForTest()
		title := "Intro"
		existing := samplePost(5, bob)
		existing.Title = &title
		posts.On("GetOneForUpdate", ctx, mock.Anything, int64(5)).Return(existing, nil).Once()
		posts.On("Update", ctx, mock.Anything, int64(5), map[string]any{"title": &title, "body": "edited"}).Return(true, nil).Once()
		publisher.On("PublishForumEvent", ctx, eventOfType(models.EventPostUpdated)).Return(nil).Once()

		changed, err := svc.Update(ctx, 5, models.PostPatch{Body: &body}, bob)
		require.NoError(t, err)
		assert.True(t, changed)
		posts.AssertExpectations(t)
	})

	t.Run("admin cannot edit another user's post", func(t *testing.T) {
		svc, posts, _, _ := newPostServiceForTest()
		posts.On("GetOneForUpdate", ctx, mock.Anything, int64(5)).Return(samplePost(5, bob), nil).Once()

		changed, err := svc.Update(ctx, 5, models.PostPatch{Body: &body}, root)
		assert.ErrorIs(t, err, models.ErrForbidden)
		assert.False(t, changed)
		posts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		svc, posts, _, _ := newPostServiceForTest()
		empty := ""
		posts.On("GetOneForUpdate", ctx, mock.Anything, int64(5)).Return(samplePost(5, bob), nil).Once()

		_, err := svc.Update(ctx, 5, models.PostPatch{Body: &empty}, bob)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	})
}

func TestPostService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("moderator cannot delete another user's post", func(t *testing.T) {
		svc, posts, _, _ := newPostServiceForTest()
		posts.On("GetOneForUpdate", ctx, mock.Anything, int64(5)).Return(samplePost(5, bob), nil).Once()

		_, err := svc.Delete(ctx, 5, mod)
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("author deletes", func(t *testing.T) {
		svc, posts, _, publisher := newPostServiceForTest()
		posts.On("GetOneForUpdate", ctx, mock.Anything, int64(5)).Return(samplePost(5, bob), nil).Once()
		posts.On("Delete", ctx, mock.Anything, int64(5)).Return(true, nil).Once()
		publisher.On("PublishForumEvent", ctx, eventOfType(models.EventPostDeleted)).Return(nil).Once()

		deleted, err := svc.Delete(ctx, 5, bob)
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("missing post", func(t *testing.T) {
		svc, posts, _, _ := newPostServiceForTest()
		posts.On("GetOneForUpdate", ctx, mock.Anything, int64(5)).Return(nil, models.ErrPostNotFound).Once()

		_, err := svc.Delete(ctx, 5, bob)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestPostService_UpdateClearsTitle(t *testing.T) {
	ctx := context.Background()
	svc, posts, _, publisher := newPostServiceForTest()
	title := "Intro"
	existing := samplePost(5, bob)
	existing.Title = &title
	posts.On("GetOneForUpdate", ctx, mock.Anything, int64(5)).Return(existing, nil).Once()
	posts.On("Update", ctx, mock.Anything, int64(5), map[string]any{"title": (*string)(nil), "body": existing.Body}).Return(true, nil).Once()
	publisher.On("PublishForumEvent", ctx, eventOfType(models.EventPostUpdated)).Return(nil).Once()

	changed, err := svc.Update(ctx, 5, models.PostPatch{Title: models.Null[string]()}, bob)
	require.NoError(t, err)
	assert.True(t, changed)
	posts.AssertExpectations(t)
}
