package service

import (
	"context"
	"time"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// mockTransactor runs fn directly with a nil querier and records the outcome.
type mockTransactor struct {
	calls int
}

func (m *mockTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.DBTX) error) error {
	m.calls++
	return fn(ctx, nil)
}

type mockTopicRepo struct{ mock.Mock }

func (m *mockTopicRepo) Create(ctx context.Context, q interfaces.DBTX, creatorID int64, input models.TopicInput) (*models.TopicData, error) {
	args := m.Called(ctx, q, creatorID, input)
	topic, _ := args.Get(0).(*models.TopicData)
	return topic, args.Error(1)
}

func (m *mockTopicRepo) GetOne(ctx context.Context, q interfaces.DBTX, id int64) (*models.TopicData, error) {
	args := m.Called(ctx, q, id)
	topic, _ := args.Get(0).(*models.TopicData)
	return topic, args.Error(1)
}

func (m *mockTopicRepo) GetOneForUpdate(ctx context.Context, q interfaces.DBTX, id int64) (*models.TopicData, error) {
	args := m.Called(ctx, q, id)
	topic, _ := args.Get(0).(*models.TopicData)
	return topic, args.Error(1)
}

func (m *mockTopicRepo) Update(ctx context.Context, q interfaces.DBTX, id int64, fields map[string]any) (bool, error) {
	args := m.Called(ctx, q, id, fields)
	return args.Bool(0), args.Error(1)
}

func (m *mockTopicRepo) Delete(ctx context.Context, q interfaces.DBTX, id int64) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockTopicRepo) GetLatest(ctx context.Context, q interfaces.DBTX, limit int) ([]*models.TopicData, error) {
	args := m.Called(ctx, q, limit)
	topics, _ := args.Get(0).([]*models.TopicData)
	return topics, args.Error(1)
}

type mockPostRepo struct{ mock.Mock }

func (m *mockPostRepo) Create(ctx context.Context, q interfaces.DBTX, authorID int64, input models.PostInput) (*models.PostData, error) {
	args := m.Called(ctx, q, authorID, input)
	post, _ := args.Get(0).(*models.PostData)
	return post, args.Error(1)
}

func (m *mockPostRepo) GetOne(ctx context.Context, q interfaces.DBTX, id int64) (*models.PostData, error) {
	args := m.Called(ctx, q, id)
	post, _ := args.Get(0).(*models.PostData)
	return post, args.Error(1)
}

func (m *mockPostRepo) GetOneForUpdate(ctx context.Context, q interfaces.DBTX, id int64) (*models.PostData, error) {
	args := m.Called(ctx, q, id)
	post, _ := args.Get(0).(*models.PostData)
	return post, args.Error(1)
}

func (m *mockPostRepo) Update(ctx context.Context, q interfaces.DBTX, id int64, fields map[string]any) (bool, error) {
	args := m.Called(ctx, q, id, fields)
	return args.Bool(0), args.Error(1)
}

func (m *mockPostRepo) Delete(ctx context.Context, q interfaces.DBTX, id int64) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockPostRepo) GetPageForTopic(ctx context.Context, q interfaces.DBTX, topicID int64, page int) ([]*models.PostData, error) {
	args := m.Called(ctx, q, topicID, page)
	posts, _ := args.Get(0).([]*models.PostData)
	return posts, args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, q interfaces.DBTX, username string) (*models.UserData, error) {
	args := m.Called(ctx, q, username)
	user, _ := args.Get(0).(*models.UserData)
	return user, args.Error(1)
}

func (m *mockUserRepo) GetOne(ctx context.Context, q interfaces.DBTX, id int64) (*models.UserData, error) {
	args := m.Called(ctx, q, id)
	user, _ := args.Get(0).(*models.UserData)
	return user, args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, q interfaces.DBTX, username string) (*models.UserData, error) {
	args := m.Called(ctx, q, username)
	user, _ := args.Get(0).(*models.UserData)
	return user, args.Error(1)
}

func (m *mockUserRepo) GetOneForUpdate(ctx context.Context, q interfaces.DBTX, id int64) (*models.UserData, error) {
	args := m.Called(ctx, q, id)
	user, _ := args.Get(0).(*models.UserData)
	return user, args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, q interfaces.DBTX, id int64, fields map[string]any) (bool, error) {
	args := m.Called(ctx, q, id, fields)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) Delete(ctx context.Context, q interfaces.DBTX, id int64) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

type mockTopicCache struct{ mock.Mock }

func (m *mockTopicCache) GetLatest(ctx context.Context, limit int) ([]*models.TopicData, bool, error) {
	args := m.Called(ctx, limit)
	topics, _ := args.Get(0).([]*models.TopicData)
	return topics, args.Bool(1), args.Error(2)
}

func (m *mockTopicCache) SetLatest(ctx context.Context, limit int, topics []*models.TopicData) error {
	return m.Called(ctx, limit, topics).Error(0)
}

func (m *mockTopicCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishForumEvent(ctx context.Context, event models.ForumEvent) error {
	return m.Called(ctx, event).Error(0)
}

type mockTokenRepo struct{ mock.Mock }

func (m *mockTokenRepo) SetToken(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error {
	return m.Called(ctx, userID, tokenID, ttl).Error(0)
}

func (m *mockTokenRepo) GetUserIDByTokenID(ctx context.Context, tokenID string) (int64, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokenRepo) DeleteTokensByUserID(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokenRepo) DeleteToken(ctx context.Context, tokenID string) (int64, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(int64), args.Error(1)
}

func eventOfType(t models.EventType) interface{} {
	return mock.MatchedBy(func(e models.ForumEvent) bool { return e.Type == t && e.ID != "" })
}
