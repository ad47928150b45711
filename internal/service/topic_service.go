package service

import (
	"context"
	"fmt"
	"strings"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"go.uber.org/zap"
)

type topicServiceImpl struct {
	db        interfaces.DBTX
	tx        interfaces.Transactor
	topicRepo interfaces.TopicRepository
	postRepo  interfaces.PostRepository
	cache     interfaces.TopicCache
	publisher interfaces.ForumEventPublisher
	logger    *zap.Logger
}

// Compile-time check
var _ TopicService = (*topicServiceImpl)(nil)

// NewTopicService creates a new TopicService. cache may be nil.
func NewTopicService(
	db interfaces.DBTX,
	tx interfaces.Transactor,
	topicRepo interfaces.TopicRepository,
	postRepo interfaces.PostRepository,
	cache interfaces.TopicCache,
	publisher interfaces.ForumEventPublisher,
	logger *zap.Logger,
) TopicService {
	return &topicServiceImpl{
		db:        db,
		tx:        tx,
		topicRepo: topicRepo,
		postRepo:  postRepo,
		cache:     cache,
		publisher: publisher,
		logger:    logger.Named("TopicService"),
	}
}

func (s *topicServiceImpl) Create(ctx context.Context, input models.TopicInput, creator models.UserData) (*models.TopicData, error) {
	log := s.logger.With(zap.Int64("creatorID", creator.UserID))

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, models.InvalidInputf("title is required")
	}
	if err := models.ValidateTitle(input.Title); err != nil {
		return nil, err
	}
	if input.Category <= 0 {
		return nil, models.InvalidInputf("category is required")
	}

	topic, err := s.topicRepo.Create(ctx, s.db, creator.UserID, input)
	if err != nil {
		log.Error("Failed to create topic", zap.Error(err))
		return nil, err
	}
	log.Info("Topic created", zap.Int64("topicID", topic.TopicID))

	s.invalidateLatest(ctx)
	publishEvent(ctx, s.publisher, s.logger, models.ForumEvent{
		Type:    models.EventTopicCreated,
		TopicID: topic.TopicID,
		ActorID: creator.UserID,
		Payload: topic,
	})
	return topic, nil
}

func (s *topicServiceImpl) GetByID(ctx context.Context, id int64) (*models.TopicData, error) {
	topic, err := models.TopicFromDB(ctx, id, s.fetcher(s.db))
	if err != nil {
		return nil, err
	}
	data := topic.ToData()
	return &data, nil
}

func (s *topicServiceImpl) Update(ctx context.Context, id int64, patch models.TopicPatch, editor models.UserData) (bool, error) {
	log := s.logger.With(zap.Int64("topicID", id), zap.Int64("editorID", editor.UserID))

	var changed bool
	var title string
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, q interfaces.DBTX) error {
		topic, err := models.TopicFromDB(ctx, id, s.lockingFetcher(q))
		if err != nil {
			return err
		}
		changes, err := topic.Update(patch, models.UserFromIdentity(editor))
		if err != nil {
			return err
		}
		changed, err = s.topicRepo.Update(ctx, q, id, changes.Columns())
		title = changes.Title
		return err
	})
	if err != nil {
		log.Warn("Topic update failed", zap.Error(err))
		return false, err
	}
	if !changed {
		log.Info("Topic update changed no rows")
		return false, nil
	}

	log.Info("Topic updated")
	s.invalidateLatest(ctx)
	publishEvent(ctx, s.publisher, s.logger, models.ForumEvent{
		Type:    models.EventTopicUpdated,
		TopicID: id,
		ActorID: editor.UserID,
		Payload: models.TopicChanges{Title: title},
	})
	return true, nil
}

func (s *topicServiceImpl) Delete(ctx context.Context, id int64, editor models.UserData) (bool, error) {
	log := s.logger.With(zap.Int64("topicID", id), zap.Int64("editorID", editor.UserID))

	var deleted bool
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, q interfaces.DBTX) error {
		topic, err := models.TopicFromDB(ctx, id, s.lockingFetcher(q))
		if err != nil {
			return err
		}
		if !topic.EditorHasPermission(models.UserFromIdentity(editor), models.ActionDelete) {
			return models.ErrForbidden
		}
		deleted, err = s.topicRepo.Delete(ctx, q, id)
		return err
	})
	if err != nil {
		log.Warn("Topic delete failed", zap.Error(err))
		return false, err
	}
	if !deleted {
		return false, nil
	}

	log.Info("Topic deleted")
	s.invalidateLatest(ctx)
	publishEvent(ctx, s.publisher, s.logger, models.ForumEvent{
		Type:    models.EventTopicDeleted,
		TopicID: id,
		ActorID: editor.UserID,
	})
	return true, nil
}

func (s *topicServiceImpl) GetTopicPostsUsers(ctx context.Context, topicID int64, page int) (*models.TopicWithPosts, error) {
	if page < 0 {
		return nil, models.InvalidInputf("page must not be negative")
	}

	topic, err := s.topicRepo.GetOne(ctx, s.db, topicID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.GetPageForTopic(ctx, s.db, topicID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts for topic %d: %w", topicID, err)
	}
	if posts == nil {
		posts = make([]*models.PostData, 0)
	}
	return &models.TopicWithPosts{Topic: topic, Posts: posts}, nil
}

func (s *topicServiceImpl) GetLatestTopics(ctx context.Context, limit int) ([]*models.TopicData, error) {
	limit = normalizeLatestLimit(limit)

	if s.cache != nil {
		cached, ok, err := s.cache.GetLatest(ctx, limit)
		if err != nil {
			s.logger.Warn("Latest topics cache read failed", zap.Int("limit", limit), zap.Error(err))
		} else if ok {
			s.logger.Debug("Latest topics served from cache", zap.Int("limit", limit))
			return cached, nil
		}
	}

	topics, err := s.topicRepo.GetLatest(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}
	if topics == nil {
		topics = make([]*models.TopicData, 0)
	}

	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, limit, topics); err != nil {
			s.logger.Warn("Latest topics cache write failed", zap.Int("limit", limit), zap.Error(err))
		}
	}
	return topics, nil
}

func (s *topicServiceImpl) fetcher(q interfaces.DBTX) models.TopicFetcher {
	return func(ctx context.Context, id int64) (*models.TopicData, error) {
		return s.topicRepo.GetOne(ctx, q, id)
	}
}

// lockingFetcher loads the row with a lock held until tx commits, so a
// concurrent load-merge-write on the same row waits instead of overwriting.
func (s *topicServiceImpl) lockingFetcher(tx interfaces.DBTX) models.TopicFetcher {
	return func(ctx context.Context, id int64) (*models.TopicData, error) {
		return s.topicRepo.GetOneForUpdate(ctx, tx, id)
	}
}

func (s *topicServiceImpl) invalidateLatest(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate latest topics cache", zap.Error(err))
	}
}
