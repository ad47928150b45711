package service

import (
	"context"
	"strings"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"go.uber.org/zap"
)

type postServiceImpl struct {
	db        interfaces.DBTX
	tx        interfaces.Transactor
	postRepo  interfaces.PostRepository
	topicRepo interfaces.TopicRepository
	publisher interfaces.ForumEventPublisher
	logger    *zap.Logger
}

// Compile-time check
var _ PostService = (*postServiceImpl)(nil)

// NewPostService creates a new PostService.
func NewPostService(
	db interfaces.DBTX,
	tx interfaces.Transactor,
	postRepo interfaces.PostRepository,
	topicRepo interfaces.TopicRepository,
	publisher interfaces.ForumEventPublisher,
	logger *zap.Logger,
) PostService {
	return &postServiceImpl{
		db:        db,
		tx:        tx,
		postRepo:  postRepo,
		topicRepo: topicRepo,
		publisher: publisher,
		logger:    logger.Named("PostService"),
	}
}

func (s *postServiceImpl) Create(ctx context.Context, input models.PostInput, author models.UserData) (*models.PostData, error) {
	log := s.logger.With(zap.Int64("authorID", author.UserID), zap.Int64("topicID", input.TopicID))

	if input.TopicID <= 0 {
		return nil, models.InvalidInputf("topic_id is required")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, models.InvalidInputf("body is required")
	}
	if input.Title != nil {
		if err := models.ValidateTitle(*input.Title); err != nil {
			return nil, err
		}
	}

	var post *models.PostData
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, q interfaces.DBTX) error {
		// Posts may only be added to live topics.
		if _, err := s.topicRepo.GetOne(ctx, q, input.TopicID); err != nil {
			return err
		}
		var err error
		post, err = s.postRepo.Create(ctx, q, author.UserID, input)
		return err
	})
	if err != nil {
		log.Warn("Failed to create post", zap.Error(err))
		return nil, err
	}
	log.Info("Post created", zap.Int64("postID", post.PostID))

	publishEvent(ctx, s.publisher, s.logger, models.ForumEvent{
		Type:    models.EventPostCreated,
		TopicID: post.TopicID,
		PostID:  post.PostID,
		ActorID: author.UserID,
		Payload: post,
	})
	return post, nil
}

func (s *postServiceImpl) GetByID(ctx context.Context, id int64) (*models.PostData, error) {
	post, err := models.PostFromDB(ctx, id, s.fetcher(s.db))
	if err != nil {
		return nil, err
	}
	data := post.ToData()
	return &data, nil
}

func (s *postServiceImpl) Update(ctx context.Context, id int64, patch models.PostPatch, editor models.UserData) (bool, error) {
	log := s.logger.With(zap.Int64("postID", id), zap.Int64("editorID", editor.UserID))

	var (
		changed bool
		topicID int64
		changes models.PostChanges
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, q interfaces.DBTX) error {
		post, err := models.PostFromDB(ctx, id, s.lockingFetcher(q))
		if err != nil {
			return err
		}
		topicID = post.TopicID()
		changes, err = post.Update(patch, models.UserFromIdentity(editor))
		if err != nil {
			return err
		}
		changed, err = s.postRepo.Update(ctx, q, id, changes.Columns())
		return err
	})
	if err != nil {
		log.Warn("Post update failed", zap.Error(err))
		return false, err
	}
	if !changed {
		log.Info("Post update changed no rows")
		return false, nil
	}

	log.Info("Post updated")
	publishEvent(ctx, s.publisher, s.logger, models.ForumEvent{
		Type:    models.EventPostUpdated,
		TopicID: topicID,
		PostID:  id,
		ActorID: editor.UserID,
		Payload: changes,
	})
	return true, nil
}

func (s *postServiceImpl) Delete(ctx context.Context, id int64, editor models.UserData) (bool, error) {
	log := s.logger.With(zap.Int64("postID", id), zap.Int64("editorID", editor.UserID))

	var (
		deleted bool
		topicID int64
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, q interfaces.DBTX) error {
		post, err := models.PostFromDB(ctx, id, s.lockingFetcher(q))
		if err != nil {
			return err
		}
		topicID = post.TopicID()
		if !post.EditorHasPermission(models.UserFromIdentity(editor), models.ActionDelete) {
			return models.ErrForbidden
		}
		deleted, err = s.postRepo.Delete(ctx, q, id)
		return err
	})
	if err != nil {
		log.Warn("Post delete failed", zap.Error(err))
		return false, err
	}
	if !deleted {
		return false, nil
	}

	log.Info("Post deleted")
	publishEvent(ctx, s.publisher, s.logger, models.ForumEvent{
		Type:    models.EventPostDeleted,
		TopicID: topicID,
		PostID:  id,
		ActorID: editor.UserID,
	})
	return true, nil
}

func (s *postServiceImpl) fetcher(q interfaces.DBTX) models.PostFetcher {
	return func(ctx context.Context, id int64) (*models.PostData, error) {
		return s.postRepo.GetOne(ctx, q, id)
	}
}

// lockingFetcher loads the row with a lock held until tx commits, so a
// concurrent load-merge-write on the same row waits instead of overwriting.
func (s *postServiceImpl) lockingFetcher(tx interfaces.DBTX) models.PostFetcher {
	return func(ctx context.Context, id int64) (*models.PostData, error) {
		return s.postRepo.GetOneForUpdate(ctx, tx, id)
	}
}
