package service

import (
	"context"
	"strings"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"go.uber.org/zap"
)

type userServiceImpl struct {
	db        interfaces.DBTX
	tx        interfaces.Transactor
	userRepo  interfaces.UserRepository
	tokenRepo interfaces.TokenRepository
	cache     interfaces.TopicCache
	publisher interfaces.ForumEventPublisher
	logger    *zap.Logger
}

// Compile-time check
var _ UserService = (*userServiceImpl)(nil)

// NewUserService creates a new UserService. cache may be nil.
func NewUserService(
	db interfaces.DBTX,
	tx interfaces.Transactor,
	userRepo interfaces.UserRepository,
	tokenRepo interfaces.TokenRepository,
	cache interfaces.TopicCache,
	publisher interfaces.ForumEventPublisher,
	logger *zap.Logger,
) UserService {
	return &userServiceImpl{
		db:        db,
		tx:        tx,
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cache:     cache,
		publisher: publisher,
		logger:    logger.Named("UserService"),
	}
}

func (s *userServiceImpl) Create(ctx context.Context, input models.UserInput) (*models.UserData, error) {
	username, err := models.ValidateUsername(input.Username)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Create(ctx, s.db, username)
	if err != nil {
		s.logger.Warn("Failed to register user", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	s.logger.Info("User registered", zap.Int64("userID", user.UserID), zap.String("username", user.Username))

	publishEvent(ctx, s.publisher, s.logger, models.ForumEvent{
		Type:    models.EventUserCreated,
		UserID:  user.UserID,
		ActorID: user.UserID,
		Payload: user,
	})
	return user, nil
}

func (s *userServiceImpl) GetByID(ctx context.Context, id int64) (*models.UserData, error) {
	user, err := models.UserFromDB(ctx, id, s.fetcher(s.db))
	if err != nil {
		return nil, err
	}
	data := user.ToData()
	return &data, nil
}

func (s *userServiceImpl) Update(ctx context.Context, id int64, patch models.UserPatch, editor models.UserData) (bool, error) {
	log := s.logger.With(zap.Int64("userID", id), zap.Int64("editorID", editor.UserID))

	var (
		changed bool
		changes models.UserChanges
	)
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, q interfaces.DBTX) error {
		user, err := models.UserFromDB(ctx, id, s.lockingFetcher(q))
		if err != nil {
			return err
		}
		changes, err = user.Update(patch, models.UserFromIdentity(editor))
		if err != nil {
			return err
		}
		changed, err = s.userRepo.Update(ctx, q, id, changes.Columns())
		return err
	})
	if err != nil {
		log.Warn("User update failed", zap.Error(err))
		return false, err
	}
	if !changed {
		return false, nil
	}

	log.Info("User updated")
	s.invalidateLatest(ctx)
	publishEvent(ctx, s.publisher, s.logger, models.ForumEvent{
		Type:    models.EventUserUpdated,
		UserID:  id,
		ActorID: editor.UserID,
		Payload: changes,
	})
	return true, nil
}

func (s *userServiceImpl) Delete(ctx context.Context, id int64, editor models.UserData) (bool, error) {
	log := s.logger.With(zap.Int64("userID", id), zap.Int64("editorID", editor.UserID))

	var deleted bool
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, q interfaces.DBTX) error {
		user, err := models.UserFromDB(ctx, id, s.lockingFetcher(q))
		if err != nil {
			return err
		}
		if !user.EditorHasPermission(models.UserFromIdentity(editor), models.ActionDelete) {
			return models.ErrForbidden
		}
		deleted, err = s.userRepo.Delete(ctx, q, id)
		return err
	})
	if err != nil {
		log.Warn("User delete failed", zap.Error(err))
		return false, err
	}
	if !deleted {
		return false, nil
	}

	log.Info("User deleted")
	if revoked, err := s.tokenRepo.DeleteTokensByUserID(ctx, id); err != nil {
		log.Error("Failed to revoke tokens of deleted user", zap.Error(err))
	} else {
		log.Info("Tokens of deleted user revoked", zap.Int64("revoked", revoked))
	}
	s.invalidateLatest(ctx)
	publishEvent(ctx, s.publisher, s.logger, models.ForumEvent{
		Type:    models.EventUserDeleted,
		UserID:  id,
		ActorID: editor.UserID,
	})
	return true, nil
}

func (s *userServiceImpl) Login(ctx context.Context, username, _ string) (*models.UserData, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.InvalidInputf("username is required")
	}

	user, err := s.userRepo.GetByUsername(ctx, s.db, username)
	if err != nil {
		s.logger.Info("Login failed", zap.String("username", username), zap.Error(err))
		return nil, err
	}
	s.logger.Info("User logged in", zap.Int64("userID", user.UserID))
	return user, nil
}

func (s *userServiceImpl) fetcher(q interfaces.DBTX) models.UserFetcher {
	return func(ctx context.Context, id int64) (*models.UserData, error) {
		return s.userRepo.GetOne(ctx, q, id)
	}
}

// lockingFetcher loads the row with a lock held until tx commits, so a
// concurrent load-merge-write on the same row waits instead of overwriting.
func (s *userServiceImpl) lockingFetcher(tx interfaces.DBTX) models.UserFetcher {
	return func(ctx context.Context, id int64) (*models.UserData, error) {
		return s.userRepo.GetOneForUpdate(ctx, tx, id)
	}
}

// invalidateLatest drops cached topic listings, which embed creator profiles.
func (s *userServiceImpl) invalidateLatest(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Latest topics cache invalidation failed", zap.Error(err))
	}
}
