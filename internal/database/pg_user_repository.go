package database

import (
	"context"
	"fmt"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

const userColumns = `u.id AS user_id, u.username, u.role, u.signature, u.avatar`

var (
	createUserQuery = `INSERT INTO users AS u (username, role) VALUES ($1, $2) RETURNING ` + userColumns

	getUserQuery = `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1 AND ` + notDeleted("u")

	getUserForUpdateQuery = getUserQuery + ` FOR UPDATE OF u`

	getUserByUsernameQuery = `SELECT ` + userColumns + ` FROM users u WHERE u.username = $1 AND ` + notDeleted("u")

	deleteUserQuery = `UPDATE users SET deleted = NOW() WHERE id = $1 AND ` + notDeleted("users")
)

type pgUserRepository struct {
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{logger: logger.Named("PgUserRepo")}
}

// Create inserts a new user with the default role.
func (r *pgUserRepository) Create(ctx context.Context, querier interfaces.DBTX, username string) (*models.UserData, error) {
	r.logger.Debug("Executing query", zap.String("query", createUserQuery), zap.String("username", username))

	user := &models.UserData{}
	if err := pgxscan.Get(ctx, querier, user, createUserQuery, username, string(models.DefaultRole)); err != nil {
		if mapped := mapConstraintError(err, models.ErrUserAlreadyExists); mapped != nil {
			r.logger.Warn("Attempted to create duplicate user", zap.String("username", username))
			return nil, mapped
		}
		r.logger.Error("Failed to create user in postgres", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to create user in postgres: %w", err)
	}

	r.logger.Info("User created successfully", zap.Int64("userID", user.UserID), zap.String("username", user.Username))
	return user, nil
}

func (r *pgUserRepository) GetOne(ctx context.Context, querier interfaces.DBTX, id int64) (*models.UserData, error) {
	r.logger.Debug("Executing query", zap.String("query", getUserQuery), zap.Int64("userID", id))

	user := &models.UserData{}
	if err := pgxscan.Get(ctx, querier, user, getUserQuery, id); err != nil {
		if isNoRows(err) {
			r.logger.Debug("User not found by ID", zap.Int64("userID", id))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by ID from postgres", zap.Int64("userID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return user, nil
}

// GetOneForUpdate locks the user row until the surrounding transaction ends.
func (r *pgUserRepository) GetOneForUpdate(ctx context.Context, querier interfaces.DBTX, id int64) (*models.UserData, error) {
	r.logger.Debug("Executing query", zap.String("query", getUserForUpdateQuery), zap.Int64("userID", id))

	user := &models.UserData{}
	if err := pgxscan.Get(ctx, querier, user, getUserForUpdateQuery, id); err != nil {
		if isNoRows(err) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to lock user", zap.Int64("userID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to lock user %d: %w", id, err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username.
func (r *pgUserRepository) GetByUsername(ctx context.Context, querier interfaces.DBTX, username string) (*models.UserData, error) {
	r.logger.Debug("Executing query", zap.String("query", getUserByUsernameQuery), zap.String("username", username))

	user := &models.UserData{}
	if err := pgxscan.Get(ctx, querier, user, getUserByUsernameQuery, username); err != nil {
		if isNoRows(err) {
			r.logger.Debug("User not found by username", zap.String("username", username))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by username from postgres", zap.String("username", username), zap.Error(err))
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) Update(ctx context.Context, querier interfaces.DBTX, id int64, fields map[string]any) (bool, error) {
	query, args, err := buildUpdateQuery("users", userMutableColumns, id, fields)
	if err != nil {
		r.logger.Warn("Rejected user update payload", zap.Int64("userID", id), zap.Error(err))
		return false, err
	}
	r.logger.Debug("Executing query", zap.String("query", query), zap.Int64("userID", id))

	cmdTag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update user", zap.Int64("userID", id), zap.Error(err))
		return false, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// Delete soft-deletes the user. Topics and posts keep referencing the row.
func (r *pgUserRepository) Delete(ctx context.Context, querier interfaces.DBTX, id int64) (bool, error) {
	r.logger.Debug("Executing query", zap.String("query", deleteUserQuery), zap.Int64("userID", id))

	cmdTag, err := querier.Exec(ctx, deleteUserQuery, id)
	if err != nil {
		r.logger.Error("Failed to soft delete user", zap.Int64("userID", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
