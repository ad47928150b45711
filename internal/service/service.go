package service

import (
	"context"

	"forum-server/internal/models"
)

// TopicService manages topics and their paginated post listings.
type TopicService interface {
	Create(ctx context.Context, input models.TopicInput, creator models.UserData) (*models.TopicData, error)
	GetByID(ctx context.Context, id int64) (*models.TopicData, error)
	// Update returns true iff the topic row was changed.
	Update(ctx context.Context, id int64, patch models.TopicPatch, editor models.UserData) (bool, error)
	Delete(ctx context.Context, id int64, editor models.UserData) (bool, error)
	// GetTopicPostsUsers returns the topic and one zero-based page of its posts.
	GetTopicPostsUsers(ctx context.Context, topicID int64, page int) (*models.TopicWithPosts, error)
	GetLatestTopics(ctx context.Context, limit int) ([]*models.TopicData, error)
}

// PostService manages posts.
type PostService interface {
	Create(ctx context.Context, input models.PostInput, author models.UserData) (*models.PostData, error)
	GetByID(ctx context.Context, id int64) (*models.PostData, error)
	Update(ctx context.Context, id int64, patch models.PostPatch, editor models.UserData) (bool, error)
	Delete(ctx context.Context, id int64, editor models.UserData) (bool, error)
}

// UserService manages user accounts.
type UserService interface {
	Create(ctx context.Context, input models.UserInput) (*models.UserData, error)
	GetByID(ctx context.Context, id int64) (*models.UserData, error)
	Update(ctx context.Context, id int64, patch models.UserPatch, editor models.UserData) (bool, error)
	Delete(ctx context.Context, id int64, editor models.UserData) (bool, error)
	// Login resolves a user by username. The password is accepted but not verified.
	Login(ctx context.Context, username, password string) (*models.UserData, error)
}

// AuthService issues, verifies and revokes access tokens.
type AuthService interface {
	IssueAccessToken(ctx context.Context, user *models.UserData) (*models.LoginResult, error)
	VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error)
	Logout(ctx context.Context, claims *models.Claims) error
}
