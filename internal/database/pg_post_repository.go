package database

import (
	"context"
	"fmt"
	"time"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgPostRepository implements PostRepository
var _ interfaces.PostRepository = (*pgPostRepository)(nil)

const postColumns = `p.id AS post_id, p.topic_id, p.title, p.body, p.created, p.last_edited, p.deleted,
	u.id AS user_id, u.username, u.role, u.signature, u.avatar`

var (
	getPostQuery = `SELECT ` + postColumns + `
FROM posts p
JOIN users u ON u.id = p.author
WHERE p.id = $1 AND ` + notDeleted("p")

	getPostForUpdateQuery = getPostQuery + `
FOR UPDATE OF p`

	// Page window: LIMIT page size, OFFSET page * page size. id breaks ties
	// between posts created in the same instant.
	getPostPageQuery = `SELECT ` + postColumns + `
FROM posts p
JOIN users u ON u.id = p.author
WHERE p.topic_id = $1 AND ` + notDeleted("p") + `
ORDER BY p.created ASC, p.id ASC
LIMIT $2 OFFSET $3`

	createPostQuery = `INSERT INTO posts (author, topic_id, title, body) VALUES ($1, $2, $3, $4) RETURNING id`

	deletePostQuery = `UPDATE posts SET deleted = NOW() WHERE id = $1 AND ` + notDeleted("posts")
)

// postRow is the flat shape of a post read; the embedded UserData columns
// become the author sub-record.
type postRow struct {
	PostID     int64      `db:"post_id"`
	TopicID    int64      `db:"topic_id"`
	Title      *string    `db:"title"`
	Body       string     `db:"body"`
	Created    time.Time  `db:"created"`
	LastEdited *time.Time `db:"last_edited"`
	Deleted    *time.Time `db:"deleted"`
	models.UserData
}

func (r *postRow) toData() *models.PostData {
	return &models.PostData{
		PostID:     r.PostID,
		TopicID:    r.TopicID,
		Title:      r.Title,
		Body:       r.Body,
		BodyHTML:   models.RenderBBCode(r.Body),
		Created:    r.Created,
		LastEdited: r.LastEdited,
		Deleted:    r.Deleted,
		Author:     r.UserData,
	}
}

type pgPostRepository struct {
	logger *zap.Logger
}

// NewPgPostRepository creates a new PostgreSQL-backed PostRepository.
func NewPgPostRepository(logger *zap.Logger) interfaces.PostRepository {
	return &pgPostRepository{logger: logger.Named("PgPostRepo")}
}

func (r *pgPostRepository) Create(ctx context.Context, querier interfaces.DBTX, authorID int64, input models.PostInput) (*models.PostData, error) {
	log := r.logger.With(zap.Int64("authorID", authorID), zap.Int64("topicID", input.TopicID))
	log.Debug("Executing query", zap.String("query", createPostQuery))

	var id int64
	if err := querier.QueryRow(ctx, createPostQuery, authorID, input.TopicID, input.Title, input.Body).Scan(&id); err != nil {
		if mapped := mapConstraintError(err, models.ErrAlreadyExists); mapped != nil {
			log.Warn("Post insert violated a constraint", zap.Error(err))
			return nil, mapped
		}
		log.Error("Failed to insert post", zap.Error(err))
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}

	log.Info("Post created", zap.Int64("postID", id))
	return r.GetOne(ctx, querier, id)
}

func (r *pgPostRepository) GetOne(ctx context.Context, querier interfaces.DBTX, id int64) (*models.PostData, error) {
	r.logger.Debug("Executing query", zap.String("query", getPostQuery), zap.Int64("postID", id))

	var row postRow
	if err := pgxscan.Get(ctx, querier, &row, getPostQuery, id); err != nil {
		if isNoRows(err) {
			r.logger.Debug("Post not found", zap.Int64("postID", id))
			return nil, models.ErrPostNotFound
		}
		r.logger.Error("Failed to get post", zap.Int64("postID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return row.toData(), nil
}

// GetOneForUpdate locks the post row until the surrounding transaction ends.
func (r *pgPostRepository) GetOneForUpdate(ctx context.Context, querier interfaces.DBTX, id int64) (*models.PostData, error) {
	r.logger.Debug("Executing query", zap.String("query", getPostForUpdateQuery), zap.Int64("postID", id))

	var row postRow
	if err := pgxscan.Get(ctx, querier, &row, getPostForUpdateQuery, id); err != nil {
		if isNoRows(err) {
			return nil, models.ErrPostNotFound
		}
		r.logger.Error("Failed to lock post", zap.Int64("postID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to lock post %d: %w", id, err)
	}
	return row.toData(), nil
}

func (r *pgPostRepository) Update(ctx context.Context, querier interfaces.DBTX, id int64, fields map[string]any) (bool, error) {
	query, args, err := buildUpdateQuery("posts", postMutableColumns, id, fields)
	if err != nil {
		r.logger.Warn("Rejected post update payload", zap.Int64("postID", id), zap.Error(err))
		return false, err
	}
	r.logger.Debug("Executing query", zap.String("query", query), zap.Int64("postID", id))

	cmdTag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update post", zap.Int64("postID", id), zap.Error(err))
		return false, fmt.Errorf("failed to update post %d: %w", id, err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

func (r *pgPostRepository) Delete(ctx context.Context, querier interfaces.DBTX, id int64) (bool, error) {
	r.logger.Debug("Executing query", zap.String("query", deletePostQuery), zap.Int64("postID", id))

	cmdTag, err := querier.Exec(ctx, deletePostQuery, id)
	if err != nil {
		r.logger.Error("Failed to soft delete post", zap.Int64("postID", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete post %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Post delete affected no rows", zap.Int64("postID", id))
		return false, nil
	}
	return true, nil
}

// GetPageForTopic returns one zero-based page of the topic's posts.
func (r *pgPostRepository) GetPageForTopic(ctx context.Context, querier interfaces.DBTX, topicID int64, page int) ([]*models.PostData, error) {
	if page < 0 {
		return nil, models.InvalidInputf("page must not be negative")
	}
	offset := page * interfaces.PostPageSize
	r.logger.Debug("Executing query", zap.String("query", getPostPageQuery),
		zap.Int64("topicID", topicID), zap.Int("page", page), zap.Int("offset", offset))

	var rows []*postRow
	if err := pgxscan.Select(ctx, querier, &rows, getPostPageQuery, topicID, interfaces.PostPageSize, offset); err != nil {
		r.logger.Error("Failed to get post page", zap.Int64("topicID", topicID), zap.Int("page", page), zap.Error(err))
		return nil, fmt.Errorf("failed to get posts for topic %d page %d: %w", topicID, page, err)
	}

	posts := make([]*models.PostData, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toData())
	}
	return posts, nil
}
