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

// Compile-time check to ensure pgTopicRepository implements TopicRepository
var _ interfaces.TopicRepository = (*pgTopicRepository)(nil)

const topicColumns = `t.id AS topic_id, t.title, t.category, t.created, t.last_edited, t.deleted, t.disabled,
	u.id AS user_id, u.username, u.role, u.signature, u.avatar`

var (
	getTopicQuery = `SELECT ` + topicColumns + `,
	(SELECT COUNT(p.id) FROM posts p WHERE p.topic_id = t.id AND ` + notDeleted("p") + `) AS no_of_posts
FROM topics t
JOIN users u ON u.id = t.created_by
WHERE t.id = $1 AND ` + notDeleted("t")

	// Row lock for load-then-write inside a transaction. No post count here.
	getTopicForUpdateQuery = `SELECT ` + topicColumns + `
FROM topics t
JOIN users u ON u.id = t.created_by
WHERE t.id = $1 AND ` + notDeleted("t") + `
FOR UPDATE OF t`

	getLatestTopicsQuery = `SELECT ` + topicColumns + `
FROM topics t
JOIN users u ON u.id = t.created_by
WHERE ` + notDeleted("t") + `
ORDER BY t.created DESC, t.id DESC
LIMIT $1`

	createTopicQuery = `INSERT INTO topics (created_by, title, category) VALUES ($1, $2, $3) RETURNING id`

	deleteTopicQuery = `UPDATE topics SET deleted = NOW() WHERE id = $1 AND ` + notDeleted("topics")
)

// topicRow is the flat shape of a topic read; the embedded UserData columns
// become the created_by sub-record.
type topicRow struct {
	TopicID    int64      `db:"topic_id"`
	Title      string     `db:"title"`
	Category   int64      `db:"category"`
	Created    time.Time  `db:"created"`
	LastEdited *time.Time `db:"last_edited"`
	Deleted    *time.Time `db:"deleted"`
	Disabled   bool       `db:"disabled"`
	NoOfPosts  *int64     `db:"no_of_posts"`
	models.UserData
}

func (r *topicRow) toData() *models.TopicData {
	return &models.TopicData{
		TopicID:    r.TopicID,
		Title:      r.Title,
		Category:   r.Category,
		Created:    r.Created,
		LastEdited: r.LastEdited,
		Deleted:    r.Deleted,
		Disabled:   r.Disabled,
		NoOfPosts:  r.NoOfPosts,
		CreatedBy:  r.UserData,
	}
}

type pgTopicRepository struct {
	logger *zap.Logger
}

// NewPgTopicRepository creates a new PostgreSQL-backed TopicRepository.
func NewPgTopicRepository(logger *zap.Logger) interfaces.TopicRepository {
	return &pgTopicRepository{logger: logger.Named("PgTopicRepo")}
}

// Create inserts the topic and reads it back with its creator embedded.
func (r *pgTopicRepository) Create(ctx context.Context, querier interfaces.DBTX, creatorID int64, input models.TopicInput) (*models.TopicData, error) {
	log := r.logger.With(zap.Int64("creatorID", creatorID), zap.Int64("category", input.Category))
	log.Debug("Executing query", zap.String("query", createTopicQuery))

	var id int64
	if err := querier.QueryRow(ctx, createTopicQuery, creatorID, input.Title, input.Category).Scan(&id); err != nil {
		if mapped := mapConstraintError(err, models.ErrAlreadyExists); mapped != nil {
			log.Warn("Topic insert violated a constraint", zap.Error(err))
			return nil, mapped
		}
		log.Error("Failed to insert topic", zap.Error(err))
		return nil, fmt.Errorf("failed to insert topic: %w", err)
	}

	log.Info("Topic created", zap.Int64("topicID", id))
	return r.GetOne(ctx, querier, id)
}

// GetOne returns a non-deleted topic with creator and post count.
func (r *pgTopicRepository) GetOne(ctx context.Context, querier interfaces.DBTX, id int64) (*models.TopicData, error) {
	r.logger.Debug("Executing query", zap.String("query", getTopicQuery), zap.Int64("topicID", id))

	var row topicRow
	if err := pgxscan.Get(ctx, querier, &row, getTopicQuery, id); err != nil {
		if isNoRows(err) {
			r.logger.Debug("Topic not found", zap.Int64("topicID", id))
			return nil, models.ErrTopicNotFound
		}
		r.logger.Error("Failed to get topic", zap.Int64("topicID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get topic %d: %w", id, err)
	}
	return row.toData(), nil
}

// GetOneForUpdate locks the topic row until the surrounding transaction ends.
func (r *pgTopicRepository) GetOneForUpdate(ctx context.Context, querier interfaces.DBTX, id int64) (*models.TopicData, error) {
	r.logger.Debug("Executing query", zap.String("query", getTopicForUpdateQuery), zap.Int64("topicID", id))

	var row topicRow
	if err := pgxscan.Get(ctx, querier, &row, getTopicForUpdateQuery, id); err != nil {
		if isNoRows(err) {
			return nil, models.ErrTopicNotFound
		}
		r.logger.Error("Failed to lock topic", zap.Int64("topicID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to lock topic %d: %w", id, err)
	}
	return row.toData(), nil
}

// Update writes the mutable topic columns in fields.
func (r *pgTopicRepository) Update(ctx context.Context, querier interfaces.DBTX, id int64, fields map[string]any) (bool, error) {
	query, args, err := buildUpdateQuery("topics", topicMutableColumns, id, fields)
	if err != nil {
		r.logger.Warn("Rejected topic update payload", zap.Int64("topicID", id), zap.Error(err))
		return false, err
	}
	r.logger.Debug("Executing query", zap.String("query", query), zap.Int64("topicID", id))

	cmdTag, err := querier.Exec(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update topic", zap.Int64("topicID", id), zap.Error(err))
		return false, fmt.Errorf("failed to update topic %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Topic update affected no rows", zap.Int64("topicID", id))
		return false, nil
	}
	return true, nil
}

// Delete marks the topic as deleted.
func (r *pgTopicRepository) Delete(ctx context.Context, querier interfaces.DBTX, id int64) (bool, error) {
	r.logger.Debug("Executing query", zap.String("query", deleteTopicQuery), zap.Int64("topicID", id))

	cmdTag, err := querier.Exec(ctx, deleteTopicQuery, id)
	if err != nil {
		r.logger.Error("Failed to soft delete topic", zap.Int64("topicID", id), zap.Error(err))
		return false, fmt.Errorf("failed to delete topic %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.Warn("Topic delete affected no rows", zap.Int64("topicID", id))
		return false, nil
	}
	r.logger.Info("Topic soft deleted", zap.Int64("topicID", id))
	return true, nil
}

// GetLatest lists non-deleted topics, newest first.
func (r *pgTopicRepository) GetLatest(ctx context.Context, querier interfaces.DBTX, limit int) ([]*models.TopicData, error) {
	r.logger.Debug("Executing query", zap.String("query", getLatestTopicsQuery), zap.Int("limit", limit))

	var rows []*topicRow
	if err := pgxscan.Select(ctx, querier, &rows, getLatestTopicsQuery, limit); err != nil {
		r.logger.Error("Failed to list latest topics", zap.Int("limit", limit), zap.Error(err))
		return nil, fmt.Errorf("failed to list latest topics: %w", err)
	}

	topics := make([]*models.TopicData, 0, len(rows))
	for _, row := range rows {
		topics = append(topics, row.toData())
	}
	return topics, nil
}
