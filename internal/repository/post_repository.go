package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/socialsight/socialsight/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.Post, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error)
	CountByUserID(ctx context.Context, userID int64) (int64, error)
	CountByUserSince(ctx context.Context, userID int64, since time.Time) (int64, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.Post, error)
	ListUpcoming(ctx context.Context, userID int64, now time.Time, limit int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	UpdateStatus(ctx context.Context, id int64, status string, publishedAt *time.Time) error
	SoftDelete(ctx context.Context, id int64) error
	DeleteFailedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, title, body, hashtags, mentions, is_story, status, scheduled_time, published_at, is_deleted, version, created_at, updated_at`

func scanPost(row interface{ Scan(...interface{}) error }) (*models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.UserID, &post.Title, &post.Body,
		pq.Array(&post.Hashtags), pq.Array(&post.Mentions), &post.IsStory, &post.Status,
		&post.ScheduledTime, &post.PublishedAt, &post.IsDeleted, &post.Version,
		&post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, title, body, hashtags, mentions, is_story, status, scheduled_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	var err error

	args := []interface{}{post.UserID, post.Title, post.Body,
		pq.Array(post.Hashtags), pq.Array(post.Mentions), post.IsStory, post.Status, post.ScheduledTime}

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND is_deleted = false`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) listQuery(ctx context.Context, query string, args ...interface{}) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE user_id = $1 AND is_deleted = false
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	return r.listQuery(ctx, query, userID, limit, offset)
}

func (r *postRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE is_deleted = false
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	return r.listQuery(ctx, query, limit, offset)
}

func (r *postRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE user_id = $1 AND is_deleted = false`, userID).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

func (r *postRepository) CountByUserSince(ctx context.Context, userID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE user_id = $1 AND created_at >= $2`, userID, since).Scan(&count)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return count, nil
}

// ListDue returns scheduled posts whose scheduled time has elapsed, in
// scheduled-time order. The publish tick drains this set.
func (r *postRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE status = $1 AND scheduled_time <= $2 AND is_deleted = false
		ORDER BY scheduled_time ASC`
	return r.listQuery(ctx, query, models.PostStatusScheduled, now)
}

func (r *postRepository) ListUpcoming(ctx context.Context, userID int64, now time.Time, limit int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE user_id = $1 AND status = $2 AND scheduled_time >= $3 AND is_deleted = false
		ORDER BY scheduled_time ASC
		LIMIT $4`
	return r.listQuery(ctx, query, userID, models.PostStatusScheduled, now, limit)
}

// Update writes content fields back, guarded by the version column: the
// write only lands when nobody else has written since the post was read.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts
		SET title = $1,
			body = $2,
			hashtags = $3,
			mentions = $4,
			status = $5,
			scheduled_time = $6,
			version = version + 1,
			updated_at = $7
		WHERE id = $8 AND version = $9
	`
	result, err := r.db.ExecContext(ctx, query, post.Title, post.Body,
		pq.Array(post.Hashtags), pq.Array(post.Mentions), post.Status,
		post.ScheduledTime, time.Now(), post.ID, post.Version)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		return ErrVersionConflict
	}
	return nil
}

func (r *postRepository) UpdateStatus(ctx context.Context, id int64, status string, publishedAt *time.Time) error {
	query := `
		UPDATE posts
		SET status = $1,
			published_at = COALESCE($2, published_at),
			version = version + 1,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, status, publishedAt, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE posts SET is_deleted = true, version = version + 1, updated_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// DeleteFailedBefore hard-deletes posts stuck in failed past the retention
// window. The hourly cleanup tick is the only caller.
func (r *postRepository) DeleteFailedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM posts WHERE status = $1 AND updated_at < $2`,
		models.PostStatusFailed, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return deleted, nil
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := `SELECT 1 FROM posts WHERE id = $1 AND user_id = $2 AND is_deleted = false`

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}
