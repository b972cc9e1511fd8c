package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/socialsight/socialsight/internal/models"
)

type PlatformPostRepository interface {
	Create(ctx context.Context, tx *sql.Tx, pp *models.PlatformPost) (int64, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.PlatformPost, error)
	GetByPostPlatform(ctx context.Context, postID int64, platform string) (*models.PlatformPost, error)
	Claim(ctx context.Context, id int64) (bool, error)
	MarkScheduled(ctx context.Context, postID int64, scheduledFor *time.Time) error
	MarkPublished(ctx context.Context, id int64, platformPostID string, publishedAt time.Time) error
	MarkFailed(ctx context.Context, id int64, message, code string) error
	MarkRetrying(ctx context.Context, id int64) (bool, error)
	ListPublishedSince(ctx context.Context, since time.Time) ([]*models.PlatformPost, error)
}

type platformPostRepository struct {
	db *sql.DB
}

func NewPlatformPostRepository(db *sql.DB) PlatformPostRepository {
	return &platformPostRepository{db: db}
}

const platformPostColumns = `id, post_id, platform, page_id, platform_post_id, status, scheduled_for, published_at, error_message, error_code, retry_count, custom_body, updated_at`

func scanPlatformPost(row interface{ Scan(...interface{}) error }) (*models.PlatformPost, error) {
	var pp models.PlatformPost
	err := row.Scan(&pp.ID, &pp.PostID, &pp.Platform, &pp.PageID,
		&pp.PlatformPostID, &pp.Status, &pp.ScheduledFor, &pp.PublishedAt,
		&pp.ErrorMessage, &pp.ErrorCode, &pp.RetryCount, &pp.CustomBody, &pp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &pp, nil
}

func (r *platformPostRepository) Create(ctx context.Context, tx *sql.Tx, pp *models.PlatformPost) (int64, error) {
	query := `
		INSERT INTO post_platforms (post_id, platform, page_id, status, scheduled_for, custom_body)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	var err error

	args := []interface{}{pp.PostID, pp.Platform, pp.PageID, pp.Status, pp.ScheduledFor, pp.CustomBody}

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

func (r *platformPostRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PlatformPost, error) {
	query := `SELECT ` + platformPostColumns + ` FROM post_platforms WHERE post_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var records []*models.PlatformPost
	for rows.Next() {
		pp, err := scanPlatformPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		records = append(records, pp)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return records, nil
}

func (r *platformPostRepository) GetByPostPlatform(ctx context.Context, postID int64, platform string) (*models.PlatformPost, error) {
	query := `SELECT ` + platformPostColumns + ` FROM post_platforms WHERE post_id = $1 AND platform = $2`
	pp, err := scanPlatformPost(r.db.QueryRowContext(ctx, query, postID, platform))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return pp, nil
}

// Claim moves a platform record from scheduled to publishing. The
// conditional update means only one worker wins the record; a loser sees
// zero rows affected and skips it.
func (r *platformPostRepository) Claim(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE post_platforms
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query,
		models.PlatformStatusPublishing, time.Now(), id, models.PlatformStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *platformPostRepository) MarkScheduled(ctx context.Context, postID int64, scheduledFor *time.Time) error {
	query := `
		UPDATE post_platforms
		SET status = $1, scheduled_for = $2, updated_at = $3
		WHERE post_id = $4 AND status = $5
	`
	_, err := r.db.ExecContext(ctx, query, models.PlatformStatusScheduled,
		scheduledFor, time.Now(), postID, models.PlatformStatusDraft)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *platformPostRepository) MarkPublished(ctx context.Context, id int64, platformPostID string, publishedAt time.Time) error {
	query := `
		UPDATE post_platforms
		SET status = $1, platform_post_id = $2, published_at = $3, error_message = '', error_code = '', updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, models.PlatformStatusPublished,
		platformPostID, publishedAt, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *platformPostRepository) MarkFailed(ctx context.Context, id int64, message, code string) error {
	query := `
		UPDATE post_platforms
		SET status = $1, error_message = $2, error_code = $3, updated_at = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query, models.PlatformStatusFailed,
		message, code, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// MarkRetrying moves a failed record back to publishing and bumps the retry
// counter. Only explicit user retries take this path.
func (r *platformPostRepository) MarkRetrying(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE post_platforms
		SET status = $1, retry_count = retry_count + 1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query,
		models.PlatformStatusPublishing, time.Now(), id, models.PlatformStatusFailed)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *platformPostRepository) ListPublishedSince(ctx context.Context, since time.Time) ([]*models.PlatformPost, error) {
	query := `SELECT ` + platformPostColumns + ` FROM post_platforms
		WHERE status = $1 AND published_at >= $2
		ORDER BY post_id`
	rows, err := r.db.QueryContext(ctx, query, models.PlatformStatusPublished, since)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var records []*models.PlatformPost
	for rows.Next() {
		pp, err := scanPlatformPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		records = append(records, pp)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return records, nil
}
