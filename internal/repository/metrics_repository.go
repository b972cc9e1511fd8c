package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/socialsight/socialsight/internal/models"
)

type MetricsRepository interface {
	Upsert(ctx context.Context, m *models.PostMetrics) error
	ListByPostID(ctx context.Context, postID int64) ([]*models.PostMetrics, error)
	GetPerformance(ctx context.Context, postID int64) (*models.Performance, error)
	UpsertPerformance(ctx context.Context, p *models.Performance) error
}

type metricsRepository struct {
	db *sql.DB
}

func NewMetricsRepository(db *sql.DB) MetricsRepository {
	return &metricsRepository{db: db}
}

func (r *metricsRepository) Upsert(ctx context.Context, m *models.PostMetrics) error {
	query := `
		INSERT INTO post_metrics (post_id, platform, likes, comments, shares, reach, impressions, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (post_id, platform) DO UPDATE
		SET likes = EXCLUDED.likes,
			comments = EXCLUDED.comments,
			shares = EXCLUDED.shares,
			reach = EXCLUDED.reach,
			impressions = EXCLUDED.impressions,
			last_updated = EXCLUDED.last_updated
	`
	_, err := r.db.ExecContext(ctx, query, m.PostID, m.Platform, m.Likes,
		m.Comments, m.Shares, m.Reach, m.Impressions, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *metricsRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PostMetrics, error) {
	query := `SELECT post_id, platform, likes, comments, shares, reach, impressions, last_updated
		FROM post_metrics WHERE post_id = $1`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var metrics []*models.PostMetrics
	for rows.Next() {
		var m models.PostMetrics
		err := rows.Scan(&m.PostID, &m.Platform, &m.Likes, &m.Comments,
			&m.Shares, &m.Reach, &m.Impressions, &m.LastUpdated)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		metrics = append(metrics, &m)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return metrics, nil
}

func (r *metricsRepository) GetPerformance(ctx context.Context, postID int64) (*models.Performance, error) {
	query := `SELECT post_id, total_engagement, total_reach, total_impressions, engagement_rate, best_platform, last_calculated
		FROM post_performance WHERE post_id = $1`

	var p models.Performance
	err := r.db.QueryRowContext(ctx, query, postID).Scan(&p.PostID,
		&p.TotalEngagement, &p.TotalReach, &p.TotalImpressions,
		&p.EngagementRate, &p.BestPlatform, &p.LastCalculated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &p, nil
}

func (r *metricsRepository) UpsertPerformance(ctx context.Context, p *models.Performance) error {
	query := `
		INSERT INTO post_performance (post_id, total_engagement, total_reach, total_impressions, engagement_rate, best_platform, last_calculated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (post_id) DO UPDATE
		SET total_engagement = EXCLUDED.total_engagement,
			total_reach = EXCLUDED.total_reach,
			total_impressions = EXCLUDED.total_impressions,
			engagement_rate = EXCLUDED.engagement_rate,
			best_platform = EXCLUDED.best_platform,
			last_calculated = EXCLUDED.last_calculated
	`
	_, err := r.db.ExecContext(ctx, query, p.PostID, p.TotalEngagement,
		p.TotalReach, p.TotalImpressions, p.EngagementRate, p.BestPlatform,
		p.LastCalculated)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
