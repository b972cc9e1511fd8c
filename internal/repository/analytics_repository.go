package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/socialsight/socialsight/internal/transfer"
)

// AnalyticsRepository holds the rollup queries over posts and post_metrics.
// Everything here is read-only.
type AnalyticsRepository interface {
	Overview(ctx context.Context, userID int64, since time.Time) (*transfer.DashboardOverview, error)
	PlatformDistribution(ctx context.Context, userID int64, since time.Time) ([]transfer.PlatformDistribution, error)
	DailyActivity(ctx context.Context, userID int64, since time.Time) ([]transfer.DailyActivity, error)
	TopPosts(ctx context.Context, userID int64, since time.Time, limit int) ([]transfer.TopPost, error)
	EngagementSeries(ctx context.Context, userID int64, since time.Time, platform string) ([]transfer.EngagementPoint, error)
	OptimalTimes(ctx context.Context, userID int64, since time.Time, limit int) ([]transfer.OptimalTime, error)
	WeeklyDistribution(ctx context.Context, userID int64, since time.Time) ([]transfer.WeekdayActivity, error)
	ContentTypes(ctx context.Context, userID int64, since time.Time) ([]transfer.ContentTypePerformance, error)
	HashtagPerformance(ctx context.Context, userID int64, since time.Time, limit int) ([]transfer.HashtagPerformance, error)
}

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) Overview(ctx context.Context, userID int64, since time.Time) (*transfer.DashboardOverview, error) {
	// Posts with several metrics rows must still count once, so the
	// metrics are rolled up per post before the join.
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE p.status = 'published'),
			COUNT(*) FILTER (WHERE p.status = 'scheduled'),
			COUNT(*) FILTER (WHERE p.status = 'draft'),
			COUNT(*) FILTER (WHERE p.status = 'failed'),
			COALESCE(SUM(m.likes), 0),
			COALESCE(SUM(m.comments), 0),
			COALESCE(SUM(m.shares), 0)
		FROM posts p
		LEFT JOIN (
			SELECT post_id, SUM(likes) AS likes, SUM(comments) AS comments, SUM(shares) AS shares
			FROM post_metrics
			GROUP BY post_id
		) m ON m.post_id = p.id
		WHERE p.user_id = $1 AND p.is_deleted = false AND p.created_at >= $2
	`
	var o transfer.DashboardOverview
	err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&o.TotalPosts,
		&o.PublishedPosts, &o.ScheduledPosts, &o.DraftPosts, &o.FailedPosts,
		&o.TotalLikes, &o.TotalComments, &o.TotalShares)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &o, nil
}

func (r *analyticsRepository) PlatformDistribution(ctx context.Context, userID int64, since time.Time) ([]transfer.PlatformDistribution, error) {
	query := `
		SELECT pp.platform, COUNT(DISTINCT pp.post_id),
			COALESCE(SUM(m.likes + m.comments + m.shares), 0)
		FROM post_platforms pp
		JOIN posts p ON p.id = pp.post_id
		LEFT JOIN post_metrics m ON m.post_id = pp.post_id AND m.platform = pp.platform
		WHERE p.user_id = $1 AND p.is_deleted = false AND p.status = 'published' AND p.created_at >= $2
		GROUP BY pp.platform
		ORDER BY COUNT(DISTINCT pp.post_id) DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var dist []transfer.PlatformDistribution
	for rows.Next() {
		var d transfer.PlatformDistribution
		if err := rows.Scan(&d.Platform, &d.Posts, &d.TotalEngagement); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		dist = append(dist, d)
	}
	return dist, rows.Err()
}

func (r *analyticsRepository) DailyActivity(ctx context.Context, userID int64, since time.Time) ([]transfer.DailyActivity, error) {
	query := `
		SELECT date_trunc('day', p.created_at) AS day, COUNT(DISTINCT p.id),
			COALESCE(SUM(m.likes + m.comments + m.shares), 0)
		FROM posts p
		LEFT JOIN post_metrics m ON m.post_id = p.id
		WHERE p.user_id = $1 AND p.is_deleted = false AND p.status = 'published' AND p.created_at >= $2
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var days []transfer.DailyActivity
	for rows.Next() {
		var d transfer.DailyActivity
		if err := rows.Scan(&d.Day, &d.Posts, &d.Engagement); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// TopPosts ranks by likes, then shares, then comments, all descending.
func (r *analyticsRepository) TopPosts(ctx context.Context, userID int64, since time.Time, limit int) ([]transfer.TopPost, error) {
	query := `
		SELECT p.id, p.body,
			COALESCE(SUM(m.likes), 0) AS likes,
			COALESCE(SUM(m.shares), 0) AS shares,
			COALESCE(SUM(m.comments), 0) AS comments
		FROM posts p
		LEFT JOIN post_metrics m ON m.post_id = p.id
		WHERE p.user_id = $1 AND p.is_deleted = false AND p.status = 'published' AND p.created_at >= $2
		GROUP BY p.id, p.body
		ORDER BY likes DESC, shares DESC, comments DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, since, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var top []transfer.TopPost
	for rows.Next() {
		var t transfer.TopPost
		if err := rows.Scan(&t.PostID, &t.Body, &t.Likes, &t.Shares, &t.Comments); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		top = append(top, t)
	}
	return top, rows.Err()
}

func (r *analyticsRepository) EngagementSeries(ctx context.Context, userID int64, since time.Time, platform string) ([]transfer.EngagementPoint, error) {
	query := `
		SELECT date_trunc('day', p.created_at) AS day,
			COALESCE(SUM(m.likes), 0), COALESCE(SUM(m.shares), 0), COALESCE(SUM(m.comments), 0),
			COUNT(DISTINCT p.id)
		FROM posts p
		LEFT JOIN post_metrics m ON m.post_id = p.id
		WHERE p.user_id = $1 AND p.is_deleted = false AND p.status = 'published' AND p.created_at >= $2
			AND ($3 = '' OR EXISTS (
				SELECT 1 FROM post_platforms pp WHERE pp.post_id = p.id AND pp.platform = $3))
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, since, platform)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var points []transfer.EngagementPoint
	for rows.Next() {
		var pt transfer.EngagementPoint
		if err := rows.Scan(&pt.Day, &pt.Likes, &pt.Shares, &pt.Comments, &pt.Posts); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		pt.TotalEngagement = pt.Likes + pt.Shares + pt.Comments
		if pt.Posts > 0 {
			pt.AverageEngagement = float64(pt.TotalEngagement) / float64(pt.Posts)
		}
		points = append(points, pt)
	}
	return points, rows.Err()
}

// OptimalTimes buckets published posts by hour of day and day of week and
// ranks buckets by average engagement.
func (r *analyticsRepository) OptimalTimes(ctx context.Context, userID int64, since time.Time, limit int) ([]transfer.OptimalTime, error) {
	query := `
		SELECT EXTRACT(HOUR FROM p.created_at)::int AS hour,
			EXTRACT(DOW FROM p.created_at)::int AS dow,
			COALESCE(AVG(e.engagement), 0), COUNT(*)
		FROM posts p
		LEFT JOIN (
			SELECT post_id, SUM(likes + comments + shares) AS engagement
			FROM post_metrics GROUP BY post_id
		) e ON e.post_id = p.id
		WHERE p.user_id = $1 AND p.is_deleted = false AND p.status = 'published' AND p.created_at >= $2
		GROUP BY hour, dow
		ORDER BY COALESCE(AVG(e.engagement), 0) DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, since, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var times []transfer.OptimalTime
	for rows.Next() {
		var t transfer.OptimalTime
		if err := rows.Scan(&t.Hour, &t.DayOfWeek, &t.AverageEngagement, &t.Posts); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

func (r *analyticsRepository) WeeklyDistribution(ctx context.Context, userID int64, since time.Time) ([]transfer.WeekdayActivity, error) {
	query := `
		SELECT EXTRACT(DOW FROM p.created_at)::int AS dow, COUNT(*),
			COALESCE(AVG(e.engagement), 0)
		FROM posts p
		LEFT JOIN (
			SELECT post_id, SUM(likes + comments + shares) AS engagement
			FROM post_metrics GROUP BY post_id
		) e ON e.post_id = p.id
		WHERE p.user_id = $1 AND p.is_deleted = false AND p.status = 'published' AND p.created_at >= $2
		GROUP BY dow
		ORDER BY dow ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var week []transfer.WeekdayActivity
	for rows.Next() {
		var w transfer.WeekdayActivity
		if err := rows.Scan(&w.DayOfWeek, &w.Posts, &w.AverageEngagement); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		week = append(week, w)
	}
	return week, rows.Err()
}

// ContentTypes classifies posts as video when any video asset is attached,
// image when any image is, text otherwise, matching the dashboard's buckets.
func (r *analyticsRepository) ContentTypes(ctx context.Context, userID int64, since time.Time) ([]transfer.ContentTypePerformance, error) {
	query := `
		SELECT CASE
				WHEN EXISTS (SELECT 1 FROM post_media pm JOIN media_assets a ON a.id = pm.asset_id
					WHERE pm.post_id = p.id AND a.file_type LIKE 'video%') THEN 'video'
				WHEN EXISTS (SELECT 1 FROM post_media pm JOIN media_assets a ON a.id = pm.asset_id
					WHERE pm.post_id = p.id AND a.file_type LIKE 'image%') THEN 'image'
				ELSE 'text'
			END AS content_type,
			COUNT(*), COALESCE(AVG(e.engagement), 0)
		FROM posts p
		LEFT JOIN (
			SELECT post_id, SUM(likes + comments + shares) AS engagement
			FROM post_metrics GROUP BY post_id
		) e ON e.post_id = p.id
		WHERE p.user_id = $1 AND p.is_deleted = false AND p.status = 'published' AND p.created_at >= $2
		GROUP BY content_type
		ORDER BY COALESCE(AVG(e.engagement), 0) DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var types []transfer.ContentTypePerformance
	for rows.Next() {
		var c transfer.ContentTypePerformance
		if err := rows.Scan(&c.ContentType, &c.Posts, &c.AverageEngagement); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		types = append(types, c)
	}
	return types, rows.Err()
}

func (r *analyticsRepository) HashtagPerformance(ctx context.Context, userID int64, since time.Time, limit int) ([]transfer.HashtagPerformance, error) {
	query := `
		SELECT tag, COUNT(*), COALESCE(AVG(e.engagement), 0)
		FROM posts p
		CROSS JOIN LATERAL unnest(p.hashtags) AS tag
		LEFT JOIN (
			SELECT post_id, SUM(likes + comments + shares) AS engagement
			FROM post_metrics GROUP BY post_id
		) e ON e.post_id = p.id
		WHERE p.user_id = $1 AND p.is_deleted = false AND p.status = 'published' AND p.created_at >= $2
		GROUP BY tag
		ORDER BY COALESCE(AVG(e.engagement), 0) DESC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, since, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var tags []transfer.HashtagPerformance
	for rows.Next() {
		var h transfer.HashtagPerformance
		if err := rows.Scan(&h.Hashtag, &h.Posts, &h.AverageEngagement); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		tags = append(tags, h)
	}
	return tags, rows.Err()
}
