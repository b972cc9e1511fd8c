package models

import "time"

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
	PostStatusArchived  = "archived"
)

const (
	PlatformStatusDraft      = "draft"
	PlatformStatusScheduled  = "scheduled"
	PlatformStatusPublishing = "publishing"
	PlatformStatusPublished  = "published"
	PlatformStatusFailed     = "failed"
)

// Platforms lists every supported platform in a fixed order. Analytics
// rollups iterate in this order, which also decides best-platform ties.
var Platforms = []string{"facebook", "instagram", "twitter", "linkedin", "google", "tiktok"}

func IsKnownPlatform(platform string) bool {
	for _, p := range Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

type Post struct {
	ID            int64      `db:"id" json:"id"`
	UserID        int64      `db:"user_id" json:"user_id"`
	Title         string     `db:"title" json:"title"`
	Body          string     `db:"body" json:"body"`
	Hashtags      []string   `db:"hashtags" json:"hashtags"`
	Mentions      []string   `db:"mentions" json:"mentions"`
	IsStory       bool       `db:"is_story" json:"is_story"`
	Status        string     `db:"status" json:"status"`
	ScheduledTime *time.Time `db:"scheduled_time" json:"scheduled_time"`
	PublishedAt   *time.Time `db:"published_at" json:"published_at"`
	IsDeleted     bool       `db:"is_deleted" json:"-"`
	Version       int64      `db:"version" json:"-"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// PlatformPost is the per-platform publication record embedded on a post.
type PlatformPost struct {
	ID             int64      `db:"id" json:"id"`
	PostID         int64      `db:"post_id" json:"post_id"`
	Platform       string     `db:"platform" json:"platform"`
	PageID         string     `db:"page_id" json:"page_id,omitempty"`
	PlatformPostID string     `db:"platform_post_id" json:"platform_post_id,omitempty"`
	Status         string     `db:"status" json:"status"`
	ScheduledFor   *time.Time `db:"scheduled_for" json:"scheduled_for"`
	PublishedAt    *time.Time `db:"published_at" json:"published_at"`
	ErrorMessage   string     `db:"error_message" json:"error_message,omitempty"`
	ErrorCode      string     `db:"error_code" json:"error_code,omitempty"`
	RetryCount     int        `db:"retry_count" json:"retry_count"`
	CustomBody     string     `db:"custom_body" json:"custom_body,omitempty"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type PostLink struct {
	ID          int64  `db:"id" json:"id"`
	PostID      int64  `db:"post_id" json:"post_id"`
	URL         string `db:"url" json:"url"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	Image       string `db:"image" json:"image"`
}

type MediaAsset struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	FileName     string    `db:"file_name" json:"file_name"`
	FileType     string    `db:"file_type" json:"file_type"`
	FileSize     int64     `db:"file_size" json:"file_size"`
	FileURL      string    `db:"file_url" json:"file_url"`
	ThumbnailURL string    `db:"thumbnail_url" json:"thumbnail_url"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type PostMedia struct {
	PostID       int64 `db:"post_id" json:"post_id"`
	AssetID      int64 `db:"asset_id" json:"asset_id"`
	DisplayOrder int   `db:"display_order" json:"display_order"`
}

// PostMetrics holds the engagement counters pulled from one platform for one
// post. LastUpdated is zero until the first successful pull.
type PostMetrics struct {
	PostID      int64     `db:"post_id" json:"post_id"`
	Platform    string    `db:"platform" json:"platform"`
	Likes       int64     `db:"likes" json:"likes"`
	Comments    int64     `db:"comments" json:"comments"`
	Shares      int64     `db:"shares" json:"shares"`
	Reach       int64     `db:"reach" json:"reach"`
	Impressions int64     `db:"impressions" json:"impressions"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}

// Engagement is the sum of likes, comments and shares.
func (m *PostMetrics) Engagement() int64 {
	return m.Likes + m.Comments + m.Shares
}

// Performance is the cached rollup written back onto a post.
type Performance struct {
	PostID           int64     `db:"post_id" json:"post_id"`
	TotalEngagement  int64     `db:"total_engagement" json:"total_engagement"`
	TotalReach       int64     `db:"total_reach" json:"total_reach"`
	TotalImpressions int64     `db:"total_impressions" json:"total_impressions"`
	EngagementRate   float64   `db:"engagement_rate" json:"engagement_rate"`
	BestPlatform     string    `db:"best_platform" json:"best_platform"`
	LastCalculated   time.Time `db:"last_calculated" json:"last_calculated"`
}

// platformTransitions encodes the forward-only lifecycle of a platform
// record. failed->publishing is reachable only through an explicit retry,
// which callers signal separately; it is not part of this table.
var platformTransitions = map[string][]string{
	PlatformStatusDraft:      {PlatformStatusScheduled, PlatformStatusFailed},
	PlatformStatusScheduled:  {PlatformStatusPublishing, PlatformStatusFailed},
	PlatformStatusPublishing: {PlatformStatusPublished, PlatformStatusFailed},
	PlatformStatusPublished:  {},
	PlatformStatusFailed:     {},
}

// CanTransition reports whether a platform record may move from one status
// to another. Published is terminal; failed only leaves through CanRetry.
func CanTransition(from, to string) bool {
	for _, next := range platformTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanRetry reports whether a platform record may be manually retried.
func CanRetry(status string) bool {
	return status == PlatformStatusFailed
}

// DeriveStatus computes the overall post status from its platform records:
// published as soon as one platform published, failed once every platform
// failed, otherwise the scheduled/draft state the records agree on.
func DeriveStatus(records []*PlatformPost) string {
	if len(records) == 0 {
		return PostStatusDraft
	}
	failed := 0
	scheduled := false
	for _, r := range records {
		switch r.Status {
		case PlatformStatusPublished:
			return PostStatusPublished
		case PlatformStatusFailed:
			failed++
		case PlatformStatusScheduled, PlatformStatusPublishing:
			scheduled = true
		}
	}
	if failed == len(records) {
		return PostStatusFailed
	}
	if scheduled {
		return PostStatusScheduled
	}
	return PostStatusDraft
}
