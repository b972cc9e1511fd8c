package transfer

import "time"

type DashboardOverview struct {
	TotalPosts     int64 `json:"total_posts"`
	PublishedPosts int64 `json:"published_posts"`
	ScheduledPosts int64 `json:"scheduled_posts"`
	DraftPosts     int64 `json:"draft_posts"`
	FailedPosts    int64 `json:"failed_posts"`
	TotalLikes     int64 `json:"total_likes"`
	TotalComments  int64 `json:"total_comments"`
	TotalShares    int64 `json:"total_shares"`
}

type PlatformDistribution struct {
	Platform        string `json:"platform"`
	Posts           int64  `json:"posts"`
	TotalEngagement int64  `json:"total_engagement"`
}

type DailyActivity struct {
	Day        time.Time `json:"day"`
	Posts      int64     `json:"posts"`
	Engagement int64     `json:"engagement"`
}

type TopPost struct {
	PostID   int64  `json:"post_id"`
	Body     string `json:"body"`
	Likes    int64  `json:"likes"`
	Shares   int64  `json:"shares"`
	Comments int64  `json:"comments"`
}

type Dashboard struct {
	Overview             DashboardOverview      `json:"overview"`
	PlatformDistribution []PlatformDistribution `json:"platform_distribution"`
	DailyActivity        []DailyActivity        `json:"daily_activity"`
	TopPosts             []TopPost              `json:"top_posts"`
	TimeRange            string                 `json:"time_range"`
}

type EngagementPoint struct {
	Day               time.Time `json:"day"`
	Likes             int64     `json:"likes"`
	Shares            int64     `json:"shares"`
	Comments          int64     `json:"comments"`
	Posts             int64     `json:"posts"`
	TotalEngagement   int64     `json:"total_engagement"`
	AverageEngagement float64   `json:"average_engagement"`
}

type OptimalTime struct {
	Hour              int     `json:"hour"`
	DayOfWeek         int     `json:"day_of_week"`
	AverageEngagement float64 `json:"average_engagement"`
	Posts             int64   `json:"posts"`
}

type WeekdayActivity struct {
	DayOfWeek         int     `json:"day_of_week"`
	Posts             int64   `json:"posts"`
	AverageEngagement float64 `json:"average_engagement"`
}

type ScheduleReport struct {
	OptimalTimes       []OptimalTime     `json:"optimal_times"`
	UpcomingPosts      interface{}       `json:"upcoming_posts"`
	WeeklyDistribution []WeekdayActivity `json:"weekly_distribution"`
}

type ContentTypePerformance struct {
	ContentType       string  `json:"content_type"` // text, image, video
	Posts             int64   `json:"posts"`
	AverageEngagement float64 `json:"average_engagement"`
}

type HashtagPerformance struct {
	Hashtag           string  `json:"hashtag"`
	Posts             int64   `json:"posts"`
	AverageEngagement float64 `json:"average_engagement"`
}

type ContentReport struct {
	ContentTypes []ContentTypePerformance `json:"content_types"`
	Hashtags     []HashtagPerformance     `json:"hashtags"`
	TimeRange    string                   `json:"time_range"`
}
