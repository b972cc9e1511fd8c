package transfer

type PostCreation struct {
	Title         string
	Body          string
	ScheduledTime string // "2006-01-02T15:04", empty for an immediate draft
	Platforms     string // JSON array of platform names
	Hashtags      string // JSON array
	Mentions      string // JSON array
	IsStory       string // "true" to publish as a story where the platform supports it
}

type PostUpdate struct {
	Title         string `json:"title"`
	Body          string `json:"body"`
	ScheduledTime string `json:"scheduled_time"`
}

type PostPage struct {
	Posts interface{} `json:"posts"`
	Page  int         `json:"page"`
	Pages int         `json:"pages"`
	Total int64       `json:"total"`
}
