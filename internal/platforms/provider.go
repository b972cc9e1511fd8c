package platforms

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupported is returned by adapters for operations the platform does
// not offer, such as stories outside facebook/instagram.
var ErrUnsupported = errors.New("operation not supported on this platform")

// Token is the decrypted OAuth credential set handed to adapters.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
	Scopes       string
}

// Profile is the platform-side identity of the connected account.
type Profile struct {
	ID          string
	Username    string
	DisplayName string
	Avatar      string
}

// Page is a page, channel or company tied to an account. Platforms without
// a page concept return none.
type Page struct {
	ID          string
	Name        string
	AccessToken string
	PageType    string
	Followers   int64
}

// Content is everything an adapter needs to publish one post.
type Content struct {
	Body      string
	Hashtags  []string
	Mentions  []string
	MediaURLs []string
	MediaType string
	PageID    string
	PageToken string
	IsStory   bool
}

// PublishResult carries the platform-assigned identifier back.
type PublishResult struct {
	PlatformPostID string
	PermalinkURL   string
}

// Metrics is a snapshot of one published post's counters.
type Metrics struct {
	Likes       int64
	Comments    int64
	Shares      int64
	Reach       int64
	Impressions int64
}

// PlatformError wraps a failure reported by the remote API so callers can
// store the platform's own error code alongside the message.
type PlatformError struct {
	Platform string
	Code     string
	Message  string
}

func (e *PlatformError) Error() string {
	return e.Platform + ": " + e.Message + " (" + e.Code + ")"
}

// Provider handles the OAuth half of a platform integration.
type Provider interface {
	Name() string
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*Token, error)
	FetchProfile(ctx context.Context, token *Token) (*Profile, error)
	FetchPages(ctx context.Context, token *Token) ([]Page, error)
	RefreshToken(ctx context.Context, refreshToken string) (*Token, error)
}

// Publisher handles the publishing half. Every adapter in this package
// implements both Provider and Publisher.
type Publisher interface {
	Publish(ctx context.Context, token *Token, content *Content) (*PublishResult, error)
	FetchMetrics(ctx context.Context, token *Token, platformPostID string, pageToken string) (*Metrics, error)
}
