package platforms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	config "github.com/socialsight/socialsight/configs"
	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	goauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// googlePlatform publishes to YouTube. Posts must carry a video asset.
type googlePlatform struct {
	creds  config.PlatformCredentials
	client *http.Client
}

func NewGoogle(creds config.PlatformCredentials) Adapter {
	return &googlePlatform{
		creds:  creds,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (g *googlePlatform) Name() string { return "google" }

func (g *googlePlatform) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.creds.ClientID,
		ClientSecret: g.creds.ClientSecret,
		RedirectURL:  g.creds.RedirectURI,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/youtube.upload",
			"https://www.googleapis.com/auth/youtube.readonly",
		},
		Endpoint: googleauth.Endpoint,
	}
}

func (g *googlePlatform) AuthURL(state string) string {
	return g.oauthConfig().AuthCodeURL(state,
		oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (g *googlePlatform) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	conf := g.oauthConfig()
	if conf.ClientID == "" || conf.ClientSecret == "" || conf.RedirectURL == "" {
		err := errors.New("OAuth2 configuration is incomplete")
		slog.Info(err.Error())
		return nil, err
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if token.RefreshToken == "" {
		err = errors.New("refresh token is empty")
		slog.Info(err.Error())
		return nil, err
	}

	expiry := token.Expiry
	return &Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    &expiry,
	}, nil
}

func (g *googlePlatform) FetchProfile(ctx context.Context, token *Token) (*Profile, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token.AccessToken,
	}))
	service, err := goauth2.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	userInfo, err := service.Userinfo.Get().Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &Profile{
		ID:          userInfo.Id,
		Username:    userInfo.Email,
		DisplayName: userInfo.Name,
		Avatar:      userInfo.Picture,
	}, nil
}

// FetchPages lists the user's YouTube channels.
func (g *googlePlatform) FetchPages(ctx context.Context, token *Token) ([]Page, error) {
	service, err := g.youtubeService(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	resp, err := service.Channels.List([]string{"snippet", "statistics"}).Mine(true).Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	pages := make([]Page, 0, len(resp.Items))
	for _, ch := range resp.Items {
		pages = append(pages, Page{
			ID:        ch.Id,
			Name:      ch.Snippet.Title,
			PageType:  "channel",
			Followers: int64(ch.Statistics.SubscriberCount),
		})
	}
	return pages, nil
}

func (g *googlePlatform) RefreshToken(ctx context.Context, refreshToken string) (*Token, error) {
	conf := g.oauthConfig()
	tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	token, err := tokenSource.Token()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	newRefresh := token.RefreshToken
	if newRefresh == "" {
		newRefresh = refreshToken
	}
	expiry := token.Expiry
	return &Token{
		AccessToken:  token.AccessToken,
		RefreshToken: newRefresh,
		ExpiresAt:    &expiry,
	}, nil
}

func (g *googlePlatform) Publish(ctx context.Context, token *Token, content *Content) (*PublishResult, error) {
	if content.IsStory {
		return nil, ErrUnsupported
	}
	if len(content.MediaURLs) == 0 || content.MediaType != "video" {
		return nil, errors.New("youtube requires a video asset")
	}

	service, err := g.youtubeService(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	tempFile, err := g.downloadVideo(ctx, content.MediaURLs[0])
	if err != nil {
		return nil, err
	}
	defer os.Remove(tempFile)

	file, err := os.Open(tempFile)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer file.Close()

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       firstLine(content.Body),
			Description: content.Body,
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{
			PrivacyStatus: "public",
		},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	response, err := call.Media(file).Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &PublishResult{
		PlatformPostID: response.Id,
		PermalinkURL:   "https://youtu.be/" + response.Id,
	}, nil
}

func (g *googlePlatform) FetchMetrics(ctx context.Context, token *Token, platformPostID string, _ string) (*Metrics, error) {
	service, err := g.youtubeService(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	resp, err := service.Videos.List([]string{"statistics"}).Id(platformPostID).Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video not found: %s", platformPostID)
	}

	stats := resp.Items[0].Statistics
	return &Metrics{
		Likes:       int64(stats.LikeCount),
		Comments:    int64(stats.CommentCount),
		Reach:       int64(stats.ViewCount),
		Impressions: int64(stats.ViewCount),
	}, nil
}

func (g *googlePlatform) youtubeService(ctx context.Context, accessToken string) (*youtube.Service, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
	}))
	service, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return service, nil
}

func (g *googlePlatform) downloadVideo(ctx context.Context, mediaURL string) (string, error) {
	tempFile, err := os.CreateTemp("", "video-*.mp4")
	if err != nil {
		return "", fmt.Errorf("error creating temporary file: %w", err)
	}
	defer tempFile.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error downloading video: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected response status: %d", resp.StatusCode)
	}

	if _, err := tempFile.ReadFrom(resp.Body); err != nil {
		return "", fmt.Errorf("error saving video: %w", err)
	}
	return tempFile.Name(), nil
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}
