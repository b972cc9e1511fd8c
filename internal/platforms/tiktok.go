package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/socialsight/socialsight/configs"
)

type tiktok struct {
	creds   config.PlatformCredentials
	authURL string
	apiURL  string
	client  *http.Client
}

func NewTiktok(creds config.PlatformCredentials) Adapter {
	return &tiktok{
		creds:   creds,
		authURL: "https://www.tiktok.com",
		apiURL:  "https://open.tiktokapis.com",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (tk *tiktok) Name() string { return "tiktok" }

func (tk *tiktok) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_key", tk.creds.ClientID)
	q.Set("redirect_uri", tk.creds.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "user.info.basic,user.info.profile,video.publish,video.upload")
	q.Set("state", state)
	return tk.authURL + "/v2/auth/authorize/?" + q.Encode()
}

func (tk *tiktok) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	data := url.Values{}
	data.Set("client_key", tk.creds.ClientID)
	data.Set("client_secret", tk.creds.ClientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", tk.creds.RedirectURI)
	return tk.tokenRequest(ctx, data)
}

func (tk *tiktok) RefreshToken(ctx context.Context, refreshToken string) (*Token, error) {
	data := url.Values{}
	data.Set("client_key", tk.creds.ClientID)
	data.Set("client_secret", tk.creds.ClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	return tk.tokenRequest(ctx, data)
}

func (tk *tiktok) tokenRequest(ctx context.Context, data url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		tk.apiURL+"/v2/oauth/token/", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := tk.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("TikTok token endpoint returned non-200 status")
		return nil, errors.New("TikTok token endpoint returned non-200 status")
	}

	var result struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	expiresAt := time.Now().Add(time.Second * time.Duration(result.ExpiresIn))
	return &Token{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    &expiresAt,
	}, nil
}

func (tk *tiktok) FetchProfile(ctx context.Context, token *Token) (*Profile, error) {
	reqURL := tk.apiURL + "/v2/user/info/?fields=open_id,avatar_url,display_name,username"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := tk.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Data struct {
			User struct {
				OpenID      string `json:"open_id"`
				Username    string `json:"username"`
				DisplayName string `json:"display_name"`
				AvatarURL   string `json:"avatar_url"`
			} `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &Profile{
		ID:          result.Data.User.OpenID,
		Username:    result.Data.User.Username,
		DisplayName: result.Data.User.DisplayName,
		Avatar:      result.Data.User.AvatarURL,
	}, nil
}

func (tk *tiktok) FetchPages(ctx context.Context, token *Token) ([]Page, error) {
	return nil, nil
}

// Publish initiates a direct post. Videos use PULL_FROM_URL so TikTok
// downloads the asset itself; multiple images go through the photo flow.
func (tk *tiktok) Publish(ctx context.Context, token *Token, content *Content) (*PublishResult, error) {
	if content.IsStory {
		return nil, ErrUnsupported
	}
	if len(content.MediaURLs) == 0 {
		return nil, errors.New("tiktok requires a video or photos")
	}

	if content.MediaType == "video" {
		return tk.publishVideo(ctx, token.AccessToken, content)
	}
	return tk.publishPhotos(ctx, token.AccessToken, content)
}

func (tk *tiktok) publishVideo(ctx context.Context, accessToken string, content *Content) (*PublishResult, error) {
	payload := map[string]interface{}{
		"post_info": map[string]interface{}{
			"title":                    content.Body,
			"privacy_level":            "PUBLIC_TO_EVERYONE",
			"disable_duet":             false,
			"disable_comment":          false,
			"disable_stitch":           false,
			"video_cover_timestamp_ms": 1000,
		},
		"source_info": map[string]interface{}{
			"source":    "PULL_FROM_URL",
			"video_url": content.MediaURLs[0],
		},
	}
	return tk.initPost(ctx, accessToken, "/v2/post/publish/video/init/", payload)
}

func (tk *tiktok) publishPhotos(ctx context.Context, accessToken string, content *Content) (*PublishResult, error) {
	payload := map[string]interface{}{
		"post_info": map[string]interface{}{
			"title":         content.Body,
			"privacy_level": "PUBLIC_TO_EVERYONE",
		},
		"source_info": map[string]interface{}{
			"source":            "PULL_FROM_URL",
			"photo_images":      content.MediaURLs,
			"photo_cover_index": 0,
		},
		"post_mode":  "DIRECT_POST",
		"media_type": "PHOTO",
	}
	return tk.initPost(ctx, accessToken, "/v2/post/publish/content/init/", payload)
}

func (tk *tiktok) initPost(ctx context.Context, accessToken, path string, payload map[string]interface{}) (*PublishResult, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		tk.apiURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := tk.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, tkError(body, resp.StatusCode)
	}

	var result struct {
		Data struct {
			PublishID string `json:"publish_id"`
		} `json:"data"`
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if result.Error.Code != "" && result.Error.Code != "ok" {
		return nil, &PlatformError{
			Platform: "tiktok",
			Code:     result.Error.Code,
			Message:  result.Error.Message,
		}
	}
	return &PublishResult{PlatformPostID: result.Data.PublishID}, nil
}

// FetchMetrics queries the video listing for engagement counters. TikTok
// has no insights endpoint for basic scopes, so reach mirrors views.
func (tk *tiktok) FetchMetrics(ctx context.Context, token *Token, platformPostID string, _ string) (*Metrics, error) {
	payload := map[string]interface{}{
		"filters": map[string]interface{}{
			"video_ids": []string{platformPostID},
		},
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	reqURL := tk.apiURL + "/v2/video/query/?fields=id,like_count,comment_count,share_count,view_count"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := tk.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, tkError(body, resp.StatusCode)
	}

	var result struct {
		Data struct {
			Videos []struct {
				LikeCount    int64 `json:"like_count"`
				CommentCount int64 `json:"comment_count"`
				ShareCount   int64 `json:"share_count"`
				ViewCount    int64 `json:"view_count"`
			} `json:"videos"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if len(result.Data.Videos) == 0 {
		return nil, fmt.Errorf("video not found: %s", platformPostID)
	}

	v := result.Data.Videos[0]
	return &Metrics{
		Likes:       v.LikeCount,
		Comments:    v.CommentCount,
		Shares:      v.ShareCount,
		Reach:       v.ViewCount,
		Impressions: v.ViewCount,
	}, nil
}

func tkError(body []byte, status int) error {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return &PlatformError{
			Platform: "tiktok",
			Code:     payload.Error.Code,
			Message:  payload.Error.Message,
		}
	}
	return fmt.Errorf("error response from TikTok: %s (status code: %d)", body, status)
}
