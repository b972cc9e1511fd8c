package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/socialsight/socialsight/configs"
)

type linkedin struct {
	creds   config.PlatformCredentials
	authURL string
	apiURL  string
	client  *http.Client
}

func NewLinkedIn(creds config.PlatformCredentials) Adapter {
	return &linkedin{
		creds:   creds,
		authURL: "https://www.linkedin.com",
		apiURL:  "https://api.linkedin.com",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (li *linkedin) Name() string { return "linkedin" }

func (li *linkedin) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", li.creds.ClientID)
	q.Set("redirect_uri", li.creds.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "openid profile w_member_social")
	q.Set("state", state)
	return li.authURL + "/oauth/v2/authorization?" + q.Encode()
}

func (li *linkedin) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("client_id", li.creds.ClientID)
	data.Set("client_secret", li.creds.ClientSecret)
	data.Set("redirect_uri", li.creds.RedirectURI)
	return li.tokenRequest(ctx, data)
}

func (li *linkedin) RefreshToken(ctx context.Context, refreshToken string) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	data.Set("client_id", li.creds.ClientID)
	data.Set("client_secret", li.creds.ClientSecret)
	return li.tokenRequest(ctx, data)
}

func (li *linkedin) tokenRequest(ctx context.Context, data url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		li.authURL+"/oauth/v2/accessToken", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := li.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, liError(body, resp.StatusCode)
	}

	var result struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	expiresAt := time.Now().Add(time.Second * time.Duration(result.ExpiresIn))
	return &Token{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    &expiresAt,
	}, nil
}

func (li *linkedin) FetchProfile(ctx context.Context, token *Token) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, li.apiURL+"/v2/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := li.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Sub     string `json:"sub"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &Profile{
		ID:          result.Sub,
		Username:    result.Name,
		DisplayName: result.Name,
		Avatar:      result.Picture,
	}, nil
}

func (li *linkedin) FetchPages(ctx context.Context, token *Token) ([]Page, error) {
	return nil, nil
}

// Publish creates a UGC share under the member URN. Image attachments are
// referenced by URL; LinkedIn fetches them server side.
func (li *linkedin) Publish(ctx context.Context, token *Token, content *Content) (*PublishResult, error) {
	if content.IsStory {
		return nil, ErrUnsupported
	}

	media := make([]map[string]interface{}, 0, len(content.MediaURLs))
	for _, mediaURL := range content.MediaURLs {
		media = append(media, map[string]interface{}{
			"status":        "READY",
			"originalUrl":   mediaURL,
			"media":         mediaURL,
			"mediaCategory": "IMAGE",
		})
	}

	category := "NONE"
	if len(media) > 0 {
		category = "IMAGE"
	}

	payload := map[string]interface{}{
		"author":         "urn:li:person:" + content.PageID,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary": map[string]interface{}{
					"text": content.Body,
				},
				"shareMediaCategory": category,
				"media":              media,
			},
		},
		"visibility": map[string]interface{}{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		li.apiURL+"/v2/ugcPosts", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := li.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, liError(raw, resp.StatusCode)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &PublishResult{PlatformPostID: result.ID}, nil
}

func (li *linkedin) FetchMetrics(ctx context.Context, token *Token, platformPostID string, _ string) (*Metrics, error) {
	reqURL := fmt.Sprintf("%s/v2/socialActions/%s", li.apiURL, url.PathEscape(platformPostID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := li.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, liError(raw, resp.StatusCode)
	}

	var result struct {
		LikesSummary struct {
			TotalLikes int64 `json:"totalLikes"`
		} `json:"likesSummary"`
		CommentsSummary struct {
			TotalComments int64 `json:"totalFirstLevelComments"`
		} `json:"commentsSummary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &Metrics{
		Likes:    result.LikesSummary.TotalLikes,
		Comments: result.CommentsSummary.TotalComments,
	}, nil
}

func liError(body []byte, status int) error {
	var payload struct {
		Message          string `json:"message"`
		ServiceErrorCode int    `json:"serviceErrorCode"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return &PlatformError{
			Platform: "linkedin",
			Code:     fmt.Sprintf("%d", payload.ServiceErrorCode),
			Message:  payload.Message,
		}
	}
	return fmt.Errorf("error response from LinkedIn: %s (status code: %d)", body, status)
}
