package platforms

import (
	"bytes"
	"context"
	"encoding/base64"
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

type twitter struct {
	creds   config.PlatformCredentials
	authURL string
	apiURL  string
	client  *http.Client
}

func NewTwitter(creds config.PlatformCredentials) Adapter {
	return &twitter{
		creds:   creds,
		authURL: "https://twitter.com",
		apiURL:  "https://api.twitter.com",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (tw *twitter) Name() string { return "twitter" }

func (tw *twitter) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", tw.creds.ClientID)
	q.Set("redirect_uri", tw.creds.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "tweet.read tweet.write users.read offline.access")
	q.Set("state", state)
	q.Set("code_challenge", "challenge")
	q.Set("code_challenge_method", "plain")
	return tw.authURL + "/i/oauth2/authorize?" + q.Encode()
}

func (tw *twitter) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", tw.creds.RedirectURI)
	data.Set("code_verifier", "challenge")
	return tw.tokenRequest(ctx, data)
}

// RefreshToken uses the OAuth2 refresh grant with basic auth, as Twitter
// requires for confidential clients.
func (tw *twitter) RefreshToken(ctx context.Context, refreshToken string) (*Token, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	return tw.tokenRequest(ctx, data)
}

func (tw *twitter) tokenRequest(ctx context.Context, data url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		tw.apiURL+"/2/oauth2/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	basic := base64.StdEncoding.EncodeToString(
		[]byte(tw.creds.ClientID + ":" + tw.creds.ClientSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := tw.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, twError(body, resp.StatusCode)
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

func (tw *twitter) FetchProfile(ctx context.Context, token *Token) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		tw.apiURL+"/2/users/me?user.fields=profile_image_url", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := tw.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		Data struct {
			ID              string `json:"id"`
			Name            string `json:"name"`
			Username        string `json:"username"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &Profile{
		ID:          result.Data.ID,
		Username:    result.Data.Username,
		DisplayName: result.Data.Name,
		Avatar:      result.Data.ProfileImageURL,
	}, nil
}

func (tw *twitter) FetchPages(ctx context.Context, token *Token) ([]Page, error) {
	return nil, nil
}

func (tw *twitter) Publish(ctx context.Context, token *Token, content *Content) (*PublishResult, error) {
	if content.IsStory {
		return nil, ErrUnsupported
	}

	payload := map[string]interface{}{"text": content.Body}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		tw.apiURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := tw.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, twError(raw, resp.StatusCode)
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &PublishResult{PlatformPostID: result.Data.ID}, nil
}

func (tw *twitter) FetchMetrics(ctx context.Context, token *Token, platformPostID string, _ string) (*Metrics, error) {
	reqURL := fmt.Sprintf("%s/2/tweets/%s?tweet.fields=public_metrics,non_public_metrics", tw.apiURL, platformPostID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := tw.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, twError(raw, resp.StatusCode)
	}

	var result struct {
		Data struct {
			PublicMetrics struct {
				LikeCount    int64 `json:"like_count"`
				ReplyCount   int64 `json:"reply_count"`
				RetweetCount int64 `json:"retweet_count"`
				QuoteCount   int64 `json:"quote_count"`
			} `json:"public_metrics"`
			NonPublicMetrics struct {
				ImpressionCount int64 `json:"impression_count"`
			} `json:"non_public_metrics"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	pm := result.Data.PublicMetrics
	return &Metrics{
		Likes:       pm.LikeCount,
		Comments:    pm.ReplyCount,
		Shares:      pm.RetweetCount + pm.QuoteCount,
		Impressions: result.Data.NonPublicMetrics.ImpressionCount,
		Reach:       result.Data.NonPublicMetrics.ImpressionCount,
	}, nil
}

func twError(body []byte, status int) error {
	var payload struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Title != "" {
		return &PlatformError{
			Platform: "twitter",
			Code:     payload.Title,
			Message:  payload.Detail,
		}
	}
	return fmt.Errorf("error response from Twitter: %s (status code: %d)", body, status)
}
