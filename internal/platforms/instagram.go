package platforms

import (
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

type instagram struct {
	creds   config.PlatformCredentials
	authURL string
	apiURL  string
	client  *http.Client
}

func NewInstagram(creds config.PlatformCredentials) Adapter {
	return &instagram{
		creds:   creds,
		authURL: "https://api.instagram.com",
		apiURL:  "https://graph.instagram.com",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (ig *instagram) Name() string { return "instagram" }

func (ig *instagram) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", ig.creds.ClientID)
	q.Set("redirect_uri", ig.creds.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "instagram_business_basic,instagram_business_content_publish,instagram_business_manage_insights")
	q.Set("state", state)
	return ig.authURL + "/oauth/authorize?" + q.Encode()
}

func (ig *instagram) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	short, err := ig.getShortLivedToken(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get short-lived token: %v", err)
	}
	return ig.getLongLivedToken(ctx, short)
}

func (ig *instagram) getShortLivedToken(ctx context.Context, code string) (string, error) {
	data := url.Values{}
	data.Set("client_id", ig.creds.ClientID)
	data.Set("client_secret", ig.creds.ClientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", ig.creds.RedirectURI)
	data.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		ig.authURL+"/oauth/access_token", strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ig.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		AccessToken string `json:"access_token"`
		UserID      int64  `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("failed to decode token response: %v", err)
	}
	return result.AccessToken, nil
}

func (ig *instagram) getLongLivedToken(ctx context.Context, shortLivedToken string) (*Token, error) {
	reqURL := fmt.Sprintf("%s/access_token?grant_type=ig_exchange_token&client_secret=%s&access_token=%s",
		ig.apiURL, ig.creds.ClientSecret, shortLivedToken)

	resp, err := ig.getJSON(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get long-lived token: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, igError(body, resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	expiresAt := time.Now().Add(time.Second * time.Duration(result.ExpiresIn))
	return &Token{
		AccessToken:  result.AccessToken,
		RefreshToken: result.AccessToken,
		ExpiresAt:    &expiresAt,
	}, nil
}

func (ig *instagram) FetchProfile(ctx context.Context, token *Token) (*Profile, error) {
	reqURL := fmt.Sprintf("%s/me?fields=id,username,name,profile_picture_url&access_token=%s",
		ig.apiURL, token.AccessToken)

	resp, err := ig.getJSON(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		ID                string `json:"id"`
		Username          string `json:"username"`
		Name              string `json:"name"`
		ProfilePictureURL string `json:"profile_picture_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &Profile{
		ID:          result.ID,
		Username:    result.Username,
		DisplayName: result.Name,
		Avatar:      result.ProfilePictureURL,
	}, nil
}

// Instagram has no page concept; the business account itself is the target.
func (ig *instagram) FetchPages(ctx context.Context, token *Token) ([]Page, error) {
	return nil, nil
}

// RefreshToken extends a long-lived token before it expires.
func (ig *instagram) RefreshToken(ctx context.Context, refreshToken string) (*Token, error) {
	reqURL := fmt.Sprintf("%s/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		ig.apiURL, refreshToken)

	resp, err := ig.getJSON(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, igError(body, resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	expiresAt := time.Now().Add(time.Second * time.Duration(result.ExpiresIn))
	return &Token{
		AccessToken:  result.AccessToken,
		RefreshToken: result.AccessToken,
		ExpiresAt:    &expiresAt,
	}, nil
}

// Publish requires at least one image. Single images go through one media
// container; multiple images become a carousel. Stories use the STORIES
// media type. The pre-check runs before any network call is made.
func (ig *instagram) Publish(ctx context.Context, token *Token, content *Content) (*PublishResult, error) {
	if len(content.MediaURLs) == 0 {
		return nil, errors.New("instagram requires at least one image")
	}

	accountID := content.PageID

	if content.IsStory {
		containerID, err := ig.createContainer(ctx, accountID, token.AccessToken, url.Values{
			"image_url":  {content.MediaURLs[0]},
			"media_type": {"STORIES"},
		})
		if err != nil {
			return nil, err
		}
		return ig.publishContainer(ctx, accountID, containerID, token.AccessToken)
	}

	if len(content.MediaURLs) == 1 {
		containerID, err := ig.createContainer(ctx, accountID, token.AccessToken, url.Values{
			"image_url": {content.MediaURLs[0]},
			"caption":   {content.Body},
		})
		if err != nil {
			return nil, err
		}
		return ig.publishContainer(ctx, accountID, containerID, token.AccessToken)
	}

	children := make([]string, 0, len(content.MediaURLs))
	for _, mediaURL := range content.MediaURLs {
		childID, err := ig.createContainer(ctx, accountID, token.AccessToken, url.Values{
			"image_url":        {mediaURL},
			"is_carousel_item": {"true"},
		})
		if err != nil {
			return nil, err
		}
		children = append(children, childID)
	}

	carouselID, err := ig.createContainer(ctx, accountID, token.AccessToken, url.Values{
		"media_type": {"CAROUSEL"},
		"children":   {strings.Join(children, ",")},
		"caption":    {content.Body},
	})
	if err != nil {
		return nil, err
	}
	return ig.publishContainer(ctx, accountID, carouselID, token.AccessToken)
}

func (ig *instagram) createContainer(ctx context.Context, accountID, accessToken string, params url.Values) (string, error) {
	params.Set("access_token", accessToken)

	reqURL := fmt.Sprintf("%s/v21.0/%s/media", ig.apiURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ig.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", igError(body, resp.StatusCode)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return "", err
	}
	return result.ID, nil
}

func (ig *instagram) publishContainer(ctx context.Context, accountID, containerID, accessToken string) (*PublishResult, error) {
	params := url.Values{}
	params.Set("creation_id", containerID)
	params.Set("access_token", accessToken)

	reqURL := fmt.Sprintf("%s/v21.0/%s/media_publish", ig.apiURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ig.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, igError(body, resp.StatusCode)
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

func (ig *instagram) FetchMetrics(ctx context.Context, token *Token, platformPostID string, _ string) (*Metrics, error) {
	reqURL := fmt.Sprintf("%s/v21.0/%s/insights?metric=likes,comments,shares,reach,impressions&access_token=%s",
		ig.apiURL, platformPostID, token.AccessToken)

	resp, err := ig.getJSON(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, igError(body, resp.StatusCode)
	}

	var result struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value int64 `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	var m Metrics
	for _, d := range result.Data {
		if len(d.Values) == 0 {
			continue
		}
		v := d.Values[0].Value
		switch d.Name {
		case "likes":
			m.Likes = v
		case "comments":
			m.Comments = v
		case "shares":
			m.Shares = v
		case "reach":
			m.Reach = v
		case "impressions":
			m.Impressions = v
		}
	}
	return &m, nil
}

func (ig *instagram) getJSON(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := ig.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return resp, nil
}

// igError extracts the Graph API error payload when present.
func igError(body []byte, status int) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return &PlatformError{
			Platform: "instagram",
			Code:     fmt.Sprintf("%d", payload.Error.Code),
			Message:  payload.Error.Message,
		}
	}
	return fmt.Errorf("error response from Instagram: %s (status code: %d)", body, status)
}
