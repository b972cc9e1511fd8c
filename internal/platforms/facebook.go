package platforms

import (
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

type facebook struct {
	creds   config.PlatformCredentials
	authURL string
	apiURL  string
	client  *http.Client
}

func NewFacebook(creds config.PlatformCredentials) Adapter {
	return &facebook{
		creds:   creds,
		authURL: "https://www.facebook.com",
		apiURL:  "https://graph.facebook.com",
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (fb *facebook) Name() string { return "facebook" }

func (fb *facebook) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", fb.creds.ClientID)
	q.Set("redirect_uri", fb.creds.RedirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "pages_show_list,pages_manage_posts,pages_read_engagement,read_insights")
	q.Set("state", state)
	return fb.authURL + "/v21.0/dialog/oauth?" + q.Encode()
}

func (fb *facebook) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	reqURL := fmt.Sprintf("%s/v21.0/oauth/access_token?client_id=%s&client_secret=%s&redirect_uri=%s&code=%s",
		fb.apiURL, fb.creds.ClientID, fb.creds.ClientSecret,
		url.QueryEscape(fb.creds.RedirectURI), code)

	resp, err := fb.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fbError(body, resp.StatusCode)
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

func (fb *facebook) FetchProfile(ctx context.Context, token *Token) (*Profile, error) {
	reqURL := fmt.Sprintf("%s/me?fields=id,name,picture&access_token=%s",
		fb.apiURL, token.AccessToken)

	resp, err := fb.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &Profile{
		ID:          result.ID,
		Username:    result.Name,
		DisplayName: result.Name,
		Avatar:      result.Picture.Data.URL,
	}, nil
}

// FetchPages lists the pages the user manages, each with its own page token.
func (fb *facebook) FetchPages(ctx context.Context, token *Token) ([]Page, error) {
	reqURL := fmt.Sprintf("%s/me/accounts?fields=id,name,access_token,category,followers_count&access_token=%s",
		fb.apiURL, token.AccessToken)

	resp, err := fb.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fbError(body, resp.StatusCode)
	}

	var result struct {
		Data []struct {
			ID             string `json:"id"`
			Name           string `json:"name"`
			AccessToken    string `json:"access_token"`
			Category       string `json:"category"`
			FollowersCount int64  `json:"followers_count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	pages := make([]Page, 0, len(result.Data))
	for _, p := range result.Data {
		pages = append(pages, Page{
			ID:          p.ID,
			Name:        p.Name,
			AccessToken: p.AccessToken,
			PageType:    p.Category,
			Followers:   p.FollowersCount,
		})
	}
	return pages, nil
}

// RefreshToken exchanges the current long-lived token for a fresh one.
func (fb *facebook) RefreshToken(ctx context.Context, refreshToken string) (*Token, error) {
	reqURL := fmt.Sprintf("%s/v21.0/oauth/access_token?grant_type=fb_exchange_token&client_id=%s&client_secret=%s&fb_exchange_token=%s",
		fb.apiURL, fb.creds.ClientID, fb.creds.ClientSecret, refreshToken)

	resp, err := fb.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fbError(body, resp.StatusCode)
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

// Publish posts to a page feed. Text goes straight to /feed, one image to
// /photos, and multiple images run the two-phase album flow: upload each
// photo unpublished, then attach them all to a single feed post. Stories
// go through /photo_stories.
func (fb *facebook) Publish(ctx context.Context, token *Token, content *Content) (*PublishResult, error) {
	pageToken := content.PageToken
	if pageToken == "" {
		pageToken = token.AccessToken
	}

	if content.IsStory {
		if len(content.MediaURLs) == 0 {
			return nil, fmt.Errorf("facebook story requires an image")
		}
		return fb.publishStory(ctx, content.PageID, pageToken, content.MediaURLs[0])
	}

	switch len(content.MediaURLs) {
	case 0:
		return fb.postForm(ctx, fmt.Sprintf("%s/v21.0/%s/feed", fb.apiURL, content.PageID), url.Values{
			"message":      {content.Body},
			"access_token": {pageToken},
		})
	case 1:
		return fb.postForm(ctx, fmt.Sprintf("%s/v21.0/%s/photos", fb.apiURL, content.PageID), url.Values{
			"url":          {content.MediaURLs[0]},
			"message":      {content.Body},
			"access_token": {pageToken},
		})
	default:
		return fb.publishAlbum(ctx, content.PageID, pageToken, content.Body, content.MediaURLs)
	}
}

func (fb *facebook) publishAlbum(ctx context.Context, pageID, pageToken, message string, mediaURLs []string) (*PublishResult, error) {
	params := url.Values{}
	params.Set("message", message)
	params.Set("access_token", pageToken)

	for i, mediaURL := range mediaURLs {
		res, err := fb.postForm(ctx, fmt.Sprintf("%s/v21.0/%s/photos", fb.apiURL, pageID), url.Values{
			"url":          {mediaURL},
			"published":    {"false"},
			"access_token": {pageToken},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to upload album photo: %w", err)
		}
		params.Set(fmt.Sprintf("attached_media[%d]", i),
			fmt.Sprintf(`{"media_fbid":"%s"}`, res.PlatformPostID))
	}

	return fb.postForm(ctx, fmt.Sprintf("%s/v21.0/%s/feed", fb.apiURL, pageID), params)
}

func (fb *facebook) publishStory(ctx context.Context, pageID, pageToken, imageURL string) (*PublishResult, error) {
	res, err := fb.postForm(ctx, fmt.Sprintf("%s/v21.0/%s/photos", fb.apiURL, pageID), url.Values{
		"url":          {imageURL},
		"published":    {"false"},
		"access_token": {pageToken},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload story photo: %w", err)
	}
	return fb.postForm(ctx, fmt.Sprintf("%s/v21.0/%s/photo_stories", fb.apiURL, pageID), url.Values{
		"photo_id":     {res.PlatformPostID},
		"access_token": {pageToken},
	})
}

func (fb *facebook) FetchMetrics(ctx context.Context, token *Token, platformPostID string, pageToken string) (*Metrics, error) {
	accessToken := pageToken
	if accessToken == "" {
		accessToken = token.AccessToken
	}

	reqURL := fmt.Sprintf("%s/v21.0/%s?fields=likes.summary(true),comments.summary(true),shares,insights.metric(post_impressions,post_impressions_unique)&access_token=%s",
		fb.apiURL, platformPostID, accessToken)

	resp, err := fb.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fbError(body, resp.StatusCode)
	}

	var result struct {
		Likes struct {
			Summary struct {
				TotalCount int64 `json:"total_count"`
			} `json:"summary"`
		} `json:"likes"`
		Comments struct {
			Summary struct {
				TotalCount int64 `json:"total_count"`
			} `json:"summary"`
		} `json:"comments"`
		Shares struct {
			Count int64 `json:"count"`
		} `json:"shares"`
		Insights struct {
			Data []struct {
				Name   string `json:"name"`
				Values []struct {
					Value int64 `json:"value"`
				} `json:"values"`
			} `json:"data"`
		} `json:"insights"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	m := Metrics{
		Likes:    result.Likes.Summary.TotalCount,
		Comments: result.Comments.Summary.TotalCount,
		Shares:   result.Shares.Count,
	}
	for _, d := range result.Insights.Data {
		if len(d.Values) == 0 {
			continue
		}
		switch d.Name {
		case "post_impressions":
			m.Impressions = d.Values[0].Value
		case "post_impressions_unique":
			m.Reach = d.Values[0].Value
		}
	}
	return &m, nil
}

func (fb *facebook) get(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := fb.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return resp, nil
}

func (fb *facebook) postForm(ctx context.Context, reqURL string, params url.Values) (*PublishResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := fb.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fbError(body, resp.StatusCode)
	}

	var result struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	id := result.PostID
	if id == "" {
		id = result.ID
	}
	return &PublishResult{PlatformPostID: id}, nil
}

func fbError(body []byte, status int) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return &PlatformError{
			Platform: "facebook",
			Code:     fmt.Sprintf("%d", payload.Error.Code),
			Message:  payload.Error.Message,
		}
	}
	return fmt.Errorf("error response from Facebook: %s (status code: %d)", body, status)
}
