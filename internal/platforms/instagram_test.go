package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	config "github.com/socialsight/socialsight/configs"
	"github.com/stretchr/testify/assert"
)

func testInstagram(apiURL string) *instagram {
	ig := NewInstagram(config.PlatformCredentials{
		ClientID:    "client-id",
		RedirectURI: "https://app.example.com/auth/instagram/callback",
	}).(*instagram)
	if apiURL != "" {
		ig.apiURL = apiURL
	}
	ig.client = &http.Client{Timeout: 5 * time.Second}
	return ig
}

func TestInstagramAuthURL(t *testing.T) {
	ig := testInstagram("")
	raw := ig.AuthURL("state-token")

	parsed, err := url.Parse(raw)
	assert.NoError(t, err)
	assert.Equal(t, "api.instagram.com", parsed.Host)
	assert.Equal(t, "/oauth/authorize", parsed.Path)

	q := parsed.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "state-token", q.Get("state"))
	assert.Contains(t, q.Get("scope"), "instagram_business_content_publish")
}

func TestInstagramPublishRequiresMedia(t *testing.T) {
	// must fail before any request is attempted
	ig := testInstagram("http://127.0.0.1:1")

	_, err := ig.Publish(context.Background(), &Token{AccessToken: "tok"}, &Content{
		Body:   "text only",
		PageID: "17841400000000000",
	})
	assert.ErrorContains(t, err, "at least one image")
}

func TestInstagramPublishSingleImage(t *testing.T) {
	var containerCalls, publishCalls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		switch r.URL.Path {
		case "/v21.0/17841400000000000/media":
			containerCalls++
			assert.Equal(t, "https://cdn.example.com/a.jpg", r.Form.Get("image_url"))
			assert.Equal(t, "hello", r.Form.Get("caption"))
			assert.Equal(t, "tok", r.Form.Get("access_token"))
			json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
		case "/v21.0/17841400000000000/media_publish":
			publishCalls++
			assert.Equal(t, "container-1", r.Form.Get("creation_id"))
			json.NewEncoder(w).Encode(map[string]string{"id": "media-42"})
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	ig := testInstagram(server.URL)
	result, err := ig.Publish(context.Background(), &Token{AccessToken: "tok"}, &Content{
		Body:      "hello",
		MediaURLs: []string{"https://cdn.example.com/a.jpg"},
		PageID:    "17841400000000000",
	})
	assert.NoError(t, err)
	assert.Equal(t, "media-42", result.PlatformPostID)
	assert.Equal(t, 1, containerCalls)
	assert.Equal(t, 1, publishCalls)
}

func TestInstagramPublishCarousel(t *testing.T) {
	var children []string
	var carouselChildren string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		switch r.URL.Path {
		case "/v21.0/acct/media":
			if r.Form.Get("is_carousel_item") == "true" {
				id := fmt.Sprintf("child-%d", len(children)+1)
				children = append(children, id)
				json.NewEncoder(w).Encode(map[string]string{"id": id})
				return
			}
			assert.Equal(t, "CAROUSEL", r.Form.Get("media_type"))
			carouselChildren = r.Form.Get("children")
			json.NewEncoder(w).Encode(map[string]string{"id": "carousel-1"})
		case "/v21.0/acct/media_publish":
			assert.Equal(t, "carousel-1", r.Form.Get("creation_id"))
			json.NewEncoder(w).Encode(map[string]string{"id": "media-99"})
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	ig := testInstagram(server.URL)
	result, err := ig.Publish(context.Background(), &Token{AccessToken: "tok"}, &Content{
		Body:      "three pics",
		MediaURLs: []string{"https://c/1.jpg", "https://c/2.jpg", "https://c/3.jpg"},
		PageID:    "acct",
	})
	assert.NoError(t, err)
	assert.Equal(t, "media-99", result.PlatformPostID)
	assert.Len(t, children, 3)
	assert.Equal(t, "child-1,child-2,child-3", carouselChildren)
}

func TestInstagramPublishStory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		switch r.URL.Path {
		case "/v21.0/acct/media":
			assert.Equal(t, "STORIES", r.Form.Get("media_type"))
			json.NewEncoder(w).Encode(map[string]string{"id": "story-container"})
		case "/v21.0/acct/media_publish":
			json.NewEncoder(w).Encode(map[string]string{"id": "story-1"})
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	ig := testInstagram(server.URL)
	result, err := ig.Publish(context.Background(), &Token{AccessToken: "tok"}, &Content{
		MediaURLs: []string{"https://c/1.jpg"},
		PageID:    "acct",
		IsStory:   true,
	})
	assert.NoError(t, err)
	assert.Equal(t, "story-1", result.PlatformPostID)
}

func TestInstagramPublishAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Invalid OAuth access token", "code": 190},
		})
	}))
	defer server.Close()

	ig := testInstagram(server.URL)
	_, err := ig.Publish(context.Background(), &Token{AccessToken: "bad"}, &Content{
		MediaURLs: []string{"https://c/1.jpg"},
		PageID:    "acct",
	})

	var pe *PlatformError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, "instagram", pe.Platform)
	assert.Equal(t, "190", pe.Code)
	assert.Equal(t, "Invalid OAuth access token", pe.Message)
}

func TestInstagramFetchMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0/media-42/insights", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"name": "likes", "values": []map[string]int64{{"value": 12}}},
				{"name": "comments", "values": []map[string]int64{{"value": 4}}},
				{"name": "shares", "values": []map[string]int64{{"value": 2}}},
				{"name": "reach", "values": []map[string]int64{{"value": 300}}},
				{"name": "impressions", "values": []map[string]int64{{"value": 450}}},
			},
		})
	}))
	defer server.Close()

	ig := testInstagram(server.URL)
	m, err := ig.FetchMetrics(context.Background(), &Token{AccessToken: "tok"}, "media-42", "")
	assert.NoError(t, err)
	assert.Equal(t, int64(12), m.Likes)
	assert.Equal(t, int64(4), m.Comments)
	assert.Equal(t, int64(2), m.Shares)
	assert.Equal(t, int64(300), m.Reach)
	assert.Equal(t, int64(450), m.Impressions)
}
