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

func testFacebook(apiURL string) *facebook {
	fb := NewFacebook(config.PlatformCredentials{
		ClientID:    "fb-client",
		RedirectURI: "https://app.example.com/auth/facebook/callback",
	}).(*facebook)
	if apiURL != "" {
		fb.apiURL = apiURL
	}
	fb.client = &http.Client{Timeout: 5 * time.Second}
	return fb
}

func TestFacebookAuthURL(t *testing.T) {
	fb := testFacebook("")
	parsed, err := url.Parse(fb.AuthURL("xyz"))
	assert.NoError(t, err)
	assert.Equal(t, "www.facebook.com", parsed.Host)
	assert.Equal(t, "/v21.0/dialog/oauth", parsed.Path)
	assert.Equal(t, "fb-client", parsed.Query().Get("client_id"))
	assert.Equal(t, "xyz", parsed.Query().Get("state"))
	assert.Contains(t, parsed.Query().Get("scope"), "pages_manage_posts")
}

func TestFacebookPublishTextOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0/page-1/feed", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "hello world", r.Form.Get("message"))
		assert.Equal(t, "page-tok", r.Form.Get("access_token"))
		json.NewEncoder(w).Encode(map[string]string{"id": "page-1_123"})
	}))
	defer server.Close()

	fb := testFacebook(server.URL)
	result, err := fb.Publish(context.Background(), &Token{AccessToken: "user-tok"}, &Content{
		Body:      "hello world",
		PageID:    "page-1",
		PageToken: "page-tok",
	})
	assert.NoError(t, err)
	assert.Equal(t, "page-1_123", result.PlatformPostID)
}

func TestFacebookPublishFallsBackToUserToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "user-tok", r.Form.Get("access_token"))
		json.NewEncoder(w).Encode(map[string]string{"id": "1"})
	}))
	defer server.Close()

	fb := testFacebook(server.URL)
	_, err := fb.Publish(context.Background(), &Token{AccessToken: "user-tok"}, &Content{
		Body:   "no page token",
		PageID: "page-1",
	})
	assert.NoError(t, err)
}

func TestFacebookPublishSinglePhoto(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v21.0/page-1/photos", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "https://cdn.example.com/a.jpg", r.Form.Get("url"))
		json.NewEncoder(w).Encode(map[string]string{"id": "photo-1", "post_id": "page-1_456"})
	}))
	defer server.Close()

	fb := testFacebook(server.URL)
	result, err := fb.Publish(context.Background(), &Token{AccessToken: "tok"}, &Content{
		Body:      "one pic",
		MediaURLs: []string{"https://cdn.example.com/a.jpg"},
		PageID:    "page-1",
		PageToken: "tok",
	})
	assert.NoError(t, err)
	// post_id wins over the photo id when present
	assert.Equal(t, "page-1_456", result.PlatformPostID)
}

func TestFacebookPublishAlbum(t *testing.T) {
	var uploads int
	var feedForm url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		switch r.URL.Path {
		case "/v21.0/page-1/photos":
			uploads++
			assert.Equal(t, "false", r.Form.Get("published"))
			json.NewEncoder(w).Encode(map[string]string{"id": fmt.Sprintf("fbid-%d", uploads)})
		case "/v21.0/page-1/feed":
			feedForm = r.Form
			json.NewEncoder(w).Encode(map[string]string{"id": "page-1_789"})
		default:
			t.Errorf("unexpected request: %s", r.URL.Path)
		}
	}))
	defer server.Close()

	fb := testFacebook(server.URL)
	result, err := fb.Publish(context.Background(), &Token{AccessToken: "tok"}, &Content{
		Body:      "album post",
		MediaURLs: []string{"https://c/1.jpg", "https://c/2.jpg"},
		PageID:    "page-1",
		PageToken: "tok",
	})
	assert.NoError(t, err)
	assert.Equal(t, "page-1_789", result.PlatformPostID)
	assert.Equal(t, 2, uploads)
	assert.Equal(t, `{"media_fbid":"fbid-1"}`, feedForm.Get("attached_media[0]"))
	assert.Equal(t, `{"media_fbid":"fbid-2"}`, feedForm.Get("attached_media[1]"))
}

func TestFacebookStoryRequiresImage(t *testing.T) {
	fb := testFacebook("http://127.0.0.1:1")
	_, err := fb.Publish(context.Background(), &Token{AccessToken: "tok"}, &Content{
		Body:    "story",
		PageID:  "page-1",
		IsStory: true,
	})
	assert.ErrorContains(t, err, "requires an image")
}
