package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	config "github.com/socialsight/socialsight/configs"
	"github.com/stretchr/testify/assert"
)

func webhookApp() *fiber.App {
	h := NewWebhookHandler(config.Config{
		FacebookVerifyToken:   "verify-me",
		TwitterConsumerSecret: "consumer-secret",
	})
	app := fiber.New()
	app.Get("/webhooks/facebook", h.VerifyFacebook)
	app.Post("/webhooks/facebook", h.ReceiveFacebook)
	app.Get("/webhooks/twitter", h.VerifyTwitterCRC)
	app.Post("/webhooks/twitter", h.ReceiveTwitter)
	return app
}

func TestVerifyFacebook(t *testing.T) {
	app := webhookApp()

	t.Run("echoes challenge on valid token", func(t *testing.T) {
		req := httptest.NewRequest("GET",
			"/webhooks/facebook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "12345", string(body))
	})

	t.Run("rejects wrong token", func(t *testing.T) {
		req := httptest.NewRequest("GET",
			"/webhooks/facebook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("rejects wrong mode", func(t *testing.T) {
		req := httptest.NewRequest("GET",
			"/webhooks/facebook?hub.mode=unsubscribe&hub.verify_token=verify-me", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}

func TestVerifyTwitterCRC(t *testing.T) {
	app := webhookApp()

	t.Run("signs the crc token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/webhooks/twitter?crc_token=abc123", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var payload struct {
			ResponseToken string `json:"response_token"`
		}
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))

		mac := hmac.New(sha256.New, []byte("consumer-secret"))
		mac.Write([]byte("abc123"))
		expected := "sha256=" + base64.StdEncoding.EncodeToString(mac.Sum(nil))
		assert.Equal(t, expected, payload.ResponseToken)
	})

	t.Run("missing crc token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/webhooks/twitter", nil)
		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
