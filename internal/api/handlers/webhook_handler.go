package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	config "github.com/socialsight/socialsight/configs"
)

type WebhookHandler struct {
	cfg config.Config
}

func NewWebhookHandler(cfg config.Config) *WebhookHandler {
	return &WebhookHandler{cfg: cfg}
}

// VerifyFacebook answers the Graph API subscription handshake by echoing
// hub.challenge when the verify token matches.
func (h *WebhookHandler) VerifyFacebook(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.cfg.FacebookVerifyToken {
		return c.Status(fiber.StatusOK).SendString(challenge)
	}
	return c.SendStatus(fiber.StatusForbidden)
}

// ReceiveFacebook accepts update notifications. Payloads are logged and
// acknowledged; processing happens on the next metrics pull.
func (h *WebhookHandler) ReceiveFacebook(c *fiber.Ctx) error {
	slog.Info("facebook webhook received: " + string(c.Body()))
	return c.SendStatus(fiber.StatusOK)
}

// VerifyTwitterCRC answers Twitter's challenge-response check with the
// HMAC-SHA256 of the crc_token under the consumer secret.
func (h *WebhookHandler) VerifyTwitterCRC(c *fiber.Ctx) error {
	crcToken := c.Query("crc_token")
	if crcToken == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing crc_token",
		})
	}

	mac := hmac.New(sha256.New, []byte(h.cfg.TwitterConsumerSecret))
	mac.Write([]byte(crcToken))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"response_token": "sha256=" + signature,
	})
}

func (h *WebhookHandler) ReceiveTwitter(c *fiber.Ctx) error {
	slog.Info("twitter webhook received: " + string(c.Body()))
	return c.SendStatus(fiber.StatusOK)
}
