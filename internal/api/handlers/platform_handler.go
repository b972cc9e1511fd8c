package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	config "github.com/socialsight/socialsight/configs"
	"github.com/socialsight/socialsight/internal/service"
)

type PlatformHandler struct {
	cfg config.Config
	s   service.PlatformService
}

func NewPlatformHandler(cfg config.Config, s service.PlatformService) *PlatformHandler {
	return &PlatformHandler{cfg: cfg, s: s}
}

// Connect redirects the user to the platform's consent screen.
func (h *PlatformHandler) Connect(c *fiber.Ctx) error {
	userID := GetUserID(c)
	platform := c.Params("platform")

	authURL, err := h.s.AuthURL(c.Context(), userID, platform)
	if err != nil {
		if errors.Is(err, service.ErrPlatformQuota) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Redirect(authURL, fiber.StatusTemporaryRedirect)
}

// Callback handles the OAuth redirect and sends the user back to the app.
func (h *PlatformHandler) Callback(c *fiber.Ctx) error {
	state := c.Query("state")
	code := c.Query("code")

	_, platform, err := h.s.Callback(c.Context(), state, code)
	if err != nil {
		return c.Redirect(fmt.Sprintf("%s/accounts?error=%s", h.cfg.FrontendURL, err.Error()),
			fiber.StatusTemporaryRedirect)
	}
	return c.Redirect(fmt.Sprintf("%s/accounts?connected=%s", h.cfg.FrontendURL, platform),
		fiber.StatusTemporaryRedirect)
}

func (h *PlatformHandler) ListAccounts(c *fiber.Ctx) error {
	userID := GetUserID(c)

	accounts, err := h.s.ListAccounts(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list accounts",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"accounts": accounts,
	})
}

func (h *PlatformHandler) ListPages(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid account id",
		})
	}

	pages, err := h.s.ListPages(c.Context(), userID, int64(accountID))
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"pages": pages,
	})
}

func (h *PlatformHandler) Disconnect(c *fiber.Ctx) error {
	userID := GetUserID(c)
	accountID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid account id",
		})
	}

	if err := h.s.Disconnect(c.Context(), userID, int64(accountID)); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Account disconnected",
	})
}
