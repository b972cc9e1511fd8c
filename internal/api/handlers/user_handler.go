package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/socialsight/socialsight/internal/service"
	"github.com/socialsight/socialsight/internal/transfer"
)

type UserHandler struct {
	s   service.UserService
	sub service.SubscriptionService
}

func NewUserHandler(s service.UserService, sub service.SubscriptionService) *UserHandler {
	return &UserHandler{s: s, sub: sub}
}

func (h *UserHandler) Profile(c *fiber.Ctx) error {
	userID := GetUserID(c)

	user, followers, following, err := h.s.Profile(c.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	features, err := h.sub.Features(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user":      user,
		"followers": followers,
		"following": following,
		"plan":      features,
	})
}

func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var update transfer.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	if err := h.s.UpdateProfile(c.Context(), userID, &update); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Profile updated",
	})
}

func (h *UserHandler) Follow(c *fiber.Ctx) error {
	userID := GetUserID(c)
	targetID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	if err := h.s.Follow(c.Context(), userID, int64(targetID)); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Followed",
	})
}

func (h *UserHandler) Unfollow(c *fiber.Ctx) error {
	userID := GetUserID(c)
	targetID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user id",
		})
	}

	if err := h.s.Unfollow(c.Context(), userID, int64(targetID)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Unfollowed",
	})
}
