package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/socialsight/socialsight/internal/service"
)

type MessageHandler struct {
	s service.MessageService
}

func NewMessageHandler(s service.MessageService) *MessageHandler {
	return &MessageHandler{s: s}
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req struct {
		ReceiverID int64  `json:"receiver_id"`
		Body       string `json:"body"`
		MediaURL   string `json:"media_url"`
		ReplyTo    *int64 `json:"reply_to"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	message, err := h.s.Send(c.Context(), userID, req.ReceiverID, req.Body, req.MediaURL, req.ReplyTo)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) || errors.Is(err, service.ErrMessageNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": message,
	})
}

func (h *MessageHandler) Conversations(c *fiber.Ctx) error {
	userID := GetUserID(c)

	conversations, err := h.s.Conversations(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list conversations",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"conversations": conversations,
	})
}

func (h *MessageHandler) History(c *fiber.Ctx) error {
	userID := GetUserID(c)
	conversationID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation id",
		})
	}
	page := c.QueryInt("page", 1)

	messages, err := h.s.History(c.Context(), userID, int64(conversationID), page)
	if err != nil {
		return h.messageError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"messages": messages,
	})
}

func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	userID := GetUserID(c)
	conversationID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation id",
		})
	}

	updated, err := h.s.MarkRead(c.Context(), userID, int64(conversationID))
	if err != nil {
		return h.messageError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"marked_read": updated,
	})
}

func (h *MessageHandler) Delete(c *fiber.Ctx) error {
	userID := GetUserID(c)
	messageID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid message id",
		})
	}

	if err := h.s.Delete(c.Context(), userID, int64(messageID)); err != nil {
		return h.messageError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Message deleted",
	})
}

func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	userID := GetUserID(c)

	count, err := h.s.UnreadCount(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"unread": count,
	})
}

func (h *MessageHandler) Search(c *fiber.Ctx) error {
	userID := GetUserID(c)
	term := c.Query("q")

	messages, err := h.s.Search(c.Context(), userID, term)
	if err != nil {
		if errors.Is(err, service.ErrSearchTooShort) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"messages": messages,
	})
}

func (h *MessageHandler) messageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrConversationNotFound),
		errors.Is(err, service.ErrMessageNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, service.ErrNotParticipant):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
