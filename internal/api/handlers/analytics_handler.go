package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/socialsight/socialsight/internal/service"
)

type AnalyticsHandler struct {
	s service.AnalyticsService
}

func NewAnalyticsHandler(s service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{s: s}
}

func (h *AnalyticsHandler) analyticsError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrAnalyticsNotIncluded) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if errors.Is(err, service.ErrPostNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// PostAnalytics reports the stored per-platform metrics of one post plus a
// recomputed performance rollup.
func (h *AnalyticsHandler) PostAnalytics(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	metrics, performance, err := h.s.PostAnalytics(c.Context(), userID, int64(postID))
	if err != nil {
		return h.analyticsError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"metrics":     metrics,
		"performance": performance,
	})
}

func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	userID := GetUserID(c)
	timeRange := c.Query("range", "30d")

	dashboard, err := h.s.Dashboard(c.Context(), userID, timeRange)
	if err != nil {
		return h.analyticsError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(dashboard)
}

func (h *AnalyticsHandler) Engagement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	timeRange := c.Query("range", "30d")
	platform := c.Query("platform", "")

	points, err := h.s.EngagementSeries(c.Context(), userID, timeRange, platform)
	if err != nil {
		return h.analyticsError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"series": points,
	})
}

func (h *AnalyticsHandler) Schedule(c *fiber.Ctx) error {
	userID := GetUserID(c)
	timeRange := c.Query("range", "30d")

	report, err := h.s.ScheduleReport(c.Context(), userID, timeRange)
	if err != nil {
		return h.analyticsError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(report)
}

func (h *AnalyticsHandler) Content(c *fiber.Ctx) error {
	userID := GetUserID(c)
	timeRange := c.Query("range", "30d")

	report, err := h.s.ContentReport(c.Context(), userID, timeRange)
	if err != nil {
		return h.analyticsError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(report)
}
