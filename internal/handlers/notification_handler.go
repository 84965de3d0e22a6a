package handlers

import (
	"net/http"
	"time"

	"github.com/gympulse/gym-notify/backend/internal/dispatch"
	"github.com/gympulse/gym-notify/backend/internal/models"
	"github.com/gympulse/gym-notify/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles the administrative push notification endpoints
type NotificationHandler struct {
	queue   repositories.QueueRepository
	feed    repositories.FeedRepository
	locator *repositories.AdminLocator
	builder *dispatch.Builder
	gateway dispatch.Gateway
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(
	queue repositories.QueueRepository,
	feed repositories.FeedRepository,
	locator *repositories.AdminLocator,
	builder *dispatch.Builder,
	gateway dispatch.Gateway,
) *NotificationHandler {
	return &NotificationHandler{
		queue:   queue,
		feed:    feed,
		locator: locator,
		builder: builder,
		gateway: gateway,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(e *echo.Echo) {
	e.POST("/testNotification", h.TestNotification)
	e.GET("/getNotificationStats", h.GetNotificationStats)
	e.POST("/send", h.SendDirect)
	e.GET("/findGymAdmin", h.FindGymAdmin)
}

// TestNotification enqueues a test push notification for a target account.
// Delivery happens asynchronously through the dispatch consumer.
func (h *NotificationHandler) TestNotification(c echo.Context) error {
	var req models.EnqueueNotificationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing required fields: targetUid, title, body")
	}

	if req.Type == "" {
		req.Type = models.TypeTest
	}
	if req.Priority == "" {
		req.Priority = models.PriorityNormal
	}
	if req.Platform == "" {
		req.Platform = models.PlatformWeb
	}

	data := map[string]string{
		"type":      req.Type,
		"test":      "true",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range req.Data {
		data[k] = v
	}

	record := &models.NotificationRecord{
		TargetUID: req.TargetUID,
		Title:     req.Title,
		Body:      req.Body,
		Type:      req.Type,
		Data:      data,
		Priority:  req.Priority,
		Platform:  req.Platform,
	}

	id, err := h.queue.Insert(c.Request().Context(), record)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"message":        "Test notification queued",
		"notificationId": id,
	})
}

// GetNotificationStats returns the notification feed counters for an admin
func (h *NotificationHandler) GetNotificationStats(c echo.Context) error {
	adminUID := c.QueryParam("adminUid")
	if adminUID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing adminUid parameter")
	}

	stats, err := h.feed.GetStats(adminUID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

// SendDirect pushes to a single device token immediately, bypassing the
// queue. Minimal endpoint kept for client integration testing.
func (h *NotificationHandler) SendDirect(c echo.Context) error {
	var req models.DirectSendRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return c.String(http.StatusBadRequest, "Missing required fields: token, title, body")
	}

	record := &models.NotificationRecord{
		Title:    req.Title,
		Body:     req.Body,
		Type:     models.TypeTest,
		Priority: models.PriorityHigh,
	}
	env := h.builder.Build(record, []string{req.Token})

	if _, err := h.gateway.Send(c.Request().Context(), env); err != nil {
		return c.String(http.StatusInternalServerError, "Failed to send notification")
	}
	return c.String(http.StatusOK, "Notification sent")
}

// FindGymAdmin resolves the administrator identity for a gym. Producers use
// this before enqueueing gym-scoped notifications.
func (h *NotificationHandler) FindGymAdmin(c echo.Context) error {
	gymID := c.QueryParam("gymId")
	if gymID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing gymId parameter")
	}

	adminUID := h.locator.FindGymAdmin(c.Request().Context(), gymID)
	return c.JSON(http.StatusOK, echo.Map{
		"gymId":    gymID,
		"adminUid": adminUID,
	})
}
