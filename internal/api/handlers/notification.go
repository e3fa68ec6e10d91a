package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"taskville/internal/services"
)

// NotificationHandler serves the signed-in user's notification feed.
// Broadcast and the due-task sweep are admin operations.
type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	notifications, err := h.notificationService.ListForUser(session.Identity.UserID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	unread, err := h.notificationService.UnreadCount(session.Identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"notifications": notifications, "unread": unread})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	count, err := h.notificationService.UnreadCount(session.Identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"unread": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid notification id"})
		return
	}

	notification, err := h.notificationService.MarkRead(id, session.Identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, notification)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	updated, err := h.notificationService.MarkAllRead(session.Identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"updated": updated})
}

type BroadcastRequest struct {
	Title    string `json:"title" binding:"required"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
}

func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	recipients, err := h.notificationService.Broadcast(req.Title, req.Message, req.Priority)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"recipients": recipients})
}

func (h *NotificationHandler) CheckDueTasks(c *gin.Context) {
	created, err := h.notificationService.CheckDueTasks()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"created": created})
}
