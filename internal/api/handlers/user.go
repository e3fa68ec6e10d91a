package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"taskville/internal/auth"
	"taskville/internal/repository"
	"taskville/internal/services"
)

type UserHandler struct {
	userService *services.UserService
	authService *auth.Service
	audit       *repository.AuditWriter
}

func NewUserHandler(userService *services.UserService, authService *auth.Service, audit *repository.AuditWriter) *UserHandler {
	return &UserHandler{userService: userService, authService: authService, audit: audit}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"users": users})
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid user id"})
		return
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, user)
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Create registers a user on behalf of an admin, including elevated roles.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), auth.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Role:     req.Role,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if session, ok := currentSession(c); ok {
		h.audit.Record(session.Identity.UserID, "create", "user", user.Username, "",
			c.ClientIP(), c.GetHeader("User-Agent"))
	}
	c.JSON(201, gin.H{"id": user.ID, "username": user.Username, "role": user.Role})
}

type SetRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *UserHandler) SetRole(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid user id"})
		return
	}

	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user, err := h.userService.SetRole(id, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	if session, ok := currentSession(c); ok {
		h.audit.Record(session.Identity.UserID, "update", "user", strconv.Itoa(int(id)),
			"role="+req.Role, c.ClientIP(), c.GetHeader("User-Agent"))
	}
	c.JSON(200, user)
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *UserHandler) SetActive(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid user id"})
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user, err := h.userService.SetActive(id, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid user id"})
		return
	}

	if err := h.userService.DeleteUser(id); err != nil {
		respondError(c, err)
		return
	}

	if session, ok := currentSession(c); ok {
		h.audit.Record(session.Identity.UserID, "delete", "user", strconv.Itoa(int(id)),
			"", c.ClientIP(), c.GetHeader("User-Agent"))
	}
	c.JSON(200, gin.H{"message": "User deleted"})
}

// Sessions lists the live sessions, for the admin panel.
func (h *UserHandler) Sessions(c *gin.Context) {
	c.JSON(200, gin.H{"sessions": h.userService.ActiveSessions()})
}
