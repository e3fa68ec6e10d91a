package handlers

import (
	"github.com/gin-gonic/gin"

	"taskville/internal/auth"
	"taskville/internal/repository"
)

type AuthHandler struct {
	authService *auth.Service
	audit       *repository.AuditWriter
}

func NewAuthHandler(authService *auth.Service, audit *repository.AuditWriter) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		audit:       audit,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
}

// Register handles self-service signup. Accounts always start as User;
// role elevation goes through the users admin API.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), auth.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.audit.Record(user.ID, "register", "user", user.Username, "", c.ClientIP(), c.GetHeader("User-Agent"))

	c.JSON(201, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string        `json:"token"`
	CSRFToken string        `json:"csrf_token"`
	Identity  auth.Identity `json:"identity"`
	ExpiresAt int64         `json:"expires_at"`
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Username, req.Password,
		c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.audit.Record(session.Identity.UserID, "login", "user", session.Identity.Username, "",
		c.ClientIP(), c.GetHeader("User-Agent"))

	c.JSON(200, LoginResponse{
		Token:     session.Token,
		CSRFToken: session.CSRFToken,
		Identity:  session.Identity,
		ExpiresAt: session.ExpiresAt.Unix(),
	})
}

// Logout revokes the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	h.authService.Logout(session.Token)
	h.audit.Record(session.Identity.UserID, "logout", "user", session.Identity.Username, "",
		c.ClientIP(), c.GetHeader("User-Agent"))

	c.JSON(200, gin.H{"message": "Logged out successfully"})
}

// GetMe returns the current identity and session metadata.
func (h *AuthHandler) GetMe(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	c.JSON(200, gin.H{
		"identity":      session.Identity,
		"permissions":   auth.RolePermissions(session.Identity.Role),
		"expires_at":    session.ExpiresAt.Unix(),
		"last_activity": session.LastActivity.Unix(),
	})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword re-verifies the current password before applying the new
// one. The response carries the replacement session token.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	session, ok := currentSession(c)
	if !ok {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), session, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	h.audit.Record(session.Identity.UserID, "change_password", "user", session.Identity.Username, "",
		c.ClientIP(), c.GetHeader("User-Agent"))

	c.JSON(200, gin.H{
		"message":    "Password changed",
		"token":      session.Token,
		"csrf_token": session.CSRFToken,
	})
}

type ResetRequestRequest struct {
	Email string `json:"email" binding:"required"`
}

// RequestPasswordReset always answers identically whether or not the email
// belongs to an account. The reset token travels out of band.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req ResetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if _, err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "If the address is registered, a reset link has been sent"})
}

type ResetConfirmRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(200, gin.H{"message": "Password has been reset"})
}
