package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asisai/asis-deploy/internal/auth"
	"github.com/asisai/asis-deploy/internal/pricing"
	"github.com/asisai/asis-deploy/internal/store"
)

// registerRequest is the /auth/register payload.
type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Institution string `json:"institution" binding:"required"`
	Role        string `json:"role"`
}

// handleRegister creates an account, applying the academic discount
// when the email qualifies, and returns a ready-to-use access token.
func (s *Server) handleRegister(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Database not available"})
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = "researcher"
	}

	isAcademic := pricing.IsAcademicEmail(req.Email)
	discount := pricing.DiscountFor(req.Email)

	userID, err := s.store.CreateUser(c.Request.Context(), store.NewUser{
		Email:        req.Email,
		PasswordHash: auth.HashPassword(req.Password),
		Institution:  req.Institution,
		Role:         req.Role,
		IsAcademic:   isAcademic,
		Discount:     discount,
	})
	if errors.Is(err, store.ErrDuplicateEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "User already exists"})
		return
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Registration failed"})
		return
	}

	token, err := s.tokens.Issue(userID.String())
	if err != nil {
		logrus.WithError(err).Error("Failed to issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Registration failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":             userID.String(),
		"access_token":        token,
		"token_type":          "bearer",
		"is_academic":         isAcademic,
		"discount_percentage": discount,
	})
}

// loginRequest is the /auth/login payload.
type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// handleLogin checks credentials and returns an access token.
func (s *Server) handleLogin(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Database not available"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user, err := s.store.GetUserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !auth.CheckPassword(req.Password, user.PasswordHash)) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid credentials"})
		return
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to look up user")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Login failed"})
		return
	}

	if err := s.store.TouchLastActive(c.Request.Context(), user.UserID); err != nil {
		logrus.WithError(err).Warn("Failed to update last_active")
	}

	token, err := s.tokens.Issue(user.UserID.String())
	if err != nil {
		logrus.WithError(err).Error("Failed to issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":        token,
		"token_type":          "bearer",
		"user_id":             user.UserID.String(),
		"tier":                user.Tier,
		"subscription_status": user.SubscriptionStatus,
	})
}
