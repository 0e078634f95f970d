package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asisai/asis-deploy/internal/store"
)

// handleUserProfile returns the authenticated user's account record.
func (s *Server) handleUserProfile(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Database not available"})
		return
	}

	user, err := s.store.GetUserByID(c.Request.Context(), currentUserID(c))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to load user profile")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Profile lookup failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":             user.UserID.String(),
		"email":               user.Email,
		"institution":         user.Institution,
		"role":                user.Role,
		"tier":                user.Tier,
		"subscription_status": user.SubscriptionStatus,
		"is_academic":         user.IsAcademic,
		"discount_percentage": user.DiscountPercentage,
		"created_date":        user.CreatedDate.Format(time.RFC3339),
		"last_active":         user.LastActive.Format(time.RFC3339),
		"monthly_usage":       user.MonthlyUsage,
	})
}

// handleAdminStats returns platform-wide statistics. Restricted to
// accounts with the admin role.
func (s *Server) handleAdminStats(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Database not available"})
		return
	}

	user, err := s.store.GetUserByID(c.Request.Context(), currentUserID(c))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Admin access required"})
		return
	}
	if err != nil {
		logrus.WithError(err).Error("Failed to load user for admin check")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Admin check failed"})
		return
	}
	if user.Role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Admin access required"})
		return
	}

	stats, err := s.store.GetPlatformStats(c.Request.Context())
	if err != nil {
		logrus.WithError(err).Error("Failed to compute platform stats")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Stats computation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_users":               stats.TotalUsers,
		"active_subscriptions":      stats.ActiveSubscriptions,
		"total_queries":             stats.TotalQueries,
		"estimated_monthly_revenue": stats.EstimatedMonthlyRevenue,
		"timestamp":                 time.Now().UTC().Format(time.RFC3339),
	})
}
