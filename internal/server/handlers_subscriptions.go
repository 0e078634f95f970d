package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asisai/asis-deploy/internal/pricing"
	"github.com/asisai/asis-deploy/internal/store"
)

// subscriptionRequest is the /subscriptions/create payload.
type subscriptionRequest struct {
	Tier          string `json:"tier" binding:"required"`
	BillingPeriod string `json:"billing_period" binding:"required"`
}

// handleCreateSubscription records a subscription purchase and
// upgrades the account's tier. Charging happens out of band; the
// amount returned here is what the billing system will invoice.
func (s *Server) handleCreateSubscription(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Database not available"})
		return
	}

	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	tier, err := pricing.ParseTier(req.Tier)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid tier"})
		return
	}
	period, err := pricing.ParseBillingPeriod(req.BillingPeriod)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid billing period"})
		return
	}
	amount, err := pricing.Amount(tier, period)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid tier"})
		return
	}

	userID := currentUserID(c)
	if _, err := s.store.GetUserByID(c.Request.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
			return
		}
		logrus.WithError(err).Error("Failed to look up user")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Subscription failed"})
		return
	}

	start := time.Now().UTC()
	end := start.AddDate(0, 1, 0)
	if period == pricing.PeriodAnnual {
		end = start.AddDate(1, 0, 0)
	}

	sub, err := s.store.CreateSubscription(c.Request.Context(), userID, tier, period, amount, start, end)
	if err != nil {
		logrus.WithError(err).Error("Failed to create subscription")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Subscription failed"})
		return
	}

	if err := s.store.SetUserTier(c.Request.Context(), userID, tier); err != nil {
		logrus.WithError(err).Error("Failed to update user tier")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Subscription failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"subscription_id":    sub.SubscriptionID.String(),
		"status":             sub.Status,
		"tier":               tier,
		"amount":             amount,
		"current_period_end": sub.CurrentPeriodEnd.Format(time.RFC3339),
	})
}
