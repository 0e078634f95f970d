package store

import (
	"context"

	"github.com/asisai/asis-deploy/internal/pricing"
)

// PlatformStats aggregates platform-wide counters for the admin
// statistics endpoint.
type PlatformStats struct {
	TotalUsers              int     `json:"total_users"`
	ActiveSubscriptions     int     `json:"active_subscriptions"`
	TotalQueries            int     `json:"total_queries"`
	EstimatedMonthlyRevenue float64 `json:"estimated_monthly_revenue"`
}

// GetPlatformStats computes the admin statistics. Revenue is estimated
// from active subscription counts per tier at monthly rates.
func (s *Store) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	var stats PlatformStats

	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return nil, err
	}
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE status = 'active'`).Scan(&stats.ActiveSubscriptions); err != nil {
		return nil, err
	}
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM research_queries`).Scan(&stats.TotalQueries); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT tier, COUNT(*) FROM subscriptions
		WHERE status = 'active' GROUP BY tier`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tier pricing.Tier
		var count int
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, err
		}
		stats.EstimatedMonthlyRevenue += pricing.MonthlyRevenue(tier) * float64(count)
	}
	return &stats, rows.Err()
}
