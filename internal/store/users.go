package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/asisai/asis-deploy/internal/pricing"
)

// User is a platform account row.
type User struct {
	UserID             uuid.UUID      `json:"user_id"`
	Email              string         `json:"email"`
	PasswordHash       string         `json:"-"`
	Institution        string         `json:"institution"`
	Role               string         `json:"role"`
	Tier               pricing.Tier   `json:"tier"`
	SubscriptionStatus string         `json:"subscription_status"`
	IsAcademic         bool           `json:"is_academic"`
	DiscountPercentage float64        `json:"discount_percentage"`
	CreatedDate        time.Time      `json:"created_date"`
	LastActive         time.Time      `json:"last_active"`
	MonthlyUsage       map[string]any `json:"monthly_usage"`
}

// NewUser holds the fields required to register an account.
type NewUser struct {
	Email        string
	PasswordHash string
	Institution  string
	Role         string
	IsAcademic   bool
	Discount     int
}

// CreateUser inserts a new account and returns its generated ID.
// Returns ErrDuplicateEmail when the email is already registered.
func (s *Store) CreateUser(ctx context.Context, u NewUser) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, institution, role, is_academic, discount_percentage)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id`,
		u.Email, u.PasswordHash, u.Institution, u.Role, u.IsAcademic, u.Discount,
	).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 is unique_violation; the users.email unique constraint.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, ErrDuplicateEmail
		}
		return uuid.Nil, err
	}
	return userID, nil
}

// GetUserByEmail fetches an account by email, including the password
// hash for credential checks. Returns ErrNotFound when absent.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT user_id, email, password_hash, COALESCE(institution, ''), role, tier,
		       subscription_status, is_academic, discount_percentage,
		       created_date, last_active, monthly_usage
		FROM users WHERE email = $1`, email))
}

// GetUserByID fetches an account by ID. Returns ErrNotFound when absent.
func (s *Store) GetUserByID(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.scanUser(s.pool.QueryRow(ctx, `
		SELECT user_id, email, password_hash, COALESCE(institution, ''), role, tier,
		       subscription_status, is_academic, discount_percentage,
		       created_date, last_active, monthly_usage
		FROM users WHERE user_id = $1`, userID))
}

func (s *Store) scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.UserID, &u.Email, &u.PasswordHash, &u.Institution, &u.Role, &u.Tier,
		&u.SubscriptionStatus, &u.IsAcademic, &u.DiscountPercentage,
		&u.CreatedDate, &u.LastActive, &u.MonthlyUsage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// TouchLastActive updates the account's last_active timestamp.
func (s *Store) TouchLastActive(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET last_active = NOW() WHERE user_id = $1`, userID)
	return err
}

// SetUserTier updates the account's tier and marks the subscription
// active. Called after a subscription purchase.
func (s *Store) SetUserTier(ctx context.Context, userID uuid.UUID, tier pricing.Tier) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET tier = $1, subscription_status = 'active' WHERE user_id = $2`,
		tier, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
