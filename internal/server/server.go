// Package server implements the ASIS research platform HTTP API:
// registration and login, subscription purchase, multi-source research
// search, user profiles, admin statistics, and the health endpoint the
// container health checks probe.
package server

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/asisai/asis-deploy/internal/auth"
	"github.com/asisai/asis-deploy/internal/cache"
	"github.com/asisai/asis-deploy/internal/config"
	"github.com/asisai/asis-deploy/internal/pricing"
	"github.com/asisai/asis-deploy/internal/research"
	"github.com/asisai/asis-deploy/internal/store"
)

// APIVersion is reported by the root endpoint.
const APIVersion = "1.0.0"

// Store is the persistence surface the handlers need. *store.Store
// satisfies it; tests substitute fakes.
type Store interface {
	Ping(ctx context.Context) error
	CreateUser(ctx context.Context, u store.NewUser) (uuid.UUID, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*store.User, error)
	TouchLastActive(ctx context.Context, userID uuid.UUID) error
	SetUserTier(ctx context.Context, userID uuid.UUID, tier pricing.Tier) error
	CreateSubscription(ctx context.Context, userID uuid.UUID, tier pricing.Tier, period pricing.BillingPeriod, amountCents int, start, end time.Time) (*store.Subscription, error)
	LogResearchQuery(ctx context.Context, userID uuid.UUID, queryText string, databases []string, resultsCount int, processingTimeMS int) error
	GetPlatformStats(ctx context.Context) (*store.PlatformStats, error)
}

// Cache is the Redis surface the handlers need. *cache.Cache satisfies
// it; tests substitute fakes.
type Cache interface {
	Ping(ctx context.Context) error
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetSearchResults(ctx context.Context, key string, value any) error
}

// SearchEngine is the research search surface. *research.Engine
// satisfies it.
type SearchEngine interface {
	Search(ctx context.Context, query string, databases []string, max int) ([]research.Document, error)
}

// Server holds the API's dependencies. Store and Cache may be nil when
// the corresponding backend is not configured; the affected endpoints
// then return 503 and the health endpoint omits that service.
type Server struct {
	cfg    config.ServerConfig
	tokens *auth.TokenManager
	store  Store
	cache  Cache
	engine SearchEngine
}

// New assembles a Server. db and redis may be nil.
func New(cfg config.ServerConfig, db *store.Store, redis *cache.Cache) *Server {
	s := &Server{
		cfg:    cfg,
		tokens: auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		engine: research.NewEngine(),
	}
	// Typed nils must not end up in the interface fields, or the nil
	// checks in the handlers stop working.
	if db != nil {
		s.store = db
	}
	if redis != nil {
		s.cache = redis
	}
	return s
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	if !s.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://research.asisai.com", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)

	r.POST("/auth/register", s.handleRegister)
	r.POST("/auth/login", s.handleLogin)

	authed := r.Group("/", s.requireAuth())
	authed.POST("/subscriptions/create", s.handleCreateSubscription)
	authed.POST("/research/search", s.handleResearchSearch)
	authed.GET("/users/profile", s.handleUserProfile)
	authed.GET("/admin/stats", s.handleAdminStats)

	return r
}

// handleRoot reports the API identity, mirroring the legacy behavior
// of probing "/" as a liveness check.
func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(200, gin.H{
		"message":     "ASIS Research Platform API",
		"version":     APIVersion,
		"status":      "active",
		"environment": s.cfg.Environment,
	})
}
