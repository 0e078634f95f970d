package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/asisai/asis-deploy/internal/cache"
	"github.com/asisai/asis-deploy/internal/research"
)

// researchRequest is the /research/search payload.
type researchRequest struct {
	Query      string   `json:"query" binding:"required"`
	Databases  []string `json:"databases"`
	MaxResults int      `json:"max_results"`
}

// researchResponse is the /research/search response body. It is also
// the unit of caching: a repeated query within the cache TTL is served
// from Redis without touching the upstream databases.
type researchResponse struct {
	Query             string              `json:"query"`
	ResultsCount      int                 `json:"results_count"`
	ProcessingTimeMS  int                 `json:"processing_time_ms"`
	DatabasesSearched []string            `json:"databases_searched"`
	Results           []research.Document `json:"results"`
	Cached            bool                `json:"cached"`
}

// handleResearchSearch fans the query out to the requested literature
// databases, logs the query for usage accounting, and returns the
// merged results.
func (s *Server) handleResearchSearch(c *gin.Context) {
	var req researchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if len(req.Databases) == 0 {
		req.Databases = []string{research.SourcePubmed, research.SourceArxiv, research.SourceCrossref}
	}
	if req.MaxResults <= 0 {
		req.MaxResults = 50
	}

	ctx := c.Request.Context()
	key := cache.SearchKey(req.Query, req.MaxResults)

	if s.cache != nil {
		var cached researchResponse
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			cached.Cached = true
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	start := time.Now()
	docs, err := s.engine.Search(ctx, req.Query, req.Databases, req.MaxResults)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Search failed: " + err.Error()})
		return
	}
	processingMS := int(time.Since(start).Milliseconds())

	if s.store != nil {
		if logErr := s.store.LogResearchQuery(ctx, currentUserID(c), req.Query,
			req.Databases, len(docs), processingMS); logErr != nil {
			logrus.WithError(logErr).Warn("Failed to log research query")
		}
	}

	resp := researchResponse{
		Query:             req.Query,
		ResultsCount:      len(docs),
		ProcessingTimeMS:  processingMS,
		DatabasesSearched: req.Databases,
		Results:           docs,
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetSearchResults(ctx, key, resp); cacheErr != nil {
			logrus.WithError(cacheErr).Warn("Failed to cache search results")
		}
	}

	c.JSON(http.StatusOK, resp)
}
