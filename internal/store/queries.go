package store

import (
	"context"

	"github.com/google/uuid"
)

// LogResearchQuery records an executed research search for usage
// accounting and the admin statistics.
func (s *Store) LogResearchQuery(ctx context.Context, userID uuid.UUID, queryText string, databases []string, resultsCount int, processingTimeMS int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO research_queries (user_id, query_text, databases, results_count, processing_time_ms)
		VALUES ($1, $2, $3, $4, $5)`,
		userID, queryText, databases, resultsCount, processingTimeMS)
	return err
}
