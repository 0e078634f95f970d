package research

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Searcher is one upstream literature database.
type Searcher interface {
	Search(ctx context.Context, query string, max int) ([]Document, error)
}

// Engine fans a query out to the requested sources concurrently and
// merges the results.
type Engine struct {
	sources map[string]Searcher
}

// NewEngine creates an Engine with the production source clients.
// PubMed is accepted in requests but not yet backed by a client; its
// results are simply absent.
func NewEngine() *Engine {
	return &Engine{
		sources: map[string]Searcher{
			SourceCrossref: NewCrossrefClient(),
			SourceArxiv:    NewArxivClient(),
		},
	}
}

// NewEngineWithSources creates an Engine with explicit source clients.
func NewEngineWithSources(sources map[string]Searcher) *Engine {
	return &Engine{sources: sources}
}

// Search queries the named databases concurrently and returns the
// merged results, capped at max documents. A failing source is logged
// and skipped; the search only fails when every requested source
// fails.
func (e *Engine) Search(ctx context.Context, query string, databases []string, max int) ([]Document, error) {
	type sourceResult struct {
		docs []Document
		err  error
	}

	var wg sync.WaitGroup
	results := make(chan sourceResult, len(databases))
	requested := 0

	for _, name := range databases {
		source, ok := e.sources[name]
		if !ok {
			logrus.WithField("database", name).Debug("Skipping unsupported research database")
			continue
		}
		requested++

		wg.Add(1)
		go func(name string, source Searcher) {
			defer wg.Done()
			docs, err := source.Search(ctx, query, max)
			if err != nil {
				logrus.WithError(err).WithField("database", name).Warn("Research source failed")
			}
			results <- sourceResult{docs: docs, err: err}
		}(name, source)
	}

	wg.Wait()
	close(results)

	var merged []Document
	var firstErr error
	failures := 0
	for r := range results {
		if r.err != nil {
			failures++
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		merged = append(merged, r.docs...)
	}

	if requested > 0 && failures == requested {
		return nil, firstErr
	}

	if len(merged) > max {
		merged = merged[:max]
	}
	return merged, nil
}
