package research

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// arxivBaseURL is the arXiv Atom API endpoint.
const arxivBaseURL = "https://export.arxiv.org"

// ArxivClient searches the arXiv preprint index.
type ArxivClient struct {
	client *resty.Client
}

// NewArxivClient creates an arXiv client with sane timeouts.
func NewArxivClient() *ArxivClient {
	return &ArxivClient{
		client: resty.New().
			SetBaseURL(arxivBaseURL).
			SetTimeout(15 * time.Second),
	}
}

// arxivFeed mirrors the subset of the arXiv Atom feed we consume.
type arxivFeed struct {
	XMLName xml.Name     `xml:"feed"`
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	ID        string `xml:"id"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// Search queries arXiv and returns up to max normalized documents.
func (c *ArxivClient) Search(ctx context.Context, query string, max int) ([]Document, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"search_query": "all:" + query,
			"max_results":  strconv.Itoa(max),
		}).
		Get("/api/query")
	if err != nil {
		return nil, fmt.Errorf("arxiv request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("arxiv returned status %d", resp.StatusCode())
	}

	// resty's automatic unmarshal keys off the response content type;
	// arXiv serves Atom with a type resty doesn't map, so decode here.
	var feed arxivFeed
	if err := xml.Unmarshal(resp.Body(), &feed); err != nil {
		return nil, fmt.Errorf("failed to parse arxiv feed: %w", err)
	}

	docs := make([]Document, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		doc := Document{
			Title:    normalizeWhitespace(entry.Title),
			Abstract: trimAbstract(normalizeWhitespace(entry.Summary)),
			Source:   SourceArxiv,
			URL:      entry.ID,
		}
		for _, a := range entry.Authors {
			doc.Authors = append(doc.Authors, a.Name)
		}
		if t, err := time.Parse(time.RFC3339, entry.Published); err == nil {
			doc.PublicationDate = &t
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// normalizeWhitespace collapses the newlines and indentation arXiv
// wraps long titles and summaries with.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
