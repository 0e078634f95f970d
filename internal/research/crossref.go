package research

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// crossrefBaseURL is the Crossref REST API endpoint.
const crossrefBaseURL = "https://api.crossref.org"

// crossrefMailto identifies us to Crossref's polite pool, which gets
// more reliable rate limits than anonymous traffic.
const crossrefMailto = "api@asisai.com"

// CrossrefClient searches the Crossref works index.
type CrossrefClient struct {
	client *resty.Client
}

// NewCrossrefClient creates a Crossref client with sane timeouts.
func NewCrossrefClient() *CrossrefClient {
	return &CrossrefClient{
		client: resty.New().
			SetBaseURL(crossrefBaseURL).
			SetTimeout(15 * time.Second).
			SetHeader("User-Agent", "asis-research/1.0 (mailto:"+crossrefMailto+")"),
	}
}

// crossrefResponse mirrors the subset of the Crossref works response
// we consume.
type crossrefResponse struct {
	Message struct {
		Items []crossrefWork `json:"items"`
	} `json:"message"`
}

type crossrefWork struct {
	Title    []string `json:"title"`
	Abstract string   `json:"abstract"`
	Author   []struct {
		Given  string `json:"given"`
		Family string `json:"family"`
	} `json:"author"`
	Published struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"published"`
	DOI             string `json:"DOI"`
	ReferencedCount int    `json:"is-referenced-by-count"`
	URL             string `json:"URL"`
}

// Search queries Crossref and returns up to max normalized documents.
func (c *CrossrefClient) Search(ctx context.Context, query string, max int) ([]Document, error) {
	var out crossrefResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":  query,
			"rows":   strconv.Itoa(max),
			"mailto": crossrefMailto,
		}).
		SetResult(&out).
		Get("/works")
	if err != nil {
		return nil, fmt.Errorf("crossref request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("crossref returned status %d", resp.StatusCode())
	}

	docs := make([]Document, 0, len(out.Message.Items))
	for _, item := range out.Message.Items {
		doc := Document{
			Source:    SourceCrossref,
			DOI:       item.DOI,
			Citations: item.ReferencedCount,
			URL:       item.URL,
			Abstract:  trimAbstract(stripJATS(item.Abstract)),
		}
		if len(item.Title) > 0 {
			doc.Title = item.Title[0]
		}
		for _, a := range item.Author {
			doc.Authors = append(doc.Authors, strings.TrimSpace(a.Given+" "+a.Family))
		}
		if t, ok := crossrefDate(item.Published.DateParts); ok {
			doc.PublicationDate = &t
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// crossrefDate converts Crossref date-parts ([[year, month, day]],
// month and day optional) to a time.Time.
func crossrefDate(parts [][]int) (time.Time, bool) {
	if len(parts) == 0 || len(parts[0]) == 0 {
		return time.Time{}, false
	}
	p := parts[0]
	year, month, day := p[0], 1, 1
	if len(p) > 1 {
		month = p[1]
	}
	if len(p) > 2 {
		day = p[2]
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

var jatsTagRe = regexp.MustCompile(`<[^>]+>`)

// stripJATS removes the JATS XML markup Crossref embeds in abstracts.
func stripJATS(s string) string {
	return strings.TrimSpace(jatsTagRe.ReplaceAllString(s, ""))
}
