// Package research implements the multi-source literature search
// behind the /research/search endpoint. Each upstream database gets
// its own client; the Engine fans a query out to the requested
// sources and merges the results.
package research

import "time"

// Source names accepted in a search request. Unknown names are
// ignored rather than rejected, so clients can keep sending their
// full preference list.
const (
	SourceCrossref = "crossref"
	SourceArxiv    = "arxiv"
	SourcePubmed   = "pubmed"
)

// maxAbstractLen is the abstract length cap in API responses.
const maxAbstractLen = 500

// Document is one normalized search result.
type Document struct {
	Title           string     `json:"title"`
	Authors         []string   `json:"authors"`
	Abstract        string     `json:"abstract,omitempty"`
	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Source          string     `json:"source"`
	DOI             string     `json:"doi,omitempty"`
	Citations       int        `json:"citations"`
	URL             string     `json:"url,omitempty"`
}

// trimAbstract caps an abstract at maxAbstractLen runes, appending an
// ellipsis when truncated.
func trimAbstract(abstract string) string {
	runes := []rune(abstract)
	if len(runes) <= maxAbstractLen {
		return abstract
	}
	return string(runes[:maxAbstractLen]) + "..."
}
