package research

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimAbstract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "short", input: "brief abstract", want: "brief abstract"},
		{name: "exactly at cap", input: strings.Repeat("a", 500), want: strings.Repeat("a", 500)},
		{name: "over cap", input: strings.Repeat("a", 501), want: strings.Repeat("a", 500) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, trimAbstract(tt.input))
		})
	}
}

const crossrefFixture = `{
  "message": {
    "items": [
      {
        "title": ["Attention Is All You Need"],
        "abstract": "<jats:p>The dominant sequence transduction models.</jats:p>",
        "author": [
          {"given": "Ashish", "family": "Vaswani"},
          {"given": "Noam", "family": "Shazeer"}
        ],
        "published": {"date-parts": [[2017, 6, 12]]},
        "DOI": "10.48550/arXiv.1706.03762",
        "is-referenced-by-count": 100000,
        "URL": "https://doi.org/10.48550/arXiv.1706.03762"
      }
    ]
  }
}`

func newTestCrossrefClient(baseURL string) *CrossrefClient {
	return &CrossrefClient{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(5 * time.Second),
	}
}

func TestCrossrefSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works", r.URL.Path)
		assert.Equal(t, "transformers", r.URL.Query().Get("query"))
		assert.Equal(t, "10", r.URL.Query().Get("rows"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(crossrefFixture))
	}))
	defer srv.Close()

	docs, err := newTestCrossrefClient(srv.URL).Search(context.Background(), "transformers", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "Attention Is All You Need", doc.Title)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, doc.Authors)
	assert.Equal(t, "The dominant sequence transduction models.", doc.Abstract)
	assert.Equal(t, SourceCrossref, doc.Source)
	assert.Equal(t, "10.48550/arXiv.1706.03762", doc.DOI)
	assert.Equal(t, 100000, doc.Citations)
	require.NotNil(t, doc.PublicationDate)
	assert.Equal(t, 2017, doc.PublicationDate.Year())
}

func TestCrossrefSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestCrossrefClient(srv.URL).Search(context.Background(), "x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

const arxivFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <title>Attention Is All
  You Need</title>
    <summary>The dominant sequence transduction models are based on
  complex recurrent or convolutional neural networks.</summary>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
  </entry>
</feed>`

func newTestArxivClient(baseURL string) *ArxivClient {
	return &ArxivClient{
		client: resty.New().SetBaseURL(baseURL).SetTimeout(5 * time.Second),
	}
}

func TestArxivSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/query", r.URL.Path)
		assert.Equal(t, "all:transformers", r.URL.Query().Get("search_query"))
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(arxivFixture))
	}))
	defer srv.Close()

	docs, err := newTestArxivClient(srv.URL).Search(context.Background(), "transformers", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "Attention Is All You Need", doc.Title)
	assert.Equal(t, "The dominant sequence transduction models are based on complex recurrent or convolutional neural networks.", doc.Abstract)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, doc.Authors)
	assert.Equal(t, SourceArxiv, doc.Source)
	assert.Equal(t, "http://arxiv.org/abs/1706.03762v7", doc.URL)
	require.NotNil(t, doc.PublicationDate)
}

// fakeSearcher returns canned documents or a canned error.
type fakeSearcher struct {
	docs []Document
	err  error
}

func (f *fakeSearcher) Search(ctx context.Context, query string, max int) ([]Document, error) {
	return f.docs, f.err
}

func TestEngineSearchMergesSources(t *testing.T) {
	engine := NewEngineWithSources(map[string]Searcher{
		SourceCrossref: &fakeSearcher{docs: []Document{{Title: "a", Source: SourceCrossref}}},
		SourceArxiv:    &fakeSearcher{docs: []Document{{Title: "b", Source: SourceArxiv}}},
	})

	docs, err := engine.Search(context.Background(), "q", []string{SourceCrossref, SourceArxiv}, 50)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestEngineSearchIgnoresUnknownDatabases(t *testing.T) {
	engine := NewEngineWithSources(map[string]Searcher{
		SourceCrossref: &fakeSearcher{docs: []Document{{Title: "a"}}},
	})

	docs, err := engine.Search(context.Background(), "q",
		[]string{SourceCrossref, SourcePubmed, "scopus"}, 50)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestEngineSearchToleratesPartialFailure(t *testing.T) {
	engine := NewEngineWithSources(map[string]Searcher{
		SourceCrossref: &fakeSearcher{err: errors.New("boom")},
		SourceArxiv:    &fakeSearcher{docs: []Document{{Title: "b"}}},
	})

	docs, err := engine.Search(context.Background(), "q", []string{SourceCrossref, SourceArxiv}, 50)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestEngineSearchFailsWhenAllSourcesFail(t *testing.T) {
	engine := NewEngineWithSources(map[string]Searcher{
		SourceCrossref: &fakeSearcher{err: errors.New("boom")},
		SourceArxiv:    &fakeSearcher{err: errors.New("boom")},
	})

	_, err := engine.Search(context.Background(), "q", []string{SourceCrossref, SourceArxiv}, 50)
	require.Error(t, err)
}

func TestEngineSearchCapsResults(t *testing.T) {
	many := make([]Document, 10)
	engine := NewEngineWithSources(map[string]Searcher{
		SourceCrossref: &fakeSearcher{docs: many},
	})

	docs, err := engine.Search(context.Background(), "q", []string{SourceCrossref}, 3)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}
