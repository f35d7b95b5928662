package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const atomFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title type="html">ArXiv Query: search_query=cat:cs.AI</title>
  <id>http://arxiv.org/api/abc</id>
  <updated>2024-01-02T00:00:00-05:00</updated>
  <entry>
    <id>http://arxiv.org/abs/2401.00001v1</id>
    <updated>2024-01-01T18:59:59Z</updated>
    <published>2024-01-01T18:59:59Z</published>
    <title>Stop Words Considered
Harmful</title>
    <summary>  We study the
  headings of papers.
</summary>
    <author><name>A. Author</name></author>
    <link href="http://arxiv.org/abs/2401.00001v1" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/2401.00001v1" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2401.00002v2</id>
    <updated>2024-01-01T17:00:00Z</updated>
    <title>Second Paper</title>
    <summary>Abstract two.</summary>
  </entry>
</feed>`

func TestArxivClient_Search(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(atomFixture))
	}))
	defer srv.Close()

	c := NewArxivClient(srv.Client(), srv.URL, zap.NewNop())
	papers, err := c.Search(context.Background(), Query{})
	require.NoError(t, err)

	assert.Equal(t, "cat:cs.AI", gotQuery.Get("search_query"))
	assert.Equal(t, "0", gotQuery.Get("start"))
	assert.Equal(t, "2", gotQuery.Get("max_results"))
	assert.Equal(t, "submittedDate", gotQuery.Get("sortBy"))
	assert.Equal(t, "descending", gotQuery.Get("sortOrder"))

	require.Len(t, papers, 2)

	first := papers[0]
	assert.Equal(t, "2401.00001v1", first.ID)
	assert.Equal(t, "Stop Words Considered Harmful", first.Title)
	assert.Equal(t, "http://arxiv.org/abs/2401.00001v1", first.AbsURL)
	assert.Equal(t, "http://arxiv.org/pdf/2401.00001v1", first.PDFURL)

	second := papers[1]
	assert.Equal(t, "2401.00002v2", second.ID)
	assert.Equal(t, "http://arxiv.org/pdf/2401.00002v2", second.PDFURL)
	assert.Equal(t, "Abstract two.", second.Summary)
}

func TestArxivClient_SearchCustomQuery(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(atomFixture))
	}))
	defer srv.Close()

	c := NewArxivClient(srv.Client(), srv.URL, zap.NewNop())
	_, err := c.Search(context.Background(), Query{SearchQuery: "cat:cs.CV", MaxResults: 10, SortOrder: "ascending"})
	require.NoError(t, err)

	assert.Equal(t, "cat:cs.CV", gotQuery.Get("search_query"))
	assert.Equal(t, "10", gotQuery.Get("max_results"))
	assert.Equal(t, "ascending", gotQuery.Get("sortOrder"))
}

func TestArxivClient_SearchErrors(t *testing.T) {
	testCases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"Status", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusServiceUnavailable)
		}},
		{"NotAFeed", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("definitely not xml"))
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			_, err := NewArxivClient(srv.Client(), srv.URL, zap.NewNop()).Search(context.Background(), Query{})
			assert.Error(t, err)
		})
	}
}

func TestPDFURLFromAbs(t *testing.T) {
	testCases := []struct {
		link     string
		expected string
	}{
		{"http://arxiv.org/abs/2401.00001v1", "http://arxiv.org/pdf/2401.00001v1"},
		{"https://arxiv.org/abs/cs/0101001", "https://arxiv.org/pdf/cs/0101001"},
		{"http://example.org/paper", "http://example.org/paper"},
	}

	for _, tc := range testCases {
		t.Run(tc.link, func(t *testing.T) {
			assert.Equal(t, tc.expected, PDFURLFromAbs(tc.link))
		})
	}
}
