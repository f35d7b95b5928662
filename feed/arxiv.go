package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

const (
	DefaultArxivURL   = "http://export.arxiv.org/api/query"
	DefaultQuery      = "cat:cs.AI"
	DefaultMaxResults = 2
)

// Paper is one entry of the arXiv Atom feed.
type Paper struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	AbsURL  string `json:"abs_url"`
	PDFURL  string `json:"pdf_url"`
}

type Query struct {
	SearchQuery string
	Start       int
	MaxResults  int
	SortBy      string
	SortOrder   string
}

// PaperSource lists papers matching a query.
type PaperSource interface {
	Search(ctx context.Context, q Query) ([]Paper, error)
}

type ArxivClient struct {
	client  *http.Client
	baseURL string
	parser  *gofeed.Parser
	logger  *zap.Logger
}

func NewArxivClient(client *http.Client, baseURL string, logger *zap.Logger) *ArxivClient {
	if baseURL == "" {
		baseURL = DefaultArxivURL
	}
	return &ArxivClient{
		client:  client,
		baseURL: baseURL,
		parser:  gofeed.NewParser(),
		logger:  logger,
	}
}

func (c *ArxivClient) Search(ctx context.Context, q Query) ([]Paper, error) {
	if q.SearchQuery == "" {
		q.SearchQuery = DefaultQuery
	}
	if q.MaxResults <= 0 {
		q.MaxResults = DefaultMaxResults
	}
	if q.SortBy == "" {
		q.SortBy = "submittedDate"
	}
	if q.SortOrder == "" {
		q.SortOrder = "descending"
	}

	params := url.Values{}
	params.Set("search_query", q.SearchQuery)
	params.Set("start", strconv.Itoa(q.Start))
	params.Set("max_results", strconv.Itoa(q.MaxResults))
	params.Set("sortBy", q.SortBy)
	params.Set("sortOrder", q.SortOrder)

	apiURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv API returned status %d", resp.StatusCode)
	}

	parsed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	papers := make([]Paper, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		papers = append(papers, paperFromItem(item))
	}

	c.logger.Info("fetched arxiv feed",
		zap.String("query", q.SearchQuery),
		zap.Int("max_results", q.MaxResults),
		zap.Int("entries", len(papers)))

	return papers, nil
}

func paperFromItem(item *gofeed.Item) Paper {
	id := item.GUID
	if i := strings.LastIndex(id, "/abs/"); i >= 0 {
		id = id[i+len("/abs/"):]
	}

	p := Paper{
		ID:      id,
		Title:   strings.TrimSpace(strings.ReplaceAll(item.Title, "\n", " ")),
		Summary: strings.TrimSpace(strings.ReplaceAll(item.Description, "\n", " ")),
		AbsURL:  item.Link,
	}
	if item.Link != "" {
		p.PDFURL = PDFURLFromAbs(item.Link)
	} else {
		p.PDFURL = "http://arxiv.org/pdf/" + id
	}
	return p
}

// PDFURLFromAbs turns an abstract page link into its PDF link by replacing
// every "abs" with "pdf".
func PDFURLFromAbs(link string) string {
	return strings.ReplaceAll(link, "abs", "pdf")
}
