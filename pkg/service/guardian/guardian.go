package guardian

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/techinsights/pkg/domain/interfaces"
	"github.com/secmon-lab/techinsights/pkg/domain/model"
	"github.com/secmon-lab/techinsights/pkg/utils/logging"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL  = "https://content.guardianapis.com"
	DefaultSections = "technology|business"
	DefaultLookback = 3 * 24 * time.Hour
	DefaultPageSize = 50
	DefaultMaxPages = 3

	// developer keys are limited to one call per second
	defaultRequestInterval = time.Second

	maxResponseBytes = 16 << 20
)

// Client fetches recent articles from The Guardian Content API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	sections   string
	query      string
	lookback   time.Duration
	pageSize   int
	maxPages   int
	limiter    *rate.Limiter
	now        func() time.Time
}

var _ interfaces.ArticleSource = &Client{}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(x *Client) { x.httpClient = c }
}

func WithBaseURL(u string) Option {
	return func(x *Client) { x.baseURL = strings.TrimRight(u, "/") }
}

// WithSections sets the section filter, using "|" for OR
func WithSections(s string) Option {
	return func(x *Client) { x.sections = s }
}

// WithQuery sets a free text query
func WithQuery(q string) Option {
	return func(x *Client) { x.query = q }
}

func WithLookback(d time.Duration) Option {
	return func(x *Client) { x.lookback = d }
}

func WithPageSize(n int) Option {
	return func(x *Client) { x.pageSize = n }
}

func WithMaxPages(n int) Option {
	return func(x *Client) { x.maxPages = n }
}

// WithRateLimit sets the minimum interval between page requests. Zero disables limiting.
func WithRateLimit(interval time.Duration) Option {
	return func(x *Client) {
		if interval <= 0 {
			x.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		x.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

func WithClock(now func() time.Time) Option {
	return func(x *Client) { x.now = now }
}

func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("guardian API key is required")
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		sections:   DefaultSections,
		lookback:   DefaultLookback,
		pageSize:   DefaultPageSize,
		maxPages:   DefaultMaxPages,
		limiter:    rate.NewLimiter(rate.Every(defaultRequestInterval), 1),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.pageSize <= 0 {
		c.pageSize = DefaultPageSize
	}
	if c.maxPages <= 0 {
		c.maxPages = DefaultMaxPages
	}

	return c, nil
}

type searchResponse struct {
	Response struct {
		Status      string         `json:"status"`
		Message     string         `json:"message"`
		CurrentPage int            `json:"currentPage"`
		Pages       int            `json:"pages"`
		Results     []searchResult `json:"results"`
	} `json:"response"`
}

type searchResult struct {
	ID          string `json:"id"`
	SectionName string `json:"sectionName"`
	WebTitle    string `json:"webTitle"`
	WebURL      string `json:"webUrl"`
	Fields      struct {
		Body      string `json:"body"`
		TrailText string `json:"trailText"`
	} `json:"fields"`
}

// Fetch returns the articles published within the lookback window. Errors are logged and
// whatever was collected before the failure is returned.
func (c *Client) Fetch(ctx context.Context) []*model.Article {
	logger := logging.From(ctx)
	var articles []*model.Article

	for page := 1; page <= c.maxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			logger.Warn("article fetch interrupted", "error", err.Error(), "page", page)
			break
		}

		resp, err := c.fetchPage(ctx, page)
		if err != nil {
			logger.Warn("article source unavailable",
				"error", err.Error(),
				"page", page,
				"collected", len(articles))
			break
		}

		for _, r := range resp.Response.Results {
			if a := toArticle(r); a != nil {
				articles = append(articles, a)
			}
		}

		if page >= resp.Response.Pages {
			break
		}
	}

	if articles == nil {
		return []*model.Article{}
	}
	logger.Info("fetched articles", "count", len(articles))
	return articles
}

func (c *Client) searchURL(page int) string {
	q := url.Values{}
	q.Set("api-key", c.apiKey)
	q.Set("from-date", c.now().Add(-c.lookback).UTC().Format("2006-01-02"))
	q.Set("page-size", strconv.Itoa(c.pageSize))
	q.Set("page", strconv.Itoa(page))
	q.Set("show-fields", "body,trailText")
	q.Set("order-by", "newest")
	if c.sections != "" {
		q.Set("section", c.sections)
	}
	if c.query != "" {
		q.Set("q", c.query)
	}
	return c.baseURL + "/search?" + q.Encode()
}

func (c *Client) fetchPage(ctx context.Context, page int) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(page), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call guardian API", goerr.V("page", page))
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read guardian response", goerr.V("page", page))
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, goerr.New("guardian API returned error status",
			goerr.V("status", httpResp.StatusCode),
			goerr.V("page", page),
			goerr.V("body", truncate(string(body), 512)))
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to decode guardian response", goerr.V("page", page))
	}
	if resp.Response.Status != "ok" {
		return nil, goerr.New("guardian API returned non-ok status",
			goerr.V("status", resp.Response.Status),
			goerr.V("message", resp.Response.Message))
	}

	return &resp, nil
}

func toArticle(r searchResult) *model.Article {
	content := htmlToText(r.Fields.Body)
	if content == "" {
		content = htmlToText(r.Fields.TrailText)
	}
	if content == "" || r.WebTitle == "" {
		return nil
	}

	return &model.Article{
		Title:    r.WebTitle,
		Content:  content,
		Category: r.SectionName,
		URL:      r.WebURL,
	}
}

// htmlToText joins paragraph texts. Markup without paragraphs is flattened as a whole.
func htmlToText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}

	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := collapseSpaces(s.Text()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	})
	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n")
	}

	return collapseSpaces(doc.Text())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
