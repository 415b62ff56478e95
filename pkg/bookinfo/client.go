package bookinfo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/listenlog/listenlog/pkg/config"
	"github.com/listenlog/listenlog/pkg/htmlutil"
	"github.com/listenlog/listenlog/pkg/version"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/segmentio/encoding/json"
	"golang.org/x/time/rate"
)

const searchLimit = 5

// Info is what a lookup could find out about a book. Any field may be nil.
type Info struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	CoverURL    *string `json:"cover_url"`
	ISBN        *string `json:"isbn"`
}

// Enricher looks up metadata for a title/author pair. A nil result means
// nothing could be found, for whatever reason.
type Enricher interface {
	Lookup(ctx context.Context, title, author string) *Info
}

type Client struct {
	enabled      bool
	baseURL      string
	coverBaseURL string
	httpClient   *http.Client
	limiter      *rate.Limiter
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		enabled:      cfg.EnrichmentEnabled,
		baseURL:      strings.TrimRight(cfg.EnrichmentBaseURL, "/"),
		coverBaseURL: strings.TrimRight(cfg.EnrichmentCoverBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.EnrichmentTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.EnrichmentRequestsPerSecond), 1),
	}
}

type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Title         string   `json:"title"`
	AuthorName    []string `json:"author_name"`
	FirstSentence []string `json:"first_sentence"`
	CoverI        int      `json:"cover_i"`
	ISBN          []string `json:"isbn"`
}

// Lookup searches Open Library for the book and returns what the first match
// knows about it. Failures are logged and reported as nil.
func (c *Client) Lookup(ctx context.Context, title, author string) *Info {
	if !c.enabled {
		return nil
	}

	log := logger.FromContext(ctx)
	query := strings.TrimSpace(title + " " + author)

	start := time.Now()
	doc, err := c.search(ctx, query)
	if err != nil {
		log.Warn("book info lookup failed", logger.Data{"query": query, "error": err.Error(), "duration": time.Since(start).String()})
		return nil
	}
	if doc == nil {
		log.Debug("book info lookup found nothing", logger.Data{"query": query})
		return nil
	}

	info := &Info{}
	if doc.Title != "" {
		info.Title = pointerutil.String(doc.Title)
	}
	if len(doc.AuthorName) > 0 {
		info.Author = pointerutil.String(doc.AuthorName[0])
	} else if author != "" {
		info.Author = pointerutil.String(author)
	}
	if len(doc.FirstSentence) > 0 {
		if desc := htmlutil.StripTags(doc.FirstSentence[0]); desc != "" {
			info.Description = pointerutil.String(desc)
		}
	}
	if doc.CoverI > 0 {
		info.CoverURL = pointerutil.String(fmt.Sprintf("%s/b/id/%d-L.jpg", c.coverBaseURL, doc.CoverI))
	}
	if isbn := pickISBN(doc.ISBN); isbn != "" {
		info.ISBN = pointerutil.String(isbn)
	}

	return info
}

func (c *Client) search(ctx context.Context, query string) (*searchDoc, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	u := fmt.Sprintf("%s/search.json?q=%s&limit=%d", c.baseURL, url.QueryEscape(query), searchLimit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var res searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, errors.Wrap(err, "failed to decode search response")
	}
	if len(res.Docs) == 0 {
		return nil, nil
	}

	return &res.Docs[0], nil
}
