// Package openlibrary looks up catalogue metadata for books being added.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/5w1tchy/shelfbot/internal/models"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://openlibrary.org"
	defaultCoverURL = "https://covers.openlibrary.org"
)

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	coverURL   string
	limiter    *rate.Limiter
	maxRetries int
}

func NewClient(userAgent string, rps int, maxRetries int) *Client {
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		userAgent:  userAgent,
		baseURL:    defaultBaseURL,
		coverURL:   defaultCoverURL,
		limiter:    rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
		maxRetries: maxRetries,
	}
}

// FromEnv returns nil unless OPENLIBRARY_ENRICH=1.
func FromEnv() *Client {
	if os.Getenv("OPENLIBRARY_ENRICH") != "1" {
		return nil
	}
	rps := 1
	if v, err := strconv.Atoi(os.Getenv("OPENLIBRARY_RPS")); err == nil && v > 0 {
		rps = v
	}
	return NewClient("shelfbot/1.0 (personal catalogue)", rps, 1)
}

// WithBaseURL points both the search and cover hosts at u. Used in tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	c.coverURL = c.baseURL
	return c
}

// SearchResponse matches the subset of search.json we read.
type SearchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Key              string   `json:"key"`
		Title            string   `json:"title"`
		AuthorNames      []string `json:"author_name"`
		FirstPublishYear int      `json:"first_publish_year"`
		CoverID          int      `json:"cover_i"`
	} `json:"docs"`
}

func (c *Client) Search(ctx context.Context, title, author string) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("title", title)
	if author != "" {
		q.Set("author", author)
	}
	q.Set("fields", "key,title,author_name,first_publish_year,cover_i")
	q.Set("limit", "1")

	var res SearchResponse
	if err := c.get(ctx, c.baseURL+"/search.json?"+q.Encode(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Enrich fills openLibraryId and coverUrl on p when they are absent and the
// top search hit has the same title. p.Title must be set. Title, authors,
// genres and year are left as the user gave them.
func (c *Client) Enrich(ctx context.Context, p *models.Patch) error {
	if p.Title == nil || *p.Title == "" {
		return nil
	}
	author := ""
	if len(p.Authors) > 0 {
		author = p.Authors[0]
	}
	res, err := c.Search(ctx, *p.Title, author)
	if err != nil {
		return err
	}
	if len(res.Docs) == 0 {
		return nil
	}
	doc := res.Docs[0]
	if models.Fold(doc.Title) != models.Fold(*p.Title) {
		return nil
	}

	if p.OpenLibraryID == nil && doc.Key != "" {
		id := strings.TrimPrefix(doc.Key, "/works/")
		p.OpenLibraryID = &id
	}
	if p.CoverURL == nil && doc.CoverID > 0 {
		u := fmt.Sprintf("%s/b/id/%d-L.jpg", c.coverURL, doc.CoverID)
		p.CoverURL = &u
	}
	return nil
}

func (c *Client) get(ctx context.Context, u string, target any) error {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			backoff := time.Duration(1<<uint(i-1)) * 250 * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		retry, err := c.do(ctx, u, target)
		if err == nil {
			return nil
		}
		if !retry {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("openlibrary: after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, u string, target any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("openlibrary: unexpected status code: %d", resp.StatusCode)
		return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500, err
	}
	return false, json.NewDecoder(resp.Body).Decode(target)
}
