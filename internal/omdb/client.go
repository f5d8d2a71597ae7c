// Package omdb is a small client for the OMDb title search and detail endpoints.
//
// The client never retries: a failed or cancelled request is reported once and
// the caller decides what to show. Every request is bounded by the client
// timeout and by the shared rate limiter.
package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abelbrown/popcorn/internal/movie"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the public OMDb API.
const DefaultEndpoint = "https://www.omdbapi.com/"

const (
	defaultTimeout = 10 * time.Second
	defaultRPS     = 5
	maxBodyBytes   = 2 << 20
	userAgent      = "popcorn/0.1 (https://github.com/abelbrown/popcorn)"
)

// ErrNotFound is returned when OMDb answers with Response "False".
var ErrNotFound = errors.New("omdb: movie not found")

// StatusError is returned when OMDb answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "omdb: HTTP status error"
	}
	return fmt.Sprintf("omdb: HTTP %d %s", e.StatusCode, strings.TrimSpace(e.Status))
}

// Options configures a Client. APIKey and Endpoint are process-wide and fixed
// for the lifetime of the client.
type Options struct {
	APIKey            string
	Endpoint          string
	Timeout           time.Duration
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client calls the OMDb API.
type Client struct {
	apiKey   string
	endpoint *url.URL
	client   *http.Client
	limiter  *rate.Limiter
}

// New creates a Client. Zero-valued options fall back to defaults.
func New(opts Options) (*Client, error) {
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("omdb: parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("omdb: endpoint %q must be an absolute URL", endpoint)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}

	return &Client{
		apiKey:   opts.APIKey,
		endpoint: u,
		client:   hc,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}, nil
}

// Available reports whether an API key is configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

type searchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Poster string `json:"Poster"`
}

type searchResponse struct {
	Search   []searchItem `json:"Search"`
	Response string       `json:"Response"`
	Error    string       `json:"Error"`
}

type detailResponse struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Poster     string `json:"Poster"`
	Runtime    string `json:"Runtime"`
	IMDbRating string `json:"imdbRating"`
	Plot       string `json:"Plot"`
	Released   string `json:"Released"`
	Actors     string `json:"Actors"`
	Director   string `json:"Director"`
	Genre      string `json:"Genre"`
	IMDbID     string `json:"imdbID"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// Search looks up titles matching query.
func (c *Client) Search(ctx context.Context, query string) ([]movie.SearchResult, error) {
	var payload searchResponse
	if err := c.get(ctx, url.Values{"s": {query}}, &payload); err != nil {
		return nil, err
	}
	if strings.EqualFold(payload.Response, "False") {
		return nil, notFound(payload.Error)
	}

	results := make([]movie.SearchResult, 0, len(payload.Search))
	for _, it := range payload.Search {
		results = append(results, movie.SearchResult{
			ID:        it.IMDbID,
			Title:     it.Title,
			Year:      it.Year,
			PosterURL: poster(it.Poster),
		})
	}
	return results, nil
}

// Detail fetches the full record for one IMDb identifier.
func (c *Client) Detail(ctx context.Context, id string) (movie.Detail, error) {
	var payload detailResponse
	if err := c.get(ctx, url.Values{"i": {id}}, &payload); err != nil {
		return movie.Detail{}, err
	}
	if strings.EqualFold(payload.Response, "False") {
		return movie.Detail{}, notFound(payload.Error)
	}

	// Upstream echoes imdbID; keep the requested one when it doesn't.
	if payload.IMDbID == "" {
		payload.IMDbID = id
	}
	return movie.Detail{
		ID:              payload.IMDbID,
		Title:           payload.Title,
		Year:            payload.Year,
		PosterURL:       poster(payload.Poster),
		Runtime:         payload.Runtime,
		RuntimeMinutes:  movie.ParseRuntime(payload.Runtime),
		CommunityRating: movie.ParseRating(payload.IMDbRating),
		Plot:            payload.Plot,
		Released:        payload.Released,
		Actors:          payload.Actors,
		Director:        payload.Director,
		Genre:           payload.Genre,
	}, nil
}

// get issues one GET with the API key and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	if ctx.Err() != nil {
		return fmt.Errorf("omdb: request cancelled: %w", ctx.Err())
	}
	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("omdb: request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("omdb: rate limiter wait failed: %w", err)
	}

	u := *c.endpoint
	q := u.Query()
	q.Set("apikey", c.apiKey)
	for k, vs := range params {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("omdb: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("omdb: request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("omdb: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("omdb: request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("omdb: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("omdb: failed to parse response: %w", err)
	}
	return nil
}

func notFound(upstream string) error {
	upstream = strings.TrimSpace(upstream)
	if upstream == "" {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s", ErrNotFound, upstream)
}

// poster normalises OMDb's "N/A" marker to an empty URL.
func poster(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), "N/A") {
		return ""
	}
	return s
}
