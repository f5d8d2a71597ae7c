package controller

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abelbrown/popcorn/internal/movie"
	"github.com/google/uuid"
)

// DefaultMinQueryLength is the shortest trimmed query that triggers a search.
const DefaultMinQueryLength = 3

// SearchRequest is one remote search issued by SetQuery.
type SearchRequest struct {
	Seq       uint64
	RequestID string // correlation id for logs and events
	Query     string // as typed

	ctx context.Context
}

// Context is cancelled once the request is superseded.
func (r *SearchRequest) Context() context.Context {
	return r.ctx
}

// Term is the text sent upstream.
func (r *SearchRequest) Term() string {
	return strings.TrimSpace(r.Query)
}

// Run executes the request against api and packages the outcome.
func (r *SearchRequest) Run(api MovieAPI) SearchOutcome {
	start := time.Now()
	items, err := api.Search(r.ctx, r.Term())
	return SearchOutcome{Seq: r.Seq, RequestID: r.RequestID, Items: items, Err: err, Elapsed: time.Since(start)}
}

// SearchOutcome is the result of a SearchRequest.
type SearchOutcome struct {
	Seq       uint64
	RequestID string
	Items     []movie.SearchResult
	Err       error
	Elapsed   time.Duration
}

// SearchController owns the query and the search results.
type SearchController struct {
	parent context.Context
	minLen int

	query   string
	results []movie.SearchResult
	errMsg  string
	loading bool

	seq     uint64
	current *SearchRequest
	cancel  context.CancelFunc
}

// NewSearchController creates a controller whose requests derive from
// parent. minLen <= 0 means DefaultMinQueryLength.
func NewSearchController(parent context.Context, minLen int) *SearchController {
	if parent == nil {
		parent = context.Background()
	}
	if minLen <= 0 {
		minLen = DefaultMinQueryLength
	}
	return &SearchController{parent: parent, minLen: minLen}
}

// SetQuery replaces the query verbatim. It returns the request to run, or
// nil when no remote call is needed: the text is unchanged or its trimmed
// form is shorter than the minimum. Any in-flight request is cancelled
// either way when the text changes.
func (c *SearchController) SetQuery(text string) *SearchRequest {
	if text == c.query {
		return nil
	}
	c.query = text
	c.release()
	c.seq++

	if utf8.RuneCountInString(strings.TrimSpace(text)) < c.minLen {
		c.results = nil
		c.errMsg = ""
		c.loading = false
		return nil
	}

	ctx, cancel := context.WithCancel(c.parent)
	req := &SearchRequest{
		Seq:       c.seq,
		RequestID: uuid.NewString(),
		Query:     text,
		ctx:       ctx,
	}
	c.current = req
	c.cancel = cancel
	c.errMsg = ""
	c.loading = true
	return req
}

// CompleteSearch applies an outcome if it belongs to the latest request.
// It reports whether state changed. Cancelled outcomes never set an error.
func (c *SearchController) CompleteSearch(o SearchOutcome) bool {
	if c.current == nil || o.Seq != c.current.Seq {
		return false
	}
	if isCancelled(o.Err) || c.current.ctx.Err() != nil {
		// Parent context is gone; nothing will supersede this request.
		c.release()
		c.loading = false
		return false
	}

	c.release()
	c.loading = false
	if o.Err != nil {
		c.results = nil
		c.errMsg = SearchMessage(o.Err)
		return true
	}
	c.results = o.Items
	c.errMsg = ""
	return true
}

// Abort cancels the in-flight request without touching results.
func (c *SearchController) Abort() {
	if c.current == nil {
		return
	}
	c.release()
	c.loading = false
}

// Pending returns the in-flight request, if any.
func (c *SearchController) Pending() *SearchRequest {
	return c.current
}

// IsCurrent reports whether req is still the latest, live request.
func (c *SearchController) IsCurrent(req *SearchRequest) bool {
	return req != nil && c.current == req && req.ctx.Err() == nil
}

// Query returns the query as typed.
func (c *SearchController) Query() string { return c.query }

// Results returns the current result list.
func (c *SearchController) Results() []movie.SearchResult { return c.results }

// Loading reports whether a request issued by this controller is outstanding.
func (c *SearchController) Loading() bool { return c.loading }

// Err returns the user-facing error, or "".
func (c *SearchController) Err() string { return c.errMsg }

// release cancels the latest request's context and forgets it.
func (c *SearchController) release() {
	if c.cancel != nil {
		c.cancel()
	}
	c.current = nil
	c.cancel = nil
}
