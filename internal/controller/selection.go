package controller

import (
	"context"
	"time"

	"github.com/abelbrown/popcorn/internal/movie"
	"github.com/google/uuid"
)

// Selection is the state of the detail view. It is exactly one of Idle,
// Loading, Loaded or Failed.
type Selection interface {
	// SelectedID returns the selected identifier, or "" for Idle.
	SelectedID() string
	isSelection()
}

// Idle means nothing is selected.
type Idle struct{}

// Loading means the detail for ID is being fetched.
type Loading struct {
	ID string
}

// Loaded holds the fetched detail for ID.
type Loaded struct {
	ID     string
	Detail movie.Detail
}

// Failed records why the detail for ID could not be fetched.
type Failed struct {
	ID  string
	Err error
}

func (Idle) SelectedID() string { return "" }
func (s Loading) SelectedID() string { return s.ID }
func (s Loaded) SelectedID() string { return s.ID }
func (s Failed) SelectedID() string { return s.ID }

func (Idle) isSelection() {}
func (Loading) isSelection() {}
func (Loaded) isSelection() {}
func (Failed) isSelection() {}

// Message is the text shown in place of the detail.
func (s Failed) Message() string {
	return DetailMessage(s.Err)
}

// DetailRequest is one detail fetch issued by Select.
type DetailRequest struct {
	Seq       uint64
	RequestID string
	MovieID   string

	ctx context.Context
}

// Context is cancelled once the selection changes.
func (r *DetailRequest) Context() context.Context {
	return r.ctx
}

// Run executes the request against api and packages the outcome.
func (r *DetailRequest) Run(api MovieAPI) DetailOutcome {
	start := time.Now()
	d, err := api.Detail(r.ctx, r.MovieID)
	return DetailOutcome{
		Seq:       r.Seq,
		RequestID: r.RequestID,
		MovieID:   r.MovieID,
		Detail:    d,
		Err:       err,
		Elapsed:   time.Since(start),
	}
}

// DetailOutcome is the result of a DetailRequest.
type DetailOutcome struct {
	Seq       uint64
	RequestID string
	MovieID   string
	Detail    movie.Detail
	Err       error
	Elapsed   time.Duration
}

// SelectionController owns the single active selection.
type SelectionController struct {
	parent context.Context
	state  Selection

	seq     uint64
	current *DetailRequest
	cancel  context.CancelFunc
}

// NewSelectionController creates an Idle controller whose requests derive
// from parent.
func NewSelectionController(parent context.Context) *SelectionController {
	if parent == nil {
		parent = context.Background()
	}
	return &SelectionController{parent: parent, state: Idle{}}
}

// Select toggles id: selecting the current id again returns to Idle, any
// other id starts loading it. The returned request is nil unless a fetch
// is needed.
func (c *SelectionController) Select(id string) *DetailRequest {
	if id == "" || id == c.state.SelectedID() {
		c.Close()
		return nil
	}

	c.release()
	c.seq++
	ctx, cancel := context.WithCancel(c.parent)
	req := &DetailRequest{
		Seq:       c.seq,
		RequestID: uuid.NewString(),
		MovieID:   id,
		ctx:       ctx,
	}
	c.current = req
	c.cancel = cancel
	c.state = Loading{ID: id}
	return req
}

// Close discards any pending or loaded detail and returns to Idle.
func (c *SelectionController) Close() {
	c.release()
	c.seq++
	c.state = Idle{}
}

// CompleteDetail applies an outcome if it matches the current Loading state.
// It reports whether a detail or failure was applied. A cancelled outcome for
// the current request drops back to Idle and reports false.
func (c *SelectionController) CompleteDetail(o DetailOutcome) bool {
	loading, ok := c.state.(Loading)
	if !ok || c.current == nil || o.Seq != c.current.Seq || o.MovieID != loading.ID {
		return false
	}
	if isCancelled(o.Err) || c.current.ctx.Err() != nil {
		// Parent context is gone; nothing will replace this fetch.
		c.release()
		c.state = Idle{}
		return false
	}

	c.release()
	if o.Err != nil {
		c.state = Failed{ID: loading.ID, Err: o.Err}
		return true
	}
	d := o.Detail
	if d.ID == "" {
		d.ID = loading.ID
	}
	c.state = Loaded{ID: loading.ID, Detail: d}
	return true
}

// State returns the current selection.
func (c *SelectionController) State() Selection {
	return c.state
}

// Pending returns the in-flight request, if any.
func (c *SelectionController) Pending() *DetailRequest {
	return c.current
}

func (c *SelectionController) release() {
	if c.cancel != nil {
		c.cancel()
	}
	c.current = nil
	c.cancel = nil
}
