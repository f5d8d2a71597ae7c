package controller

import (
	"context"
	"errors"

	"github.com/abelbrown/popcorn/internal/logging"
	"github.com/abelbrown/popcorn/internal/movie"
	"github.com/abelbrown/popcorn/internal/otel"
	"github.com/abelbrown/popcorn/internal/store"
	"github.com/charmbracelet/log"
)

// State is everything the View renders.
type State struct {
	Query         string
	Results       []movie.SearchResult
	SearchLoading bool
	SearchError   string
	Selection     Selection
	Watched       []movie.WatchedEntry
	Aggregates    movie.Aggregates
}

// Options configures a Session.
type Options struct {
	MinQueryLength int
	Events         *otel.Logger // nil disables events
}

// Session is the single owner of popcorn's view state. Inputs are the
// user's intents; the output is State.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc

	search    *SearchController
	selection *SelectionController
	store     *store.Store
	events    *otel.Logger
	log       *log.Logger

	watched    []movie.WatchedEntry
	aggregates movie.Aggregates
}

// NewSession creates a session over st. Requests derive from parent and are
// all cancelled by Shutdown.
func NewSession(parent context.Context, st *store.Store, opts Options) (*Session, error) {
	if st == nil {
		return nil, errors.New("controller: nil store")
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		ctx:       ctx,
		cancel:    cancel,
		search:    NewSearchController(ctx, opts.MinQueryLength),
		selection: NewSelectionController(ctx),
		store:     st,
		events:    opts.Events,
		log:       logging.WithPrefix("session"),
	}
	if err := s.refresh(); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

// SetQuery replaces the query. A changed query closes any open detail.
// The returned request is nil when nothing needs to be fetched.
func (s *Session) SetQuery(text string) *SearchRequest {
	if text == s.search.Query() {
		return nil
	}
	if s.selection.State().SelectedID() != "" {
		s.Close()
	}

	if prev := s.search.Pending(); prev != nil {
		s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchCancel, Comp: "search",
			QueryID: prev.RequestID, Query: prev.Query})
	}

	req := s.search.SetQuery(text)
	if req != nil {
		s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchStart, Comp: "search",
			QueryID: req.RequestID, Query: req.Term()})
	}
	return req
}

// CompleteSearch hands a search outcome back. It reports whether the
// visible state changed.
func (s *Session) CompleteSearch(o SearchOutcome) bool {
	applied := s.search.CompleteSearch(o)
	switch {
	case !applied && isCancelled(o.Err):
		s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchCancel, Comp: "search",
			QueryID: o.RequestID, Dur: o.Elapsed})
	case !applied:
		s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchStale, Comp: "search",
			QueryID: o.RequestID, Dur: o.Elapsed})
	case o.Err != nil:
		s.log.Warn("search failed", "qid", o.RequestID, "error", o.Err)
		s.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindSearchError, Comp: "search",
			QueryID: o.RequestID, Dur: o.Elapsed, Err: o.Err.Error(), Msg: s.search.Err()})
	default:
		s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchComplete, Comp: "search",
			QueryID: o.RequestID, Dur: o.Elapsed, Count: len(o.Items)})
	}
	return applied
}

// IsCurrentSearch reports whether req is still worth sending.
func (s *Session) IsCurrentSearch(req *SearchRequest) bool {
	return s.search.IsCurrent(req)
}

// Select toggles the selection of id.
func (s *Session) Select(id string) *DetailRequest {
	s.cancelPendingDetail()
	req := s.selection.Select(id)
	if req != nil {
		s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindDetailStart, Comp: "detail",
			QueryID: req.RequestID, MovieID: req.MovieID})
	}
	return req
}

// Close returns the selection to Idle.
func (s *Session) Close() {
	s.cancelPendingDetail()
	s.selection.Close()
}

func (s *Session) cancelPendingDetail() {
	if prev := s.selection.Pending(); prev != nil {
		s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindDetailCancel, Comp: "detail",
			QueryID: prev.RequestID, MovieID: prev.MovieID})
	}
}

// CompleteDetail hands a detail outcome back. It reports whether the
// visible state changed.
func (s *Session) CompleteDetail(o DetailOutcome) bool {
	applied := s.selection.CompleteDetail(o)
	switch {
	case !applied:
		s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindDetailCancel, Comp: "detail",
			QueryID: o.RequestID, MovieID: o.MovieID, Dur: o.Elapsed})
	case o.Err != nil:
		s.log.Warn("detail failed", "qid", o.RequestID, "movie", o.MovieID, "error", o.Err)
		s.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindDetailError, Comp: "detail",
			QueryID: o.RequestID, MovieID: o.MovieID, Dur: o.Elapsed, Err: o.Err.Error()})
	default:
		s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindDetailComplete, Comp: "detail",
			QueryID: o.RequestID, MovieID: o.MovieID, Dur: o.Elapsed})
	}
	return applied
}

// AddWatched rates d and appends it to the watched list. Adding the movie
// shown in the detail view closes it.
func (s *Session) AddWatched(d movie.Detail, rating int) error {
	entry, err := movie.NewWatchedEntry(d, rating)
	if err != nil {
		return err
	}
	if err := s.store.Add(entry); err != nil {
		s.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindWatchError, Comp: "watch",
			MovieID: d.ID, Err: err.Error()})
		return err
	}
	if err := s.refresh(); err != nil {
		return err
	}
	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindWatchAdd, Comp: "watch",
		MovieID: entry.ID, Rating: entry.UserRating, Count: len(s.watched)})

	if loaded, ok := s.selection.State().(Loaded); ok && loaded.ID == d.ID {
		s.Close()
	}
	return nil
}

// DeleteWatched removes id from the watched list and returns how many
// entries went. Search and selection state are untouched.
func (s *Session) DeleteWatched(id string) (int, error) {
	n, err := s.store.Remove(id)
	if err != nil {
		s.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindWatchError, Comp: "watch",
			MovieID: id, Err: err.Error()})
		return 0, err
	}
	if err := s.refresh(); err != nil {
		return n, err
	}
	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindWatchRemove, Comp: "watch",
		MovieID: id, Count: n})
	return n, nil
}

// WatchedRating returns the user's rating for id if it is on the list.
func (s *Session) WatchedRating(id string) (int, bool) {
	e, err := s.store.Get(id)
	if err != nil {
		if !errors.Is(err, store.ErrNotWatched) {
			s.log.Error("look up watched entry", "movie", id, "error", err)
		}
		return 0, false
	}
	return e.UserRating, true
}

// State returns a snapshot of the view state.
func (s *Session) State() State {
	return State{
		Query:         s.search.Query(),
		Results:       s.search.Results(),
		SearchLoading: s.search.Loading(),
		SearchError:   s.search.Err(),
		Selection:     s.selection.State(),
		Watched:       s.watched,
		Aggregates:    s.aggregates,
	}
}

// Shutdown cancels every outstanding request.
func (s *Session) Shutdown() {
	s.search.Abort()
	s.selection.release()
	s.cancel()
}

// refresh reloads the watched list and recomputes the aggregates.
func (s *Session) refresh() error {
	entries, err := s.store.Entries()
	if err != nil {
		s.log.Error("load watched list", "error", err)
		return err
	}
	agg, err := s.store.Aggregates()
	if err != nil {
		s.log.Error("summarize watched list", "error", err)
		return err
	}
	s.watched = entries
	s.aggregates = agg
	return nil
}
