// Package controller implements the view-model behind popcorn's TUI.
//
// Controllers sit between the OMDb client and the View, deciding which remote
// outcomes are allowed to change what the user sees.
//
// # Architecture
//
//	┌────────┐  request  ┌────────────┐  State()  ┌──────┐
//	│  OMDb  │ <──────── │ Controller │ ────────> │ View │
//	│ client │ ────────> │ (Session)  │ <──────── │ (UI) │
//	└────────┘  outcome  └────────────┘  intents  └──────┘
//
// # Controllers
//
//   - SearchController: current query, results, loading flag and error
//   - SelectionController: the single selected title and its detail lifecycle
//   - Session: both of the above plus the watched list, behind one façade
//
// # Requests and outcomes
//
// Controllers never perform I/O. An intent that needs the network returns a
// request (SearchRequest, DetailRequest) carrying a sequence number and a
// cancellable context; the caller runs it, usually inside a tea.Cmd, and
// hands the outcome back through CompleteSearch or CompleteDetail. Outcomes
// for anything but the latest request are discarded, so arrival order never
// matters.
//
// # Concurrency
//
// Controllers are not safe for concurrent use. All intents and completions
// must come from one goroutine (Bubble Tea's Update loop). Request.Run may be
// called from any goroutine.
package controller

import (
	"context"
	"errors"

	"github.com/abelbrown/popcorn/internal/movie"
	"github.com/abelbrown/popcorn/internal/omdb"
)

// MovieAPI is the remote lookup the requests run against.
// *omdb.Client satisfies it.
type MovieAPI interface {
	Search(ctx context.Context, query string) ([]movie.SearchResult, error)
	Detail(ctx context.Context, id string) (movie.Detail, error)
}

var _ MovieAPI = (*omdb.Client)(nil)

// User-facing messages.
const (
	MsgMovieNotFound = "Movie not found"
	MsgSearchFailed  = "Something went wrong with fetching movies"
	MsgDetailFailed  = "Something went wrong with fetching movie details"
)

// SearchMessage maps a search failure to the text shown to the user.
func SearchMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, omdb.ErrNotFound):
		return MsgMovieNotFound
	default:
		return MsgSearchFailed
	}
}

// DetailMessage maps a detail failure to the text shown to the user.
func DetailMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, omdb.ErrNotFound):
		return MsgMovieNotFound
	default:
		return MsgDetailFailed
	}
}

// isCancelled reports whether err stems from a cancelled request context.
func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
