// Package omdbtest serves a fake OMDb API from in-memory fixtures.
//
// It backs the client and UI tests and the cmd/omdb-mock binary. Only the two
// query shapes popcorn uses are implemented: ?s=<query> and ?i=<id>.
package omdbtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Fixture is one title served by the fake. Field names follow the OMDb payload.
type Fixture struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	IMDbID     string `json:"imdbID"`
	Poster     string `json:"Poster"`
	Runtime    string `json:"Runtime"`
	IMDbRating string `json:"imdbRating"`
	Plot       string `json:"Plot"`
	Released   string `json:"Released"`
	Actors     string `json:"Actors"`
	Director   string `json:"Director"`
	Genre      string `json:"Genre"`
}

// Handler is the fake OMDb HTTP handler.
type Handler struct {
	router   chi.Router
	apiKey   string
	requests atomic.Int64

	mu         sync.Mutex
	fixtures   []Fixture
	failStatus int
	delays     map[string]time.Duration
}

// NewHandler builds a handler serving fixtures. An empty apiKey accepts any key.
func NewHandler(apiKey string, fixtures []Fixture, mw ...func(http.Handler) http.Handler) *Handler {
	h := &Handler{
		apiKey:   apiKey,
		fixtures: append([]Fixture(nil), fixtures...),
		delays:   make(map[string]time.Duration),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	for _, m := range mw {
		r.Use(m)
	}
	r.Get("/", h.serve)
	h.router = r
	return h
}

// NewServer starts an httptest server with the given fixtures and closes it
// when the test ends. With no fixtures, DefaultFixtures are served.
func NewServer(t testing.TB, apiKey string, fixtures ...Fixture) (*httptest.Server, *Handler) {
	t.Helper()
	if len(fixtures) == 0 {
		fixtures = DefaultFixtures()
	}
	h := NewHandler(apiKey, fixtures)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Requests returns the number of requests served so far.
func (h *Handler) Requests() int64 {
	return h.requests.Load()
}

// SetFailure makes every following request answer with status. Zero clears it.
func (h *Handler) SetFailure(status int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failStatus = status
}

// SetDelay holds responses for the given search query or id for d. An empty
// key delays every response.
func (h *Handler) SetDelay(key string, d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.delays[strings.ToLower(key)] = d
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	h.requests.Add(1)
	q := r.URL.Query()

	h.mu.Lock()
	failStatus := h.failStatus
	delay := h.delays[strings.ToLower(q.Get("s"))]
	if delay == 0 {
		delay = h.delays[strings.ToLower(q.Get("i"))]
	}
	if delay == 0 {
		delay = h.delays[""]
	}
	h.mu.Unlock()

	if delay > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(delay):
		}
	}

	if failStatus != 0 {
		http.Error(w, http.StatusText(failStatus), failStatus)
		return
	}
	if h.apiKey != "" && q.Get("apikey") != h.apiKey {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"Response": "False", "Error": "Invalid API key!"})
		return
	}

	switch {
	case q.Get("i") != "":
		h.serveDetail(w, q.Get("i"))
	case q.Get("s") != "":
		h.serveSearch(w, q.Get("s"))
	default:
		writeJSON(w, http.StatusOK, map[string]string{"Response": "False", "Error": "Incorrect IMDb ID."})
	}
}

func (h *Handler) serveSearch(w http.ResponseWriter, query string) {
	needle := strings.ToLower(strings.TrimSpace(query))

	type row struct {
		Title  string `json:"Title"`
		Year   string `json:"Year"`
		IMDbID string `json:"imdbID"`
		Type   string `json:"Type"`
		Poster string `json:"Poster"`
	}
	var rows []row

	h.mu.Lock()
	for _, f := range h.fixtures {
		if strings.Contains(strings.ToLower(f.Title), needle) {
			rows = append(rows, row{Title: f.Title, Year: f.Year, IMDbID: f.IMDbID, Type: "movie", Poster: f.Poster})
		}
	}
	h.mu.Unlock()

	if len(rows) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"Response": "False", "Error": "Movie not found!"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"Search":       rows,
		"totalResults": len(rows),
		"Response":     "True",
	})
}

func (h *Handler) serveDetail(w http.ResponseWriter, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, f := range h.fixtures {
		if f.IMDbID == id {
			type detail struct {
				Fixture
				Response string `json:"Response"`
			}
			writeJSON(w, http.StatusOK, detail{Fixture: f, Response: "True"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"Response": "False", "Error": "Incorrect IMDb ID."})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DefaultFixtures returns a small deterministic catalogue. Two titles match
// "interstellar".
func DefaultFixtures() []Fixture {
	return []Fixture{
		{
			Title: "Interstellar", Year: "2014", IMDbID: "tt0816692",
			Poster: "https://m.media-amazon.com/images/M/interstellar.jpg", Runtime: "169 min", IMDbRating: "8.7",
			Plot:     "A team of explorers travel through a wormhole in space in an attempt to ensure humanity's survival.",
			Released: "07 Nov 2014", Actors: "Matthew McConaughey, Anne Hathaway, Jessica Chastain",
			Director: "Christopher Nolan", Genre: "Adventure, Drama, Sci-Fi",
		},
		{
			Title: "The Science of Interstellar", Year: "2015", IMDbID: "tt4415360",
			Poster: "N/A", Runtime: "50 min", IMDbRating: "8.0",
			Plot:     "The science behind the film Interstellar.",
			Released: "31 Mar 2015", Actors: "Matthew McConaughey, Kip Thorne",
			Director: "Gail Willumsen", Genre: "Documentary",
		},
		{
			Title: "Inception", Year: "2010", IMDbID: "tt1375666",
			Poster: "https://m.media-amazon.com/images/M/inception.jpg", Runtime: "148 min", IMDbRating: "8.8",
			Plot:     "A thief who steals corporate secrets through dream-sharing technology is given the inverse task of planting an idea.",
			Released: "16 Jul 2010", Actors: "Leonardo DiCaprio, Joseph Gordon-Levitt, Elliot Page",
			Director: "Christopher Nolan", Genre: "Action, Adventure, Sci-Fi",
		},
		{
			Title: "The Dark Knight", Year: "2008", IMDbID: "tt0468569",
			Poster: "https://m.media-amazon.com/images/M/darkknight.jpg", Runtime: "152 min", IMDbRating: "9.0",
			Plot:     "Batman faces the Joker, a criminal mastermind who wants to plunge Gotham into anarchy.",
			Released: "18 Jul 2008", Actors: "Christian Bale, Heath Ledger, Aaron Eckhart",
			Director: "Christopher Nolan", Genre: "Action, Crime, Drama",
		},
	}
}
