package ui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/popcorn/internal/controller"
	"github.com/abelbrown/popcorn/internal/movie"
	"github.com/abelbrown/popcorn/internal/omdb"
	"github.com/abelbrown/popcorn/internal/otel"
	"github.com/abelbrown/popcorn/internal/store"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// mockCmd records the requests the App sends out.
type mockCmd struct {
	searches []*controller.SearchRequest
	details  []*controller.DetailRequest
}

func (m *mockCmd) search(req *controller.SearchRequest) tea.Cmd {
	m.searches = append(m.searches, req)
	return func() tea.Msg {
		return SearchCompleted{Outcome: controller.SearchOutcome{Seq: req.Seq, RequestID: req.RequestID}}
	}
}

func (m *mockCmd) loadDetail(req *controller.DetailRequest) tea.Cmd {
	m.details = append(m.details, req)
	return func() tea.Msg {
		return DetailLoaded{Outcome: controller.DetailOutcome{Seq: req.Seq, RequestID: req.RequestID, MovieID: req.MovieID}}
	}
}

func (m *mockCmd) lastSearch(t *testing.T) *controller.SearchRequest {
	t.Helper()
	if len(m.searches) == 0 {
		t.Fatal("no search was issued")
	}
	return m.searches[len(m.searches)-1]
}

func (m *mockCmd) lastDetail(t *testing.T) *controller.DetailRequest {
	t.Helper()
	if len(m.details) == 0 {
		t.Fatal("no detail was requested")
	}
	return m.details[len(m.details)-1]
}

func newTestApp(t *testing.T, mock *mockCmd, opts ...func(*AppConfig)) App {
	t.Helper()
	st, err := store.Open()
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	session, err := controller.NewSession(context.Background(), st, controller.Options{MinQueryLength: 3})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	t.Cleanup(session.Shutdown)

	cfg := AppConfig{Session: session, Search: mock.search, Detail: mock.loadDetail}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewApp(cfg)
}

func send(app App, msg tea.Msg) (App, tea.Cmd) {
	model, cmd := app.Update(msg)
	return model.(App), cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(app App, ks ...string) App {
	for _, k := range ks {
		app, _ = send(app, keyMsg(k))
	}
	return app
}

func typeText(app App, text string) App {
	for _, r := range text {
		app, _ = send(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return app
}

func resize(app App, w, h int) App {
	app, _ = send(app, tea.WindowSizeMsg{Width: w, Height: h})
	return app
}

func focusResults(app App) App {
	return press(app, "tab")
}

func movies(ids ...string) []movie.SearchResult {
	out := make([]movie.SearchResult, len(ids))
	for i, id := range ids {
		out[i] = movie.SearchResult{ID: id, Title: "Movie " + id, Year: "2014"}
	}
	return out
}

// searchFor types q and answers the resulting request with items.
func searchFor(t *testing.T, app App, mock *mockCmd, q string, items []movie.SearchResult) App {
	t.Helper()
	app = typeText(app, q)
	req := mock.lastSearch(t)
	app, _ = send(app, SearchCompleted{Outcome: controller.SearchOutcome{Seq: req.Seq, RequestID: req.RequestID, Items: items}})
	return app
}

// openDetail selects the highlighted result and answers with d.
func openDetail(t *testing.T, app App, mock *mockCmd, d movie.Detail) App {
	t.Helper()
	if app.focus == paneSearch {
		app = focusResults(app)
	}
	app = press(app, "enter")
	req := mock.lastDetail(t)
	app, _ = send(app, DetailLoaded{Outcome: controller.DetailOutcome{Seq: req.Seq, RequestID: req.RequestID, MovieID: req.MovieID, Detail: d}})
	return app
}

var inception = movie.Detail{
	ID: "tt1375666", Title: "Inception", Year: "2010", RuntimeMinutes: 148, Runtime: "148 min",
	CommunityRating: 8.8, Released: "16 Jul 2010", Genre: "Action, Sci-Fi",
	Plot: "A thief who steals corporate secrets.", Actors: "Leonardo DiCaprio", Director: "Christopher Nolan",
}

func TestAppInit(t *testing.T) {
	app := newTestApp(t, &mockCmd{})

	if cmd := app.Init(); cmd == nil {
		t.Fatal("Init should return a command")
	}
	if app.Title() != DefaultTitle {
		t.Errorf("Title() = %q, want %q", app.Title(), DefaultTitle)
	}
}

func TestAppTypingIssuesSearch(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(t, mock)

	app = typeText(app, "in")
	if len(mock.searches) != 0 {
		t.Fatalf("short query issued %d searches", len(mock.searches))
	}

	app = typeText(app, "t")
	if len(mock.searches) != 1 || mock.searches[0].Term() != "int" {
		t.Fatalf("expected one search for %q, got %d", "int", len(mock.searches))
	}
	if !app.session.State().SearchLoading {
		t.Error("search should be loading")
	}

	typeText(app, "e")
	if len(mock.searches) != 2 {
		t.Fatalf("expected a second search, got %d", len(mock.searches))
	}
	if mock.searches[0].Context().Err() == nil {
		t.Error("superseded search should be cancelled")
	}
}

func TestAppDebounce(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(t, mock, func(cfg *AppConfig) { cfg.Debounce = time.Millisecond })

	cmd := app.setQuery("inter")
	if cmd == nil {
		t.Fatal("expected a debounce command")
	}
	if len(mock.searches) != 0 {
		t.Fatal("search issued before the debounce elapsed")
	}
	stale, ok := cmd().(searchDue)
	if !ok {
		t.Fatal("debounce command should produce searchDue")
	}

	due, ok := app.setQuery("interstellar")().(searchDue)
	if !ok {
		t.Fatal("debounce command should produce searchDue")
	}

	app, _ = send(app, stale)
	if len(mock.searches) != 0 {
		t.Error("superseded query was sent after its debounce")
	}

	send(app, due)
	if len(mock.searches) != 1 || mock.searches[0].Term() != "interstellar" {
		t.Errorf("expected a single search for the latest query, got %d", len(mock.searches))
	}
}

func TestAppStaleSearchIgnored(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(t, mock)

	app = typeText(app, "inter")
	first := mock.searches[0]
	second := mock.lastSearch(t)

	app, _ = send(app, SearchCompleted{Outcome: controller.SearchOutcome{Seq: second.Seq, Items: movies("new")}})
	app, _ = send(app, SearchCompleted{Outcome: controller.SearchOutcome{Seq: first.Seq, Items: movies("old1", "old2")}})

	results := app.session.State().Results
	if len(results) != 1 || results[0].ID != "new" {
		t.Errorf("results = %v, want only the latest", results)
	}
}

func TestAppResultsNavigation(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(t, mock)
	app = searchFor(t, app, mock, "interstellar", movies("a", "b", "c"))
	app = focusResults(app)

	steps := []struct {
		key  string
		want int
	}{
		{"j", 1},
		{"k", 0},
		{"k", 0},
		{"G", 2},
		{"j", 2},
		{"g", 0},
		{"down", 1},
	}
	for _, s := range steps {
		app = press(app, s.key)
		if app.ResultCursor() != s.want {
			t.Errorf("after %q cursor = %d, want %d", s.key, app.ResultCursor(), s.want)
		}
	}
}

func TestAppSelectLoadsDetail(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(t, mock)
	app = searchFor(t, app, mock, "inception", movies("tt1375666", "tt2"))
	app = focusResults(app)

	app = press(app, "enter")
	if _, ok := app.session.State().Selection.(controller.Loading); !ok {
		t.Fatalf("selection = %T, want Loading", app.session.State().Selection)
	}
	if mock.lastDetail(t).MovieID != "tt1375666" {
		t.Errorf("requested %q", mock.lastDetail(t).MovieID)
	}

	req := mock.lastDetail(t)
	app, cmd := send(app, DetailLoaded{Outcome: controller.DetailOutcome{Seq: req.Seq, MovieID: req.MovieID, Detail: inception}})
	if cmd == nil {
		t.Error("loading a detail should set the window title")
	}
	if app.Title() != "Movie | Inception" {
		t.Errorf("Title() = %q", app.Title())
	}

	app = press(app, "esc")
	if app.session.State().Selection.SelectedID() != "" {
		t.Error("esc should close the detail")
	}
	if app.Title() != DefaultTitle {
		t.Errorf("Title() = %q after close, want %q", app.Title(), DefaultTitle)
	}
}

func TestAppSelectTogglesOff(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(t, mock)
	app = searchFor(t, app, mock, "inception", movies("tt1375666"))
	app = focusResults(app)

	app = press(app, "enter", "enter")
	if app.session.State().Selection.SelectedID() != "" {
		t.Error("selecting the same movie twice should close it")
	}
	if len(mock.details) != 1 {
		t.Errorf("expected one detail request, got %d", len(mock.details))
	}
}

func TestAppRateAndAdd(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(t, mock)
	app = searchFor(t, app, mock, "inception", movies("tt1375666"))
	app = openDetail(t, app, mock, inception)

	app = press(app, "a")
	if n := len(app.session.State().Watched); n != 0 {
		t.Fatalf("unrated movie added (%d entries)", n)
	}

	app = press(app, "0")
	if app.Rating() != 10 {
		t.Errorf("0 should rate 10, got %d", app.Rating())
	}
	app = press(app, "left", "left")
	if app.Rating() != 8 {
		t.Errorf("rating = %d after two decrements, want 8", app.Rating())
	}
	app = press(app, "right")
	if app.Rating() != 9 {
		t.Errorf("rating = %d after increment, want 9", app.Rating())
	}

	app = press(app, "a")
	watched := app.session.State().Watched
	if len(watched) != 1 || watched[0].ID != "tt1375666" || watched[0].UserRating != 9 {
		t.Fatalf("watched = %+v", watched)
	}
	if app.session.State().Selection.SelectedID() != "" {
		t.Error("adding should close the detail")
	}
	if app.Rating() != 0 {
		t.Errorf("rating should reset, got %d", app.Rating())
	}
}

func TestAppWatchedMovieCannotBeRatedAgain(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(t, mock)
	if err := app.session.AddWatched(inception, 7); err != nil {
		t.Fatal(err)
	}
	app = searchFor(t, app, mock, "inception", movies("tt1375666"))
	app = openDetail(t, app, mock, inception)

	app = press(app, "5", "a")
	if app.Rating() != 0 {
		t.Errorf("rating changed to %d for a watched movie", app.Rating())
	}
	if r, _ := app.session.WatchedRating("tt1375666"); r != 7 {
		t.Errorf("stored rating = %d, want 7", r)
	}
}

func TestAppDeleteWatched(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(t, mock)
	app.session.AddWatched(inception, 7)
	app.session.AddWatched(movie.Detail{ID: "tt0816692", Title: "Interstellar", RuntimeMinutes: 169, CommunityRating: 8.7}, 9)

	app = press(app, "tab", "tab")
	if app.Focus() != int(paneRight) {
		t.Fatalf("focus = %d, want right pane", app.Focus())
	}

	app = press(app, "j", "x")
	watched := app.session.State().Watched
	if len(watched) != 1 || watched[0].ID != "tt1375666" {
		t.Errorf("watched = %+v, want only Inception", watched)
	}
	if app.WatchedCursor() != 0 {
		t.Errorf("cursor = %d, want clamped to 0", app.WatchedCursor())
	}
}

func TestAppFocusCycle(t *testing.T) {
	app := newTestApp(t, &mockCmd{})

	want := []pane{paneResults, paneRight, paneSearch}
	for _, p := range want {
		app = press(app, "tab")
		if app.Focus() != int(p) {
			t.Errorf("focus = %d, want %d", app.Focus(), p)
		}
	}

	app = press(app, "tab", "/")
	if app.Focus() != int(paneSearch) {
		t.Error("/ should focus the search box")
	}
}

func TestAppCollapse(t *testing.T) {
	app := focusResults(newTestApp(t, &mockCmd{}))

	app = press(app, "z")
	if !app.collapsed[0] || app.collapsed[1] {
		t.Errorf("collapsed = %v, want left only", app.collapsed)
	}
	app = press(app, "z")
	if app.collapsed[0] {
		t.Error("second z should expand")
	}
}

func TestAppQuit(t *testing.T) {
	app := focusResults(newTestApp(t, &mockCmd{}))

	_, cmd := send(app, keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestAppQuitCtrlC(t *testing.T) {
	app := newTestApp(t, &mockCmd{})

	_, cmd := send(app, keyMsg("ctrl+c"))
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should return tea.Quit")
	}
}

func TestAppQTypesInSearch(t *testing.T) {
	app := newTestApp(t, &mockCmd{})

	app = typeText(app, "q")
	if app.input.Value() != "q" {
		t.Errorf("input = %q, want %q", app.input.Value(), "q")
	}
}

func TestAppWindowSize(t *testing.T) {
	app := resize(newTestApp(t, &mockCmd{}), 100, 50)

	if app.width != 100 || app.height != 50 {
		t.Errorf("size = %dx%d, want 100x50", app.width, app.height)
	}
	if !app.ready {
		t.Error("app should be ready after WindowSizeMsg")
	}
}

func TestAppViewNotReady(t *testing.T) {
	app := newTestApp(t, &mockCmd{})

	if got := app.View(); got != "Loading..." {
		t.Errorf("View() = %q, want Loading...", got)
	}
}

func TestAppViewSearchError(t *testing.T) {
	mock := &mockCmd{}
	app := resize(newTestApp(t, mock), 160, 40)
	app = typeText(app, "qwerty")
	req := mock.lastSearch(t)
	app, _ = send(app, SearchCompleted{Outcome: controller.SearchOutcome{Seq: req.Seq, Err: omdb.ErrNotFound}})

	view := app.View()
	if !strings.Contains(view, "⛔ "+controller.MsgMovieNotFound) {
		t.Errorf("view should show the search error, got:\n%s", view)
	}
}

func TestAppViewResultsAndCount(t *testing.T) {
	mock := &mockCmd{}
	app := resize(newTestApp(t, mock), 160, 40)
	app = searchFor(t, app, mock, "interstellar", movies("a", "b"))

	view := app.View()
	if !strings.Contains(view, "Found 2 results") {
		t.Errorf("view should count results, got:\n%s", view)
	}
	if !strings.Contains(view, "Movie a") {
		t.Errorf("view should list results, got:\n%s", view)
	}
}

func TestAppViewDetail(t *testing.T) {
	mock := &mockCmd{}
	app := resize(newTestApp(t, mock), 200, 50)
	app = searchFor(t, app, mock, "inception", movies("tt1375666"))
	app = openDetail(t, app, mock, inception)

	view := app.View()
	for _, want := range []string{"Inception", "Directed by Christopher Nolan", "Starring Leonardo DiCaprio"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestAppViewWatchedSummary(t *testing.T) {
	app := resize(newTestApp(t, &mockCmd{}), 200, 50)
	app.session.AddWatched(movie.Detail{ID: "a", Title: "A", CommunityRating: 8, RuntimeMinutes: 120}, 9)
	app.session.AddWatched(movie.Detail{ID: "b", Title: "B", CommunityRating: 6, RuntimeMinutes: 100}, 7)

	view := app.View()
	if !strings.Contains(view, "2 movies") {
		t.Errorf("view should count watched movies, got:\n%s", view)
	}
	for _, want := range []string{"7.00", "8.00", "110.00 min"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing aggregate %q:\n%s", want, view)
		}
	}
}

func TestSummaryLine(t *testing.T) {
	got := summaryLine(movie.Aggregates{})
	want := "#️⃣ 0 movies  ⭐️ 0.00  🌟 0.00  ⏳ 0.00 min"
	if got != want {
		t.Errorf("summaryLine(empty) = %q, want %q", got, want)
	}
}

func TestAppTraceEmitsMsgReceived(t *testing.T) {
	for _, trace := range []bool{true, false} {
		t.Run(fmt.Sprint(trace), func(t *testing.T) {
			ring := otel.NewRingBuffer(64)
			events := otel.NewNullLogger()
			events.SetRingBuffer(ring)

			app := newTestApp(t, &mockCmd{}, func(c *AppConfig) {
				c.Events = events
				c.Trace = trace
			})
			app = resize(app, 120, 40)
			send(app, spinner.TickMsg{})
			events.Close()

			got := ring.Matching(string(otel.KindMsgReceived), 10)
			if !trace {
				if len(got) != 0 {
					t.Errorf("tracing off but saw %d trace events", len(got))
				}
				return
			}
			if len(got) != 2 {
				t.Fatalf("expected 2 trace events, got %d", len(got))
			}
			if got[0].Msg != "tea.WindowSizeMsg" || got[1].Msg != "spinner.TickMsg" {
				t.Errorf("trace messages = %q, %q", got[0].Msg, got[1].Msg)
			}
		})
	}
}
