package ui

import (
	"time"

	"github.com/abelbrown/popcorn/internal/controller"
	"github.com/abelbrown/popcorn/internal/movie"
	"github.com/abelbrown/popcorn/internal/otel"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultTitle is the terminal title when no detail is shown.
const DefaultTitle = "usePopcorn"

type pane int

const (
	paneSearch pane = iota
	paneResults
	paneRight // detail when something is selected, watched list otherwise
)

// AppConfig wires the App to its collaborators.
type AppConfig struct {
	Session *controller.Session

	// Search and Detail turn a request into a Cmd that runs it and reports
	// back with SearchCompleted / DetailLoaded.
	Search func(req *controller.SearchRequest) tea.Cmd
	Detail func(req *controller.DetailRequest) tea.Cmd

	Debounce time.Duration
	Ring     *otel.RingBuffer // debug overlay source, optional
	Events   *otel.Logger     // optional
	Trace    bool             // emit trace.msg_received for every message
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT perform I/O. Requests leave through the Search and
// Detail factories and their outcomes come back as messages.
type App struct {
	session  *controller.Session
	search   func(req *controller.SearchRequest) tea.Cmd
	detail   func(req *controller.DetailRequest) tea.Cmd
	debounce time.Duration
	ring     *otel.RingBuffer
	events   *otel.Logger
	trace    bool

	input   textinput.Model
	spinner spinner.Model
	help    help.Model

	focus         pane
	resultCursor  int
	watchedCursor int
	rating        int
	collapsed     [2]bool // left box, right box
	showDebug     bool
	notice        string
	title         string
	width         int
	height        int
	ready         bool
}

// NewApp creates an App from cfg. cfg.Session is required.
func NewApp(cfg AppConfig) App {
	ti := textinput.New()
	ti.Placeholder = "Search movies..."
	ti.Prompt = "🔍 "
	ti.CharLimit = 120
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = StatusBarKey

	return App{
		session:  cfg.Session,
		search:   cfg.Search,
		detail:   cfg.Detail,
		debounce: cfg.Debounce,
		ring:     cfg.Ring,
		events:   cfg.Events,
		trace:    cfg.Trace,
		input:    ti,
		spinner:  sp,
		help:     help.New(),
		focus:    paneSearch,
		title:    DefaultTitle,
	}
}

// Init starts the cursor blink and spinner and sets the window title.
func (a App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.spinner.Tick, tea.SetWindowTitle(DefaultTitle))
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.trace {
		a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: msgName(msg)})
	}

	a, cmd := a.update(msg)
	if t := a.windowTitle(); t != a.title {
		a.title = t
		cmd = tea.Batch(cmd, tea.SetWindowTitle(t))
	}
	return a, cmd
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.input.Width = inputWidth(msg.Width)
		a.ready = true
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case searchDue:
		if a.search == nil || !a.session.IsCurrentSearch(msg.req) {
			return a, nil
		}
		return a, a.search(msg.req)

	case SearchCompleted:
		if a.session.CompleteSearch(msg.Outcome) {
			a.resultCursor = clamp(a.resultCursor, len(a.session.State().Results))
		}
		return a, nil

	case DetailLoaded:
		if a.session.CompleteDetail(msg.Outcome) {
			a.rating = 0
		}
		return a, nil
	}

	// Anything else (cursor blink) belongs to the text input.
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (App, tea.Cmd) {
	a.notice = ""
	a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: msg.String()})

	if msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	switch {
	case key.Matches(msg, keys.Focus):
		if msg.String() == "shift+tab" {
			a.setFocus((a.focus + 2) % 3)
		} else {
			a.setFocus((a.focus + 1) % 3)
		}
		return a, nil

	case key.Matches(msg, keys.Close):
		if a.session.State().Selection.SelectedID() != "" {
			a.session.Close()
			a.rating = 0
			return a, nil
		}
		if a.focus == paneSearch {
			a.setFocus(paneResults)
		}
		return a, nil
	}

	if a.focus == paneSearch {
		return a.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, keys.Search):
		a.setFocus(paneSearch)
		return a, nil

	case key.Matches(msg, keys.Debug):
		a.showDebug = !a.showDebug
		return a, nil

	case key.Matches(msg, keys.Collapse):
		i := 0
		if a.focus == paneRight {
			i = 1
		}
		a.collapsed[i] = !a.collapsed[i]
		return a, nil
	}

	if d, ok := a.loadedDetail(); ok {
		if cmd, handled := a.handleDetailKey(msg, d); handled {
			return a, cmd
		}
	}

	switch {
	case a.focus == paneResults:
		return a.handleResultsKey(msg)
	case a.session.State().Selection.SelectedID() != "":
		// The detail covers the watched list.
		return a, nil
	}
	return a.handleWatchedKey(msg)
}

func (a App) handleSearchKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyDown:
		a.setFocus(paneResults)
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, tea.Batch(cmd, a.setQuery(a.input.Value()))
}

// setQuery forwards the input to the session and schedules the request.
func (a *App) setQuery(text string) tea.Cmd {
	req := a.session.SetQuery(text)
	if req == nil {
		return nil
	}
	a.resultCursor = 0
	if a.debounce <= 0 {
		if a.search == nil {
			return nil
		}
		return a.search(req)
	}
	return tea.Tick(a.debounce, func(time.Time) tea.Msg {
		return searchDue{req: req}
	})
}

func (a App) handleResultsKey(msg tea.KeyMsg) (App, tea.Cmd) {
	results := a.session.State().Results

	switch {
	case key.Matches(msg, keys.Down):
		if a.resultCursor < len(results)-1 {
			a.resultCursor++
		}
	case key.Matches(msg, keys.Up):
		if a.resultCursor > 0 {
			a.resultCursor--
		}
	case msg.String() == "g" || msg.String() == "home":
		a.resultCursor = 0
	case msg.String() == "G" || msg.String() == "end":
		a.resultCursor = clamp(len(results)-1, len(results))
	case key.Matches(msg, keys.Select):
		if a.resultCursor < len(results) {
			return a, a.selectMovie(results[a.resultCursor].ID)
		}
	}
	return a, nil
}

func (a App) handleWatchedKey(msg tea.KeyMsg) (App, tea.Cmd) {
	watched := a.session.State().Watched

	switch {
	case key.Matches(msg, keys.Down):
		if a.watchedCursor < len(watched)-1 {
			a.watchedCursor++
		}
	case key.Matches(msg, keys.Up):
		if a.watchedCursor > 0 {
			a.watchedCursor--
		}
	case key.Matches(msg, keys.Delete):
		if a.watchedCursor < len(watched) {
			e := watched[a.watchedCursor]
			if _, err := a.session.DeleteWatched(e.ID); err != nil {
				a.notice = ErrorStyle.Render(err.Error())
			} else {
				a.notice = "Removed " + e.Title
			}
			a.watchedCursor = clamp(a.watchedCursor, len(a.session.State().Watched))
		}
	case key.Matches(msg, keys.Select):
		if a.watchedCursor < len(watched) {
			return a, a.selectMovie(watched[a.watchedCursor].ID)
		}
	}
	return a, nil
}

// handleDetailKey handles rating and adding while a detail is shown.
func (a *App) handleDetailKey(msg tea.KeyMsg, d movie.Detail) (tea.Cmd, bool) {
	if _, watched := a.session.WatchedRating(d.ID); watched {
		return nil, false
	}

	switch {
	case key.Matches(msg, keys.Rate):
		r := int(msg.Runes[0] - '0')
		if r == 0 {
			r = movie.MaxRating
		}
		a.rating = r
		return nil, true
	case key.Matches(msg, keys.RateUp):
		if a.rating < movie.MaxRating {
			a.rating++
		}
		return nil, true
	case key.Matches(msg, keys.RateDown):
		if a.rating > 0 {
			a.rating--
		}
		return nil, true
	case key.Matches(msg, keys.Add):
		if a.rating <= 0 {
			return nil, true
		}
		if err := a.session.AddWatched(d, a.rating); err != nil {
			a.notice = ErrorStyle.Render(err.Error())
			return nil, true
		}
		a.notice = "Added " + d.Title
		a.rating = 0
		return nil, true
	}
	return nil, false
}

func (a *App) selectMovie(id string) tea.Cmd {
	a.rating = 0
	req := a.session.Select(id)
	if req == nil || a.detail == nil {
		return nil
	}
	return a.detail(req)
}

func (a *App) setFocus(p pane) {
	a.focus = p
	if p == paneSearch {
		a.input.Focus()
	} else {
		a.input.Blur()
	}
}

func (a App) loadedDetail() (movie.Detail, bool) {
	if l, ok := a.session.State().Selection.(controller.Loaded); ok {
		return l.Detail, true
	}
	return movie.Detail{}, false
}

func (a App) windowTitle() string {
	if d, ok := a.loadedDetail(); ok {
		return "Movie | " + d.Title
	}
	return DefaultTitle
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.showDebug {
		return debugOverlay(a.ring, a.width, a.height-1) + "\n" + debugStatusBar(a.width)
	}
	return a.render()
}

// Focus returns the focused pane index (for testing).
func (a App) Focus() int { return int(a.focus) }

// Rating returns the rating being chosen (for testing).
func (a App) Rating() int { return a.rating }

// ResultCursor returns the results cursor (for testing).
func (a App) ResultCursor() int { return a.resultCursor }

// WatchedCursor returns the watched list cursor (for testing).
func (a App) WatchedCursor() int { return a.watchedCursor }

// Title returns the last window title set (for testing).
func (a App) Title() string { return a.title }

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func inputWidth(total int) int {
	w := total / 3
	if w < 20 {
		w = 20
	}
	return w
}
