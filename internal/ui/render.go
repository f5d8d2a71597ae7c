package ui

import (
	"fmt"
	"strings"

	"github.com/abelbrown/popcorn/internal/controller"
	"github.com/abelbrown/popcorn/internal/movie"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// render lays out the header, the two boxes and the status bar.
func (a App) render() string {
	st := a.session.State()

	header := a.renderHeader(st)
	status := a.renderStatusBar()

	bodyHeight := a.height - lipgloss.Height(header) - lipgloss.Height(status)
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	leftWidth := a.width / 2
	rightWidth := a.width - leftWidth

	left := a.renderBox(a.focus == paneResults, a.collapsed[0], leftWidth, bodyHeight, a.renderResults(st, leftWidth-4))
	right := a.renderBox(a.focus == paneRight, a.collapsed[1], rightWidth, bodyHeight, a.renderRight(st, rightWidth-4))

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (a App) renderHeader(st controller.State) string {
	logo := Logo.Render("🍿 usePopcorn")
	search := SearchBox.Render(a.input.View())
	count := ResultCount.Render(fmt.Sprintf("Found %d results", len(st.Results)))

	gap := a.width - lipgloss.Width(logo) - lipgloss.Width(search) - lipgloss.Width(count)
	if gap < 1 {
		gap = 1
	}
	half := gap / 2
	return logo + strings.Repeat(" ", half) + search + strings.Repeat(" ", gap-half) + count
}

// renderBox frames content. Border and padding take two rows and four columns.
func (a App) renderBox(focused, collapsed bool, width, height int, content string) string {
	style := Box
	if focused {
		style = FocusedBox
	}
	if collapsed {
		content = Meta.Render("[+]")
	}

	innerHeight := height - 2
	if innerHeight < 1 {
		innerHeight = 1
	}
	lines := strings.Split(content, "\n")
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}
	return style.Width(width - 2).Height(innerHeight).Render(strings.Join(lines, "\n"))
}

func (a App) renderResults(st controller.State, width int) string {
	switch {
	case st.SearchLoading:
		return a.spinner.View() + " Loading..."
	case st.SearchError != "":
		return ErrorStyle.Render("⛔ " + st.SearchError)
	case len(st.Results) == 0:
		return HelpStyle.Render("Start typing to search for movies")
	}

	selected := st.Selection.SelectedID()
	var b strings.Builder
	for i, r := range st.Results {
		line := truncateWidth(r.Title, width-12) + "  " + Meta.Render("🗓 "+r.Year)
		if r.ID == selected {
			line = "▸ " + line
		}
		if i == a.resultCursor && a.focus == paneResults {
			b.WriteString(SelectedItem.Render(line))
		} else {
			b.WriteString(NormalItem.Render(line))
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// renderRight shows the detail view when something is selected and the
// watched list otherwise.
func (a App) renderRight(st controller.State, width int) string {
	switch sel := st.Selection.(type) {
	case controller.Loading:
		return a.spinner.View() + " Loading..."
	case controller.Failed:
		return ErrorStyle.Render("⛔ " + sel.Message())
	case controller.Loaded:
		return a.renderDetail(sel.Detail, width)
	}
	return a.renderWatched(st, width)
}

func (a App) renderDetail(d movie.Detail, width int) string {
	var lines []string
	lines = append(lines, BoxTitle.Render(d.Title))
	lines = append(lines, Meta.Render(d.Released+" • "+d.Runtime))
	lines = append(lines, Meta.Render(d.Genre))
	lines = append(lines, fmt.Sprintf("⭐️ %.1f IMDb rating", d.CommunityRating))
	lines = append(lines, "")

	if r, ok := a.session.WatchedRating(d.ID); ok {
		lines = append(lines, fmt.Sprintf("You rated with movie %d ⭐️", r))
	} else {
		lines = append(lines, renderStars(a.rating))
		if a.rating > 0 {
			lines = append(lines, AddButton.Render("+ Add to list (a)"))
		}
	}
	lines = append(lines, "")

	wrap := lipgloss.NewStyle().Width(width)
	lines = append(lines, wrap.Italic(true).Render(d.Plot))
	lines = append(lines, wrap.Render("Starring "+d.Actors))
	lines = append(lines, wrap.Render("Directed by "+d.Director))
	return strings.Join(lines, "\n")
}

func renderStars(rating int) string {
	var b strings.Builder
	for i := 1; i <= movie.MaxRating; i++ {
		if i <= rating {
			b.WriteString(Star.Render("★"))
		} else {
			b.WriteString(EmptyStar.Render("☆"))
		}
	}
	if rating > 0 {
		b.WriteString(" " + Star.Render(fmt.Sprint(rating)))
	}
	return b.String()
}

func (a App) renderWatched(st controller.State, width int) string {
	agg := st.Aggregates
	var lines []string
	lines = append(lines, BoxTitle.Render("Movies you watched"))
	lines = append(lines, summaryLine(agg))
	lines = append(lines, "")

	for i, e := range st.Watched {
		title := truncateWidth(e.Title, width-4)
		stats := Meta.Render(fmt.Sprintf("⭐️ %.1f  🌟 %d  ⏳ %d min", e.CommunityRating, e.UserRating, e.RuntimeMinutes))
		row := title + "\n" + stats
		if i == a.watchedCursor && a.focus == paneRight {
			lines = append(lines, SelectedItem.Render(row))
		} else {
			lines = append(lines, NormalItem.Render(row))
		}
	}
	return strings.Join(lines, "\n")
}

// summaryLine formats the watched-list aggregates.
func summaryLine(agg movie.Aggregates) string {
	return fmt.Sprintf("#️⃣ %d movies  ⭐️ %.2f  🌟 %.2f  ⏳ %.2f min",
		agg.Count, agg.AvgCommunityRating, agg.AvgUserRating, agg.AvgRuntime)
}

func (a App) renderStatusBar() string {
	text := a.help.View(keys)
	if a.notice != "" {
		text = Notice.Render(a.notice) + "  " + text
	}
	return StatusBar.Width(a.width).Render(text)
}

// truncateWidth shortens s to at most n terminal cells, marking the cut
// with "…".
func truncateWidth(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return runewidth.Truncate(s, n, "…")
}
