package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/popcorn/internal/otel"
	tea "github.com/charmbracelet/bubbletea"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing request stats and recent events.
// Pure function with no side effects. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Last(20)

	// --- Stats section (keyed lookups, not map iteration) ---
	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Request Stats"))
	lines = append(lines, fmt.Sprintf("  Searches:   %d started, %d complete, %d cancelled, %d stale, %d errors",
		stats[otel.KindSearchStart], stats[otel.KindSearchComplete], stats[otel.KindSearchCancel],
		stats[otel.KindSearchStale], stats[otel.KindSearchError]))
	lines = append(lines, fmt.Sprintf("  Details:    %d started, %d complete, %d cancelled, %d errors",
		stats[otel.KindDetailStart], stats[otel.KindDetailComplete], stats[otel.KindDetailCancel],
		stats[otel.KindDetailError]))
	lines = append(lines, fmt.Sprintf("  Watched:    %d added, %d removed, %d rejected",
		stats[otel.KindWatchAdd], stats[otel.KindWatchRemove], stats[otel.KindWatchError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	// --- Recent events section ---
	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		age := time.Since(e.Time)
		ageStr := formatAge(age)

		line := fmt.Sprintf("  %6s  %-22s", ageStr, string(e.Kind))
		if e.Msg != "" {
			line += "  " + truncateWidth(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateWidth(e.Err, 30)
		}
		if e.MovieID != "" {
			line += "  " + e.MovieID
		}
		if e.QueryID != "" {
			qidDisplay := e.QueryID
			if len(qidDisplay) > 8 {
				qidDisplay = qidDisplay[:8]
			}
			line += fmt.Sprintf("  qid:%s", qidDisplay)
		}
		lines = append(lines, line)
	}

	// Truncate to fit terminal height (subtract chrome added by DebugPanel border/padding)
	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 96
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	content := strings.Join(lines, "\n")
	return DebugPanel.Width(panelWidth).Render(content)
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("D") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}

// msgName names a message type for trace events.
func msgName(msg tea.Msg) string {
	return fmt.Sprintf("%T", msg)
}
