package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorStar      = lipgloss.Color("220") // Gold
	colorError     = lipgloss.Color("196") // Red
)

// Logo style for the app name in the header.
var Logo = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// SearchBox wraps the query input.
var SearchBox = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// ResultCount style for "Found N results".
var ResultCount = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// Box is the border around each half of the body.
var Box = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1)

// FocusedBox is Box when it has keyboard focus.
var FocusedBox = Box.
	BorderForeground(colorPrimary)

// BoxTitle style for the heading inside a box.
var BoxTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// SelectedItem style for the currently highlighted row.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for other rows.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// Meta style for years, runtimes and other secondary facts.
var Meta = lipgloss.NewStyle().
	Foreground(colorSecondary)

// Star style for filled rating stars.
var Star = lipgloss.NewStyle().
	Foreground(colorStar)

// EmptyStar style for unfilled rating stars.
var EmptyStar = lipgloss.NewStyle().
	Foreground(colorMuted)

// AddButton style for the add-to-list action.
var AddButton = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorSuccess).
	Padding(0, 1)

// Notice style for transient confirmations.
var Notice = lipgloss.NewStyle().
	Foreground(colorSuccess)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true)

// HelpStyle for placeholder text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// DebugHeaderStyle for section headings in the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// DebugPanel frames the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)
