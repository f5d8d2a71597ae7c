// Package ui provides the Bubble Tea TUI for popcorn.
package ui

import "github.com/abelbrown/popcorn/internal/controller"

// SearchCompleted is sent when a search request finishes, successfully or not.
type SearchCompleted struct {
	Outcome controller.SearchOutcome
}

// DetailLoaded is sent when a detail request finishes, successfully or not.
type DetailLoaded struct {
	Outcome controller.DetailOutcome
}

// searchDue fires when the debounce delay for req has elapsed.
type searchDue struct {
	req *controller.SearchRequest
}
