// Package movie holds the domain types shared by the OMDb client, the
// watched-list store and the view-model.
package movie

import (
	"errors"
	"strconv"
	"strings"
)

// MaxRating is the top of the user rating scale.
const MaxRating = 10

var (
	// ErrUnrated is returned when a watched entry is built without a rating.
	ErrUnrated = errors.New("movie: not rated")

	// ErrInvalidRating is returned for ratings above MaxRating.
	ErrInvalidRating = errors.New("movie: rating out of range")

	// ErrIncompleteDetail is returned when a detail has no identifier.
	ErrIncompleteDetail = errors.New("movie: detail has no id")
)

// SearchResult is one row of a title search. Immutable; a newer search
// replaces the whole list.
type SearchResult struct {
	ID        string
	Title     string
	Year      string
	PosterURL string
}

// Detail is the full record of a selected title.
type Detail struct {
	ID              string
	Title           string
	Year            string
	PosterURL       string
	RuntimeMinutes  int
	CommunityRating float64 // 0-10, 0 when unknown
	Plot            string
	Released        string
	Actors          string
	Director        string
	Genre           string

	// Runtime is the display form as returned upstream ("148 min").
	Runtime string
}

// WatchedEntry is a rated title on the watched list.
// UserRating is fixed at creation.
type WatchedEntry struct {
	ID              string
	Title           string
	Year            string
	PosterURL       string
	CommunityRating float64
	RuntimeMinutes  int
	UserRating      int
}

// NewWatchedEntry builds a watched entry from a loaded detail and a user rating.
// Ratings <= 0 mean "not yet rated" and are rejected.
func NewWatchedEntry(d Detail, userRating int) (WatchedEntry, error) {
	if d.ID == "" {
		return WatchedEntry{}, ErrIncompleteDetail
	}
	if err := ValidateRating(userRating); err != nil {
		return WatchedEntry{}, err
	}
	return WatchedEntry{
		ID:              d.ID,
		Title:           d.Title,
		Year:            d.Year,
		PosterURL:       d.PosterURL,
		CommunityRating: d.CommunityRating,
		RuntimeMinutes:  d.RuntimeMinutes,
		UserRating:      userRating,
	}, nil
}

// ValidateRating checks a user rating against the 1..MaxRating scale.
func ValidateRating(r int) error {
	switch {
	case r <= 0:
		return ErrUnrated
	case r > MaxRating:
		return ErrInvalidRating
	}
	return nil
}

// ParseRuntime extracts the minute count from strings like "148 min".
// Unknown values ("N/A", "") yield 0.
func ParseRuntime(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseRating parses a community rating such as "8.7". Unknown values yield 0.
func ParseRating(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
