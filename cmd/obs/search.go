package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abelbrown/popcorn/internal/movie"
	"github.com/abelbrown/popcorn/internal/omdb"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentQueries limits parallel OMDb lookups.
const maxConcurrentQueries = 4

// queryReport is everything printed for one query.
type queryReport struct {
	query      string
	results    []movie.SearchResult
	searchErr  error
	searchDur  time.Duration
	detail     movie.Detail
	detailErr  error
	detailDur  time.Duration
	withDetail bool
}

func lookup(ctx context.Context, client *omdb.Client, query string, withDetail bool) queryReport {
	r := queryReport{query: query}

	t0 := time.Now()
	r.results, r.searchErr = client.Search(ctx, query)
	r.searchDur = time.Since(t0).Round(time.Millisecond)
	if r.searchErr != nil || !withDetail || len(r.results) == 0 {
		return r
	}

	r.withDetail = true
	t1 := time.Now()
	r.detail, r.detailErr = client.Detail(ctx, r.results[0].ID)
	r.detailDur = time.Since(t1).Round(time.Millisecond)
	return r
}

func (r queryReport) print() {
	fmt.Printf("\n>>> QUERY: %q\n", r.query)
	fmt.Println(strings.Repeat("-", 80))

	switch {
	case errors.Is(r.searchErr, omdb.ErrNotFound):
		fmt.Printf("  no match [%v]\n", r.searchDur)
		return
	case r.searchErr != nil:
		fmt.Printf("  ERROR: %v [%v]\n", r.searchErr, r.searchDur)
		return
	}

	fmt.Printf("  %d results [%v]\n", len(r.results), r.searchDur)
	for i, res := range r.results {
		fmt.Printf("  %2d. %-10s %-6s %s\n", i+1, res.ID, res.Year, truncate(res.Title, 60))
	}

	if !r.withDetail {
		return
	}
	if r.detailErr != nil {
		fmt.Printf("\n  ERROR fetching %s: %v [%v]\n", r.results[0].ID, r.detailErr, r.detailDur)
		return
	}
	d := r.detail
	fmt.Printf("\n  DETAIL %s [%v]\n", d.ID, r.detailDur)
	fmt.Printf("  %s (%s), %s, %d min, IMDb %.1f\n", d.Title, d.Year, d.Genre, d.RuntimeMinutes, d.CommunityRating)
	fmt.Printf("  Directed by %s\n", d.Director)
	fmt.Printf("  Starring %s\n", truncate(d.Actors, 70))
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	detail := fs.Bool("detail", false, "Also fetch the detail of the first result")
	fs.Parse(os.Args[1:])

	queries := fs.Args()
	if len(queries) == 0 {
		fmt.Fprintln(os.Stderr, "usage: obs search [--detail] <query> [query...]")
		os.Exit(1)
	}

	client := newClient()
	ctx := context.Background()

	// Queries run concurrently; reports print in argument order.
	reports := make([]queryReport, len(queries))
	var g errgroup.Group
	g.SetLimit(maxConcurrentQueries)
	for i, query := range queries {
		g.Go(func() error {
			reports[i] = lookup(ctx, client, query, *detail)
			return nil // errors are part of the report
		})
	}
	_ = g.Wait()

	for _, r := range reports {
		r.print()
	}
	fmt.Println()
}
