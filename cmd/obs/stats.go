package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"
)

// requestStats summarises one request family (search or detail).
type requestStats struct {
	started, completed, cancelled, stale, failed int
	durations                                    []float64 // ms, completed + failed
}

type logStats struct {
	sessions map[string]bool
	kinds    map[string]int
	search   requestStats
	detail   requestStats
	queries  map[string]int
	added    int
	removed  int
	ratings  []int
}

func newLogStats() *logStats {
	return &logStats{
		sessions: make(map[string]bool),
		kinds:    make(map[string]int),
		queries:  make(map[string]int),
	}
}

// add folds one event into the totals.
func (s *logStats) add(ev eventRecord) {
	if ev.SessionID != "" {
		s.sessions[ev.SessionID] = true
	}
	s.kinds[ev.Kind]++

	family, action, _ := strings.Cut(ev.Kind, ".")
	var rs *requestStats
	switch family {
	case "search":
		rs = &s.search
	case "detail":
		rs = &s.detail
	case "watch":
		switch action {
		case "add":
			s.added++
			if ev.Rating > 0 {
				s.ratings = append(s.ratings, ev.Rating)
			}
		case "remove":
			s.removed++
		}
		return
	default:
		return
	}

	switch action {
	case "start":
		rs.started++
		if family == "search" && ev.Query != "" {
			s.queries[strings.ToLower(ev.Query)]++
		}
	case "complete":
		rs.completed++
		rs.durations = append(rs.durations, ev.DurMs)
	case "error":
		rs.failed++
		rs.durations = append(rs.durations, ev.DurMs)
	case "cancel":
		rs.cancelled++
	case "stale":
		rs.stale++
	}
}

// readStats folds every parsable line of r.
func readStats(r io.Reader) (*logStats, error) {
	s := newLogStats()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
	for scanner.Scan() {
		var ev eventRecord
		if json.Unmarshal(scanner.Bytes(), &ev) != nil {
			continue
		}
		s.add(ev)
	}
	return s, scanner.Err()
}

// percentile returns the p-th percentile (0..100) by nearest rank.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

func (rs requestStats) print(name string) {
	fmt.Printf("%s:\n", name)
	fmt.Printf("  started %d, completed %d, failed %d, cancelled %d, stale %d\n",
		rs.started, rs.completed, rs.failed, rs.cancelled, rs.stale)
	if len(rs.durations) == 0 {
		return
	}
	d := slices.Clone(rs.durations)
	slices.Sort(d)
	fmt.Printf("  latency p50 %.0fms  p95 %.0fms  max %.0fms\n",
		percentile(d, 50), percentile(d, 95), d[len(d)-1])
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	top := fs.Int("top", 10, "Number of most frequent queries to list")
	fs.Parse(os.Args[1:])

	f := openEventLog()
	defer f.Close()

	s, err := readStats(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	fmt.Printf("Sessions:              %d\n", len(s.sessions))
	fmt.Printf("Events:                %d\n\n", sumValues(s.kinds))
	s.search.print("Searches")
	s.detail.print("Details")

	fmt.Printf("\nWatched: %d added, %d removed", s.added, s.removed)
	if len(s.ratings) > 0 {
		total := 0
		for _, r := range s.ratings {
			total += r
		}
		fmt.Printf(", mean rating %.2f", float64(total)/float64(len(s.ratings)))
	}
	fmt.Println()

	if len(s.queries) == 0 || *top <= 0 {
		return
	}
	queries := make([]string, 0, len(s.queries))
	for q := range s.queries {
		queries = append(queries, q)
	}
	slices.SortFunc(queries, func(a, b string) int {
		if d := s.queries[b] - s.queries[a]; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	if len(queries) > *top {
		queries = queries[:*top]
	}
	fmt.Printf("\nTop queries:\n")
	for _, q := range queries {
		fmt.Printf("  %-35s %d\n", truncate(q, 35), s.queries[q])
	}
}

func sumValues(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}
