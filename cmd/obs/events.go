package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// eventRecord is the subset of an events.jsonl line the viewer reads.
type eventRecord struct {
	Time      time.Time      `json:"t"`
	Level     string         `json:"level"`
	Kind      string         `json:"kind"`
	Comp      string         `json:"comp"`
	SessionID string         `json:"session_id"`
	QueryID   string         `json:"qid"`
	DurMs     float64        `json:"dur_ms"`
	Count     int            `json:"count"`
	MovieID   string         `json:"movie"`
	Query     string         `json:"query"`
	Rating    int            `json:"rating"`
	Err       string         `json:"err"`
	Msg       string         `json:"msg"`
	Extra     map[string]any `json:"extra"`
}

var levelRanks = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// eventFilter selects events. Zero fields match everything.
type eventFilter struct {
	kind     string // prefix, e.g. "search" or "watch.add"
	comp     string
	qid      string // prefix, so the 8-char ids printed by -group work
	movie    string
	minLevel string
}

func (f eventFilter) match(ev eventRecord) bool {
	switch {
	case f.kind != "" && !strings.HasPrefix(ev.Kind, f.kind):
		return false
	case f.comp != "" && ev.Comp != f.comp:
		return false
	case f.qid != "" && !strings.HasPrefix(ev.QueryID, f.qid):
		return false
	case f.movie != "" && ev.MovieID != f.movie:
		return false
	case f.minLevel != "" && levelRanks[ev.Level] < levelRanks[f.minLevel]:
		return false
	}
	return true
}

// cause explains why a request ended without its answer being shown.
// Events emitted when the answer arrives carry a duration; those emitted
// when the request is dropped do not.
func cause(ev eventRecord) string {
	switch ev.Kind {
	case "search.cancel":
		if ev.DurMs > 0 {
			return "answered after cancel"
		}
		return "superseded by a newer query"
	case "search.stale":
		return "answer for an outdated query"
	case "detail.cancel":
		if ev.DurMs > 0 {
			return "answered after the selection changed"
		}
		return "selection changed or closed"
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDur(ms float64) string {
	switch {
	case ms >= 100:
		return fmt.Sprintf("%.0fms", ms)
	case ms >= 1:
		return fmt.Sprintf("%.1fms", ms)
	}
	return fmt.Sprintf("%.2fms", ms)
}

// formatEvent renders one event on a single line.
func formatEvent(ev eventRecord) string {
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %-5s %-20s", ev.Time.Format("15:04:05.000"), lvl, ev.Kind)

	if ev.QueryID != "" {
		b.WriteString(" qid=" + shortID(ev.QueryID))
	}
	if ev.Query != "" {
		fmt.Fprintf(&b, " q=%q", ev.Query)
	}
	if ev.MovieID != "" {
		b.WriteString(" movie=" + ev.MovieID)
	}
	if ev.Rating > 0 {
		fmt.Fprintf(&b, " rating=%d", ev.Rating)
	}
	if ev.Count > 0 {
		fmt.Fprintf(&b, " n=%d", ev.Count)
	}
	if ev.DurMs > 0 {
		b.WriteString(" " + formatDur(ev.DurMs))
	}
	if c := cause(ev); c != "" {
		b.WriteString(" (" + c + ")")
	}
	if ev.Msg != "" {
		b.WriteString(" - " + ev.Msg)
	}
	if ev.Err != "" {
		b.WriteString(" err=" + ev.Err)
	}
	return b.String()
}

// requestGroup is every event that shares a request id.
type requestGroup struct {
	qid    string
	events []eventRecord
}

// summary names the request and how it ended.
func (g requestGroup) summary() string {
	first, last := g.events[0], g.events[len(g.events)-1]
	family, _, _ := strings.Cut(first.Kind, ".")
	_, outcome, _ := strings.Cut(last.Kind, ".")

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", family, shortID(g.qid))
	for _, ev := range g.events {
		if ev.Query != "" {
			fmt.Fprintf(&b, " q=%q", ev.Query)
			break
		}
	}
	if first.MovieID != "" {
		b.WriteString(" movie=" + first.MovieID)
	}
	b.WriteString(" -> " + outcome)
	if last.DurMs > 0 {
		b.WriteString(" in " + formatDur(last.DurMs))
	}
	if c := cause(last); c != "" {
		b.WriteString(" (" + c + ")")
	}
	return b.String()
}

// groupByRequest collects events by request id in order of first
// appearance. Events without a request id are left out.
func groupByRequest(events []eventRecord) []requestGroup {
	index := make(map[string]int)
	var groups []requestGroup
	for _, ev := range events {
		if ev.QueryID == "" {
			continue
		}
		i, ok := index[ev.QueryID]
		if !ok {
			i = len(groups)
			index[ev.QueryID] = i
			groups = append(groups, requestGroup{qid: ev.QueryID})
		}
		groups[i].events = append(groups[i].events, ev)
	}
	return groups
}

// loggedEvent keeps the raw line for -json output.
type loggedEvent struct {
	ev  eventRecord
	raw string
}

// readEvents returns every decodable line of r that f accepts.
func readEvents(r io.Reader, f eventFilter) ([]loggedEvent, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	var out []loggedEvent
	for scanner.Scan() {
		line := scanner.Bytes()
		var ev eventRecord
		if len(line) == 0 || json.Unmarshal(line, &ev) != nil {
			continue
		}
		if f.match(ev) {
			out = append(out, loggedEvent{ev: ev, raw: string(line)})
		}
	}
	return out, scanner.Err()
}

func lastN[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[len(items)-n:]
	}
	return items
}

func runEvents() {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	tail := fs.Int("tail", 50, "Number of recent events (or requests with -group) to show")
	follow := fs.Bool("f", false, "Keep printing new events as they are written")
	group := fs.Bool("group", false, "Group events by request id")
	rawJSON := fs.Bool("json", false, "Output raw JSON lines")
	var f eventFilter
	fs.StringVar(&f.kind, "kind", "", "Filter by event kind prefix (e.g. 'search', 'watch.add')")
	fs.StringVar(&f.minLevel, "level", "", "Minimum level: debug, info, warn, error")
	fs.StringVar(&f.comp, "comp", "", "Filter by component (search, detail, watch, ui, main)")
	fs.StringVar(&f.qid, "qid", "", "Filter by request id or its prefix")
	fs.StringVar(&f.movie, "movie", "", "Filter by IMDb id")
	fs.Parse(os.Args[1:])

	file := openEventLog()
	defer file.Close()

	events, err := readEvents(file, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: read event log: %v\n", err)
		os.Exit(1)
	}

	if *group {
		records := make([]eventRecord, len(events))
		for i, e := range events {
			records[i] = e.ev
		}
		for _, g := range lastN(groupByRequest(records), *tail) {
			fmt.Println(g.summary())
			for _, ev := range g.events {
				fmt.Println("  " + formatEvent(ev))
			}
		}
		return
	}

	emit := func(e loggedEvent) {
		if *rawJSON {
			fmt.Println(e.raw)
		} else {
			fmt.Println(formatEvent(e.ev))
		}
	}
	for _, e := range lastN(events, *tail) {
		emit(e)
	}
	if !*follow {
		return
	}

	// The scanner consumed the file; poll for lines appended since.
	reader := bufio.NewReader(file)
	var partial []byte
	for {
		chunk, err := reader.ReadBytes('\n')
		partial = append(partial, chunk...)
		if err == io.EOF {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
		line := strings.TrimRight(string(partial), "\r\n")
		partial = partial[:0]

		var ev eventRecord
		if line == "" || json.Unmarshal([]byte(line), &ev) != nil || !f.match(ev) {
			continue
		}
		emit(loggedEvent{ev: ev, raw: line})
	}
}
