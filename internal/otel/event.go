// Package otel records structured popcorn events.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer keeps the recent tail in memory for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Search events
	KindSearchStart    EventKind = "search.start"
	KindSearchComplete EventKind = "search.complete"
	KindSearchCancel   EventKind = "search.cancel"
	KindSearchError    EventKind = "search.error"
	KindSearchStale    EventKind = "search.stale"

	// Detail events
	KindDetailStart    EventKind = "detail.start"
	KindDetailComplete EventKind = "detail.complete"
	KindDetailCancel   EventKind = "detail.cancel"
	KindDetailError    EventKind = "detail.error"

	// Watched list events
	KindWatchAdd    EventKind = "watch.add"
	KindWatchRemove EventKind = "watch.remove"
	KindWatchError  EventKind = "watch.error"

	// UI events
	KindKeyPress EventKind = "ui.key"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace events
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is the universal record. Every field except Kind and Time is
// optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // "search", "detail", "watch", "ui", "main"
	SessionID string         `json:"session_id,omitempty"` // same for the entire app run
	QueryID   string         `json:"qid,omitempty"`        // request correlation ID
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	MovieID   string         `json:"movie,omitempty"`
	Query     string         `json:"query,omitempty"`
	Rating    int            `json:"rating,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
