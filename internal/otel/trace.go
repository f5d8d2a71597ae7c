package otel

import (
	"os"
	"strconv"
)

// traceEnabled is read once at package init.
var traceEnabled = traceFromEnv()

// TraceEnabled reports whether POPCORN_TRACE was set to a true value at
// startup. When true the UI records every Bubble Tea message it receives.
func TraceEnabled() bool {
	return traceEnabled
}

// traceFromEnv parses POPCORN_TRACE. Any non-empty value other than a
// boolean false ("0", "false") turns tracing on.
func traceFromEnv() bool {
	v := os.Getenv("POPCORN_TRACE")
	if v == "" {
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return true
}
