package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/abelbrown/popcorn/internal/config"
	"github.com/abelbrown/popcorn/internal/omdb"
)

// eventLogPath returns the path to events.jsonl.
func eventLogPath() string {
	return filepath.Join(config.Dir(), "events.jsonl")
}

// openEventLog opens the event log or exits with a hint.
func openEventLog() *os.File {
	path := eventLogPath()
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintf(os.Stderr, "  Event log not found at %s\n", path)
		fmt.Fprintf(os.Stderr, "  Run popcorn first to generate events.\n")
		os.Exit(1)
	}
	return f
}

// newClient builds an OMDb client from the popcorn config or fatals.
func newClient() *omdb.Client {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	c, err := omdb.New(omdb.Options{
		APIKey:            cfg.OMDb.APIKey,
		Endpoint:          cfg.OMDb.Endpoint,
		Timeout:           cfg.Timeout(),
		RequestsPerSecond: cfg.OMDb.RequestsPerSecond,
	})
	if err != nil {
		log.Fatalf("omdb client: %v", err)
	}
	if !c.Available() {
		fmt.Fprintln(os.Stderr, "error: OMDB_API_KEY environment variable is required")
		fmt.Fprintf(os.Stderr, "  export OMDB_API_KEY=... or set omdb.api_key in %s\n", config.ConfigPath())
		os.Exit(1)
	}
	return c
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
