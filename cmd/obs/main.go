// Command obs is the debugging CLI for popcorn.
//
// Usage:
//
//	obs                     Show help
//	obs events              JSONL event log viewer (-group, -movie, -f)
//	obs stats               Request latency and counts from the event log
//	obs search <query>      One-shot OMDb search against the configured endpoint
package main

import (
	"fmt"
	"os"
)

const usage = `obs: popcorn debug CLI

Usage:
  obs <command> [flags]

Commands:
  events      JSONL event log viewer
  stats       Request latency and counts from the event log
  search      One-shot OMDb search (requires OMDB_API_KEY)

Environment:
  OMDB_API_KEY    OMDb API key (required for search)
  OMDB_ENDPOINT   OMDb base URL (default: https://www.omdbapi.com/)

Run 'obs <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "events":
		runEvents()
	case "stats":
		runStats()
	case "search":
		runSearch()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "obs: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
