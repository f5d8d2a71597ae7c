// Command popcorn is a terminal movie finder backed by OMDb.
//
// Search titles, open details, rate them and keep a watched list for the
// session:
//
//	OMDB_API_KEY=... popcorn
//	OMDB_ENDPOINT=http://localhost:9099/ OMDB_API_KEY=demo popcorn
//	popcorn -keys ~/.popcorn/keys.sh -init   # persist settings to config.json
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/abelbrown/popcorn/internal/config"
	"github.com/abelbrown/popcorn/internal/controller"
	"github.com/abelbrown/popcorn/internal/logging"
	"github.com/abelbrown/popcorn/internal/omdb"
	"github.com/abelbrown/popcorn/internal/otel"
	"github.com/abelbrown/popcorn/internal/store"
	"github.com/abelbrown/popcorn/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	keysFile := flag.String("keys", "", "Load settings from a shell script of export KEY=value lines")
	initConfig := flag.Bool("init", false, "Write the effective settings to config.json and exit")
	flag.Parse()

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *keysFile != "" {
		if err := cfg.LoadKeysFromFile(*keysFile); err != nil {
			log.Fatalf("Failed to read %s: %v", *keysFile, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if *initConfig {
		if err := cfg.Save(); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("wrote %s\n", config.ConfigPath())
		return
	}

	client, err := omdb.New(omdb.Options{
		APIKey:            cfg.OMDb.APIKey,
		Endpoint:          cfg.OMDb.Endpoint,
		Timeout:           cfg.Timeout(),
		RequestsPerSecond: cfg.OMDb.RequestsPerSecond,
	})
	if err != nil {
		log.Fatalf("Failed to create OMDb client: %v", err)
	}
	if !client.Available() {
		fmt.Fprintln(os.Stderr, "error: no OMDb API key configured")
		fmt.Fprintf(os.Stderr, "  export OMDB_API_KEY=... or set omdb.api_key in %s\n", config.ConfigPath())
		os.Exit(1)
	}

	dataDir := config.Dir()
	if err := logging.Init(dataDir); err != nil {
		log.Printf("Warning: file logging disabled: %v", err)
	}
	defer logging.Close()

	// Event log: ~/.popcorn/events.jsonl, mirrored into the debug overlay
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	var events *otel.Logger
	if cfg.UI.EventLog {
		f, err := os.OpenFile(filepath.Join(dataDir, "events.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			logging.Warn("event log disabled", "error", err)
			events = otel.NewNullLogger()
		} else {
			defer f.Close()
			events = otel.NewLogger(f)
		}
	} else {
		events = otel.NewNullLogger()
	}
	events.SetRingBuffer(ring)
	defer events.Close()

	// Watched list lives for this process only
	st, err := store.Open()
	if err != nil {
		log.Fatalf("Failed to open watched list: %v", err)
	}
	defer st.Close()

	session, err := controller.NewSession(ctx, st, controller.Options{
		MinQueryLength: cfg.Search.MinQueryLength,
		Events:         events,
	})
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	defer session.Shutdown()

	events.Info(otel.KindStartup, "main", "endpoint "+cfg.OMDb.Endpoint)
	logging.Info("starting", "endpoint", cfg.OMDb.Endpoint, "session", events.SessionID())

	// Create UI app with dependency injection
	app := ui.NewApp(ui.AppConfig{
		Session: session,
		Search: func(req *controller.SearchRequest) tea.Cmd {
			return func() tea.Msg {
				return ui.SearchCompleted{Outcome: req.Run(client)}
			}
		},
		Detail: func(req *controller.DetailRequest) tea.Cmd {
			return func() tea.Msg {
				return ui.DetailLoaded{Outcome: req.Run(client)}
			}
		},
		Debounce: cfg.Debounce(),
		Trace:    otel.TraceEnabled(),
		Ring:     ring,
		Events:   events,
	})

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	// Run UI (blocks until quit)
	if _, err := program.Run(); err != nil {
		events.Error(otel.KindError, "main", err)
		logging.Error("program exited", "error", err)
		log.Printf("Error running program: %v", err)
	}

	events.Info(otel.KindShutdown, "main", "bye")
	logging.Info("shutdown")
}
