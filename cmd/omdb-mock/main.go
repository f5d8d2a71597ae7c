// Command omdb-mock serves a small fixed OMDb catalogue on a local port so
// popcorn can be demoed offline:
//
//	omdb-mock -addr :9099 -key demo
//	OMDB_ENDPOINT=http://localhost:9099/ OMDB_API_KEY=demo popcorn
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abelbrown/popcorn/internal/omdbtest"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	addr := flag.String("addr", ":9099", "Listen address")
	key := flag.String("key", "demo", "API key the mock accepts")
	delay := flag.Duration("delay", 0, "Artificial latency for every response")
	flag.Parse()

	h := omdbtest.NewHandler(*key, omdbtest.DefaultFixtures(), middleware.RequestID, middleware.Logger)
	if *delay > 0 {
		h.SetDelay("", *delay)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("omdb-mock listening on %s (key %q)", *addr, *key)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
