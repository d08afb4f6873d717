/*
main.go - Interactive server entry point

PURPOSE:
  Starts the coverage simulation server: an operator loads the shift sheet
  and the transaction export, edits the eligibility grid cell by cell, and
  every edit returns freshly recomputed reports.

STARTUP SEQUENCE:
  1. Environment config, then command-line flags (flags win)
  2. Open the session store (":memory:" by default)
  3. Restore a persisted session, if one exists
  4. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port        HTTP server port
  -db          SQLite session store path (":memory:" for ephemeral)
  -commission  Commission rate applied in period totals

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for active
  requests, close the store, exit.

SEE ALSO:
  - api/server.go: Router configuration
  - internal/config: Environment defaults
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas/coverage-engine/api"
	"github.com/atlas/coverage-engine/internal/config"
	"github.com/atlas/coverage-engine/store/sqlite"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Invalid environment: %v", err)
	}

	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite session store path")
	commission := flag.Float64("commission", cfg.CommissionRate, "Commission rate on attributed revenue")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer store.Close()

	handler := api.NewHandler(store)
	handler.CommissionRate = decimal.NewFromFloat(*commission)

	if err := handler.Restore(context.Background()); err != nil {
		log.Printf("Warning: failed to restore session: %v", err)
	}

	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
