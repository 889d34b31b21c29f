/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the timeclock API server: SQLite store, punch
  ledger with its serial write queue, session registry with the day
  rollover ticker, and the HTTP router, with graceful shutdown.

COMMAND-LINE FLAGS:
  -port        HTTP server port (default: 8080)
  -db          SQLite database path (default: clockwise.db)
               Use ":memory:" for an in-memory database
  -jwt-secret  HMAC secret for auth tokens (default: dev-only value)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the rollover ticker, drain the write queue
  4. Close the database connection
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

	"github.com/warp/timeclock-engine/api"
	"github.com/warp/timeclock-engine/store/sqlite"
	"github.com/warp/timeclock-engine/timeclock"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "clockwise.db", "SQLite database path")
	jwtSecret := flag.String("jwt-secret", "clockwise-dev-secret", "HMAC secret for auth tokens")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	ledger := timeclock.NewLedger(store)
	defer ledger.Close()

	auth := api.NewAuth(*jwtSecret, 12*time.Hour)
	handler := api.NewHandler(store, ledger, auth)

	// Once per minute is enough for day-rollover correctness.
	handler.Sessions.Start(time.Minute)
	defer handler.Sessions.Stop()

	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Timeclock server starting on http://localhost:%d", *port)
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
