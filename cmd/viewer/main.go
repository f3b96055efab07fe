// Command viewer serves a results database written by submovements: a JSON
// API under /api/ with per-trial charts, and debug pages under /debug/.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lakfel/fittsStudy/internal/api"
	"github.com/lakfel/fittsStudy/internal/db"
	"github.com/lakfel/fittsStudy/internal/version"
)

var (
	dbPath      = flag.String("db", "submovements.db", "Results database to serve")
	listen      = flag.String("listen", ":8080", "Listen address")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

const shutdownTimeout = 5 * time.Second

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("viewer"))
		return
	}
	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	if _, err := os.Stat(*dbPath); err != nil {
		log.Fatalf("results database %s: %v", *dbPath, err)
	}

	database, err := db.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:    *listen,
		Handler: newHandler(database),
	}
	if err := serve(ctx, server); err != nil {
		log.Printf("HTTP server error: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}

// newHandler mounts the API under /api/ and the admin routes under /debug/,
// with every request logged.
func newHandler(database *db.DB) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", api.NewServer(database).ServeMux()))
	database.AttachAdminRoutes(mux)
	return api.LoggingMiddleware(mux)
}

// serve runs server until ctx is cancelled, then shuts it down.
func serve(ctx context.Context, server *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		log.Printf("serving %s on %s", *dbPath, server.Addr)
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		// Force close the server if graceful shutdown fails
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
		return err
	}
	return nil
}
