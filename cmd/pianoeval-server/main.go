// Command pianoeval-server provides a REST and websocket API for the
// piano-coaching evaluation core.
//
// Usage:
//
//	pianoeval-server [options]
//
// Options:
//
//	-port     Port to listen on (default: 8080)
//	-host     Host to bind to (default: localhost)
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pianoflow/pianoeval/api/handlers"
	"github.com/pianoflow/pianoeval/api/middleware"
	"github.com/pianoflow/pianoeval/internal/pconfig"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	host := flag.String("host", "localhost", "Host to bind to")
	flag.Parse()

	if env := os.Getenv("PIANOEVAL_CONFIG"); env != "" {
		log.Printf("using config from PIANOEVAL_CONFIG=%s", env)
		opt, _, err := pconfig.Load(env)
		if err != nil {
			log.Fatalf("loading PIANOEVAL_CONFIG: %v", err)
		}
		handlers.SetDefaultOptions(opt)
	}

	registry := handlers.NewSessionRegistry()

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/align", func(r chi.Router) {
			r.Post("/dtw", handlers.DTWAlignHandler)
			r.Post("/gsa", handlers.GSAAlignHandler)
			r.Post("/hybrid", handlers.HybridAlignHandler)
		})
		r.Route("/evaluate", func(r chi.Router) {
			r.Post("/pipeline", handlers.EvaluatePipelineHandler)
			r.Post("/notes-only", handlers.EvaluateNotesOnlyHandler)
		})
	})

	r.Route("/ws", func(r chi.Router) {
		r.Get("/session/{id}", registry.WebSocketHandler)
	})

	addr := fmt.Sprintf("%s:%d", *host, *port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("Could not gracefully shutdown: %v\n", err)
		}
		close(done)
	}()

	log.Printf("PianoEval API server starting on http://%s\n", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", addr, err)
	}

	<-done
	log.Println("Server stopped")
}
