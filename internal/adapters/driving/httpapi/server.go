// Package httpapi exposes the persona chatbot service over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/ports/driving"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/logger"
)

// Server is the HTTP server for the chatbot API.
type Server struct {
	personas  driving.PersonaService
	ingestion driving.IngestionService
	chat      driving.ChatService

	addr            string
	shutdownTimeout time.Duration
}

// NewServer creates a new HTTP server.
func NewServer(
	personas driving.PersonaService,
	ingestion driving.IngestionService,
	chat driving.ChatService,
	addr string,
	shutdownTimeout time.Duration,
) *Server {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &Server{
		personas:        personas,
		ingestion:       ingestion,
		chat:            chat,
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /personas", s.handleCreatePersona)
	mux.HandleFunc("GET /personas", s.handleListPersonas)
	mux.HandleFunc("GET /personas/{id}", s.handleGetPersona)
	mux.HandleFunc("PUT /personas/{id}", s.handleUpdatePersona)
	mux.HandleFunc("DELETE /personas/{id}", s.handleDeletePersona)

	mux.HandleFunc("POST /personas/{id}/documents", s.handleUploadDocument)
	mux.HandleFunc("GET /personas/{id}/documents", s.handleListDocuments)
	mux.HandleFunc("DELETE /personas/{id}/documents/{filename}", s.handleDetachDocument)
	mux.HandleFunc("POST /personas/{id}/reindex", s.handleReindex)

	mux.HandleFunc("POST /personas/{id}/query", s.handleQuery)
	mux.HandleFunc("GET /personas/{id}/history", s.handleHistory)

	mux.HandleFunc("GET /healthz", s.handleHealth)

	return loggingMiddleware(mux)
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
	}

	logger.Info("HTTP server listening on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown: %v", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
