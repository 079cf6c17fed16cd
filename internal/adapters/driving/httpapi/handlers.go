package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Ghostdevc/chatbot-demo-gemini/internal/core/domain"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/guardrails"
	"github.com/Ghostdevc/chatbot-demo-gemini/internal/logger"
)

// maxUploadBytes caps document uploads.
const maxUploadBytes = 32 << 20

type personaRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	BoundaryText string `json:"boundary_text"`
}

type personaResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	BoundaryText string    `json:"boundary_text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toPersonaResponse(p *domain.Persona) personaResponse {
	return personaResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		BoundaryText: p.BoundaryText,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Answer         string   `json:"answer"`
	SentimentScore *float64 `json:"sentiment_score"`
	SafetyFlag     *string  `json:"safety_flag"`
}

// queryFailure still carries a user-safe answer. A query endpoint
// never returns a bare error body.
type queryFailure struct {
	Answer       string `json:"answer"`
	ErrorDetails string `json:"error_details"`
}

type uploadResponse struct {
	Filename      string `json:"filename"`
	ChunksCreated int    `json:"chunks_created"`
}

type reindexResponse struct {
	IndexedVectors int `json:"indexed_vectors"`
}

type historyEntry struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleCreatePersona(w http.ResponseWriter, r *http.Request) {
	var req personaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	created, err := s.personas.Create(r.Context(), domain.Persona{
		Name:         req.Name,
		Description:  req.Description,
		BoundaryText: req.BoundaryText,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPersonaResponse(created))
}

func (s *Server) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	personas, err := s.personas.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]personaResponse, len(personas))
	for i := range personas {
		out[i] = toPersonaResponse(&personas[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	persona, err := s.personas.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonaResponse(persona))
}

func (s *Server) handleUpdatePersona(w http.ResponseWriter, r *http.Request) {
	var req personaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	updated, err := s.personas.Update(r.Context(), domain.Persona{
		ID:           r.PathValue("id"),
		Name:         req.Name,
		Description:  req.Description,
		BoundaryText: req.BoundaryText,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonaResponse(updated))
}

func (s *Server) handleDeletePersona(w http.ResponseWriter, r *http.Request) {
	if err := s.personas.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "reading upload"})
		return
	}

	count, err := s.ingestion.Ingest(r.Context(), r.PathValue("id"), header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{
		Filename:      header.Filename,
		ChunksCreated: count,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	listings, err := s.ingestion.ListDocuments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if listings == nil {
		listings = []domain.DocumentListing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *Server) handleDetachDocument(w http.ResponseWriter, r *http.Request) {
	err := s.ingestion.Detach(r.Context(), r.PathValue("id"), r.PathValue("filename"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	count, err := s.ingestion.Reindex(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reindexResponse{IndexedVectors: count})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	answer, err := s.chat.Query(r.Context(), r.PathValue("id"), req.Query)
	if err == nil {
		writeJSON(w, http.StatusOK, queryResponse{
			Answer:         answer.Response,
			SentimentScore: answer.SentimentScore,
			SafetyFlag:     answer.SafetyFlag,
		})
		return
	}

	// Unknown persona and bad input stay plain API errors.
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
		writeError(w, err)
		return
	}

	// Every other query failure keeps a user-safe answer in the body.
	var guardErr *domain.GuardrailError
	if errors.As(err, &guardErr) {
		writeJSON(w, http.StatusInternalServerError, queryFailure{
			Answer:       guardErr.Fallback,
			ErrorDetails: "yanıt içerik kurallarına uymadığı için güvenli mesajla değiştirildi",
		})
		return
	}

	logger.Warn("Query failed for persona %s: %v", r.PathValue("id"), err)
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrUpstream) {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, queryFailure{
		Answer:       guardrails.Fallback(""),
		ErrorDetails: err.Error(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	turns, err := s.chat.History(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	entries := make([]historyEntry, len(turns))
	for i, turn := range turns {
		entries[i] = historyEntry{
			Sender:    turn.Role,
			Message:   turn.Content,
			Timestamp: turn.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
