package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mlindgren/klimatlogg/internal/pkg/dashboard"
	"github.com/mlindgren/klimatlogg/internal/pkg/ingest"
	"github.com/mlindgren/klimatlogg/internal/pkg/model"
)

type ingestService interface {
	Ingest(ctx context.Context, payload map[string]any) (model.Reading, error)
}

type viewReader interface {
	FetchAll(ctx context.Context) model.Readings
}

type server struct {
	ingest    ingestService
	reader    viewReader
	ws        http.Handler
	maxPoints int
	logger    *zap.Logger
}

func New(ingestSvc ingestService, reader viewReader, ws http.Handler, maxPoints int) *server {
	return &server{
		ingest:    ingestSvc,
		reader:    reader,
		ws:        ws,
		maxPoints: maxPoints,
		logger:    zap.L(),
	}
}

// Routes wires the API. Only the ingestion endpoint sits behind token auth;
// the read side serves anonymous dashboard clients.
func (s *server) Routes(apiSecret string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /api/data", AuthMiddleware(apiSecret, http.HandlerFunc(s.postData)))
	mux.HandleFunc("GET /api/readings", s.getReadings)
	mux.HandleFunc("GET /healthz", s.healthz)
	if s.ws != nil {
		mux.Handle("GET /ws/dashboard", s.ws)
	}
	return LoggingMiddleware(mux)
}

func (s *server) postData(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "request body is not valid JSON"})
		return
	}

	if _, err := s.ingest.Ingest(r.Context(), payload); err != nil {
		switch {
		case errors.Is(err, ingest.ErrValidation):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "temperature or humidity is missing or not numeric"})
		case errors.Is(err, ingest.ErrStoreUnavailable):
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "could not connect to the database"})
		default:
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "could not write to the database"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: "reading stored"})
}

// getReadings returns the current aggregated view. It never returns a 5xx;
// an unreachable store degrades to the no-data view like every other
// dashboard surface.
func (s *server) getReadings(w http.ResponseWriter, r *http.Request) {
	readings := s.reader.FetchAll(r.Context())
	view := dashboard.BuildView(readings, timeNow(), s.maxPoints)
	writeJSON(w, http.StatusOK, view)
}

func (s *server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}
