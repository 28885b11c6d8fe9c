// Package api exposes the prediction service over HTTP: a predict
// endpoint, model metadata, mix presets and ranges, the prediction
// history with CSV export, and a WebSocket feed of new results.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"concrete-predictor/internal/classify"
	"concrete-predictor/internal/history"
	"concrete-predictor/internal/metrics"
	"concrete-predictor/internal/mix"
	"concrete-predictor/internal/model"

	"github.com/rs/zerolog/log"
)

// Predictor is the model surface the server needs.
type Predictor interface {
	Predict(mix.Input) (float64, error)
	Metadata() *model.Metadata
}

// Server serves the prediction API.
type Server struct {
	predictor Predictor
	log       *history.Log
	metrics   *metrics.Metrics
	exportDir string
	hub       *hub
	server    *http.Server
}

// PredictRequest is the incoming prediction request. When Clamp is set,
// out-of-range parameters are clamped to their valid range instead of
// rejected.
type PredictRequest struct {
	Input mix.Input `json:"input"`
	Clamp bool      `json:"clamp,omitempty"`
}

// PredictResponse wraps the resulting history record with band details
// and the request latency.
type PredictResponse struct {
	Record          history.Record `json:"record"`
	BandDescription string         `json:"band_description"`
	LatencyMs       float64        `json:"latency_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer wires the API routes.
func NewServer(predictor Predictor, histLog *history.Log, m *metrics.Metrics, exportDir string, port int) *Server {
	s := &Server{
		predictor: predictor,
		log:       histLog,
		metrics:   m,
		exportDir: exportDir,
		hub:       newHub(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("/model/info", s.handleModelInfo)
	mux.HandleFunc("/model/importance", s.handleImportance)
	mux.HandleFunc("/presets", s.handlePresets)
	mux.HandleFunc("/ranges", s.handleRanges)
	mux.HandleFunc("/bands", s.handleBands)
	mux.HandleFunc("/history", s.handleHistory)
	mux.HandleFunc("/history/export", s.handleExport)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWS)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("starting api server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.closeAll()
	return s.server.Shutdown(ctx)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := time.Now()

	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	in := req.Input
	if req.Clamp {
		in = in.Clamp()
	} else if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	strength, err := s.predictor.Predict(in)
	if err != nil {
		log.Error().Err(err).Msg("prediction failed")
		s.metrics.ErrorsTotal.Inc()
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("prediction failed: %v", err))
		return
	}

	rec := history.NewRecord(in, strength, s.predictor.Metadata().Confidence())
	if err := s.log.Append(rec); err != nil {
		// The prediction succeeded; a persistence failure should not
		// hide the result from the caller.
		log.Error().Err(err).Msg("failed to persist history record")
		s.metrics.ErrorsTotal.Inc()
	}
	s.metrics.HistorySizeSet(s.log.Len())

	s.hub.broadcast(rec)

	writeJSON(w, http.StatusOK, PredictResponse{
		Record:          rec,
		BandDescription: classify.Lookup(strength).Description,
		LatencyMs:       float64(time.Since(start).Milliseconds()),
	})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.predictor.Metadata().Summary())
}

func (s *Server) handleImportance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.predictor.Metadata().Importance())
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mix.Presets())
}

func (s *Server) handleRanges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mix.ValidRanges)
}

func (s *Server) handleBands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, classify.Bands())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.log.Records())
	case http.MethodDelete:
		if err := s.log.Clear(); err != nil {
			s.metrics.ErrorsTotal.Inc()
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("clear history: %v", err))
			return
		}
		s.metrics.HistorySizeSet(0)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if s.log.Len() == 0 {
		writeError(w, http.StatusConflict, "history is empty, nothing to export")
		return
	}

	path, err := s.log.ExportToFile(s.exportDir)
	if err != nil {
		log.Error().Err(err).Msg("history export failed")
		s.metrics.ErrorsTotal.Inc()
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("export failed: %v", err))
		return
	}
	s.metrics.ExportsInc()

	log.Info().Str("path", path).Int("records", s.log.Len()).Msg("history exported")
	writeJSON(w, http.StatusOK, map[string]any{
		"path":    path,
		"records": s.log.Len(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"model":        s.predictor.Metadata().ModelInfo.Version,
		"history_size": s.log.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
