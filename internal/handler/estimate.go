// Package handler exposes the pipeline over HTTP JSON, SSE, and websocket.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"costwise/internal/extract"
	"costwise/internal/logging"
	"costwise/internal/pipeline"
)

type EstimateHandler struct {
	Pipeline *pipeline.Pipeline
	Runs     *pipeline.RunRegistry
}

func NewEstimateHandler(p *pipeline.Pipeline) *EstimateHandler {
	return &EstimateHandler{Pipeline: p, Runs: pipeline.NewRunRegistry()}
}

// HandleEstimate runs the full pipeline synchronously and returns the
// response JSON.
func (h *EstimateHandler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Pipeline.Run(r.Context(), req, nil)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, extract.ErrNoAnalysis) {
			status = http.StatusUnprocessableEntity
		}
		logging.Warn("estimate request failed", zap.Error(err))
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleEstimateStream runs the pipeline and pushes progress over SSE,
// terminated by a complete or error event and channel close.
func (h *EstimateHandler) HandleEstimateStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	events := make(chan pipeline.Event, 64)
	go func() {
		defer close(events)
		resp, err := h.Pipeline.Run(r.Context(), req, func(e pipeline.Event) { events <- e })
		if err != nil {
			events <- pipeline.Event{Type: pipeline.EventError, Message: err.Error()}
			return
		}
		events <- pipeline.Event{Type: pipeline.EventComplete, Percent: 100, Data: resp}
	}()

	streamSSE(w, r, events)
}

// HandleStartRun launches a background run and returns its id for watching.
func (h *EstimateHandler) HandleStartRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ProductDescription) == "" && req.CurrentState == nil {
		writeError(w, http.StatusBadRequest, "productDescription is required")
		return
	}

	runID := uuid.NewString()
	events := h.Runs.Open(runID)

	// Detached from the request context: the run outlives the starting
	// request.
	go func() {
		defer h.Runs.CloseAndForget(runID)
		resp, err := h.Pipeline.Run(context.Background(), req, func(e pipeline.Event) {
			events <- e
		})
		if err != nil {
			events <- pipeline.Event{Type: pipeline.EventError, Message: err.Error()}
			return
		}
		resp.RunID = runID
		events <- pipeline.Event{Type: pipeline.EventComplete, Percent: 100, Data: resp}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"runId": runID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
