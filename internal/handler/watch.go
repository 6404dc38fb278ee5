package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"costwise/internal/logging"
	"costwise/internal/pipeline"
)

// HandleWatch routes /api/runs/{id}/events (SSE) and /api/runs/{id}/ws
// (websocket).
func (h *EstimateHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "run id required")
		return
	}
	runID, mode := parts[0], parts[1]

	events, ok := h.Runs.Get(runID)
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	switch mode {
	case "events":
		streamSSE(w, r, events)
	case "ws":
		h.streamWS(w, r, events)
	default:
		writeError(w, http.StatusNotFound, "unknown watch mode")
	}
}

// streamSSE pushes events until a terminal event or channel close.
func streamSSE(w http.ResponseWriter, r *http.Request, events <-chan pipeline.Event) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				fmt.Fprintf(w, "event: close\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
			if event.Terminal() {
				return
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// streamWS pushes the same one-directional event stream over a websocket.
func (h *EstimateHandler) streamWS(w http.ResponseWriter, r *http.Request, events <-chan pipeline.Event) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
			if event.Terminal() {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		}
	}
}
