package server

import (
	"net/http"

	"costwise/internal/handler"
	"costwise/internal/middleware"
)

func NewMux(estimateHandler *handler.EstimateHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/estimate", estimateHandler.HandleEstimate)
	mux.HandleFunc("/api/estimate/stream", estimateHandler.HandleEstimateStream)
	mux.HandleFunc("/api/runs", estimateHandler.HandleStartRun)
	mux.HandleFunc("/api/runs/", estimateHandler.HandleWatch)

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return middleware.CORS(mux)
}
