package view

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/papo1011/orrery"
	"github.com/papo1011/orrery/feeds"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter returns the HTTP API of a running view. The board and the gatherer may be nil.
//
//	GET /api/frame   latest frame
//	GET /api/tables  built-in tables and the running one
//	GET /api/feeds   near-Earth objects and fireballs
//	GET /ws          frame stream
//	GET /metrics     Prometheus metrics
func NewRouter(hub *Hub, running orrery.Table, board *feeds.Board, gatherer prometheus.Gatherer) *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)
	router.HandleFunc("/api/frame", func(w http.ResponseWriter, r *http.Request) {
		f, ok := hub.Latest()
		if !ok {
			http.Error(w, "no frame rendered yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, f)
	}).Methods(http.MethodGet)
	router.HandleFunc("/api/tables", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, struct {
			Running  orrery.Table   `json:"running"`
			Builtins []orrery.Table `json:"builtins"`
		}{running, orrery.Tables()})
	}).Methods(http.MethodGet)
	router.HandleFunc("/api/feeds", func(w http.ResponseWriter, r *http.Request) {
		if board == nil {
			http.Error(w, "feeds are disabled", http.StatusNotFound)
			return
		}
		writeJSON(w, board.Snapshot())
	}).Methods(http.MethodGet)
	router.HandleFunc("/ws", hub.ServeWS).Methods(http.MethodGet)
	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
