// Package server exposes a trained model over HTTP: rating predictions,
// neighbor introspection, health, and prometheus metrics.
package server

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/pandharkardeep/rating-graph/internal/engine"
	"github.com/pandharkardeep/rating-graph/internal/metrics"
)

type server struct {
	model *engine.Model
	log   zerolog.Logger
}

func AttachRoutes(mux *http.ServeMux, m *engine.Model, log zerolog.Logger) {
	s := &server{model: m, log: log}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", metrics.Handler())

	mux.HandleFunc("/predict", s.getPredict)     // GET
	mux.HandleFunc("/neighbors", s.getNeighbors) // GET
	mux.HandleFunc("/stats", s.getStats)         // GET
}

func parseID(q string) (int64, error) {
	return strconv.ParseInt(q, 10, 64)
}

func (s *server) getPredict(w http.ResponseWriter, r *http.Request) {
	user, err1 := parseID(r.URL.Query().Get("user"))
	item, err2 := parseID(r.URL.Query().Get("item"))
	if err1 != nil || err2 != nil {
		s.log.Debug().Str("user", r.URL.Query().Get("user")).Str("item", r.URL.Query().Get("item")).Msg("bad predict query")
		http.Error(w, "bad user or item id", http.StatusBadRequest)
		return
	}
	p := s.model.Predict(user, item)
	writeJSON(w, map[string]any{"user": user, "item": item, "prediction": p})
}

func (s *server) getNeighbors(w http.ResponseWriter, r *http.Request) {
	user, err := parseID(r.URL.Query().Get("user"))
	if err != nil {
		http.Error(w, "bad user id", http.StatusBadRequest)
		return
	}
	type entry struct {
		User int64   `json:"user"`
		Sim  float64 `json:"similarity"`
	}
	nbrs := s.model.Neighbors.NeighborsOf(user)
	out := make([]entry, 0, len(nbrs))
	for _, n := range nbrs {
		out = append(out, entry{User: n.User, Sim: n.Sim})
	}
	writeJSON(w, out)
}

func (s *server) getStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"ratings":       s.model.Stats.Ratings,
		"users":         s.model.Stats.Users,
		"items":         s.model.Stats.Items,
		"edges":         s.model.Stats.Edges,
		"pairs_skipped": s.model.Stats.PairsSkipped,
		"global_mean":   s.model.Snapshot.GlobalMean(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
