package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/pandharkardeep/rating-graph/internal/config"
	"github.com/pandharkardeep/rating-graph/internal/engine"
	"github.com/pandharkardeep/rating-graph/internal/ratings"
)

func testMux(t *testing.T) *http.ServeMux {
	t.Helper()
	s := ratings.NewMemStore()
	s.Add(1, 1, 5)
	s.Add(1, 2, 3)
	s.Add(2, 1, 4)
	s.Add(2, 2, 2)

	cfg := config.Default()
	m := engine.Build(s, cfg, zerolog.Nop())

	mux := http.NewServeMux()
	AttachRoutes(mux, m, zerolog.Nop())
	return mux
}

func TestHealthz(t *testing.T) {
	mux := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestGetPredict(t *testing.T) {
	mux := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/predict?user=1&item=1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		User       int64   `json:"user"`
		Item       int64   `json:"item"`
		Prediction float64 `json:"prediction"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.User != 1 || body.Item != 1 {
		t.Errorf("echoed ids = (%d, %d), want (1, 1)", body.User, body.Item)
	}
	if body.Prediction < 1 || body.Prediction > 5 {
		t.Errorf("prediction = %v, want within rating range", body.Prediction)
	}
}

func TestGetPredictBadQuery(t *testing.T) {
	mux := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/predict?user=x&item=1", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetNeighbors(t *testing.T) {
	mux := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/neighbors?user=1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body []struct {
		User int64   `json:"user"`
		Sim  float64 `json:"similarity"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, n := range body {
		if n.Sim <= 0 {
			t.Errorf("neighbor %d has non-positive similarity %v", n.User, n.Sim)
		}
	}
}

func TestGetStats(t *testing.T) {
	mux := testMux(t)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["global_mean"] != 3.5 {
		t.Errorf("global_mean = %v, want 3.5", body["global_mean"])
	}
}
