// Command ratingcf trains a bias-aware user-based collaborative
// filtering model from the training section on stdin, then either
// answers the test section in batch (default) or serves predictions
// over HTTP.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pandharkardeep/rating-graph/internal/config"
	"github.com/pandharkardeep/rating-graph/internal/dataset"
	"github.com/pandharkardeep/rating-graph/internal/engine"
	"github.com/pandharkardeep/rating-graph/internal/logging"
	"github.com/pandharkardeep/rating-graph/internal/metrics"
	"github.com/pandharkardeep/rating-graph/internal/ratings"
	"github.com/pandharkardeep/rating-graph/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()
	path := *configPath
	if path == "" {
		path = os.Getenv("RATINGCF_CONFIG")
	}

	// Bootstrap logger until the configured one is available.
	log := logging.New(logging.Config{Level: "info", Format: "console"})

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}
	log = logging.New(logging.Config(cfg.Log)).
		With().Str("run_id", uuid.NewString()).Logger()

	store := ratings.NewMemStore()
	rd := dataset.NewReader(os.Stdin)
	n, err := rd.ReadTraining(store)
	if err != nil {
		log.Fatal().Err(err).Msg("reading training data failed")
	}
	log.Info().
		Int("records", n).
		Int64("max_user", store.MaxUserID()).
		Int64("max_item", store.MaxItemID()).
		Msg("training data loaded")

	model := engine.Build(store, cfg, log)

	if cfg.Serve.Addr != "" {
		serve(model, cfg.Serve.Addr, log)
		return
	}

	if err := runBatch(model, rd); err != nil {
		log.Fatal().Err(err).Msg("reading test data failed")
	}
	fmt.Fprintf(os.Stderr, "Time elapsed: %.3f s\n", time.Since(start).Seconds())
}

// runBatch answers every test query on stdout, one prediction per line
// in input order.
func runBatch(model *engine.Model, rd *dataset.Reader) error {
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	for {
		q, ok, err := rd.Next()
		if err != nil {
			return err
		}
		if !ok {
			return out.Flush()
		}
		fmt.Fprintf(out, "%v\n", model.Predict(q.User, q.Item))
	}
}

func serve(model *engine.Model, addr string, log zerolog.Logger) {
	mux := http.NewServeMux()
	server.AttachRoutes(mux, model, log)

	srv := &http.Server{
		Addr:              addr,
		Handler:           metrics.HTTPMetricsMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("serving predictions")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
