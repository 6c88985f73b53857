package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ecko-analytics/market-cli/internal/config"
	"github.com/ecko-analytics/market-cli/internal/scorer"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scoring API server",
	Long: `Serve scoring over HTTP for the dashboard layer.

POST /score accepts {"areas": [...]} plus optional weight overrides and
returns the ranked areas with batch KPIs. Each request is scored as an
independent batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mux := http.NewServeMux()
		mux.HandleFunc("GET /health", handleHealth)
		mux.HandleFunc("POST /score", handleScore(cfg.Scorer))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// scoreRequest is the POST /score body. Nil weight fields fall back to
// the server's configured values.
type scoreRequest struct {
	Areas             []scorer.AreaRecord `json:"areas"`
	IncomeWeight      *float64            `json:"income_weight,omitempty"`
	RenterWeight      *float64            `json:"renter_weight,omitempty"`
	DensityWeight     *float64            `json:"density_weight,omitempty"`
	CompetitionWeight *float64            `json:"competition_weight,omitempty"`
	IncomeIdeal       *float64            `json:"income_ideal,omitempty"`
	IncomeSpread      *float64            `json:"income_spread,omitempty"`
}

func handleScore(base config.ScorerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		if len(req.Areas) == 0 {
			http.Error(w, `{"error":"areas is required"}`, http.StatusBadRequest)
			return
		}

		scorerCfg := applyRequestOverrides(base, req)
		result, err := scorer.Score(req.Areas, scorerCfg)
		if err != nil {
			zap.L().Warn("score request rejected", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		zap.L().Info("score request served",
			zap.Int("areas", result.KPIs.Count),
			zap.Float64("top_score", result.KPIs.Max),
		)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(result)
	}
}

func applyRequestOverrides(base config.ScorerConfig, req scoreRequest) config.ScorerConfig {
	c := base
	if req.IncomeWeight != nil {
		c.IncomeWeight = *req.IncomeWeight
	}
	if req.RenterWeight != nil {
		c.RenterWeight = *req.RenterWeight
	}
	if req.DensityWeight != nil {
		c.DensityWeight = *req.DensityWeight
	}
	if req.CompetitionWeight != nil {
		c.CompetitionWeight = *req.CompetitionWeight
	}
	if req.IncomeIdeal != nil {
		c.IncomeIdeal = *req.IncomeIdeal
	}
	if req.IncomeSpread != nil {
		c.IncomeSpread = *req.IncomeSpread
	}
	return c
}
