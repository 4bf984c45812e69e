package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/verblevel/verblevel/internal/adapt"
	"github.com/verblevel/verblevel/internal/api"
	"github.com/verblevel/verblevel/internal/assessment"
	"github.com/verblevel/verblevel/internal/llm"
	"github.com/verblevel/verblevel/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP assessment server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		addr, _ := cmd.Flags().GetString("addr")

		engCfg, err := loadEngineConfig(cmd)
		if err != nil {
			return err
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open event log: %w", err)
		}
		defer st.Close()

		var provider llm.Provider
		if llmCfg, ok := llm.DiscoverConfig(); ok {
			provider, err = llm.NewProvider(ctx, llmCfg, st.EventRepo())
			if err != nil {
				return fmt.Errorf("configure AI provider: %w", err)
			}
			slog.Info("AI provider configured", "model", provider.ModelID())
		} else {
			fmt.Fprintln(os.Stderr, "No AI provider configured; free-text scoring uses the heuristic fallback and /v1/adapt is degraded.")
		}

		scorer := assessment.NewScorer(provider, engCfg.ScorerConfig(), nil)
		cache := adapt.NewLRU(engCfg.Adaptation.CacheCapacity)
		adapter := adapt.NewOrchestrator(provider, cache, engCfg.AdaptConfig(), nil)

		server := api.NewServer(scorer, adapter, engCfg, nil,
			api.WithEventStore(st.EventRepo(), st.StatsRepo()))

		httpServer := &http.Server{
			Addr:              addr,
			Handler:           server.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		slog.Info("starting server", "addr", addr, "db", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
}
