package cmd

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/teachkit/packgen/internal/job"
	"github.com/teachkit/packgen/internal/llm"
	"github.com/teachkit/packgen/internal/logger"
	"github.com/teachkit/packgen/internal/pipeline"
	"github.com/teachkit/packgen/internal/render"
	"github.com/teachkit/packgen/internal/server"
	"github.com/teachkit/packgen/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pack generation HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		log, err := logger.New(cfg.Mode)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer log.Sync()

		if cfg.Mode == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		dbPath := cfg.DBPath
		if dbPath == "" {
			dbPath, err = resolveDBPath(cmd)
			if err != nil {
				return fmt.Errorf("resolve database path: %w", err)
			}
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		ctx := cmd.Context()
		provider, err := llm.NewProviderFromEnv(ctx, st.AuditSink())
		if err != nil {
			return fmt.Errorf("configure LLM provider: %w", err)
		}

		jobs := job.NewStore(cfg.JobStore(), log, st.JobRepo())
		janitorCtx, stopJanitor := context.WithCancel(ctx)
		defer stopJanitor()
		go jobs.RunJanitor(janitorCtx)

		orch := pipeline.New(provider, jobs, cfg.Pipeline(), log)

		var renderClient render.Client
		if cfg.RenderBaseURL != "" {
			renderClient = render.NewHTTPClient(cfg.RenderBaseURL, cfg.RenderAPIKey)
		} else {
			log.Warn("no render backend configured, using in-memory mock")
			renderClient = render.NewMockClient()
		}
		renderSvc := render.NewService(renderClient, jobs, cfg.Render(), log)

		srv := server.NewServer(server.RouterConfig{
			PackHandler: server.NewPackHandler(log, orch, jobs, renderSvc),
		})

		log.Info("starting packgen service", "addr", cfg.Addr, "db", dbPath, "provider", provider.ModelID())
		return srv.Run(cfg.Addr)
	},
}
