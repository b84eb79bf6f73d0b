package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/yourusername/matchday-consensus/internal/api"
	"github.com/yourusername/matchday-consensus/internal/health"
	"github.com/yourusername/matchday-consensus/internal/markets"
	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/orchestrator"
	"github.com/yourusername/matchday-consensus/internal/reasoning"
	"github.com/yourusername/matchday-consensus/internal/repository"
	"github.com/yourusername/matchday-consensus/internal/scheduler"
	"github.com/yourusername/matchday-consensus/internal/service"
	"github.com/yourusername/matchday-consensus/internal/stream"
)

var (
	matchFile string
	persist   bool
	fixtureID int64
	fullTime  string
	halfTime  string
	inMemory  bool
	days      int
)

func init() {
	analyzeCmd.Flags().StringVarP(&matchFile, "match", "m", "", "Path to a match context JSON file, or - for stdin")
	analyzeCmd.Flags().BoolVar(&persist, "persist", false, "Store the analysis in the configured database")
	_ = analyzeCmd.MarkFlagRequired("match")

	marketsCmd.Flags().StringVarP(&matchFile, "match", "m", "", "Path to a match context JSON file, or - for stdin")
	_ = marketsCmd.MarkFlagRequired("match")

	settleCmd.Flags().Int64Var(&fixtureID, "fixture", 0, "Fixture id to settle")
	settleCmd.Flags().StringVar(&fullTime, "score", "", "Final score as HOME-AWAY, e.g. 2-1")
	settleCmd.Flags().StringVar(&halfTime, "ht", "", "Half-time score as HOME-AWAY")
	_ = settleCmd.MarkFlagRequired("fixture")
	_ = settleCmd.MarkFlagRequired("score")

	reportCmd.Flags().IntVar(&days, "days", 30, "Report period in days")

	serveCmd.Flags().BoolVar(&inMemory, "memory", false, "Keep analyses in memory instead of the database")
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full analysis of one fixture",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		match, err := readMatch(matchFile)
		if err != nil {
			return err
		}

		stack, err := reasoning.NewStack(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer stack.Close()

		orch, _, err := orchestrator.Build(cfg, stack.Client, log)
		if err != nil {
			return err
		}

		repo, _, closeRepo, err := openRepository(ctx, !persist)
		if err != nil {
			return err
		}
		defer closeRepo()

		result, err := service.NewAnalysisService(orch, repo, nil, log).Analyze(ctx, match)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "Derive the market surface of a fixture without the agents",
	RunE: func(cmd *cobra.Command, args []string) error {
		match, err := readMatch(matchFile)
		if err != nil {
			return err
		}
		if err := validator.New().Struct(match); err != nil {
			return fmt.Errorf("%w: %v", models.ErrInvalidMatch, err)
		}

		marketsCfg, err := markets.FromConfig(cfg.Markets)
		if err != nil {
			return fmt.Errorf("invalid markets config: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), markets.NewEngine(marketsCfg).Analyze(match))
	},
}

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Record the final score of an analysed fixture",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		score, err := finalScore(fullTime, halfTime)
		if err != nil {
			return err
		}
		if !cfg.Database.Enabled() {
			return errors.New("settle requires a configured database")
		}

		repo, _, closeRepo, err := openRepository(ctx, false)
		if err != nil {
			return err
		}
		defer closeRepo()

		settled, err := service.NewSettlementService(repo, nil, log).Settle(ctx, fixtureID, score)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), settled)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarise the accuracy and returns of settled analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if !cfg.Database.Enabled() {
			return errors.New("report requires a configured database")
		}

		repo, _, closeRepo, err := openRepository(ctx, false)
		if err != nil {
			return err
		}
		defer closeRepo()

		report, err := service.NewPerformanceService(repo).Report(ctx, days)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), report)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and event stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		stack, err := reasoning.NewStack(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer stack.Close()

		orch, engine, err := orchestrator.Build(cfg, stack.Client, log)
		if err != nil {
			return err
		}

		repo, db, closeRepo, err := openRepository(ctx, inMemory)
		if err != nil {
			return err
		}
		defer closeRepo()

		hub := stream.NewHub(cfg.Server.AllowedOrigins, log)
		defer hub.Close()

		hcfg := health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Logger:      log,
			Breaker:     stack.Breaker,
		}
		if db != nil {
			hcfg.DB = db
		}
		hs := health.NewServer(hcfg)

		if cfg.Scheduler.Enabled {
			sched, err := newScheduler(repo, stack)
			if err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
		}

		srv := api.NewServer(api.Deps{
			ServiceName: cfg.App.Name,
			Analyses:    service.NewAnalysisService(orch, repo, hub, log),
			Settlements: service.NewSettlementService(repo, hub, log),
			Performance: service.NewPerformanceService(repo),
			Engine:      engine,
			Stream:      hub,
			Health:      hs,
			Server:      cfg.Server,
			Metrics:     cfg.Metrics,
			Logger:      log,
		})

		hs.SetReady(true)
		return srv.Run(ctx)
	},
}

func newScheduler(repo repository.AnalysisRepository, stack *reasoning.Stack) (*scheduler.Scheduler, error) {
	var sweeper scheduler.Sweeper
	if mc, ok := stack.Cache.(*reasoning.MemoryCache); ok {
		sweeper = mc
	}
	return scheduler.FromConfig(cfg.Scheduler, repo, sweeper, log)
}
