package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/matchday-consensus/internal/config"
	"github.com/yourusername/matchday-consensus/internal/database"
	"github.com/yourusername/matchday-consensus/internal/logger"
	"github.com/yourusername/matchday-consensus/internal/metrics"
	"github.com/yourusername/matchday-consensus/internal/models"
	"github.com/yourusername/matchday-consensus/internal/repository"
	"github.com/yourusername/matchday-consensus/internal/tracing"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	log        *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	rootCmd.AddCommand(analyzeCmd, marketsCmd, settleCmd, reportCmd, serveCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:           "analyzer",
	Short:         "Football prediction consensus engine",
	Long:          `Runs the analyst agents on a fixture, combines their opinions into a weighted consensus and arbitrated picks, and grades stored analyses once the final score is known.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return loadConfig(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "analyzer %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log = logger.NewLogger(cfg.App.LogLevel, cfg.App.LogFormat)
	metrics.InitRegistry()

	if err := tracing.Initialize(cfg.Tracing, Version, log); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"version":     Version,
		"environment": cfg.App.Environment,
	}).Debug("Configuration loaded")

	return nil
}

// openRepository returns the postgres repository when a database is
// configured and memory is false. The returned close func is never nil.
func openRepository(ctx context.Context, memory bool) (repository.AnalysisRepository, *database.DB, func(), error) {
	if memory || !cfg.Database.Enabled() {
		log.Info("Using in-memory analysis store")
		return repository.NewMemoryAnalysisRepository(), nil, func() {}, nil
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return repository.NewRepositories(db).Analysis, db, db.Close, nil
}

func readMatch(path string) (*models.MatchContext, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open match file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var match models.MatchContext
	if err := json.NewDecoder(r).Decode(&match); err != nil {
		return nil, fmt.Errorf("failed to decode match: %w", err)
	}
	return &match, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseScore reads "2-1" into home and away goals
func parseScore(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: expected HOME-AWAY, got %q", models.ErrInvalidScore, s)
	}
	home, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", models.ErrInvalidScore, s)
	}
	away, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", models.ErrInvalidScore, s)
	}
	return home, away, nil
}

// finalScore builds a score from the full time and optional half time flags
func finalScore(fullTime, halfTime string) (models.FinalScore, error) {
	home, away, err := parseScore(fullTime)
	if err != nil {
		return models.FinalScore{}, err
	}
	score := models.FinalScore{Home: home, Away: away}
	if halfTime != "" {
		htHome, htAway, err := parseScore(halfTime)
		if err != nil {
			return models.FinalScore{}, err
		}
		score.HTHome, score.HTAway = &htHome, &htAway
	}
	return score, score.Validate()
}
