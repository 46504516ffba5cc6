// Command prospect runs the archaeological prospection pipeline:
// scoring candidate sites, clustering the high-scoring ones into
// regions, and evaluating both through a panel of model-backed
// characters.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-prospect/infrastructure/featurestore"
	"github.com/ahrav/go-prospect/infrastructure/middleware"
	"github.com/ahrav/go-prospect/internal/application"
	"github.com/ahrav/go-prospect/internal/domain"
)

var version = "dev"

var (
	verbose     bool
	configPath  string
	inputPath   string
	withMetrics bool
	cfg         *application.Config
	logger      *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "prospect",
	Short:   "Archaeological site prospection",
	Long:    "Prospect scores candidate locations from sampled geospatial features, clusters the promising ones into regions, and evaluates both through a panel of model-backed characters.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		if cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = application.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if inputPath != "" {
			cfg.Input = inputPath
		}
		if cfg.Input == "" {
			return fmt.Errorf("no input: set input in the config or pass --input")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "prospect.yaml", "Path to config file")
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "", "GeoJSON feature collection of candidate sites")
	rootCmd.PersistentFlags().BoolVar(&withMetrics, "metrics", false, "Register Prometheus metrics for the run")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(runCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("prospect", version)
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score candidate sites and print the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		sites, pipe, err := loadPipeline()
		if err != nil {
			return err
		}

		scores, err := pipe.Score(sites)
		if err != nil {
			return err
		}

		for i, site := range sites {
			fmt.Printf("%s\t%.3f\n", site.ID, scores[i])
		}
		return nil
	},
}

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Score and cluster candidate sites, printing cluster summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		sites, pipe, err := loadPipeline()
		if err != nil {
			return err
		}

		if _, err := pipe.Score(sites); err != nil {
			return err
		}
		clusters, err := pipe.ClusterSites(sites)
		if err != nil {
			return err
		}

		for _, cluster := range clusters {
			fmt.Printf("cluster_%03d\tsites=%d\tmean=%.3f\tiqr=%.3f\n",
				cluster.ID, cluster.Stats.Count, cluster.Stats.Mean, cluster.Stats.IQR)
		}
		return nil
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score sites and run the character panel over them, skipping clustering",
	RunE: func(cmd *cobra.Command, args []string) error {
		sites, pipe, err := loadPipeline()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := pipe.EvaluateSites(ctx, sites)
		if result != nil {
			printRunSummary(result)
		}
		return err
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: score -> cluster -> evaluate -> report",
	RunE: func(cmd *cobra.Command, args []string) error {
		sites, pipe, err := loadPipeline()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		result, err := pipe.Run(ctx, sites)
		if result != nil {
			printRunSummary(result)
		}
		return err
	},
}

func printRunSummary(result *application.Result) {
	fmt.Printf("\nRun %s complete:\n", result.RunID)
	fmt.Printf("  Sites scored: %d\n", len(result.Scores))
	fmt.Printf("  Clusters formed: %d\n", len(result.Clusters))
	fmt.Printf("  Units evaluated: %d\n", len(result.Records))
	if result.Ledger != nil && result.Ledger.Len() > 0 {
		fmt.Printf("  Failed tasks: %d (see failures.json)\n", result.Ledger.Len())
	}
	fmt.Printf("  Artifacts: %s\n", result.OutDir)
}

// loadPipeline loads the input sites and builds the pipeline from the
// active configuration.
func loadPipeline() ([]*domain.Site, *application.Pipeline, error) {
	sites, err := featurestore.LoadSites(cfg.Input)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("loaded sites", "count", len(sites), "input", cfg.Input)

	var opts []application.PipelineOption
	if withMetrics {
		opts = append(opts, application.WithMetrics(middleware.NewPrometheusMetrics()))
	}

	pipe, err := application.NewPipeline(cfg, logger, opts...)
	if err != nil {
		return nil, nil, err
	}
	return sites, pipe, nil
}
