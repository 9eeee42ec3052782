// Package cli wires the forklift command line interface.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/onlydole/forklift/pkg/forks"
	"github.com/onlydole/forklift/pkg/github"
	"github.com/onlydole/forklift/pkg/logging"
	"github.com/onlydole/forklift/pkg/pagination"
	"github.com/onlydole/forklift/pkg/ratelimit"
	"github.com/onlydole/forklift/pkg/report"
)

// tokenEnvVars is the environment lookup order when --token is not given.
var tokenEnvVars = []string{"GH_TOKEN", "GITHUB_TOKEN"}

var (
	tokenFlag   string
	outputFlag  string
	concurrency int
	verbose     bool
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "forklift <repo-url>",
	Short: "Lists organization forks of a public GitHub repository",
	Long: `forklift enumerates every fork of a public GitHub repository and writes
a Markdown table of the forks owned by organization accounts.`,
	Args: cobra.ExactArgs(1),
	RunE: run,

	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&tokenFlag, "token", "t", "", "GitHub token (default: GH_TOKEN or GITHUB_TOKEN)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "output file (default: reports/<repo>_forks.md)")
	rootCmd.Flags().IntVarP(&concurrency, "concurrency", "c", pagination.DefaultMaxConcurrency, "number of concurrent page requests")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the run")
}

func run(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	logging.Setup(logging.Config{
		Level:  level,
		Pretty: true,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	token, err := resolveToken()
	if err != nil {
		return err
	}

	repo, err := github.ParseRepoURL(args[0])
	if err != nil {
		return err
	}
	log.Info().
		Str("owner", repo.Owner).
		Str("repo", repo.Name).
		Msg("Analyzing forks")

	if metricsAddr != "" {
		go serveMetrics(metricsAddr)
	}

	var redisClient *redis.Client
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		candidate := redis.NewClient(&redis.Options{Addr: redisURL})
		if err := candidate.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, using local rate limit state")
			candidate.Close()
		} else {
			redisClient = candidate
			defer redisClient.Close()
		}
	}
	tracker := ratelimit.NewTracker(redisClient, logging.NewLogger("ratelimit"))

	cfg := github.DefaultConfig(token)
	cfg.Tracker = tracker
	client, err := github.New(cfg)
	if err != nil {
		return err
	}

	fetcher := github.NewForkPageFetcher(client, repo.Owner, repo.Name)
	batch := pagination.NewBatchFetcher[github.Fork](fetcher, pagination.Config{
		MaxConcurrency: concurrency,
	})

	allForks, err := batch.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch forks for %s/%s: %w", repo.Owner, repo.Name, err)
	}

	orgForks := forks.FilterOrganizations(allForks)
	log.Info().
		Int("total_forks", len(allForks)).
		Int("org_forks", len(orgForks)).
		Msg("Found organization-owned forks")

	outputPath := outputFlag
	if outputPath == "" {
		outputPath = report.DefaultPath(repo.Name)
	}

	if err := report.WriteMarkdown(outputPath, repo.Owner, repo.Name, orgForks); err != nil {
		return err
	}

	log.Info().
		Str("path", outputPath).
		Msg("Analysis completed, results written")
	return nil
}

// resolveToken picks the token from the CLI flag, then the environment.
func resolveToken() (string, error) {
	if tokenFlag != "" {
		return tokenFlag, nil
	}
	for _, name := range tokenEnvVars {
		if value := os.Getenv(name); value != "" {
			return value, nil
		}
	}
	return "", github.ErrMissingToken
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Warn().Err(err).Msg("Metrics server stopped")
	}
}
