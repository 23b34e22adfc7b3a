package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nholik/devops-course/internal/config"
	"github.com/nholik/devops-course/internal/healthcheck"
	"github.com/nholik/devops-course/internal/logging"
	"github.com/nholik/devops-course/internal/metrics"
	"github.com/nholik/devops-course/internal/server"
	"github.com/nholik/devops-course/internal/sysinfo"
	"github.com/nholik/devops-course/internal/version"
	"github.com/spf13/cobra"
)

func main() {
	start := time.Now()
	if err := newRootCmd(start).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(start time.Time) *cobra.Command {
	root := &cobra.Command{
		Use:   "info-service",
		Short: "HTTP service reporting service, host and runtime information",
		Long: `info-service serves service metadata, host details and uptime as JSON,
plus a health endpoint and Prometheus metrics.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), start)
		},
	}

	root.AddCommand(
		newServeCmd(start),
		newHealthcheckCmd(),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(start time.Time) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), start)
		},
	}
}

func serve(ctx context.Context, start time.Time) error {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New()
		bootLogger.Error().Err(err).Msg("failed to load configuration")
		return err
	}

	logger := logging.NewWithLevel(cfg.EffectiveLogLevel())
	build := version.Get()

	m := metrics.New()
	m.SetStartTime(start)
	m.SetBuildInfo(build.Version, build.GitCommit, build.GoVersion)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := server.NewRouter(server.Deps{
		Logger:      logger,
		Metrics:     m,
		Service:     sysinfo.NewService(build.Version),
		Uptime:      sysinfo.NewUptime(start),
		Now:         time.Now,
		RateLimiter: server.NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
	})

	logger.Info().
		Str("version", build.Version).
		Str("commit", build.GitCommit).
		Bool("debug", cfg.Debug).
		Float64("rate_limit", cfg.RateLimit).
		Msg("info-service starting")

	return server.Run(ctx, logger, cfg.Addr(), router, cfg.ShutdownTimeout)
}

func newHealthcheckCmd() *cobra.Command {
	var (
		url     string
		timeout time.Duration
		retries int
	)

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe a running service and exit non-zero unless it is healthy",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				resolved, err := defaultHealthURL()
				if err != nil {
					return err
				}
				url = resolved
			}

			status, err := healthcheck.NewProber(timeout, retries).Probe(cmd.Context(), url)
			if err != nil {
				return err
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(status)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "health endpoint to probe (default http://127.0.0.1:$PORT/health)")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Second, "per-attempt timeout")
	cmd.Flags().IntVar(&retries, "retries", 2, "retries on connection errors and 5xx responses")
	return cmd
}

func defaultHealthURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return "http://" + net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.Port)) + "/health", nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout(), version.Get())
		},
	}
}

func printVersion(w io.Writer, info version.BuildInfo) {
	fmt.Fprintf(w, "info-service version %s (commit: %s, built: %s, %s)\n",
		info.Version, info.GitCommit, info.BuildDate, info.GoVersion)
}
