package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/grpcall/config"
	"github.com/vietddude/grpcall/internal/probe"
	"github.com/vietddude/stylelog"
)

var (
	cfgPath string
	target  string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "grpcall",
	Short: "gRPC endpoint prober",
	Long:  `grpcall probes a gRPC endpoint's health service, retrying transient stream resets and exporting outcomes over HTTP.`,
	Run:   runProbe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().StringVar(&target, "target", "", "gRPC endpoint to probe (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

func runProbe(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()

	// Load Configuration
	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if target != "" {
		cfg.Probe.Target = target
	}
	if cfg.Probe.Target == "" {
		stylelog.InitDefault()
		slog.Error("No probe target configured")
		os.Exit(1)
	}

	// Setup logging
	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prober, err := probe.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize prober", "error", err)
		os.Exit(1)
	}
	defer prober.Close()

	server := probe.NewServer(prober, cfg.Server.Port)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	}()

	go func() {
		if err := prober.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Prober stopped", "error", err)
		}
	}()

	slog.Info("Prober running", "target", cfg.Probe.Target, "port", cfg.Server.Port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Prober stopped gracefully")
}
