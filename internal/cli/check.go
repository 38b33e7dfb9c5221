package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vietddude/grpcall/config"
	"github.com/vietddude/grpcall/internal/probe"
	"github.com/vietddude/stylelog"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a single health check against the target and print the result",
	Run:   runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	_ = godotenv.Load()
	stylelog.InitDefault()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if target != "" {
		cfg.Probe.Target = target
	}
	if cfg.Probe.Target == "" {
		slog.Error("No probe target configured")
		os.Exit(1)
	}

	ctx := context.Background()
	prober, err := probe.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize prober", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = prober.Close()
	}()

	report := prober.Check(ctx)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "TARGET\tSTATUS\tCODE\tERROR")
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cfg.Probe.Target, report.Status, report.Code, report.Error)
	_ = w.Flush()

	if report.Status != probe.StatusServing {
		os.Exit(1)
	}
}
