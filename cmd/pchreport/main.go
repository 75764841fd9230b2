// Command pchreport turns NASTRAN punch files into vibration reports.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/pchreport/internal/config"
	"github.com/dgallion1/pchreport/internal/labels"
	"github.com/spf13/cobra"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	verbose    bool
	labelsPath string
	start      int64
	end        int64
	strict     bool
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cfg := config.Load()

	root := &cobra.Command{
		Use:   "pchreport",
		Short: "Generate vibration reports from NASTRAN punch output",
		Long: `pchreport reads frequency response results from a NASTRAN punch file,
computes per-node vector magnitude (RSS) and banded RMS levels, and writes
a chart document, a workbook and an HTML summary.

Defaults come from the environment (NODE_RANGE_START, NODE_RANGE_END,
LABELS_FILE, TEMPLATE_PATH, CHART_WIDTH, CHART_HEIGHT, STRICT_TRIADS);
flags override them.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&f.labelsPath, "labels", cfg.LabelsFile, "YAML file mapping node ids to labels")
	root.PersistentFlags().Int64Var(&f.start, "start", cfg.NodeRangeStart, "First node id to report (inclusive)")
	root.PersistentFlags().Int64Var(&f.end, "end", cfg.NodeRangeEnd, "Last node id to report (inclusive)")
	root.PersistentFlags().BoolVar(&f.strict, "strict", cfg.StrictTriads, "Fail on nodes missing an axis instead of skipping them")

	root.AddCommand(newGenerateCmd(f, cfg))
	root.AddCommand(newRMSCmd(f, cfg))
	return root
}

// apply copies flag values over the environment configuration.
func (f *rootFlags) apply(cfg config.Config) (config.Config, error) {
	cfg.LabelsFile = f.labelsPath
	cfg.NodeRangeStart = f.start
	cfg.NodeRangeEnd = f.end
	cfg.StrictTriads = f.strict
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (f *rootFlags) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (f *rootFlags) labels() (labels.Map, error) {
	names, err := labels.LoadFile(f.labelsPath)
	if err != nil {
		return labels.Map{}, fmt.Errorf("labels %s: %w", f.labelsPath, err)
	}
	return names, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
