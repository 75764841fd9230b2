package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/pchreport/internal/analysis"
	"github.com/dgallion1/pchreport/internal/config"
	"github.com/dgallion1/pchreport/internal/parser"
	"github.com/dgallion1/pchreport/internal/report"
	"github.com/dgallion1/pchreport/internal/table"
	"github.com/spf13/cobra"
)

func newRMSCmd(root *rootFlags, base config.Config) *cobra.Command {
	var (
		pch    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "rms",
		Short: "Print the banded RMS table for a punch file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := root.logger(cmd)
			cfg, err := root.apply(base)
			if err != nil {
				return err
			}
			names, err := root.labels()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(pch)
			if err != nil {
				return fmt.Errorf("read punch file: %w", err)
			}
			p, err := parser.ForFile(pch)
			if err != nil {
				return err
			}
			aligned, err := p.Parse(bytes.NewReader(data), pch)
			if err != nil {
				return err
			}
			if cfg.RequireData && aligned.Empty() {
				return fmt.Errorf("%s: %w", pch, parser.ErrMalformedInput)
			}

			agg := analysis.NewAggregator(log)
			agg.Strict = cfg.StrictTriads
			rss, err := agg.AggregateRSS(aligned)
			if err != nil {
				return err
			}
			rms, err := agg.BandedRMS(rss, analysis.DefaultBands, table.NodeRange{Low: cfg.NodeRangeStart, High: cfg.NodeRangeEnd})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report.NewRMSJSON(rms, rss.Skipped, names))
			}
			_, err = fmt.Fprint(out, report.SummaryMarkdown("Banded RMS: "+filepath.Base(pch), rms, names))
			return err
		},
	}

	cmd.Flags().StringVar(&pch, "pch", "", "Punch (.pch/.txt) or exported .csv results file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a markdown table")
	cmd.MarkFlagRequired("pch")
	return cmd
}
