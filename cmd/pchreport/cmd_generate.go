package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgallion1/pchreport/internal/config"
	"github.com/dgallion1/pchreport/internal/pipeline"
	"github.com/dgallion1/pchreport/internal/settings"
	"github.com/spf13/cobra"
)

type generateFlags struct {
	pch          string
	template     string
	out          string
	workbook     string
	summary      string
	settingsPath string
	remember     bool
}

func newGenerateCmd(root *rootFlags, cfg config.Config) *cobra.Command {
	f := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the chart document for a punch file",
		Long: `Parse a punch file, compute banded RMS levels for the selected nodes and
write one chart per node, four to a page, into a .docx document.

When --template is given the charts are appended to that document. When
--pch or --template is omitted, the paths remembered in the settings file
are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, f, cfg)
		},
	}

	cmd.Flags().StringVar(&f.pch, "pch", "", "Punch (.pch/.txt) or exported .csv results file")
	cmd.Flags().StringVar(&f.template, "template", cfg.TemplatePath, "Existing .docx to append charts to")
	cmd.Flags().StringVarP(&f.out, "out", "o", "report.docx", "Output document path")
	cmd.Flags().StringVar(&f.workbook, "workbook", "", "Also write the tables to this .xlsx path")
	cmd.Flags().StringVar(&f.summary, "summary", "", "Also write the HTML RMS summary to this path")
	cmd.Flags().StringVar(&f.settingsPath, "settings", settings.DefaultFile, "Settings file with remembered paths")
	cmd.Flags().BoolVar(&f.remember, "remember", false, "Remember the input paths for the next run")
	cmd.Flags().IntVar(&cfg.ChartWidth, "chart-width", cfg.ChartWidth, "Chart width in pixels")
	cmd.Flags().IntVar(&cfg.ChartHeight, "chart-height", cfg.ChartHeight, "Chart height in pixels")
	return cmd
}

func runGenerate(cmd *cobra.Command, root *rootFlags, f *generateFlags, base config.Config) error {
	log := root.logger(cmd)

	cfg, err := root.apply(base)
	if err != nil {
		return err
	}

	saved, err := settings.Load(f.settingsPath)
	if err != nil {
		log.Warn("ignoring unreadable settings", "path", f.settingsPath, "error", err)
		saved = settings.Settings{}
	}
	pchPath, templatePath := f.pch, f.template
	if saved.RememberPaths {
		if pchPath == "" {
			pchPath = saved.LastPCHPath
		}
		if templatePath == "" {
			templatePath = saved.LastTemplatePath
		}
	}
	if pchPath == "" {
		return errors.New("no punch file given: pass --pch")
	}

	data, err := os.ReadFile(pchPath)
	if err != nil {
		return fmt.Errorf("read punch file: %w", err)
	}

	var template []byte
	if templatePath != "" {
		template, err = os.ReadFile(templatePath)
		if err != nil {
			log.Warn("template unreadable, creating new document", "path", templatePath, "error", err)
			template = nil
		}
	}

	names, err := root.labels()
	if err != nil {
		return err
	}

	opts := pipeline.OptionsFromConfig(cfg, names)
	res, err := pipeline.Build(cmd.Context(), pipeline.Input{Filename: pchPath, Data: data, Template: template}, opts, log)
	if err != nil {
		return err
	}

	if err := os.WriteFile(f.out, res.Document, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if f.workbook != "" {
		if err := os.WriteFile(f.workbook, res.Workbook, 0o644); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
	}
	if f.summary != "" {
		if err := os.WriteFile(f.summary, res.SummaryHTML, 0o644); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}

	if f.remember {
		if err := settings.Save(f.settingsPath, saved.Remember(pchPath, templatePath)); err != nil {
			log.Warn("could not save settings", "path", f.settingsPath, "error", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Report saved to %s (%d charts)\n", f.out, res.Charts)
	if len(res.RSS.Skipped) > 0 {
		fmt.Fprintf(out, "Skipped nodes with incomplete axes: %v\n", res.RSS.Skipped)
	}
	return nil
}
