package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dgallion1/pchreport/internal/analysis"
	"github.com/dgallion1/pchreport/internal/chart"
	"github.com/dgallion1/pchreport/internal/config"
	"github.com/dgallion1/pchreport/internal/labels"
	"github.com/dgallion1/pchreport/internal/parser"
	"github.com/dgallion1/pchreport/internal/report"
	"github.com/dgallion1/pchreport/internal/table"
)

// Phase names one stage of report generation.
type Phase string

const (
	PhaseParsing     Phase = "parsing"
	PhaseAggregating Phase = "aggregating"
	PhaseRendering   Phase = "rendering"
)

// Input is one result file plus an optional document template.
type Input struct {
	Filename string
	Data     []byte
	Template []byte // .docx; nil for a fresh document
}

// Options controls report generation.
type Options struct {
	NodeRange   table.NodeRange
	Bands       []table.Band
	Labels      labels.Map
	Chart       chart.Options
	Layout      report.Layout
	Strict      bool
	RequireData bool
	Now         time.Time

	// OnPhase, when set, is called as each phase starts.
	OnPhase func(Phase)
	// OnPhaseDone, when set, is called with the duration of each finished phase.
	OnPhaseDone func(Phase, time.Duration)
}

// DefaultOptions returns the standard report settings.
func DefaultOptions() Options {
	return Options{
		NodeRange:   analysis.DefaultNodeRange,
		Bands:       analysis.DefaultBands,
		Labels:      labels.Default(),
		Chart:       chart.Options{Width: 1200, Height: 900},
		Layout:      report.DefaultLayout,
		RequireData: true,
	}
}

// OptionsFromConfig applies the configured report defaults.
func OptionsFromConfig(cfg config.Config, names labels.Map) Options {
	opts := DefaultOptions()
	opts.NodeRange = table.NodeRange{Low: cfg.NodeRangeStart, High: cfg.NodeRangeEnd}
	opts.Labels = names
	opts.Chart = chart.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight}
	opts.Strict = cfg.StrictTriads
	opts.RequireData = cfg.RequireData
	return opts
}

// Result holds every table and artifact produced for one input.
type Result struct {
	Aligned *table.Aligned
	RSS     *table.RSS
	RMS     *table.BandedRMS

	Document    []byte // .docx
	Workbook    []byte // .xlsx
	SummaryHTML []byte
	Charts      int
}

// Build parses the input, aggregates RSS and banded RMS, and renders the
// report artifacts. The context is checked between phases.
func Build(ctx context.Context, in Input, opts Options, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log = log.With("filename", in.Filename)
	if len(opts.Bands) == 0 {
		opts.Bands = analysis.DefaultBands
	}
	if opts.Layout.PerPage() == 0 {
		opts.Layout = report.DefaultLayout
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	res := &Result{}

	// Phase 1: Parse
	done := opts.begin(PhaseParsing)
	p, err := parser.ForFile(in.Filename)
	if err != nil {
		return nil, err
	}
	aligned, err := p.Parse(bytes.NewReader(in.Data), in.Filename)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if opts.RequireData && aligned.Empty() {
		return nil, fmt.Errorf("parse %s: %w", in.Filename, parser.ErrMalformedInput)
	}
	res.Aligned = aligned
	done()
	log.Info("parsed input", "nodes", len(aligned.Nodes()), "rows", aligned.Len())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 2: Aggregate
	done = opts.begin(PhaseAggregating)
	agg := analysis.NewAggregator(log)
	agg.Strict = opts.Strict
	rss, err := agg.AggregateRSS(aligned)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	rms, err := agg.BandedRMS(rss, opts.Bands, opts.NodeRange)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	res.RSS, res.RMS = rss, rms
	done()
	log.Info("aggregated", "rss_nodes", len(rss.Columns), "skipped", len(rss.Skipped), "selected", len(rms.Nodes))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Phase 3: Render
	done = opts.begin(PhaseRendering)
	charts := make([]report.Chart, 0, len(rms.Nodes))
	for _, node := range rms.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values, _ := rms.NodeValues(node)
		label := opts.Labels.Label(node)
		png, err := chart.Render(label, rms.Bands, values, opts.Chart)
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", node, err)
		}
		charts = append(charts, report.Chart{Label: label, PNG: png})
	}
	res.Charts = len(charts)

	var template io.Reader
	if len(in.Template) > 0 {
		template = bytes.NewReader(in.Template)
	}
	doc := report.OpenOrCreate(template, opts.Now, log)
	if err := doc.AddCharts(charts, opts.Layout); err != nil {
		return nil, fmt.Errorf("document: %w", err)
	}
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	res.Document = buf.Bytes()

	var wb bytes.Buffer
	if err := report.WriteWorkbook(&wb, aligned, rss, rms); err != nil {
		return nil, err
	}
	res.Workbook = wb.Bytes()

	res.SummaryHTML, err = report.SummaryHTML("RMS Summary: "+in.Filename, rms, opts.Labels)
	if err != nil {
		return nil, err
	}
	done()
	log.Info("rendered report", "charts", len(charts), "pages", doc.Pages())

	return res, nil
}

// begin reports the start of a phase and returns a func reporting its end.
func (o Options) begin(p Phase) func() {
	if o.OnPhase != nil {
		o.OnPhase(p)
	}
	start := time.Now()
	return func() {
		if o.OnPhaseDone != nil {
			o.OnPhaseDone(p, time.Since(start))
		}
	}
}
