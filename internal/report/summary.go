package report

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/dgallion1/pchreport/internal/labels"
	"github.com/dgallion1/pchreport/internal/table"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// SummaryMarkdown renders the banded RMS table as a markdown document with
// one row per node and one column per band.
func SummaryMarkdown(title string, rms *table.BandedRMS, names labels.Map) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", title)

	if len(rms.Nodes) == 0 {
		sb.WriteString("No nodes in the selected range.\n")
		return sb.String()
	}

	sb.WriteString("| Node | Label |")
	for _, b := range rms.Bands {
		sb.WriteString(" " + b.Name() + " |")
	}
	sb.WriteString("\n|---|---|")
	for range rms.Bands {
		sb.WriteString("---:|")
	}
	sb.WriteString("\n")

	for j, n := range rms.Nodes {
		fmt.Fprintf(&sb, "| %s | %s |", n, escapeCell(names.Label(n)))
		for i := range rms.Bands {
			sb.WriteString(" " + formatRMS(rms.Values[i][j]) + " |")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// SummaryHTML converts the markdown summary to HTML.
func SummaryHTML(title string, rms *table.BandedRMS, names labels.Map) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	buf.WriteString(html.EscapeString(title))
	buf.WriteString("</title></head><body>\n")
	if err := md.Convert([]byte(SummaryMarkdown(title, rms, names)), &buf); err != nil {
		return nil, fmt.Errorf("render summary: %w", err)
	}
	buf.WriteString("</body></html>\n")
	return buf.Bytes(), nil
}

func formatRMS(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
