package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/pchreport/internal/chart"
	"github.com/dgallion1/pchreport/internal/labels"
	"github.com/dgallion1/pchreport/internal/table"
	"github.com/fumiama/go-docx"
	"github.com/xuri/excelize/v2"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func testCharts(t *testing.T, n int) []Chart {
	t.Helper()
	bands := []table.Band{{Label: "RMS_1-100", Low: 0, High: 100}}
	charts := make([]Chart, n)
	for i := range charts {
		png, err := chart.Render("node", bands, []float64{float64(i + 1)}, chart.Options{Width: 200, Height: 150})
		if err != nil {
			t.Fatalf("render chart: %v", err)
		}
		charts[i] = Chart{Label: "Node " + string(rune('A'+i)), PNG: png}
	}
	return charts
}

func countTables(t *testing.T, data []byte) int {
	t.Helper()
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("parse docx: %v", err)
	}
	n := 0
	for _, it := range doc.Document.Body.Items {
		if _, ok := it.(*docx.Table); ok {
			n++
		}
	}
	return n
}

func TestAddCharts_PagesOfFour(t *testing.T) {
	cases := []struct {
		charts int
		pages  int
	}{
		{0, 0},
		{1, 1},
		{4, 1},
		{5, 2},
		{9, 3},
	}
	for _, tc := range cases {
		d := NewDocument(testNow)
		if err := d.AddCharts(testCharts(t, tc.charts), DefaultLayout); err != nil {
			t.Fatalf("%d charts: unexpected error: %v", tc.charts, err)
		}
		if d.Pages() != tc.pages {
			t.Errorf("%d charts: expected %d pages, got %d", tc.charts, tc.pages, d.Pages())
		}

		var buf bytes.Buffer
		if _, err := d.WriteTo(&buf); err != nil {
			t.Fatalf("write docx: %v", err)
		}
		if got := countTables(t, buf.Bytes()); got != tc.pages {
			t.Errorf("%d charts: expected %d tables, got %d", tc.charts, tc.pages, got)
		}
	}
}

func TestAddCharts_InvalidLayout(t *testing.T) {
	d := NewDocument(testNow)
	if err := d.AddCharts(testCharts(t, 1), Layout{Rows: 0, Columns: 2}); err == nil {
		t.Fatal("expected error for empty layout")
	}
}

func TestLoadTemplate_AppendsToExisting(t *testing.T) {
	base := NewDocument(testNow)
	if err := base.AddCharts(testCharts(t, 2), DefaultLayout); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var tmpl bytes.Buffer
	if _, err := base.WriteTo(&tmpl); err != nil {
		t.Fatalf("write template: %v", err)
	}

	d, err := LoadTemplate(bytes.NewReader(tmpl.Bytes()))
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if err := d.AddCharts(testCharts(t, 1), DefaultLayout); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out bytes.Buffer
	if _, err := d.WriteTo(&out); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	if got := countTables(t, out.Bytes()); got != 2 {
		t.Errorf("expected template table plus one new table, got %d", got)
	}
}

func TestOpenOrCreate_FallsBackOnBadTemplate(t *testing.T) {
	d := OpenOrCreate(strings.NewReader("not a docx"), testNow, nil)
	if d == nil {
		t.Fatal("expected a document")
	}
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected non-empty output")
	}
}

func testTables(t *testing.T) (*table.Aligned, *table.RSS, *table.BandedRMS) {
	t.Helper()
	nan := math.NaN()
	aligned := table.NewAligned([]float64{50, 120})
	mustSet := func(node string, axis table.Axis, v []float64) {
		if err := aligned.Set(table.ColumnKey{Node: table.NodeID(node), Axis: axis}, v); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	mustSet("8000001", table.AxisX, []float64{3, nan})
	mustSet("8000001", table.AxisY, []float64{4, nan})
	mustSet("8000001", table.AxisZ, []float64{0, nan})

	rss := &table.RSS{
		Frequency: []float64{50, 120},
		Columns: []table.RSSColumn{
			{Key: table.RSSKey{Node: "8000001"}, Values: []float64{5, nan}},
		},
	}
	rms := &table.BandedRMS{
		Bands:  []table.Band{{Label: "RMS_1-100", Low: 0, High: 100}, {Label: "RMS_100-150", Low: 100, High: 150}},
		Nodes:  []table.NodeID{"8000001"},
		Values: [][]float64{{0.005}, {nan}},
	}
	return aligned, rss, rms
}

func TestWriteWorkbook_Sheets(t *testing.T) {
	aligned, rss, rms := testTables(t)

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, aligned, rss, rms); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{SheetAligned, SheetRSS, SheetRMS}
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("sheet %d: expected %q, got %q", i, want[i], sheets[i])
		}
	}

	rows, err := f.GetRows(SheetAligned)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Frequency" || rows[0][1] != "Node_8000001_tn_x_file_1" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	// Missing values are empty cells, trimmed from the row end.
	if len(rows[2]) != 1 || rows[2][0] != "120" {
		t.Errorf("expected only frequency in second row, got %v", rows[2])
	}

	rows, err = f.GetRows(SheetRSS)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if rows[0][1] != "RSS_8000001" || rows[1][1] != "5" {
		t.Errorf("unexpected RSS sheet: %v", rows)
	}

	rows, err = f.GetRows(SheetRMS)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "RMS_1-100" || rows[1][1] != "0.005" {
		t.Errorf("unexpected RMS sheet: %v", rows)
	}
}

func TestSummaryMarkdown(t *testing.T) {
	_, _, rms := testTables(t)
	md := SummaryMarkdown("Run 7", rms, labels.Default())

	for _, want := range []string{
		"# Run 7",
		"| Node | Label | RMS_1-100 | RMS_100-150 |",
		"| 8000001 | Engine Mount Front Top LH | 0.0050 | n/a |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("summary missing %q:\n%s", want, md)
		}
	}
}

func TestSummaryMarkdown_NoNodes(t *testing.T) {
	md := SummaryMarkdown("Empty", &table.BandedRMS{}, labels.Default())
	if !strings.Contains(md, "No nodes") {
		t.Errorf("expected empty notice, got %q", md)
	}
}

func TestSummaryHTML_RendersTable(t *testing.T) {
	_, _, rms := testTables(t)
	html, err := SummaryHTML("Run <7> 'B'", rms, labels.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(html)
	if !strings.Contains(s, "<table>") {
		t.Errorf("expected an HTML table, got:\n%s", s)
	}
	if !strings.Contains(s, "<title>Run &lt;7&gt; &#39;B&#39;</title>") {
		t.Errorf("expected escaped title, got:\n%s", s)
	}
	if !strings.Contains(s, "Engine Mount Front Top LH") {
		t.Errorf("expected node label in output")
	}
}
