package report

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fumiama/go-docx"
)

// EMUPerInch converts inches to the drawing units used by docx.
const EMUPerInch = 914400

// Chart is one rendered node chart to place in the document.
type Chart struct {
	Label string
	PNG   []byte
}

// Layout controls how charts are arranged on each page.
type Layout struct {
	Rows        int
	Columns     int
	ImageWidth  int64 // EMU
	ImageHeight int64 // EMU
}

// DefaultLayout places four charts per page in a 2x2 grid.
var DefaultLayout = Layout{
	Rows:        2,
	Columns:     2,
	ImageWidth:  3 * EMUPerInch,
	ImageHeight: 9 * EMUPerInch / 4,
}

// PerPage returns the number of charts on a full page.
func (l Layout) PerPage() int {
	return l.Rows * l.Columns
}

// Document is a report being assembled.
type Document struct {
	doc   *docx.Docx
	pages int
}

// NewDocument creates a fresh report with a title block.
func NewDocument(now time.Time) *Document {
	doc := docx.New().WithDefaultTheme().WithA4Page()

	doc.AddParagraph().Justification("center").
		AddText("Vibration Analysis Report").Bold().Size("48")
	doc.AddParagraph().Justification("center").
		AddText("Generated on " + now.Format("2006-01-02")).Size("28")

	return &Document{doc: doc}
}

// LoadTemplate opens an existing .docx so charts are appended to it.
// go-docx keeps reading the source archive until the document is written,
// so the template is held in memory for the life of the Document.
func LoadTemplate(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}
	return &Document{doc: doc}, nil
}

// OpenOrCreate loads the template when one is given and readable, and falls
// back to a fresh document otherwise.
func OpenOrCreate(template io.Reader, now time.Time, log *slog.Logger) *Document {
	if template == nil {
		return NewDocument(now)
	}
	d, err := LoadTemplate(template)
	if err != nil {
		if log != nil {
			log.Warn("could not load template, creating new document", "error", err)
		}
		return NewDocument(now)
	}
	return d
}

// AddCharts appends charts in pages of layout.Rows x layout.Columns, each
// page starting on a new sheet with the charts laid out in a table.
func (d *Document) AddCharts(charts []Chart, layout Layout) error {
	if layout.Rows <= 0 || layout.Columns <= 0 {
		return fmt.Errorf("invalid layout %dx%d", layout.Rows, layout.Columns)
	}
	per := layout.PerPage()

	for start := 0; start < len(charts); start += per {
		end := min(start+per, len(charts))
		page := charts[start:end]

		d.doc.AddParagraph().AddPageBreaks()
		rows := (len(page) + layout.Columns - 1) / layout.Columns
		tbl := d.doc.AddTable(rows, layout.Columns, 0, nil)

		for i, c := range page {
			row, col := i/layout.Columns, i%layout.Columns
			cell := tbl.TableRows[row].TableCells[col]

			run, err := cell.AddParagraph().Justification("center").AddInlineDrawing(c.PNG)
			if err != nil {
				return fmt.Errorf("add chart %q: %w", c.Label, err)
			}
			if dr, ok := run.Children[0].(*docx.Drawing); ok && dr.Inline != nil {
				dr.Inline.Size(layout.ImageWidth, layout.ImageHeight)
			}
			cell.AddParagraph().Justification("center").AddText(c.Label).Size("20")
		}
		// Word rejects table cells without a paragraph.
		for _, tr := range tbl.TableRows {
			for _, cell := range tr.TableCells {
				if len(cell.Paragraphs) == 0 {
					cell.AddParagraph()
				}
			}
		}
		d.pages++
	}
	return nil
}

// Pages returns the number of chart pages added so far.
func (d *Document) Pages() int {
	return d.pages
}

// WriteTo serializes the document as .docx.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	return d.doc.WriteTo(w)
}
