package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/pchreport/internal/table"
)

// CSVParser reads an aligned table previously exported with a Frequency
// column and Node_{id}_tn_{axis}_file_1 headers. Unknown headers are ignored
// and cells that are blank or not numeric become missing values.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*table.Aligned, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return table.NewAligned(nil), nil
	}

	// First row is headers.
	headers := records[0]
	freqCol := -1
	keys := make(map[int]table.ColumnKey)
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == table.FrequencyColumn {
			// Repeated Frequency headers collapse onto the last one.
			freqCol = i
			continue
		}
		if key, ok := table.ParseColumnName(h); ok {
			keys[i] = key
		}
	}
	if freqCol < 0 {
		return nil, fmt.Errorf("parse csv %s: missing %s column", filename, table.FrequencyColumn)
	}

	dataRows := records[1:]
	freq := make([]float64, len(dataRows))
	for r, row := range dataRows {
		freq[r] = cell(row, freqCol)
	}

	tbl := table.NewAligned(freq)
	for i := range headers {
		key, ok := keys[i]
		if !ok {
			continue
		}
		values := make([]float64, len(dataRows))
		for r, row := range dataRows {
			values[r] = cell(row, i)
		}
		if err := tbl.Set(key, values); err != nil {
			return nil, fmt.Errorf("parse csv %s: %w", filename, err)
		}
	}

	return tbl, nil
}

func cell(row []string, i int) float64 {
	if i >= len(row) {
		return math.NaN()
	}
	s := strings.TrimSpace(row[i])
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// WriteCSV exports an aligned table in the format CSVParser reads.
func WriteCSV(w io.Writer, t *table.Aligned) error {
	cw := csv.NewWriter(w)

	cols := t.Columns()
	header := make([]string, 0, len(cols)+1)
	header = append(header, table.FrequencyColumn)
	for _, c := range cols {
		header = append(header, c.Key.Name())
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(header))
	for r := 0; r < t.Len(); r++ {
		row[0] = formatCell(t.Frequency[r])
		for i, c := range cols {
			row[i+1] = formatCell(c.Values[r])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", r, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatCell(v float64) string {
	if table.Missing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'E', 6, 64)
}
