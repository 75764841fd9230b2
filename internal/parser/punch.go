package parser

import (
	"bufio"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/pchreport/internal/table"
)

var (
	pointIDPattern = regexp.MustCompile(`\$POINT ID =\s+(\d+)`)
	dataPattern    = regexp.MustCompile(`(\d\.\d+E[+-]\d+)\s+(\d\.\d+E[+-]\d+)\s+(\d\.\d+E[+-]\d+)\s+(\d\.\d+E[+-]\d+)`)
)

// PunchParser handles punch (.pch) frequency-response exports.
type PunchParser struct{}

func (p *PunchParser) Parse(r io.Reader, filename string) (*table.Aligned, error) {
	series, err := ScanSeries(r)
	if err != nil {
		return nil, err
	}
	return table.Align(series), nil
}

// Extract parses punch text into an aligned table. It never fails: text
// without markers or data rows yields an empty table.
func Extract(text string) *table.Aligned {
	return table.Align(ExtractSeries(text))
}

// ExtractSeries returns the node series found in text, in order of first
// marker appearance.
func ExtractSeries(text string) []table.NodeSeries {
	// Reading from a string cannot fail except on oversized lines, in which
	// case everything scanned so far is kept.
	series, _ := ScanSeries(strings.NewReader(text))
	return series
}

// ScanSeries reads punch text line by line. A $POINT ID line opens a section
// for its node; every four-field scientific-notation match on a line inside
// a section becomes one sample. Sections repeating a node append to it.
func ScanSeries(r io.Reader) ([]table.NodeSeries, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var series []table.NodeSeries
	index := make(map[table.NodeID]int)
	current := -1

	for scanner.Scan() {
		line := scanner.Text()

		if m := pointIDPattern.FindStringSubmatchIndex(line); m != nil {
			node := table.NodeID(line[m[2]:m[3]])
			i, ok := index[node]
			if !ok {
				i = len(series)
				index[node] = i
				series = append(series, table.NodeSeries{Node: node})
			}
			current = i
			// Anything after the marker on the same line belongs to the section.
			line = line[m[1]:]
		}
		if current < 0 {
			continue
		}

		for _, f := range dataPattern.FindAllStringSubmatch(line, -1) {
			series[current].Samples = append(series[current].Samples, table.Sample{
				Frequency: coerce(f[1]),
				X:         coerce(f[2]),
				Y:         coerce(f[3]),
				Z:         coerce(f[4]),
			})
		}
	}

	return series, scanner.Err()
}

// coerce converts a matched field; values that do not fit a float64 become
// missing rather than failing the row.
func coerce(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
