// Package analysis derives vibration metrics from an aligned response table:
// per-node vector magnitude (RSS) and banded root-mean-square levels.
//
// All functions are pure; an Aggregator only carries its logger and policy
// and may be shared between goroutines.
package analysis

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/dgallion1/pchreport/internal/table"
)

// UnitScale converts source response units to report display units.
const UnitScale = 1000.0

// DefaultBands are the report frequency windows.
var DefaultBands = []table.Band{
	{Label: "RMS_1-100", Low: 0, High: 100},
	{Label: "RMS_100-150", Low: 100, High: 150},
	{Label: "RMS_150-300", Low: 150, High: 300},
}

// DefaultNodeRange selects the nodes charted in a standard report.
var DefaultNodeRange = table.NodeRange{Low: 8000001, High: 8000045}

// ErrInvalidRange is returned for an inverted node range or an empty band.
var ErrInvalidRange = errors.New("invalid range")

// MissingColumnError reports a node whose axis triad is incomplete.
type MissingColumnError struct {
	Node    table.NodeID
	Missing []table.Axis
}

func (e *MissingColumnError) Error() string {
	axes := make([]string, len(e.Missing))
	for i, a := range e.Missing {
		axes[i] = string(a)
	}
	return fmt.Sprintf("node %s: missing axis columns %s", e.Node, strings.Join(axes, ","))
}

// Aggregator computes RSS and banded RMS tables.
type Aggregator struct {
	log *slog.Logger

	// Strict makes AggregateRSS fail on an incomplete triad instead of
	// skipping the node.
	Strict bool
}

func NewAggregator(log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Aggregator{log: log}
}

// AggregateRSS computes sqrt(x²+y²+z²) row-wise for every node with a
// complete triad. Missing cells propagate as missing.
func (a *Aggregator) AggregateRSS(t *table.Aligned) (*table.RSS, error) {
	out := &table.RSS{Frequency: t.Frequency}

	for _, node := range t.Nodes() {
		var cols [3][]float64
		var missing []table.Axis
		for i, axis := range table.Axes {
			values, ok := t.Column(table.ColumnKey{Node: node, Axis: axis})
			if !ok {
				missing = append(missing, axis)
				continue
			}
			cols[i] = values
		}
		if len(missing) > 0 {
			err := &MissingColumnError{Node: node, Missing: missing}
			if a.Strict {
				return nil, err
			}
			a.log.Warn("skipping node with incomplete triad", "node", string(node), "error", err)
			out.Skipped = append(out.Skipped, node)
			continue
		}

		rss := make([]float64, t.Len())
		for r := range rss {
			rss[r] = Magnitude(cols[0][r], cols[1][r], cols[2][r])
		}
		out.Columns = append(out.Columns, table.RSSColumn{
			Key:    table.RSSKey{Node: node},
			Values: rss,
		})
	}

	return out, nil
}

// Magnitude returns the Euclidean norm of a three-axis sample. A missing
// component yields a missing result.
func Magnitude(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}

// BandedRMS computes the RMS of each selected node's magnitude inside each
// band, scaled by 1/UnitScale. Rows exactly on a band edge belong to no band.
// A band with no present values yields NaN for that node.
func (a *Aggregator) BandedRMS(rss *table.RSS, bands []table.Band, nodes table.NodeRange) (*table.BandedRMS, error) {
	if nodes.Low > nodes.High {
		return nil, fmt.Errorf("%w: node range %d > %d", ErrInvalidRange, nodes.Low, nodes.High)
	}
	for _, b := range bands {
		if math.IsNaN(b.Low) || math.IsNaN(b.High) || b.Low >= b.High {
			return nil, fmt.Errorf("%w: band %s (%g, %g)", ErrInvalidRange, b.Name(), b.Low, b.High)
		}
	}

	var selected []table.RSSColumn
	for _, c := range rss.Columns {
		id, ok := c.Key.Node.Number()
		if !ok || !nodes.Contains(id) {
			continue
		}
		selected = append(selected, c)
	}

	out := &table.BandedRMS{
		Bands:  bands,
		Nodes:  make([]table.NodeID, len(selected)),
		Values: make([][]float64, len(bands)),
	}
	for j, c := range selected {
		out.Nodes[j] = c.Key.Node
	}

	for i, b := range bands {
		var rows []int
		for r, f := range rss.Frequency {
			if b.Contains(f) {
				rows = append(rows, r)
			}
		}
		out.Values[i] = make([]float64, len(selected))
		for j, c := range selected {
			out.Values[i][j] = RMS(c.Values, rows) / UnitScale
		}
	}

	return out, nil
}

// RMS returns sqrt(mean(v²)) over the given rows, ignoring missing values.
// It returns NaN when no row holds a present value.
func RMS(values []float64, rows []int) float64 {
	var sum float64
	n := 0
	for _, r := range rows {
		v := values[r]
		if table.Missing(v) {
			continue
		}
		sum += v * v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return math.Sqrt(sum / float64(n))
}
