package table

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// NodeID is a node identifier exactly as captured from the punch file.
type NodeID string

// Number parses the identifier as a decimal integer.
func (n NodeID) Number() (int64, bool) {
	v, err := strconv.ParseInt(string(n), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Axis is one of the three translational response directions.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// Axes lists the axes in column order.
var Axes = []Axis{AxisX, AxisY, AxisZ}

// ColumnKey identifies a response column of an aligned table.
type ColumnKey struct {
	Node NodeID
	Axis Axis
}

// Name returns the exported column header, e.g. Node_8000001_tn_x_file_1.
func (k ColumnKey) Name() string {
	return fmt.Sprintf("Node_%s_tn_%s_file_1", k.Node, k.Axis)
}

var columnNameRe = regexp.MustCompile(`^Node_(\d+)_tn_([xyz])_file_1$`)

// ParseColumnName recovers a ColumnKey from an exported header.
func ParseColumnName(name string) (ColumnKey, bool) {
	m := columnNameRe.FindStringSubmatch(name)
	if m == nil {
		return ColumnKey{}, false
	}
	return ColumnKey{Node: NodeID(m[1]), Axis: Axis(m[2])}, true
}

// FrequencyColumn is the header of the shared frequency axis.
const FrequencyColumn = "Frequency"

// Sample is one response measurement of one node at one frequency.
type Sample struct {
	Frequency float64
	X, Y, Z   float64
}

// NodeSeries is the ordered sample sequence of a single node.
type NodeSeries struct {
	Node    NodeID
	Samples []Sample
}

// Missing reports whether v is a missing cell.
func Missing(v float64) bool {
	return math.IsNaN(v)
}

// ErrLengthMismatch is returned when a column does not match the frequency axis.
var ErrLengthMismatch = errors.New("column length does not match frequency axis")

// Column is one named response column.
type Column struct {
	Key    ColumnKey
	Values []float64
}

// Aligned is a frequency axis plus response columns aligned to it by row.
type Aligned struct {
	Frequency []float64

	columns []Column
	index   map[ColumnKey]int
}

// NewAligned returns an empty table over the given frequency axis.
func NewAligned(frequency []float64) *Aligned {
	return &Aligned{
		Frequency: frequency,
		index:     make(map[ColumnKey]int),
	}
}

// Len returns the number of rows.
func (t *Aligned) Len() int {
	return len(t.Frequency)
}

// Set stores a column. Setting an existing key replaces its values in place,
// so the last write wins and column order stays stable.
func (t *Aligned) Set(key ColumnKey, values []float64) error {
	if len(values) != len(t.Frequency) {
		return fmt.Errorf("set %s: %w (%d != %d)", key.Name(), ErrLengthMismatch, len(values), len(t.Frequency))
	}
	if t.index == nil {
		t.index = make(map[ColumnKey]int)
	}
	if i, ok := t.index[key]; ok {
		t.columns[i].Values = values
		return nil
	}
	t.index[key] = len(t.columns)
	t.columns = append(t.columns, Column{Key: key, Values: values})
	return nil
}

// Column returns the values stored under key.
func (t *Aligned) Column(key ColumnKey) ([]float64, bool) {
	i, ok := t.index[key]
	if !ok {
		return nil, false
	}
	return t.columns[i].Values, true
}

// Columns returns the response columns in insertion order.
func (t *Aligned) Columns() []Column {
	return t.columns
}

// Nodes returns the distinct node identifiers in column order.
func (t *Aligned) Nodes() []NodeID {
	seen := make(map[NodeID]bool)
	var nodes []NodeID
	for _, c := range t.columns {
		if !seen[c.Key.Node] {
			seen[c.Key.Node] = true
			nodes = append(nodes, c.Key.Node)
		}
	}
	return nodes
}

// Empty reports whether the table holds no response columns.
func (t *Aligned) Empty() bool {
	return len(t.columns) == 0
}
