package table

import (
	"fmt"
	"math"
)

// RSSKey identifies a magnitude column. It is created when the RSS table is
// built and carried through band filtering, so node identity is never parsed
// back out of a label.
type RSSKey struct {
	Node NodeID
}

// Label returns the exported header, e.g. RSS_8000001.
func (k RSSKey) Label() string {
	return "RSS_" + string(k.Node)
}

// RSSColumn is the row-wise vector magnitude of one node.
type RSSColumn struct {
	Key    RSSKey
	Values []float64
}

// RSS holds per-node vector magnitudes over a shared frequency axis.
type RSS struct {
	Frequency []float64
	Columns   []RSSColumn
	Skipped   []NodeID // nodes omitted for an incomplete axis triad
}

// Column returns the magnitude column of node.
func (r *RSS) Column(node NodeID) ([]float64, bool) {
	for _, c := range r.Columns {
		if c.Key.Node == node {
			return c.Values, true
		}
	}
	return nil, false
}

// Band is an open frequency interval (Low, High) in Hz.
type Band struct {
	Label string
	Low   float64
	High  float64
}

// Contains reports whether f lies strictly inside the band.
func (b Band) Contains(f float64) bool {
	return b.Low < f && f < b.High
}

// Name returns the band label, deriving one from the bounds when unset.
func (b Band) Name() string {
	if b.Label != "" {
		return b.Label
	}
	return fmt.Sprintf("RMS_%g-%g", b.Low, b.High)
}

// NodeRange is an inclusive range of numeric node identifiers.
type NodeRange struct {
	Low  int64
	High int64
}

// Contains reports whether id lies within the range.
func (r NodeRange) Contains(id int64) bool {
	return r.Low <= id && id <= r.High
}

// BandedRMS holds one row per band and one column per node.
type BandedRMS struct {
	Bands  []Band
	Nodes  []NodeID
	Values [][]float64 // Values[band][node]
}

// Value looks up a cell by band label and node.
func (b *BandedRMS) Value(band string, node NodeID) (float64, bool) {
	for i, bd := range b.Bands {
		if bd.Name() != band {
			continue
		}
		for j, n := range b.Nodes {
			if n == node {
				return b.Values[i][j], true
			}
		}
	}
	return math.NaN(), false
}

// NodeValues returns the band values of one node, in band order.
func (b *BandedRMS) NodeValues(node NodeID) ([]float64, bool) {
	for j, n := range b.Nodes {
		if n != node {
			continue
		}
		out := make([]float64, len(b.Bands))
		for i := range b.Bands {
			out[i] = b.Values[i][j]
		}
		return out, true
	}
	return nil, false
}
