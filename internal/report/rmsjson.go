package report

import (
	"math"

	"github.com/dgallion1/pchreport/internal/labels"
	"github.com/dgallion1/pchreport/internal/table"
)

// BandJSON describes one frequency band.
type BandJSON struct {
	Label string  `json:"label"`
	Low   float64 `json:"low_hz"`
	High  float64 `json:"high_hz"`
}

// NodeRMSJSON holds the band values of one node. Missing values are null.
type NodeRMSJSON struct {
	ID     string              `json:"id"`
	Label  string              `json:"label"`
	Values map[string]*float64 `json:"values"`
}

// RMSJSON is the JSON form of a banded RMS table.
type RMSJSON struct {
	Bands   []BandJSON    `json:"bands"`
	Nodes   []NodeRMSJSON `json:"nodes"`
	Skipped []string      `json:"skipped_nodes"`
}

// NewRMSJSON converts the table; skipped lists nodes left out of the RSS table.
func NewRMSJSON(rms *table.BandedRMS, skipped []table.NodeID, names labels.Map) RMSJSON {
	out := RMSJSON{
		Bands:   make([]BandJSON, len(rms.Bands)),
		Nodes:   make([]NodeRMSJSON, len(rms.Nodes)),
		Skipped: make([]string, len(skipped)),
	}
	for i, b := range rms.Bands {
		out.Bands[i] = BandJSON{Label: b.Name(), Low: b.Low, High: b.High}
	}
	for j, n := range rms.Nodes {
		values := make(map[string]*float64, len(rms.Bands))
		for i, b := range rms.Bands {
			v := rms.Values[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				values[b.Name()] = nil
				continue
			}
			values[b.Name()] = &v
		}
		out.Nodes[j] = NodeRMSJSON{ID: string(n), Label: names.Label(n), Values: values}
	}
	for i, n := range skipped {
		out.Skipped[i] = string(n)
	}
	return out
}
