package table

import (
	"math"
	"sort"
)

type rowKey struct {
	freq    float64
	occ     int
	missing bool
}

// Align joins node series on their frequency values. The k-th occurrence of a
// frequency in one series shares a row with the k-th occurrence of the same
// frequency in every other series. Rows are ordered by ascending frequency;
// samples with a missing frequency get rows of their own at the end.
func Align(series []NodeSeries) *Aligned {
	var keys []rowKey
	seen := make(map[rowKey]bool)
	perSeries := make([][]rowKey, len(series))
	missingCount := 0

	for i, s := range series {
		occ := make(map[float64]int)
		rows := make([]rowKey, len(s.Samples))
		for j, sm := range s.Samples {
			var k rowKey
			if math.IsNaN(sm.Frequency) {
				k = rowKey{occ: missingCount, missing: true}
				missingCount++
			} else {
				k = rowKey{freq: sm.Frequency, occ: occ[sm.Frequency]}
				occ[sm.Frequency]++
			}
			rows[j] = k
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		perSeries[i] = rows
	}

	sort.SliceStable(keys, func(a, b int) bool {
		ka, kb := keys[a], keys[b]
		if ka.missing != kb.missing {
			return !ka.missing
		}
		if ka.missing {
			return ka.occ < kb.occ
		}
		if ka.freq != kb.freq {
			return ka.freq < kb.freq
		}
		return ka.occ < kb.occ
	})

	rowOf := make(map[rowKey]int, len(keys))
	freq := make([]float64, len(keys))
	for i, k := range keys {
		rowOf[k] = i
		if k.missing {
			freq[i] = math.NaN()
		} else {
			freq[i] = k.freq
		}
	}

	t := NewAligned(freq)
	for i, s := range series {
		x, y, z := nanColumn(len(keys)), nanColumn(len(keys)), nanColumn(len(keys))
		if prev, ok := t.Column(ColumnKey{Node: s.Node, Axis: AxisX}); ok {
			// Same node seen again: keep what was already aligned.
			copy(x, prev)
			py, _ := t.Column(ColumnKey{Node: s.Node, Axis: AxisY})
			pz, _ := t.Column(ColumnKey{Node: s.Node, Axis: AxisZ})
			copy(y, py)
			copy(z, pz)
		}
		for j, sm := range s.Samples {
			r := rowOf[perSeries[i][j]]
			x[r], y[r], z[r] = sm.X, sm.Y, sm.Z
		}
		// Lengths always match the axis built above.
		_ = t.Set(ColumnKey{Node: s.Node, Axis: AxisX}, x)
		_ = t.Set(ColumnKey{Node: s.Node, Axis: AxisY}, y)
		_ = t.Set(ColumnKey{Node: s.Node, Axis: AxisZ}, z)
	}
	return t
}

func nanColumn(n int) []float64 {
	col := make([]float64, n)
	for i := range col {
		col[i] = math.NaN()
	}
	return col
}
