package aggregate

import (
	"math"

	"github.com/okian/sentinela/internal/domain/model"
)

// BinSpec lays out the histogram: bins of Width starting at Min, the last
// one starting at Max.
type BinSpec struct {
	Min   float64
	Max   float64
	Width float64
}

// DefaultBinSpec covers 10.0 to 20.5 in half-point steps.
func DefaultBinSpec() BinSpec {
	return BinSpec{Min: 10, Max: 20, Width: 0.5}
}

func (s BinSpec) count() int {
	if s.Width <= 0 || s.Max < s.Min {
		return 0
	}
	return int(math.Round((s.Max-s.Min)/s.Width)) + 1
}

// Distribution counts observations per bin. A bin holds values in
// [Lower, Upper); values outside every bin are not counted. Percent is
// relative to len(obs), rounded to 2 decimals.
func Distribution(obs []model.Observation, spec BinSpec) []model.Bin {
	n := spec.count()
	bins := make([]model.Bin, n)
	for i := range bins {
		// Edges from the index keep 0.5 steps free of accumulated error.
		lower := spec.Min + float64(i)*spec.Width
		bins[i] = model.Bin{Lower: lower, Upper: lower + spec.Width}
	}
	if n == 0 {
		return bins
	}

	top := spec.Min + float64(n)*spec.Width
	for _, o := range obs {
		v := o.RDWPercent
		if v < spec.Min || v >= top {
			continue
		}
		i := int(math.Floor((v - spec.Min) / spec.Width))
		if i < 0 || i >= n {
			continue
		}
		bins[i].Count++
	}

	if total := len(obs); total > 0 {
		for i := range bins {
			bins[i].Percent = model.RoundTo(float64(bins[i].Count)/float64(total)*100, 2)
		}
	}
	return bins
}
