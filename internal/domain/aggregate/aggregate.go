// Package aggregate rolls observations up into per-group statistics.
package aggregate

import (
	"math"
	"sort"

	"github.com/okian/sentinela/internal/domain/model"
)

// Aggregate partitions obs by group key and summarises each partition.
//
// The result is ordered by mean RDW descending, ties by group key ascending.
// Values are summed in ascending order, so permuting obs never changes the
// output. Empty input yields an empty, non-nil slice.
func Aggregate(obs []model.Observation, t model.Thresholds) []model.GroupSummary {
	groups := make(map[string][]float64)
	for _, o := range obs {
		groups[o.GroupKey] = append(groups[o.GroupKey], o.RDWPercent)
	}

	out := make([]model.GroupSummary, 0, len(groups))
	for key, values := range groups {
		out = append(out, summarise(key, values, t))
	}
	sort.Slice(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

func summarise(key string, values []float64, t model.Thresholds) model.GroupSummary {
	sort.Float64s(values)

	elevated := 0
	for _, v := range values {
		if v > t.CriticalRDW {
			elevated++
		}
	}

	n := len(values)
	s := model.GroupSummary{
		GroupKey:      key,
		ExamCount:     n,
		ElevatedCount: elevated,
	}
	if n == 0 {
		s.Status = model.StatusNormal
		return s
	}
	s.MeanRDW = model.RoundTo(mean(values), 2)
	s.ElevatedPercent = model.RoundTo(float64(elevated)/float64(n)*100, 2)
	s.MinRDW = values[0]
	s.MaxRDW = values[n-1]
	s.Status = t.StatusFor(s.MeanRDW)
	return s
}

// mean averages sorted values. It falls back to a running mean when the
// plain sum overflows, so any finite input has a finite mean.
func mean(sorted []float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	if !math.IsInf(sum, 0) {
		return sum / float64(len(sorted))
	}
	var m float64
	for i, v := range sorted {
		m += (v - m) / float64(i+1)
	}
	return m
}

// less ranks higher means first and breaks ties by key.
func less(a, b model.GroupSummary) bool {
	if a.MeanRDW != b.MeanRDW {
		return a.MeanRDW > b.MeanRDW
	}
	return a.GroupKey < b.GroupKey
}
