package aggregate

import (
	"sort"

	"github.com/okian/sentinela/internal/domain/model"
)

// Age band labels in display order.
var ageBands = []string{"0-17", "18-29", "30-44", "45-59", "60-74", "75+"}

// AgeBand returns the label of the band age falls in.
func AgeBand(age int) string {
	switch {
	case age < 18:
		return ageBands[0]
	case age < 30:
		return ageBands[1]
	case age < 45:
		return ageBands[2]
	case age < 60:
		return ageBands[3]
	case age < 75:
		return ageBands[4]
	default:
		return ageBands[5]
	}
}

// Overall summarises all observations together.
func Overall(obs []model.Observation, t model.Thresholds) model.Overview {
	if len(obs) == 0 {
		return model.Overview{}
	}

	values := make([]float64, 0, len(obs))
	groups := make(map[string]struct{})
	elevated := 0
	for _, o := range obs {
		values = append(values, o.RDWPercent)
		groups[o.GroupKey] = struct{}{}
		if o.RDWPercent > t.CriticalRDW {
			elevated++
		}
	}
	sort.Float64s(values)

	return model.Overview{
		Exams:           len(obs),
		Groups:          len(groups),
		MeanRDW:         model.RoundTo(mean(values), 2),
		ElevatedCount:   elevated,
		ElevatedPercent: model.RoundTo(float64(elevated)/float64(len(obs))*100, 2),
	}
}

// Demographics stratifies observations by age band and by sex. Age bands
// come in ascending age order and sexes in label order; empty strata are
// omitted.
func Demographics(obs []model.Observation) model.Demographics {
	byAge := make(map[string][]float64)
	bySex := make(map[string][]float64)
	d := model.Demographics{AgeBands: []model.Band{}, Sex: []model.Band{}}

	for _, o := range obs {
		if o.AgeKnown {
			band := AgeBand(o.Age)
			byAge[band] = append(byAge[band], o.RDWPercent)
		} else {
			d.UnknownAge++
		}
		if o.Sex != "" && o.Sex != model.Unknown {
			bySex[o.Sex] = append(bySex[o.Sex], o.RDWPercent)
		} else {
			d.UnknownSex++
		}
	}

	for _, label := range ageBands {
		if values, ok := byAge[label]; ok {
			d.AgeBands = append(d.AgeBands, band(label, values))
		}
	}
	for _, label := range sortedKeys(bySex) {
		d.Sex = append(d.Sex, band(label, bySex[label]))
	}
	return d
}

// Timeline averages RDW per collection date, oldest first. Dates are
// compared as text; exams without a date are skipped.
func Timeline(obs []model.Observation) []model.DatePoint {
	byDate := make(map[string][]float64)
	for _, o := range obs {
		if o.CollectionDate == "" || o.CollectionDate == model.Unknown {
			continue
		}
		byDate[o.CollectionDate] = append(byDate[o.CollectionDate], o.RDWPercent)
	}

	out := make([]model.DatePoint, 0, len(byDate))
	for _, date := range sortedKeys(byDate) {
		b := band(date, byDate[date])
		out = append(out, model.DatePoint{Date: date, Count: b.Count, MeanRDW: b.MeanRDW})
	}
	return out
}

func band(label string, values []float64) model.Band {
	sort.Float64s(values)
	return model.Band{
		Label:   label,
		Count:   len(values),
		MeanRDW: model.RoundTo(mean(values), 2),
	}
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
