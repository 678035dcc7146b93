// Package report assembles the final classified report.
package report

import "github.com/okian/sentinela/internal/domain/model"

// Assemble builds a ClassifiedReport from the classifier's output. The input
// slices are copied; AlertRatePercent is rounded to 1 decimal and is 0 when
// there are no groups.
func Assemble(alerts, normals []model.GroupSummary) model.ClassifiedReport {
	r := model.ClassifiedReport{
		Alerts:      append(make([]model.GroupSummary, 0, len(alerts)), alerts...),
		Normals:     append(make([]model.GroupSummary, 0, len(normals)), normals...),
		TotalGroups: len(alerts) + len(normals),
		TotalAlerts: len(alerts),
	}
	for _, s := range alerts {
		r.TotalExams += s.ExamCount
	}
	for _, s := range normals {
		r.TotalExams += s.ExamCount
	}
	if r.TotalGroups > 0 {
		r.AlertRatePercent = model.RoundTo(float64(r.TotalAlerts)/float64(r.TotalGroups)*100, 1)
	}
	return r
}
