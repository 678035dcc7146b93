// Package classify splits group summaries into alert and normal groups.
package classify

import "github.com/okian/sentinela/internal/domain/model"

// IsAlert reports whether a group breaches both alert thresholds. The
// comparison is strict and runs on the rounded summary values.
func IsAlert(s model.GroupSummary, t model.Thresholds) bool {
	return s.MeanRDW > t.GroupMeanAlert && s.ElevatedPercent > t.ElevatedShareAlert
}

// Classify partitions summaries, keeping their relative order in each half.
// Both results are non-nil.
func Classify(summaries []model.GroupSummary, t model.Thresholds) (alerts, normals []model.GroupSummary) {
	alerts = make([]model.GroupSummary, 0, len(summaries))
	normals = make([]model.GroupSummary, 0, len(summaries))
	for _, s := range summaries {
		if IsAlert(s, t) {
			alerts = append(alerts, s)
			continue
		}
		normals = append(normals, s)
	}
	return alerts, normals
}
