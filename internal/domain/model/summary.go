package model

import "time"

// Status bands a group by its mean RDW.
type Status string

// Group status values.
const (
	StatusNormal   Status = "normal"
	StatusElevated Status = "elevated"
	StatusHigh     Status = "high"
)

// GroupSummary holds the rolled-up statistics of one group.
type GroupSummary struct {
	GroupKey  string `json:"group_key" yaml:"group_key"`
	ExamCount int    `json:"exam_count" yaml:"exam_count"`
	// MeanRDW is rounded to 2 decimals.
	MeanRDW       float64 `json:"mean_rdw" yaml:"mean_rdw"`
	ElevatedCount int     `json:"elevated_count" yaml:"elevated_count"`
	// ElevatedPercent is rounded to 2 decimals.
	ElevatedPercent float64 `json:"elevated_percent" yaml:"elevated_percent"`
	MinRDW          float64 `json:"min_rdw" yaml:"min_rdw"`
	MaxRDW          float64 `json:"max_rdw" yaml:"max_rdw"`
	Status          Status  `json:"status" yaml:"status"`
}

// ClassifiedReport is the final partition of groups plus run totals.
// Alerts and Normals keep the mean RDW descending order.
type ClassifiedReport struct {
	Alerts           []GroupSummary `json:"alerts" yaml:"alerts"`
	Normals          []GroupSummary `json:"normals" yaml:"normals"`
	TotalGroups      int            `json:"total_groups" yaml:"total_groups"`
	TotalAlerts      int            `json:"total_alerts" yaml:"total_alerts"`
	TotalExams       int            `json:"total_exams" yaml:"total_exams"`
	AlertRatePercent float64        `json:"alert_rate_percent" yaml:"alert_rate_percent"`
}

// Group returns the summary for key from either partition; alert reports
// which one it came from.
func (r ClassifiedReport) Group(key string) (summary GroupSummary, alert, ok bool) {
	for _, g := range r.Alerts {
		if g.GroupKey == key {
			return g, true, true
		}
	}
	for _, g := range r.Normals {
		if g.GroupKey == key {
			return g, false, true
		}
	}
	return GroupSummary{}, false, false
}

// Bin is one bucket of the RDW distribution.
type Bin struct {
	Lower   float64 `json:"lower" yaml:"lower"`
	Upper   float64 `json:"upper" yaml:"upper"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// IngestStats describes what the source delivered and what validation kept.
type IngestStats struct {
	Files              int            `json:"files" yaml:"files"`
	FilesFailed        int            `json:"files_failed" yaml:"files_failed"`
	RecordsLoaded      int            `json:"records_loaded" yaml:"records_loaded"`
	RecordsAccepted    int            `json:"records_accepted" yaml:"records_accepted"`
	RecordsRejected    int            `json:"records_rejected" yaml:"records_rejected"`
	Duplicates         int            `json:"duplicates" yaml:"duplicates"`
	RejectionsByReason map[string]int `json:"rejections_by_reason" yaml:"rejections_by_reason"`
}

// Analysis is the envelope a pipeline run hands to report sinks.
type Analysis struct {
	RunID        string           `json:"run_id" yaml:"run_id"`
	GeneratedAt  time.Time        `json:"generated_at" yaml:"generated_at"`
	Source       string           `json:"source" yaml:"source"`
	Thresholds   Thresholds       `json:"thresholds" yaml:"thresholds"`
	Ingest       IngestStats      `json:"ingest" yaml:"ingest"`
	Report       ClassifiedReport `json:"report" yaml:"report"`
	Overview     Overview         `json:"overview" yaml:"overview"`
	Distribution []Bin            `json:"distribution" yaml:"distribution"`
	Demographics Demographics     `json:"demographics" yaml:"demographics"`
	// Timeline holds per collection date means within this run.
	Timeline []DatePoint `json:"timeline" yaml:"timeline"`
}
