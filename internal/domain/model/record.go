// Package model contains the value types passed between pipeline stages.
//
// Every stage consumes its input and returns a new value; nothing here is
// mutated after construction.
package model

// Unknown marks an optional record field that was absent.
const Unknown = "N/A"

// RawRecord is one decoded exam document. Its shape is not trusted: the
// validator resolves the fields it needs by path.
type RawRecord = map[string]any

// Observation is a validated exam: a positive RDW value bound to a group.
type Observation struct {
	RDWPercent     float64 `json:"rdw_percent" yaml:"rdw_percent"`
	GroupKey       string  `json:"group_key" yaml:"group_key"`
	PatientID      string  `json:"patient_id" yaml:"patient_id"`
	CollectionDate string  `json:"collection_date" yaml:"collection_date"`
	// Age in whole years; meaningful only when AgeKnown.
	Age      int  `json:"age,omitempty" yaml:"age,omitempty"`
	AgeKnown bool `json:"age_known,omitempty" yaml:"age_known,omitempty"`
	// Sex is "Masculino", "Feminino", another recorded value, or Unknown.
	Sex string `json:"sex,omitempty" yaml:"sex,omitempty"`
	// Origin locates the record in its source, e.g. "exam-001.json[2]".
	Origin string `json:"origin,omitempty" yaml:"origin,omitempty"`
}
