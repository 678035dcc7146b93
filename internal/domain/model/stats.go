package model

// Overview rolls up every accepted exam of a run, regardless of group.
type Overview struct {
	Exams  int `json:"exams" yaml:"exams"`
	Groups int `json:"groups" yaml:"groups"`
	// MeanRDW and ElevatedPercent are rounded to 2 decimals.
	MeanRDW         float64 `json:"mean_rdw" yaml:"mean_rdw"`
	ElevatedCount   int     `json:"elevated_count" yaml:"elevated_count"`
	ElevatedPercent float64 `json:"elevated_percent" yaml:"elevated_percent"`
}

// Band is the RDW roll-up of one demographic stratum.
type Band struct {
	Label   string  `json:"label" yaml:"label"`
	Count   int     `json:"count" yaml:"count"`
	MeanRDW float64 `json:"mean_rdw" yaml:"mean_rdw"`
}

// Demographics stratifies exams by age band and by sex. Exams without the
// attribute are only counted in the Unknown fields.
type Demographics struct {
	AgeBands   []Band `json:"age_bands" yaml:"age_bands"`
	Sex        []Band `json:"sex" yaml:"sex"`
	UnknownAge int    `json:"unknown_age" yaml:"unknown_age"`
	UnknownSex int    `json:"unknown_sex" yaml:"unknown_sex"`
}

// DatePoint is the mean RDW of the exams collected on one date.
type DatePoint struct {
	Date    string  `json:"date" yaml:"date"`
	Count   int     `json:"count" yaml:"count"`
	MeanRDW float64 `json:"mean_rdw" yaml:"mean_rdw"`
}
