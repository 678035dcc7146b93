// Package testrecords writes synthetic exam files for demos and tests.
package testrecords

import (
	"errors"

	"github.com/okian/sentinela/pkg/logger"
)

// ErrInvalidConfig is returned by Generate for unusable settings.
var ErrInvalidConfig = errors.New("invalid generator config")

// Config controls a generation run.
type Config struct {
	// Dir receives the files; it is created if missing.
	Dir string
	// Count is the number of exam records to generate.
	Count int
	// PerFile groups records into JSON arrays; 1 writes one object per file.
	PerFile int
	// Seed makes the output reproducible.
	Seed int64
	// InvalidRatio is the fraction of records deliberately broken, in [0, 1].
	InvalidRatio float64
	// Workers bounds concurrent file writes.
	Workers int
	Logger  logger.Logger
}

// Summary reports what was written.
type Summary struct {
	Files   int `json:"files"`
	Records int `json:"records"`
	Invalid int `json:"invalid"`
}

// Exam mirrors the reference record layout.
type Exam struct {
	PatientID      string       `json:"id_paciente"`
	CollectionDate string       `json:"data_coleta"`
	Demographics   Demographics `json:"dados_demograficos"`
	BloodCount     BloodCount   `json:"resultados_hemograma"`
}

// Demographics holds the patient's age, sex and locality.
type Demographics struct {
	Age      int      `json:"idade"`
	Sex      string   `json:"sexo"`
	Locality Locality `json:"localidade"`
}

// Locality is where the patient lives. Neighborhood is any so broken
// records can omit it.
type Locality struct {
	Neighborhood any    `json:"bairro,omitempty"`
	City         string `json:"cidade"`
}

// BloodCount carries the hemogram results. RDW is any so broken records can
// hold the wrong type.
type BloodCount struct {
	Hemoglobin float64 `json:"hemoglobina_g_dl"`
	Hematocrit float64 `json:"hematocrito_percent"`
	MCV        float64 `json:"vcm_fl"`
	RDW        any     `json:"rdw_cv_percent"`
}
