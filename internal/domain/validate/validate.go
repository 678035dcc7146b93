// Package validate turns untyped exam records into observations.
//
// Validation never fails with a Go error: every record yields a Result that
// carries either an Observation or a Rejection.
package validate

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/okian/sentinela/internal/domain/model"
)

// Reference record layout.
const (
	DefaultRDWPath           = "resultados_hemograma.rdw_cv_percent"
	DefaultGroupPath         = "dados_demograficos.localidade.bairro"
	DefaultPatientIDKey      = "id_paciente"
	DefaultCollectionDateKey = "data_coleta"
	DefaultAgePath           = "dados_demograficos.idade"
	DefaultSexPath           = "dados_demograficos.sexo"
)

// maxAge bounds plausible ages; anything outside [0, maxAge) is unknown.
const maxAge = 150

// Normalised sex values.
const (
	SexMale   = "Masculino"
	SexFemale = "Feminino"
)

// Schema tells the validator where each field lives.
type Schema struct {
	// RDWPath leads to the numeric RDW-CV value.
	RDWPath []string
	// GroupPath leads to the string grouping key.
	GroupPath []string
	// Optional top-level keys.
	PatientIDKey      string
	CollectionDateKey string
	// Optional demographic paths; empty disables the attribute.
	AgePath []string
	SexPath []string
}

// DefaultSchema returns the reference layout, grouping by neighborhood.
func DefaultSchema() Schema {
	return Schema{
		RDWPath:           ParsePath(DefaultRDWPath),
		GroupPath:         ParsePath(DefaultGroupPath),
		PatientIDKey:      DefaultPatientIDKey,
		CollectionDateKey: DefaultCollectionDateKey,
		AgePath:           ParsePath(DefaultAgePath),
		SexPath:           ParsePath(DefaultSexPath),
	}
}

// ParsePath splits a dot-separated path, dropping blank segments.
func ParsePath(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ".") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Result is the tagged outcome of validating one record.
type Result struct {
	Observation model.Observation
	Rejection   *Rejection
}

// OK reports whether the record produced an observation.
func (r Result) OK() bool { return r.Rejection == nil }

// Err returns the rejection as an error, or nil.
func (r Result) Err() error {
	if r.Rejection == nil {
		return nil
	}
	return r.Rejection
}

func reject(reason Reason, field string, value any) Result {
	return Result{Rejection: &Rejection{Reason: reason, Field: field, Value: value}}
}

// Validate extracts an Observation from raw according to schema.
//
// Both required fields are resolved before either is checked, so a record
// missing its group key is reported as MissingField even when its RDW value
// is also bad.
func Validate(raw model.RawRecord, schema Schema) Result {
	rdwRaw, rej := lookup(raw, schema.RDWPath)
	if rej != nil {
		return Result{Rejection: rej}
	}
	groupRaw, rej := lookup(raw, schema.GroupPath)
	if rej != nil {
		return Result{Rejection: rej}
	}

	rdwField := strings.Join(schema.RDWPath, ".")
	rdw, ok := toFloat(rdwRaw)
	if !ok {
		return reject(WrongType, rdwField, rdwRaw)
	}
	if math.IsNaN(rdw) || math.IsInf(rdw, 0) || rdw <= 0 {
		return reject(OutOfRange, rdwField, rdwRaw)
	}

	groupField := strings.Join(schema.GroupPath, ".")
	group, ok := groupRaw.(string)
	if !ok {
		return reject(WrongType, groupField, groupRaw)
	}
	group = strings.TrimSpace(group)
	if group == "" {
		return reject(EmptyValue, groupField, groupRaw)
	}

	age, ageKnown := optionalAge(raw, schema.AgePath)
	return Result{Observation: model.Observation{
		RDWPercent:     rdw,
		GroupKey:       group,
		PatientID:      optionalText(raw, schema.PatientIDKey),
		CollectionDate: optionalText(raw, schema.CollectionDateKey),
		Age:            age,
		AgeKnown:       ageKnown,
		Sex:            optionalSex(raw, schema.SexPath),
	}}
}

// lookup walks path through nested objects. Absent keys and JSON nulls are
// MissingField; a non-object on the way is WrongType.
func lookup(raw model.RawRecord, path []string) (any, *Rejection) {
	full := strings.Join(path, ".")
	if len(path) == 0 || raw == nil {
		return nil, &Rejection{Reason: MissingField, Field: full}
	}

	var cur any = raw
	for i, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, &Rejection{Reason: WrongType, Field: strings.Join(path[:i], "."), Value: cur}
		}
		v, ok := m[key]
		if !ok || v == nil {
			return nil, &Rejection{Reason: MissingField, Field: full}
		}
		cur = v
	}
	return cur, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			// Overflow is still a number; the range check rejects it.
			var ne *strconv.NumError
			if errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange) {
				return f, true
			}
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// optionalText copies scalar values in their textual form; anything else
// becomes model.Unknown.
func optionalText(raw model.RawRecord, key string) string {
	if key == "" {
		return model.Unknown
	}
	switch v := raw[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return model.Unknown
	}
}

// optionalAge reads a numeric age in whole years. Missing, non-numeric and
// implausible values are unknown.
func optionalAge(raw model.RawRecord, path []string) (int, bool) {
	if len(path) == 0 {
		return 0, false
	}
	v, rej := lookup(raw, path)
	if rej != nil {
		return 0, false
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || f < 0 || f >= maxAge {
		return 0, false
	}
	return int(f), true
}

// optionalSex normalises M/F codes and their Portuguese names; other
// non-blank strings are kept trimmed.
func optionalSex(raw model.RawRecord, path []string) string {
	if len(path) == 0 {
		return model.Unknown
	}
	v, rej := lookup(raw, path)
	if rej != nil {
		return model.Unknown
	}
	s, ok := v.(string)
	if !ok {
		return model.Unknown
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "":
		return model.Unknown
	case "m", "masculino":
		return SexMale
	case "f", "feminino":
		return SexFemale
	default:
		return s
	}
}
