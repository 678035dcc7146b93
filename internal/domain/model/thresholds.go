package model

import (
	"errors"
	"fmt"
	"math"
)

// Reference thresholds, RDW-CV in percent.
const (
	DefaultCriticalRDW        = 14.5
	DefaultGroupMeanAlert     = 14.0
	DefaultElevatedShareAlert = 25.0
	DefaultHighRDW            = 16.0
)

// ErrInvalidThresholds is returned by Thresholds.Validate.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// Thresholds drive aggregation and classification. It is passed explicitly
// to each stage so a run can override any value.
type Thresholds struct {
	// CriticalRDW is the upper bound of a normal exam; exams above it are elevated.
	CriticalRDW float64 `json:"critical_rdw" yaml:"critical_rdw"`
	// GroupMeanAlert is the mean RDW a group must exceed to be an alert.
	GroupMeanAlert float64 `json:"group_mean_alert" yaml:"group_mean_alert"`
	// ElevatedShareAlert is the percent of elevated exams a group must exceed.
	ElevatedShareAlert float64 `json:"elevated_share_alert" yaml:"elevated_share_alert"`
	// HighRDW separates the elevated and high group status bands.
	HighRDW float64 `json:"high_rdw" yaml:"high_rdw"`
}

// DefaultThresholds returns the reference configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalRDW:        DefaultCriticalRDW,
		GroupMeanAlert:     DefaultGroupMeanAlert,
		ElevatedShareAlert: DefaultElevatedShareAlert,
		HighRDW:            DefaultHighRDW,
	}
}

// Validate requires every threshold to be finite and positive.
func (t Thresholds) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"critical_rdw", t.CriticalRDW},
		{"group_mean_alert", t.GroupMeanAlert},
		{"elevated_share_alert", t.ElevatedShareAlert},
		{"high_rdw", t.HighRDW},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v <= 0 {
			return fmt.Errorf("%w: %s must be a positive number, got %v", ErrInvalidThresholds, f.name, f.v)
		}
	}
	if t.HighRDW < t.CriticalRDW {
		return fmt.Errorf("%w: high_rdw (%v) below critical_rdw (%v)", ErrInvalidThresholds, t.HighRDW, t.CriticalRDW)
	}
	return nil
}

// StatusFor bands a group mean: normal up to CriticalRDW, elevated up to
// HighRDW, high above.
func (t Thresholds) StatusFor(meanRDW float64) Status {
	switch {
	case meanRDW <= t.CriticalRDW:
		return StatusNormal
	case meanRDW <= t.HighRDW:
		return StatusElevated
	default:
		return StatusHigh
	}
}
