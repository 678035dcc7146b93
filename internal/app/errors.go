package service

import (
	"context"
	"errors"

	"github.com/okian/sentinela/internal/adapters/source"
	"github.com/okian/sentinela/pkg/metrics"
)

// ErrNoValidRecords is returned when no record survives validation.
var ErrNoValidRecords = errors.New("no valid records to analyze")

// ErrNoSource is returned by Run when the service was built without a source.
var ErrNoSource = errors.New("no record source configured")

// IsNoData reports whether err is a terminal no-data condition of a run,
// as opposed to an internal failure.
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoValidRecords) ||
		errors.Is(err, source.ErrNoRecordsFound) ||
		errors.Is(err, source.ErrSourceUnavailable)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	case IsNoData(err):
		return metrics.OutcomeNoData
	default:
		return metrics.OutcomeFailed
	}
}
