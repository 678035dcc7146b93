package service

import (
	"time"

	"github.com/okian/sentinela/internal/domain/aggregate"
	"github.com/okian/sentinela/internal/domain/dedupe"
	"github.com/okian/sentinela/internal/domain/model"
	"github.com/okian/sentinela/internal/domain/validate"
	"github.com/okian/sentinela/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets where records are loaded from.
func WithSource(src Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithThresholds overrides the reference thresholds.
func WithThresholds(t model.Thresholds) Option {
	return func(s *Service) {
		s.thresholds = t
	}
}

// WithSchema overrides the record field layout.
func WithSchema(schema validate.Schema) Option {
	return func(s *Service) {
		s.schema = schema
	}
}

// WithDeduper enables duplicate-exam filtering. newDeduper is called once
// per run so repeated runs over the same files do not see each other.
func WithDeduper(newDeduper func() dedupe.Deduper) Option {
	return func(s *Service) {
		s.newDeduper = newDeduper
	}
}

// WithBinSpec sets the histogram layout of the RDW distribution.
func WithBinSpec(spec aggregate.BinSpec) Option {
	return func(s *Service) {
		s.bins = spec
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source used to stamp analyses.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
