// Package service runs the RDW surveillance pipeline: load, validate,
// aggregate, classify and assemble.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/sentinela/internal/adapters/source"
	"github.com/okian/sentinela/internal/domain/aggregate"
	"github.com/okian/sentinela/internal/domain/classify"
	"github.com/okian/sentinela/internal/domain/dedupe"
	"github.com/okian/sentinela/internal/domain/model"
	"github.com/okian/sentinela/internal/domain/report"
	"github.com/okian/sentinela/internal/domain/validate"
	"github.com/okian/sentinela/pkg/logger"
	"github.com/okian/sentinela/pkg/metrics"
)

// Source delivers raw records for one run.
type Source interface {
	Load(ctx context.Context) (source.Batch, error)
	Location() string
}

// Service wires the pipeline stages together. The stages are pure; the
// service adds loading, logging and metrics around them.
type Service struct {
	source     Source
	thresholds model.Thresholds
	schema     validate.Schema
	bins       aggregate.BinSpec
	newDeduper func() dedupe.Deduper

	now    func() time.Time
	logger logger.Logger
}

// New constructs a Service with the reference thresholds and record layout.
func New(opts ...Option) *Service {
	s := &Service{
		thresholds: model.DefaultThresholds(),
		schema:     validate.DefaultSchema(),
		bins:       aggregate.DefaultBinSpec(),
		now:        time.Now,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Thresholds returns the thresholds the service classifies with.
func (s *Service) Thresholds() model.Thresholds { return s.thresholds }

// Run executes one full pass over the source.
func (s *Service) Run(ctx context.Context) (a *model.Analysis, err error) {
	runID := uuid.NewString()
	log := s.logger.Named("run")
	defer func() {
		metrics.RecordRun(outcomeOf(err))
	}()

	if s.source == nil {
		return nil, ErrNoSource
	}
	if err := s.thresholds.Validate(); err != nil {
		return nil, err
	}

	log.Info(ctx, "analysis started",
		logger.String("run_id", runID),
		logger.String("source", s.source.Location()),
	)

	start := time.Now()
	batch, err := s.source.Load(ctx)
	observeStage(metrics.StageLoad, start)
	if err != nil {
		log.Error(ctx, "loading records failed", logger.String("run_id", runID), logger.Error(err))
		return nil, fmt.Errorf("load records: %w", err)
	}
	metrics.RecordRecordsLoaded(len(batch.Records))

	start = time.Now()
	obs, stats, err := s.validate(ctx, log, batch)
	observeStage(metrics.StageValidate, start)
	if err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		log.Warn(ctx, "no valid records",
			logger.String("run_id", runID),
			logger.Int("loaded", stats.RecordsLoaded),
			logger.Int("rejected", stats.RecordsRejected),
		)
		return nil, fmt.Errorf("%w: %d loaded, %d rejected, %d duplicates",
			ErrNoValidRecords, stats.RecordsLoaded, stats.RecordsRejected, stats.Duplicates)
	}

	start = time.Now()
	summaries := aggregate.Aggregate(obs, s.thresholds)
	overview := aggregate.Overall(obs, s.thresholds)
	distribution := aggregate.Distribution(obs, s.bins)
	demographics := aggregate.Demographics(obs)
	timeline := aggregate.Timeline(obs)
	observeStage(metrics.StageAggregate, start)

	start = time.Now()
	alerts, normals := classify.Classify(summaries, s.thresholds)
	observeStage(metrics.StageClassify, start)

	start = time.Now()
	rep := report.Assemble(alerts, normals)
	observeStage(metrics.StageAssemble, start)

	metrics.UpdateGroupCounts(rep.TotalGroups, rep.TotalAlerts, rep.TotalExams, rep.AlertRatePercent)
	for _, g := range rep.Alerts {
		log.Warn(ctx, "nutritional alert",
			logger.String("run_id", runID),
			logger.String("group", g.GroupKey),
			logger.Float64("mean_rdw", g.MeanRDW),
			logger.Float64("elevated_percent", g.ElevatedPercent),
		)
	}
	log.Info(ctx, "analysis finished",
		logger.String("run_id", runID),
		logger.Int("groups", rep.TotalGroups),
		logger.Int("alerts", rep.TotalAlerts),
		logger.Int("exams", rep.TotalExams),
		logger.Float64("mean_rdw", overview.MeanRDW),
	)

	return &model.Analysis{
		RunID:        runID,
		GeneratedAt:  s.now().UTC(),
		Source:       s.source.Location(),
		Thresholds:   s.thresholds,
		Ingest:       stats,
		Report:       rep,
		Overview:     overview,
		Distribution: distribution,
		Demographics: demographics,
		Timeline:     timeline,
	}, nil
}

func (s *Service) validate(ctx context.Context, log logger.Logger, batch source.Batch) ([]model.Observation, model.IngestStats, error) {
	stats := model.IngestStats{
		Files:              batch.Files,
		FilesFailed:        batch.FilesFailed,
		RecordsLoaded:      len(batch.Records),
		RejectionsByReason: make(map[string]int),
	}

	var seen dedupe.Deduper
	if s.newDeduper != nil {
		seen = s.newDeduper()
	}

	obs := make([]model.Observation, 0, len(batch.Records))
	for _, rec := range batch.Records {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		res := validate.Validate(rec.Raw, s.schema)
		if !res.OK() {
			reason := res.Rejection.Reason.String()
			stats.RecordsRejected++
			stats.RejectionsByReason[reason]++
			metrics.RecordRecordRejected(reason)
			log.Warn(ctx, "record rejected",
				logger.String("origin", rec.Origin),
				logger.String("reason", reason),
				logger.String("field", res.Rejection.Field),
			)
			continue
		}

		o := res.Observation
		o.Origin = rec.Origin
		if seen != nil {
			if key, ok := dedupe.ExamKey(o.PatientID, o.CollectionDate); ok && seen.SeenAndRecord(ctx, key) {
				stats.Duplicates++
				metrics.RecordDuplicate()
				log.Debug(ctx, "duplicate exam skipped", logger.String("origin", o.Origin), logger.String("key", key))
				continue
			}
		}

		stats.RecordsAccepted++
		metrics.RecordRecordAccepted()
		obs = append(obs, o)
	}
	return obs, stats, nil
}

func observeStage(stage string, start time.Time) {
	metrics.RecordStageDuration(stage, float64(time.Since(start).Microseconds())/1000)
}
