package testrecords

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/okian/sentinela/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// area is a neighborhood with its share of elevated and high exams.
type area struct {
	city, neighborhood string
	elevated, high     float64
}

// Most areas follow the population baseline (20% elevated, 10% high); a few
// carry a heavier burden so generated data always produces alerts.
var areas = []area{
	{"Goiânia", "Jardim América", 0.20, 0.10},
	{"Goiânia", "Setor Central", 0.20, 0.10},
	{"Goiânia", "Vila Nova", 0.35, 0.25},
	{"Goiânia", "Setor Bueno", 0.10, 0.05},
	{"Anápolis", "Centro", 0.20, 0.10},
	{"Anápolis", "Vila Gothardo", 0.30, 0.30},
	{"Aparecida de Goiânia", "Vila Brasília", 0.20, 0.10},
	{"Rio Verde", "Jardim Planaltina", 0.15, 0.05},
	{"Luziânia", "Vila São José", 0.35, 0.20},
	{"Trindade", "Vila Rica", 0.20, 0.10},
	{"Formosa", "Vila Boa Vista", 0.20, 0.10},
	{"Caldas Novas", "Vila Romana", 0.10, 0.05},
}

const (
	normalMin, normalSpan     = 11.5, 3.0
	elevatedMin, elevatedSpan = 14.5, 1.5
	highMin, highSpan         = 16.0, 2.0
	elderlyAge                = 65
)

var (
	firstCollection = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lastCollection  = time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC)
)

// Generate writes cfg.Count exams to cfg.Dir. Records are built sequentially
// from the seed, then written in parallel.
func Generate(ctx context.Context, cfg Config) (Summary, error) {
	if err := cfg.normalize(); err != nil {
		return Summary{}, err
	}
	log := cfg.Logger

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create %s: %w", cfg.Dir, err)
	}

	rng := rand.New(rand.NewSource(cfg.Seed)) //nolint:gosec // reproducible test data
	exams := make([]Exam, cfg.Count)
	invalid := 0
	for i := range exams {
		exams[i] = newExam(rng)
		if rng.Float64() < cfg.InvalidRatio {
			breakExam(rng, &exams[i])
			invalid++
		}
	}

	files := chunk(exams, cfg.PerFile)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i, batch := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name := filepath.Join(cfg.Dir, fmt.Sprintf("exam-%06d.json", i+1))
			var doc any = batch
			if cfg.PerFile == 1 {
				doc = batch[0]
			}
			return writeJSON(name, doc)
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	s := Summary{Files: len(files), Records: len(exams), Invalid: invalid}
	log.Info(ctx, "generated exam records",
		logger.String("dir", cfg.Dir),
		logger.Int("files", s.Files),
		logger.Int("records", s.Records),
		logger.Int("invalid", s.Invalid),
	)
	return s, nil
}

func (c *Config) normalize() error {
	switch {
	case c.Dir == "":
		return fmt.Errorf("%w: dir must not be empty", ErrInvalidConfig)
	case c.Count <= 0:
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidConfig, c.Count)
	case c.InvalidRatio < 0 || c.InvalidRatio > 1 || math.IsNaN(c.InvalidRatio):
		return fmt.Errorf("%w: invalid ratio must be within [0, 1], got %v", ErrInvalidConfig, c.InvalidRatio)
	}
	if c.PerFile < 1 {
		c.PerFile = 1
	}
	if c.Workers < 1 {
		c.Workers = 4
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	return nil
}

func newExam(rng *rand.Rand) Exam {
	a := areas[rng.Intn(len(areas))]
	age := rng.Intn(90)

	var rdw float64
	switch r := rng.Float64(); {
	case r < a.high:
		rdw = highMin + rng.Float64()*highSpan
	case r < a.high+a.elevated:
		rdw = elevatedMin + rng.Float64()*elevatedSpan
	default:
		rdw = normalMin + rng.Float64()*normalSpan
	}
	if age > elderlyAge {
		rdw += rng.Float64() * 0.5
	}

	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		id = uuid.New()
	}
	days := int(lastCollection.Sub(firstCollection).Hours() / 24)
	sex := "M"
	if rng.Float64() > 0.48 {
		sex = "F"
	}

	return Exam{
		PatientID:      id.String(),
		CollectionDate: firstCollection.AddDate(0, 0, rng.Intn(days+1)).Format(time.DateOnly),
		Demographics: Demographics{
			Age:      age,
			Sex:      sex,
			Locality: Locality{Neighborhood: a.neighborhood, City: a.city},
		},
		BloodCount: BloodCount{
			Hemoglobin: round1(12 + rng.Float64()*4),
			Hematocrit: round1(35 + rng.Float64()*15),
			MCV:        round1(80 + rng.Float64()*20),
			RDW:        round1(rdw),
		},
	}
}

// breakExam makes the record fail validation in one of the ways seen in
// real exports.
func breakExam(rng *rand.Rand, e *Exam) {
	switch rng.Intn(4) {
	case 0:
		e.Demographics.Locality.Neighborhood = nil
	case 1:
		e.BloodCount.RDW = -round1(1 + rng.Float64()*10)
	case 2:
		e.BloodCount.RDW = fmt.Sprintf("%.1f", 11.5+rng.Float64()*5)
	default:
		e.Demographics.Locality.Neighborhood = "   "
	}
}

func chunk(exams []Exam, size int) [][]Exam {
	out := make([][]Exam, 0, (len(exams)+size-1)/size)
	for start := 0; start < len(exams); start += size {
		out = append(out, exams[start:min(start+size, len(exams))])
	}
	return out
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
