// Package source loads raw exam records from the filesystem.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/okian/sentinela/internal/domain/model"
	"github.com/okian/sentinela/pkg/logger"
	"github.com/okian/sentinela/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Record is one raw exam plus where it came from.
type Record struct {
	Raw model.RawRecord
	// Origin is "file.json" for single-object files and "file.json[i]" for
	// elements of an array file.
	Origin string
}

// Failure describes a file, or an element of one, that could not be used.
type Failure struct {
	Origin string
	Err    error
}

// Batch is the outcome of one load.
type Batch struct {
	Files       int
	FilesFailed int
	Records     []Record
	Failures    []Failure
}

// DirSource reads every file matching a pattern in one directory.
type DirSource struct {
	dir     string
	pattern string
	workers int
	log     logger.Logger
}

// NewDirSource creates a source over dir.
func NewDirSource(dir string, opts ...Option) *DirSource {
	s := &DirSource{
		dir:     dir,
		pattern: DefaultPattern,
		workers: defaultWorkers(),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the directory being read.
func (s *DirSource) Location() string { return s.dir }

type fileResult struct {
	failed   bool
	records  []Record
	failures []Failure
}

// Load decodes all matching files concurrently. Records come back ordered by
// file name, then by position inside the file.
func (s *DirSource) Load(ctx context.Context) (Batch, error) {
	files, err := s.list()
	if err != nil {
		return Batch{}, err
	}

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, path := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = s.readFile(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, err
	}
	if err := ctx.Err(); err != nil {
		return Batch{}, err
	}

	b := Batch{Files: len(files)}
	for _, r := range results {
		if r.failed {
			b.FilesFailed++
		}
		b.Records = append(b.Records, r.records...)
		b.Failures = append(b.Failures, r.failures...)
	}
	return b, nil
}

func (s *DirSource) list() ([]string, error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, s.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceUnavailable, s.dir)
	}

	matches, err := filepath.Glob(filepath.Join(s.dir, s.pattern))
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %w", ErrSourceUnavailable, s.pattern, err)
	}

	files := matches[:0]
	for _, m := range matches {
		if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", ErrNoRecordsFound, s.pattern, s.dir)
	}
	return files, nil
}

func (s *DirSource) readFile(ctx context.Context, path string) fileResult {
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return s.fail(ctx, name, err)
	}
	doc, err := decode(data)
	if err != nil {
		return s.fail(ctx, name, fmt.Errorf("%w: %w", ErrMalformedFile, err))
	}

	var res fileResult
	switch v := doc.(type) {
	case map[string]any:
		res.records = []Record{{Raw: v, Origin: name}}
	case []any:
		for i, el := range v {
			origin := fmt.Sprintf("%s[%d]", name, i)
			obj, ok := el.(map[string]any)
			if !ok {
				s.log.Warn(ctx, "skipping non-object element", logger.String("origin", origin))
				res.failures = append(res.failures, Failure{Origin: origin, Err: ErrNotAnObject})
				continue
			}
			res.records = append(res.records, Record{Raw: obj, Origin: origin})
		}
	default:
		return s.fail(ctx, name, ErrNotAnObject)
	}

	metrics.RecordFileLoaded()
	return res
}

func (s *DirSource) fail(ctx context.Context, name string, err error) fileResult {
	s.log.Warn(ctx, "skipping record file", logger.String("file", name), logger.Error(err))
	metrics.RecordFileFailed()
	return fileResult{failed: true, failures: []Failure{{Origin: name, Err: err}}}
}

// decode parses exactly one JSON value, keeping numbers as json.Number.
func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return doc, nil
}
