package source

import (
	"runtime"

	"github.com/okian/sentinela/pkg/logger"
)

// DefaultPattern selects record files inside the source directory.
const DefaultPattern = "*.json"

// Option configures a DirSource.
type Option func(*DirSource)

// WithWorkers bounds how many files are decoded at once. Values below 1 are
// ignored.
func WithWorkers(n int) Option {
	return func(s *DirSource) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithPattern sets the glob used to select files. Matching is not recursive.
func WithPattern(pattern string) Option {
	return func(s *DirSource) {
		if pattern != "" {
			s.pattern = pattern
		}
	}
}

// WithLogger sets the logger used for per-file problems.
func WithLogger(l logger.Logger) Option {
	return func(s *DirSource) {
		if l != nil {
			s.log = l
		}
	}
}

func defaultWorkers() int {
	return runtime.NumCPU()
}
