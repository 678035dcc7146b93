// Package sink renders an analysis for people or machines.
package sink

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/okian/sentinela/internal/domain/model"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultGroupLabel names the grouping unit in text reports.
const DefaultGroupLabel = "Bairro"

// Sink writes one analysis.
type Sink interface {
	Render(ctx context.Context, a *model.Analysis) error
}

// Option configures a sink.
type Option func(*settings)

type settings struct {
	groupLabel string
}

// WithGroupLabel sets the singular noun for a group in text reports,
// e.g. "Cidade" when grouping by city.
func WithGroupLabel(label string) Option {
	return func(s *settings) {
		if label = strings.TrimSpace(label); label != "" {
			s.groupLabel = label
		}
	}
}

// New returns the sink for format writing to w.
func New(format string, w io.Writer, opts ...Option) (Sink, error) {
	s := settings{groupLabel: DefaultGroupLabel}
	for _, opt := range opts {
		opt(&s)
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatText, "":
		return newTextSink(w, s), nil
	case FormatJSON:
		return &jsonSink{w: w}, nil
	case FormatYAML:
		return &yamlSink{w: w}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
