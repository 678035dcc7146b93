package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/sentinela/internal/domain/model"
	"gopkg.in/yaml.v3"
)

type jsonSink struct {
	w io.Writer
}

func (s *jsonSink) Render(ctx context.Context, a *model.Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

type yamlSink struct {
	w io.Writer
}

func (s *yamlSink) Render(ctx context.Context, a *model.Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	enc := yaml.NewEncoder(s.w)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush yaml report: %w", err)
	}
	return nil
}
