package cli

import (
	"fmt"

	"github.com/okian/sentinela/internal/adapters/sink"
	"github.com/okian/sentinela/internal/adapters/source"
	service "github.com/okian/sentinela/internal/app"
	"github.com/okian/sentinela/internal/domain/dedupe"
	"github.com/okian/sentinela/pkg/logger"
	"github.com/okian/sentinela/pkg/metrics"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd(e *env) *cobra.Command {
	var (
		format      string
		workers     int
		dedupeExams bool
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "analyze [dir]",
		Short: "Analyze a directory of exam records and print the report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := e.cfg
			if len(args) == 1 {
				cfg.DataDir = args[0]
			}
			flags := cmd.Flags()
			if flags.Changed("format") {
				cfg.OutputFormat = format
			}
			if flags.Changed("workers") {
				cfg.Workers = workers
			}
			if flags.Changed("dedupe") {
				cfg.DedupeExams = dedupeExams
			}
			if flags.Changed("metrics-file") {
				cfg.MetricsFile = metricsFile
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			out, err := sink.New(cfg.OutputFormat, e.out, sink.WithGroupLabel(cfg.GroupLabel()))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, runErr := e.service().Run(ctx)

			if cfg.MetricsFile != "" {
				if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
					e.log.Error(ctx, "writing metrics textfile failed", logger.String("path", cfg.MetricsFile), logger.Error(err))
				}
			}

			if runErr != nil {
				if service.IsNoData(runErr) {
					fmt.Fprintln(e.errOut, "Nenhum dado válido encontrado. Verifique o diretório de dados:", cfg.DataDir)
				}
				return runErr
			}
			return out.Render(ctx, a)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text, json or yaml")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "files decoded concurrently")
	cmd.Flags().BoolVar(&dedupeExams, "dedupe", false, "count repeated (patient, date) exams once")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")
	return cmd
}

// service builds the pipeline from the loaded configuration.
func (e *env) service() *service.Service {
	cfg := e.cfg
	opts := []service.Option{
		service.WithLogger(e.log.Named("pipeline")),
		service.WithSource(source.NewDirSource(cfg.DataDir,
			source.WithWorkers(cfg.Workers),
			source.WithPattern(cfg.FilePattern),
			source.WithLogger(e.log.Named("source")),
		)),
		service.WithThresholds(cfg.Thresholds()),
		service.WithSchema(cfg.Schema()),
	}
	if cfg.DedupeExams {
		size := cfg.DedupeSize
		opts = append(opts, service.WithDeduper(func() dedupe.Deduper {
			return dedupe.New(dedupe.WithMaxSize(size))
		}))
	}
	return service.New(opts...)
}
