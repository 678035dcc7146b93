// Package cli holds the sentinela command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/okian/sentinela/internal/config"
	"github.com/okian/sentinela/pkg/logger"
	"github.com/okian/sentinela/pkg/metrics"
	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// env is shared by every subcommand of one root command.
type env struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	logLevel   string

	cfg *config.Config
	log logger.Logger
}

// NewRootCmd builds the command tree. Reports go to out; logs and
// diagnostics go to errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	e := &env{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "sentinela",
		Short: "Sentinela RDW - nutritional surveillance from blood counts",
		Long: `Sentinela RDW reads hemogram exam records, groups them by locality and
flags areas whose red-cell distribution width (RDW) suggests nutritional risk.

Configuration is layered: defaults, then a YAML file (--config or
SENTINELA_CONFIG), then SENTINELA_* environment variables, then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd.Context())
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&e.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newAnalyzeCmd(e),
		newServeCmd(e),
		newGenerateCmd(e),
		newVersionCmd(e),
	)
	return root
}

func (e *env) setup(ctx context.Context) error {
	cfg, err := config.Load(ctx, e.configPath)
	if err != nil {
		return err
	}
	if e.logLevel != "" {
		cfg.LogLevel = e.logLevel
	}

	if err := logger.Init(logger.WithWriter(e.errOut), logger.WithJSON(cfg.LogFormat == "json")); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	e.log = logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		e.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	metrics.Configure(cfg.MetricsOptions()...)

	e.cfg = cfg
	return nil
}

// Execute runs the command tree against the process streams and prints any
// error to stderr. A non-nil return means the process should exit with 1.
func Execute(ctx context.Context) error {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Version must work without a valid config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(e.out, "sentinela %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
		},
	}
}
