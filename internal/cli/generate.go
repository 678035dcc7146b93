package cli

import (
	"fmt"

	"github.com/okian/sentinela/internal/testrecords"
	"github.com/spf13/cobra"
)

func newGenerateCmd(e *env) *cobra.Command {
	var cfg testrecords.Config

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic exam records for demos and tests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Dir == "" {
				cfg.Dir = e.cfg.DataDir
			}
			if cfg.Workers == 0 {
				cfg.Workers = e.cfg.Workers
			}
			cfg.Logger = e.log.Named("generate")

			sum, err := testrecords.Generate(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "wrote %d records (%d invalid) in %d files to %s\n", sum.Records, sum.Invalid, sum.Files, cfg.Dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfg.Dir, "out", "o", "", "output directory (default: data_dir)")
	cmd.Flags().IntVarP(&cfg.Count, "count", "n", 100, "number of exam records")
	cmd.Flags().IntVar(&cfg.PerFile, "per-file", 1, "records per file; above 1 writes JSON arrays")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", 1, "random seed")
	cmd.Flags().Float64Var(&cfg.InvalidRatio, "invalid-ratio", 0.1, "fraction of deliberately invalid records")
	return cmd
}
