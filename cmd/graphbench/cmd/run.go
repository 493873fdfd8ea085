package cmd

import (
	"errors"

	"github.com/spf13/cobra"
)

var runJSON bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build a random graph, mutate it and check its invariants",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		out := cmd.OutOrStdout()
		b, err := newBench(cfg)
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, b.close(out)) }()

		if err := b.build(cmd.Context(), out, cfg, cfg.Workload.Mutations); err != nil {
			return err
		}
		if err := b.reach(out); err != nil {
			return err
		}
		if runJSON {
			return b.writeReport(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("mutations", 0, "Number of random mutations after the build")
	_ = v.BindPFlag("workload.mutations", runCmd.Flags().Lookup("mutations"))
	runCmd.Flags().Bool("validate", true, "Check adjacency invariants after the workload")
	_ = v.BindPFlag("workload.validate", runCmd.Flags().Lookup("validate"))
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print a JSON report of arena and event statistics")
}
