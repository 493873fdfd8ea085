package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var importInput string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a stream file, validate it and report its shape",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		out := cmd.OutOrStdout()
		f, err := os.Open(importInput)
		if err != nil {
			return err
		}
		defer f.Close()

		b, err := newBench(cfg)
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, b.close(out)) }()

		start := time.Now()
		res, err := b.g.Import(cmd.Context(), bufio.NewReader(f))
		if err != nil {
			return err
		}
		report(out, "import", time.Since(start), b.g)
		fmt.Fprintf(out, "  format v%d  codec %s  stable ids %t\n",
			res.Header.Version, res.Header.Codec, res.Header.StableIDs)

		if err := b.validate(cmd.Context(), out); err != nil {
			return err
		}
		return b.reach(out)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importInput, "input", "i", "graph.pgrf", "Input stream file")
}
