package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/poolgraph/graphio"
)

var (
	exportOutput    string
	exportMutations bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Build a random graph and write it to a stream file",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		out := cmd.OutOrStdout()
		codec, err := graphio.ParseCodec(cfg.IO.Codec)
		if err != nil {
			return err
		}

		b, err := newBench(cfg)
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, b.close(out)) }()

		mutations := 0
		if exportMutations {
			mutations = cfg.Workload.Mutations
		}
		if err := b.build(cmd.Context(), out, cfg, mutations); err != nil {
			return err
		}

		f, err := os.Create(exportOutput)
		if err != nil {
			return err
		}
		defer func() { err = errors.Join(err, f.Close()) }()

		bw := bufio.NewWriter(f)
		start := time.Now()
		if err := b.g.Export(cmd.Context(), bw, graphio.WithCodec(codec)); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}

		st := b.metrics.GetStats()
		fmt.Fprintf(out, "%-9s %10s  %s  codec %s  -> %s\n",
			"export", time.Since(start).Round(time.Microsecond), formatBytes(st.ExportBytes), codec, exportOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "graph.pgrf", "Output stream file")
	exportCmd.Flags().BoolVar(&exportMutations, "mutate", false, "Apply the mutation workload before exporting")
}
