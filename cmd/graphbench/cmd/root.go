package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	v   = viper.New()
	cfg *Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "graphbench",
	Short: "Build, mutate and persist pooled graphs",
	Long: `graphbench drives a poolgraph graph through a synthetic workload.

It builds a random directed graph with a Zipf-skewed out-degree distribution,
applies a random mix of vertex and edge mutations, checks the adjacency
invariants and reports arena usage. Graphs can be exported to and imported
from compressed streams.

Configuration is read from graphbench.yaml (or --config) and can be
overridden with GRAPHBENCH_* environment variables and flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadConfig(v, cfgFile)
		if err != nil {
			return err
		}
		if verbose {
			c.Log.Level = "debug"
		}
		cfg = c
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Config file (default ./graphbench.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	flags.Int64("seed", 0, "Random seed")
	flags.Int("vertices", 0, "Number of vertices to create")
	flags.Int("edges", 0, "Number of edges to attempt")
	flags.Float64("skew", 0, "Zipf exponent of edge sources (0 = uniform)")
	flags.Int("chunk-slots", 0, "Slots per arena chunk")
	flags.Int64("memory-limit", 0, "Arena memory limit in bytes (0 = unlimited)")
	flags.String("codec", "", "Stream codec: none, lz4 or zstd")
	flags.String("log-format", "", "Log format: text or json")

	for key, name := range map[string]string{
		"workload.seed":      "seed",
		"workload.vertices":  "vertices",
		"workload.edges":     "edges",
		"workload.skew":      "skew",
		"graph.chunk_slots":  "chunk-slots",
		"graph.memory_limit": "memory-limit",
		"io.codec":           "codec",
		"log.format":         "log-format",
	} {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	binName := BinName()
	rootCmd.Example = `  # Build and mutate a one million vertex graph
  ` + binName + ` run --vertices 1000000 --edges 5000000

  # Export a generated graph with lz4
  ` + binName + ` export -o graph.pgrf --codec lz4

  # Import and validate an exported graph
  ` + binName + ` import -i graph.pgrf`
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}
