package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	poolgraph "github.com/hupe1980/poolgraph"
	"github.com/hupe1980/poolgraph/graphio"
)

// Config holds all configuration for graphbench.
type Config struct {
	Graph    GraphConfig    `mapstructure:"graph"`
	Workload WorkloadConfig `mapstructure:"workload"`
	IO       IOConfig       `mapstructure:"io"`
	Log      LogConfig      `mapstructure:"log"`
}

// GraphConfig holds the layout and memory options of the graph under test.
type GraphConfig struct {
	ChunkSlots     int   `mapstructure:"chunk_slots"`
	OffHeap        bool  `mapstructure:"off_heap"`
	MemoryLimit    int64 `mapstructure:"memory_limit"` // bytes, 0 = unlimited
	VertexIDs      bool  `mapstructure:"vertex_ids"`
	EdgeIndex      bool  `mapstructure:"edge_index"`
	VertexDataSize int   `mapstructure:"vertex_data_size"`
	EdgeDataSize   int   `mapstructure:"edge_data_size"`
}

// WorkloadConfig describes the random graph and mutation mix.
type WorkloadConfig struct {
	Seed      int64   `mapstructure:"seed"`
	Vertices  int     `mapstructure:"vertices"`
	Edges     int     `mapstructure:"edges"`
	Skew      float64 `mapstructure:"skew"` // Zipf exponent of edge sources
	Mutations int     `mapstructure:"mutations"`
	Validate  bool    `mapstructure:"validate"`
}

// IOConfig holds export/import settings.
type IOConfig struct {
	Codec   string `mapstructure:"codec"`    // none, lz4 or zstd
	IOLimit int64  `mapstructure:"io_limit"` // bytes per second, 0 = unlimited
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// LoadConfig reads configuration from path, or from graphbench.yaml in the
// working directory when path is empty. GRAPHBENCH_* environment variables
// override file values, e.g. GRAPHBENCH_WORKLOAD_VERTICES.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("graphbench")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("graphbench")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return unmarshal(v)
}

// LoadConfigFromReader loads configuration from content (useful for testing).
func LoadConfigFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("graph.chunk_slots", 4096)
	v.SetDefault("graph.off_heap", false)
	v.SetDefault("graph.memory_limit", 0)
	v.SetDefault("graph.vertex_ids", true)
	v.SetDefault("graph.edge_index", false)
	v.SetDefault("graph.vertex_data_size", 0)
	v.SetDefault("graph.edge_data_size", 0)

	v.SetDefault("workload.seed", 4711)
	v.SetDefault("workload.vertices", 100_000)
	v.SetDefault("workload.edges", 500_000)
	v.SetDefault("workload.skew", 1.1)
	v.SetDefault("workload.mutations", 100_000)
	v.SetDefault("workload.validate", true)

	v.SetDefault("io.codec", "zstd")
	v.SetDefault("io.io_limit", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Workload.Vertices < 0 || c.Workload.Edges < 0 || c.Workload.Mutations < 0 {
		return fmt.Errorf("workload sizes must not be negative")
	}
	if c.Workload.Skew < 0 {
		return fmt.Errorf("skew must not be negative")
	}
	if c.Graph.VertexDataSize < 0 || c.Graph.EdgeDataSize < 0 {
		return fmt.Errorf("data sizes must not be negative")
	}
	if _, err := graphio.ParseCodec(c.IO.Codec); err != nil {
		return err
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("unsupported log format: %s", c.Log.Format)
	}
	return nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}

// Logger builds the structured logger described by l.
func (l LogConfig) Logger() *poolgraph.Logger {
	level, _ := l.level()
	if l.Format == "json" {
		return poolgraph.NewJSONLogger(level)
	}
	return poolgraph.NewTextLogger(level)
}

// Options translates the graph section into poolgraph options.
func (c *Config) Options(logger *poolgraph.Logger, mc poolgraph.MetricsCollector) []poolgraph.Option {
	opts := []poolgraph.Option{
		poolgraph.WithLogger(logger),
		poolgraph.WithMetricsCollector(mc),
		poolgraph.WithChunkSlots(c.Graph.ChunkSlots),
		poolgraph.WithMemoryLimit(c.Graph.MemoryLimit),
		poolgraph.WithIOLimit(c.IO.IOLimit),
		poolgraph.WithVertexDataSize(c.Graph.VertexDataSize),
		poolgraph.WithEdgeDataSize(c.Graph.EdgeDataSize),
	}
	if c.Graph.OffHeap {
		opts = append(opts, poolgraph.WithOffHeap())
	}
	if c.Graph.VertexIDs {
		opts = append(opts, poolgraph.WithVertexIDs())
	}
	if c.Graph.EdgeIndex {
		opts = append(opts, poolgraph.WithEdgeIndex())
	}
	return opts
}
