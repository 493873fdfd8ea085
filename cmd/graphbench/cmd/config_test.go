package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromReader(t *testing.T) {
	cfg, err := LoadConfigFromReader("yaml", []byte(`
graph:
  chunk_slots: 256
  edge_index: true
workload:
  vertices: 50
  edges: 200
  skew: 0.5
io:
  codec: lz4
log:
  format: json
`))
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Graph.ChunkSlots)
	assert.True(t, cfg.Graph.EdgeIndex)
	assert.True(t, cfg.Graph.VertexIDs, "default kept")
	assert.Equal(t, 50, cfg.Workload.Vertices)
	assert.InDelta(t, 0.5, cfg.Workload.Skew, 1e-9)
	assert.Equal(t, "lz4", cfg.IO.Codec)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, int64(4711), cfg.Workload.Seed)
}

func TestLoadConfig_Invalid(t *testing.T) {
	for name, content := range map[string]string{
		"codec":    "io:\n  codec: snappy\n",
		"level":    "log:\n  level: loud\n",
		"format":   "log:\n  format: xml\n",
		"vertices": "workload:\n  vertices: -1\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfigFromReader("yaml", []byte(content))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workload:\n  vertices: 10\n"), 0o600))
	t.Setenv("GRAPHBENCH_WORKLOAD_VERTICES", "30")

	cfg, err := LoadConfig(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Workload.Vertices)

	_, err = LoadConfig(viper.New(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestRunExportImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "g.pgrf")
	base := []string{"--vertices", "300", "--edges", "1200", "--chunk-slots", "64", "--codec", "zstd"}

	execute := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(append(args, base...))
		require.NoError(t, rootCmd.Execute())
		return out.String()
	}

	out := execute("run", "--mutations", "500")
	assert.Contains(t, out, "mutate")
	assert.Contains(t, out, "validate")
	assert.Contains(t, out, "bfs")

	out = execute("export", "-o", path)
	assert.Contains(t, out, "codec zstd")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	out = execute("import", "-i", path)
	assert.Contains(t, out, "vertices 300")
	assert.Contains(t, out, "stable ids true")
}

func TestRun_JSONReport(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"run", "--json", "--vertices", "40", "--edges", "80", "--mutations", "0"})
	require.NoError(t, rootCmd.Execute())
	runJSON = false

	s := out.String()
	assert.Contains(t, s, `"graph": {`)
	assert.Contains(t, s, `"Vertices": 40`)
	assert.Contains(t, s, `"VerticesAdded": 40`)
}
