package poolgraph

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	mc := &BasicMetricsCollector{}
	mc.RecordExport(100, 2*time.Millisecond, nil)
	mc.RecordExport(50, 4*time.Millisecond, errors.New("boom"))
	mc.RecordImport(3, 2, time.Millisecond, nil)

	st := mc.GetStats()
	assert.Equal(t, int64(2), st.ExportCount)
	assert.Equal(t, int64(1), st.ExportErrors)
	assert.Equal(t, int64(100), st.ExportBytes, "failed exports do not count bytes")
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), st.AvgExportNanos)
	assert.Equal(t, int64(1), st.ImportCount)
	assert.Zero(t, st.ImportErrors)
}

func TestNew_NoopCollectorHasNoListener(t *testing.T) {
	g, err := New()
	assert.NoError(t, err)
	defer g.Close()

	// Only a non-noop collector is attached; removing it must report false.
	assert.False(t, g.RemoveGraphListener(metricsListener{mc: NoopMetricsCollector{}}))
}
