package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"toolshelf/internal/ingest"
)

func TestIngestMetricsUsesProvidedRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewIngestMetrics(registry)

	m.ObserveUpload("success", 20*time.Millisecond, &ingest.Report{Added: 3, Skipped: 1, Total: 4})
	m.ObserveUpload("Validation Error", 5*time.Millisecond, nil)

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.Contains(t, names, "toolshelf_uploads_total")
	assert.Contains(t, names, "toolshelf_tools_added_total")
	assert.Contains(t, names, "toolshelf_tools_skipped_total")
	assert.Contains(t, names, "toolshelf_upload_duration_seconds")

	assert.Equal(t, float64(3), testutil.ToFloat64(m.added))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.skipped))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.uploads.WithLabelValues("Validation Error")))
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger("chatty")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))

	debug, err := NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, debug.Core().Enabled(zapcore.DebugLevel))
}
