package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeLabel_ShouldNameTransportFailures(t *testing.T) {
	assert.Equal(t, "transport_error", CodeLabel(0))
	assert.Equal(t, "409", CodeLabel(409))
}

func TestWriteTextfile_ShouldExportCounters(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "recruitment.prom")
	before := testutil.ToFloat64(StatusUpdates.WithLabelValues(OutcomeConflict))
	StatusUpdates.WithLabelValues(OutcomeConflict).Inc()

	// when
	err := WriteTextfile(path)

	// then
	require.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(StatusUpdates.WithLabelValues(OutcomeConflict)))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `recruitment_client_status_updates_total{outcome="conflict"}`)
}
