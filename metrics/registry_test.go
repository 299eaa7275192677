package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestReportBatch(t *testing.T) {
	r := NewRegistry()
	r.ReportBatch(3, 10*time.Millisecond, nil)
	r.ReportBatch(2, time.Second, nil)
	r.ReportBatch(5, time.Second, errors.New("boom"))

	require.Equal(t, 2.0, testutil.ToFloat64(r.publishTotal.WithLabelValues("success")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.publishTotal.WithLabelValues("error")))
	require.Equal(t, 5.0, testutil.ToFloat64(r.messagesTotal))

	expected := `
# HELP kpub_publish_total Total number of batches sent
# TYPE kpub_publish_total counter
kpub_publish_total{status="error"} 1
kpub_publish_total{status="success"} 2
`
	err := testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected), "kpub_publish_total")
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(r.Gatherer(), "kpub_publish_batch_size", "kpub_publish_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestWriteToTextfile(t *testing.T) {
	r := NewRegistry()
	r.ReportBatch(1, time.Millisecond, nil)

	path := filepath.Join(t.TempDir(), "kpub.prom")
	require.NoError(t, r.WriteToTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), `kpub_publish_total{status="success"} 1`)
	require.Contains(t, string(b), "kpub_messages_published_total 1")
}
