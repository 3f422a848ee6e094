package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.SetCombinations(6)
	r.ObserveRun(2*time.Second, nil)
	r.ObserveRun(time.Second, nil)
	r.ObserveRun(time.Second, errors.New("exit status 1"))
	r.AnnotationFailed()

	assert.Equal(t, 6.0, testutil.ToFloat64(r.Combinations))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.RunsTotal.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RunsTotal.WithLabelValues(StatusFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.AnnotationFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(r.RunDuration))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.SetCombinations(3)

	path := filepath.Join(t.TempDir(), "sweeper.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sweeper_combinations 3")
}
