package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.FileScanned("read")
	r.FileScanned("read")
	r.FileScanned("skipped")
	r.LocaleSource(false, true)
	r.LocaleSource(true, false)
	r.Result("keysOnViews", "error")
	r.FixedKeys(3)
	r.FixedKeys(0)
	r.SetKeys("used", 7)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.filesScanned.WithLabelValues("read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.filesScanned.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.localeSources.WithLabelValues("remote", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.results.WithLabelValues("keysOnViews", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.fixedKeys))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.keys.WithLabelValues("used")))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.FileScanned("read")
	r.LocaleSource(true, true)
	r.Result("x", "y")
	r.FixedKeys(1)
	r.SetKeys("used", 1)
	r.ObservePhase("ingest", time.Now())
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")))
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObservePhase("reconcile", time.Now())
	r.FixedKeys(2)
	path := filepath.Join(t.TempDir(), "lint.prom")
	require.NoError(t, r.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(b)
	assert.True(t, strings.Contains(text, "react_intl_lint_fixed_keys_total 2"), text)
	assert.True(t, strings.Contains(text, `react_intl_lint_phase_duration_seconds{phase="reconcile"}`), text)

	assert.NoError(t, r.WriteTextfile(""))
}
