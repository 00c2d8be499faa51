// Package metrics 记录单次运行的 Prometheus 指标。
//
// 每次运行持有独立的 Registry，结束后可按 node_exporter textfile 格式落盘。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "react_intl_lint"

// Recorder 单次运行的指标集合。nil Recorder 的所有方法均为空操作。
type Recorder struct {
	reg *prometheus.Registry

	filesScanned  *prometheus.CounterVec
	localeSources *prometheus.CounterVec
	results       *prometheus.CounterVec
	fixedKeys     prometheus.Counter
	keys          *prometheus.GaugeVec
	phaseSeconds  *prometheus.GaugeVec
}

func New() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		filesScanned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_scanned_total",
			Help:      "Project files considered by the scanner, by outcome.",
		}, []string{"outcome"}),
		localeSources: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locale_sources_total",
			Help:      "Locale sources by origin and load status.",
		}, []string{"origin", "status"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_total",
			Help:      "Result entries by rule and severity.",
		}, []string{"rule", "severity"}),
		fixedKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fixed_keys_total",
			Help:      "Zombie keys removed from locale files.",
		}),
		keys: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "keys",
			Help:      "Distinct translation keys by kind.",
		}, []string{"kind"}),
		phaseSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Wall time spent per pipeline phase.",
		}, []string{"phase"}),
	}
	r.reg.MustRegister(r.filesScanned, r.localeSources, r.results, r.fixedKeys, r.keys, r.phaseSeconds)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// FileScanned outcome: read, skipped, failed
func (r *Recorder) FileScanned(outcome string) {
	if r == nil {
		return
	}
	r.filesScanned.WithLabelValues(outcome).Inc()
}

func (r *Recorder) LocaleSource(remote bool, ok bool) {
	if r == nil {
		return
	}
	origin := "local"
	if remote {
		origin = "remote"
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	r.localeSources.WithLabelValues(origin, status).Inc()
}

func (r *Recorder) Result(rule, severity string) {
	if r == nil {
		return
	}
	r.results.WithLabelValues(rule, severity).Inc()
}

func (r *Recorder) FixedKeys(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.fixedKeys.Add(float64(n))
}

// SetKeys kind: used, defined
func (r *Recorder) SetKeys(kind string, n int) {
	if r == nil {
		return
	}
	r.keys.WithLabelValues(kind).Set(float64(n))
}

// ObservePhase 记录阶段耗时，用法：defer rec.ObservePhase("ingest", time.Now())
func (r *Recorder) ObservePhase(phase string, start time.Time) {
	if r == nil {
		return
	}
	r.phaseSeconds.WithLabelValues(phase).Set(time.Since(start).Seconds())
}

// WriteTextfile 以 textfile collector 格式写出全部指标；path 为空时不写。
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
