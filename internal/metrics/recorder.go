package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/engine"
	"github.com/Sir-Sloth-The-Lazy/VisionLint/internal/lint"
)

const (
	metricsNamespaceConstant = "visionlint"

	assetsScannedNameConstant      = "assets_scanned_total"
	assetsScannedHelpConstant      = "Total number of assets committed by lint runs"
	assetsErroredNameConstant      = "assets_errored_total"
	assetsErroredHelpConstant      = "Total number of assets that could not be read"
	findingsNameConstant           = "findings_total"
	findingsHelpConstant           = "Total number of findings by linter and severity"
	linterFaultsNameConstant       = "linter_faults_total"
	linterFaultsHelpConstant       = "Total number of linter faults by linter"
	inspectionDurationNameConstant = "asset_inspection_seconds"
	inspectionDurationHelpConstant = "Time spent inspecting one asset with every applicable linter"
	runDurationNameConstant        = "run_duration_seconds"
	runDurationHelpConstant        = "Wall-clock duration of the most recent lint run"

	linterLabelConstant   = "linter"
	severityLabelConstant = "severity"

	writeTextfileErrorTemplateConstant = "write metrics textfile %s: %w"
)

var inspectionDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

// Recorder implements engine.Observer by updating Prometheus collectors.
type Recorder struct {
	registry           *prometheus.Registry
	assetsScanned      prometheus.Counter
	assetsErrored      prometheus.Counter
	findings           *prometheus.CounterVec
	linterFaults       *prometheus.CounterVec
	inspectionDuration prometheus.Histogram
	runDuration        prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	recorder := &Recorder{
		registry: prometheus.NewRegistry(),
		assetsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespaceConstant,
			Name:      assetsScannedNameConstant,
			Help:      assetsScannedHelpConstant,
		}),
		assetsErrored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespaceConstant,
			Name:      assetsErroredNameConstant,
			Help:      assetsErroredHelpConstant,
		}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespaceConstant,
			Name:      findingsNameConstant,
			Help:      findingsHelpConstant,
		}, []string{linterLabelConstant, severityLabelConstant}),
		linterFaults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespaceConstant,
			Name:      linterFaultsNameConstant,
			Help:      linterFaultsHelpConstant,
		}, []string{linterLabelConstant}),
		inspectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespaceConstant,
			Name:      inspectionDurationNameConstant,
			Help:      inspectionDurationHelpConstant,
			Buckets:   inspectionDurationBuckets,
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespaceConstant,
			Name:      runDurationNameConstant,
			Help:      runDurationHelpConstant,
		}),
	}
	recorder.registry.MustRegister(
		recorder.assetsScanned,
		recorder.assetsErrored,
		recorder.findings,
		recorder.linterFaults,
		recorder.inspectionDuration,
		recorder.runDuration,
	)
	return recorder
}

// Registry exposes the underlying registry for gathering.
func (recorder *Recorder) Registry() *prometheus.Registry {
	return recorder.registry
}

// RunStarted is a no-op; counters accumulate across runs.
func (recorder *Recorder) RunStarted(string, []string) {}

// AssetCommitted counts the asset, its findings, and its inspection time.
func (recorder *Recorder) AssetCommitted(event engine.AssetEvent) {
	recorder.assetsScanned.Inc()
	if event.Errored {
		recorder.assetsErrored.Inc()
	}
	recorder.inspectionDuration.Observe(event.Duration.Seconds())
	recorder.countFindings(event.Findings)
}

// FaultRecorded counts one linter or I/O fault.
func (recorder *Recorder) FaultRecorded(event engine.FaultEvent) {
	recorder.linterFaults.WithLabelValues(event.Linter).Inc()
}

// CorpusLinterFinished counts the corpus linter findings.
func (recorder *Recorder) CorpusLinterFinished(event engine.CorpusEvent) {
	recorder.countFindings(event.Findings)
}

// RunFinished records the run duration and counts run-level findings raised outside linters.
func (recorder *Recorder) RunFinished(run *lint.LintRun) {
	recorder.runDuration.Set(run.Duration().Seconds())
	for _, finding := range run.Findings() {
		if finding.Linter() == lint.SourceLinterIdentifier {
			recorder.findings.WithLabelValues(finding.Linter(), finding.Severity().String()).Inc()
		}
	}
}

// WriteTextfile persists the gathered metrics for the node exporter textfile collector.
func (recorder *Recorder) WriteTextfile(filePath string) error {
	if writeError := prometheus.WriteToTextfile(filePath, recorder.registry); writeError != nil {
		return fmt.Errorf(writeTextfileErrorTemplateConstant, filePath, writeError)
	}
	return nil
}

func (recorder *Recorder) countFindings(findings []lint.Finding) {
	for _, finding := range findings {
		recorder.findings.WithLabelValues(finding.Linter(), finding.Severity().String()).Inc()
	}
}
