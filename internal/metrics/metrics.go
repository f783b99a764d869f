// Package metrics provides the Prometheus metrics registry for value-hunter.
//
// Runs are short-lived, so metrics are exported through the node_exporter
// textfile collector instead of an HTTP endpoint.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EvaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "value_hunter",
		Name:      "evaluations_total",
		Help:      "Total number of race evaluations by outcome",
	}, []string{"status"})
	HorsesGradedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "value_hunter",
		Name:      "horses_graded_total",
		Help:      "Total number of horses graded, by grade",
	}, []string{"grade"})
	ScheduledRunsSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "value_hunter",
		Name:      "scheduled_runs_skipped_total",
		Help:      "Total number of scheduled runs skipped because the input was unchanged",
	})
)

// Gauge metrics
var (
	FieldAverageScore = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "value_hunter",
		Name:      "field_average_score",
		Help:      "Field average total score of the last evaluated race",
	})
	LastEvaluationTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "value_hunter",
		Name:      "last_evaluation_timestamp_seconds",
		Help:      "Unix time of the last successful evaluation",
	})
)

// Histogram metrics
var (
	TotalScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "value_hunter",
		Name:      "total_score",
		Help:      "Distribution of horse total scores",
		Buckets:   prometheus.LinearBuckets(10, 10, 10),
	})
	EvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "value_hunter",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of race evaluation in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(EvaluationsTotal)
		registry.MustRegister(HorsesGradedTotal)
		registry.MustRegister(ScheduledRunsSkippedTotal)

		// Register gauge metrics
		registry.MustRegister(FieldAverageScore)
		registry.MustRegister(LastEvaluationTimestamp)

		// Register histogram metrics
		registry.MustRegister(TotalScore)
		registry.MustRegister(EvaluationDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// RecordEvaluation records a successful race evaluation.
func RecordEvaluation(durationSeconds, fieldAverage float64, unixTime int64) {
	EvaluationsTotal.WithLabelValues("success").Inc()
	EvaluationDuration.Observe(durationSeconds)
	FieldAverageScore.Set(fieldAverage)
	LastEvaluationTimestamp.Set(float64(unixTime))
}

// RecordEvaluationFailure records a rejected or failed evaluation.
func RecordEvaluationFailure() {
	EvaluationsTotal.WithLabelValues("failure").Inc()
}

// RecordHorseGraded records one graded horse and its total score.
func RecordHorseGraded(grade string, totalScore float64) {
	HorsesGradedTotal.WithLabelValues(grade).Inc()
	TotalScore.Observe(totalScore)
}

// RecordScheduledRunSkipped records a watch tick with unchanged input.
func RecordScheduledRunSkipped() {
	ScheduledRunsSkippedTotal.Inc()
}

// WriteTextfile writes the registry in text exposition format to path.
func WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, GetRegistry()); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
