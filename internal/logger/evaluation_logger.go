package logger

import (
	"github.com/sirupsen/logrus"
	"github.com/yourusername/value-hunter/internal/models"
)

// EvaluationLogger provides dedicated logging for race evaluations.
type EvaluationLogger struct {
	*logrus.Entry
}

// NewEvaluationLogger creates a new evaluation logger.
func NewEvaluationLogger(baseLogger *logrus.Logger) *EvaluationLogger {
	return &EvaluationLogger{
		Entry: baseLogger.WithField("component", "evaluation"),
	}
}

// LogEvaluation logs a completed race evaluation.
func (el *EvaluationLogger) LogEvaluation(report *models.RaceReport, durationMs float64) {
	el.WithFields(logrus.Fields{
		"run_id":                 report.RunID.String(),
		"race_id":                report.RaceID,
		"venue":                  report.Venue,
		"horses_evaluated":       len(report.Evaluations),
		"field_average_score":    report.FieldAverageScore,
		"grade_s":                report.GradeCounts[models.GradeS],
		"grade_a":                report.GradeCounts[models.GradeA],
		"evaluation_duration_ms": durationMs,
	}).Info("Race evaluation completed")
}

// LogValueHorse logs an S or A graded horse.
func (el *EvaluationLogger) LogValueHorse(raceID string, ev models.Evaluation) {
	el.WithFields(logrus.Fields{
		"race_id":      raceID,
		"horse_number": ev.Number,
		"horse_name":   ev.HorseName,
		"grade":        string(ev.Grade),
		"gap":          ev.Gap,
		"total_score":  ev.TotalScore,
		"ability_rank": ev.AbilityRank,
	}).Info("Value horse detected")
}

// LogInputRejected logs a race card that failed input validation.
func (el *EvaluationLogger) LogInputRejected(path string, err error) {
	el.WithFields(logrus.Fields{
		"input_path": path,
		"event_type": "input_rejected",
	}).WithError(err).Error("Race card rejected")
}

// LogReportWritten logs a written output file.
func (el *EvaluationLogger) LogReportWritten(raceID, format, path string) {
	el.WithFields(logrus.Fields{
		"race_id":     raceID,
		"format":      format,
		"output_path": path,
	}).Info("Report written")
}

// LogUnchangedInput logs a scheduled run skipped because the input is unchanged.
func (el *EvaluationLogger) LogUnchangedInput(path, digest string) {
	el.WithFields(logrus.Fields{
		"input_path": path,
		"digest":     digest,
	}).Debug("Input unchanged, skipping evaluation")
}
