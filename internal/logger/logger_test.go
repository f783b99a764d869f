package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-hunter/internal/models"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger("debug", "json", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log.Info("hello")
	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "hello", entry["msg"])
}

func TestNewLoggerInvalidLevel(t *testing.T) {
	log := NewLogger("loud", "text", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestNewLoggerProductionUsesJSON(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	log := NewLogger("warn", "text", &bytes.Buffer{})
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestEvaluationLoggerEvaluation(t *testing.T) {
	log, buf := setupTestLogger()
	evalLogger := NewEvaluationLogger(log)

	report := &models.RaceReport{
		RunID:             uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		RaceID:            "202408010811",
		Venue:             "京都",
		FieldAverageScore: 52.3,
		GradeCounts:       map[models.Grade]int{models.GradeS: 1, models.GradeA: 2},
		Evaluations:       make([]models.Evaluation, 8),
	}
	evalLogger.LogEvaluation(report, 1.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "evaluation", logEntry["component"])
	assert.Equal(t, "202408010811", logEntry["race_id"])
	assert.Equal(t, float64(8), logEntry["horses_evaluated"])
	assert.Equal(t, float64(1), logEntry["grade_s"])
	assert.Equal(t, float64(2), logEntry["grade_a"])
	assert.Equal(t, 52.3, logEntry["field_average_score"])
}

func TestEvaluationLoggerValueHorse(t *testing.T) {
	log, buf := setupTestLogger()
	evalLogger := NewEvaluationLogger(log)

	evalLogger.LogValueHorse("race_1", models.Evaluation{
		Number:      7,
		HorseName:   "Dark Runner",
		Grade:       models.GradeS,
		Gap:         5,
		TotalScore:  71.2,
		AbilityRank: 2,
	})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "S", logEntry["grade"])
	assert.Equal(t, float64(7), logEntry["horse_number"])
	assert.Equal(t, float64(5), logEntry["gap"])
	assert.Equal(t, "Value horse detected", logEntry["msg"])
}

func TestEvaluationLoggerInputRejected(t *testing.T) {
	log, buf := setupTestLogger()
	evalLogger := NewEvaluationLogger(log)

	evalLogger.LogInputRejected("race.json", errors.New("missing race_id"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "error", logEntry["level"])
	assert.Equal(t, "missing race_id", logEntry["error"])
	assert.Equal(t, "input_rejected", logEntry["event_type"])
}

func TestEvaluationLoggerReportWritten(t *testing.T) {
	log, buf := setupTestLogger()
	evalLogger := NewEvaluationLogger(log)

	evalLogger.LogReportWritten("race_1", "csv", "out.csv")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "csv", logEntry["format"])
	assert.Equal(t, "out.csv", logEntry["output_path"])
}

func TestEvaluationLoggerUnchangedInputIsDebug(t *testing.T) {
	log, buf := setupTestLogger()
	log.SetLevel(logrus.InfoLevel)
	evalLogger := NewEvaluationLogger(log)

	evalLogger.LogUnchangedInput("race.json", "abc")
	assert.Empty(t, buf.String())
}
