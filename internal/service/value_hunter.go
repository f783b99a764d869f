// Package service wires race card loading, scoring and report output together.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-hunter/internal/logger"
	"github.com/yourusername/value-hunter/internal/metrics"
	"github.com/yourusername/value-hunter/internal/models"
	"github.com/yourusername/value-hunter/internal/report"
)

// Evaluator scores a decoded race card.
type Evaluator interface {
	Evaluate(ctx context.Context, card *models.RaceCard) (*models.RaceReport, error)
}

// OutputOptions controls where a report is written.
type OutputOptions struct {
	OutputPath  string
	CSVPath     string
	JSONOnly    bool
	MetricsPath string
}

// ValueHunterService runs one evaluation end to end.
type ValueHunterService struct {
	evaluator  Evaluator
	opts       OutputOptions
	console    io.Writer
	logger     *logrus.Logger
	evalLogger *logger.EvaluationLogger
}

// NewValueHunterService creates a new value hunter service. Console output
// goes to console; a nil console discards it.
func NewValueHunterService(
	evaluator Evaluator,
	opts OutputOptions,
	console io.Writer,
	log *logrus.Logger,
) *ValueHunterService {
	if console == nil {
		console = io.Discard
	}
	return &ValueHunterService{
		evaluator:  evaluator,
		opts:       opts,
		console:    console,
		logger:     log,
		evalLogger: logger.NewEvaluationLogger(log),
	}
}

// Run loads the race card at inputPath, evaluates it and writes every
// configured output.
func (s *ValueHunterService) Run(ctx context.Context, inputPath string) (*models.RaceReport, error) {
	s.logger.WithField("input_path", inputPath).Debug("Loading race card")

	data, err := os.ReadFile(inputPath)
	if err != nil {
		err = fmt.Errorf("failed to open input file: %w", err)
		s.evalLogger.LogInputRejected(inputPath, err)
		s.recordFailure()
		return nil, err
	}

	return s.RunData(ctx, inputPath, data)
}

// RunData decodes a race card already read from source, evaluates it and
// writes every configured output.
func (s *ValueHunterService) RunData(ctx context.Context, source string, data []byte) (*models.RaceReport, error) {
	card, err := models.ParseRaceCard(data)
	if err != nil {
		s.evalLogger.LogInputRejected(source, err)
		s.recordFailure()
		return nil, err
	}

	return s.Process(ctx, card)
}

// Process evaluates an already decoded race card and writes every configured
// output.
func (s *ValueHunterService) Process(ctx context.Context, card *models.RaceCard) (*models.RaceReport, error) {
	start := time.Now()
	raceReport, err := s.evaluator.Evaluate(ctx, card)
	if err != nil {
		s.recordFailure()
		return nil, fmt.Errorf("failed to evaluate race: %w", err)
	}
	elapsed := time.Since(start)

	s.recordSuccess(raceReport, elapsed)

	if !s.opts.JSONOnly {
		fmt.Fprint(s.console, report.GenerateConsoleReport(raceReport))
	}

	if err := s.writeOutputs(raceReport); err != nil {
		return raceReport, err
	}

	s.writeMetrics()
	return raceReport, nil
}

func (s *ValueHunterService) writeOutputs(r *models.RaceReport) error {
	if err := report.ExportToJSON(r, s.opts.OutputPath); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	s.evalLogger.LogReportWritten(r.RaceID, "json", s.opts.OutputPath)
	fmt.Fprintf(s.console, "Result saved: %s\n", s.opts.OutputPath)

	if s.opts.CSVPath != "" {
		if err := report.ExportToCSV(r, s.opts.CSVPath); err != nil {
			return fmt.Errorf("failed to save csv: %w", err)
		}
		s.evalLogger.LogReportWritten(r.RaceID, "csv", s.opts.CSVPath)
	}
	return nil
}

func (s *ValueHunterService) recordSuccess(r *models.RaceReport, elapsed time.Duration) {
	metrics.RecordEvaluation(elapsed.Seconds(), r.FieldAverageScore, r.GeneratedAt.Unix())
	for _, ev := range r.Evaluations {
		metrics.RecordHorseGraded(string(ev.Grade), ev.TotalScore)
	}

	s.evalLogger.LogEvaluation(r, float64(elapsed.Microseconds())/1000)
	for _, ev := range r.ValueHorses() {
		s.evalLogger.LogValueHorse(r.RaceID, ev)
	}
}

func (s *ValueHunterService) recordFailure() {
	metrics.RecordEvaluationFailure()
	s.writeMetrics()
}

// writeMetrics refreshes the metrics textfile. Failures are logged and
// otherwise ignored.
func (s *ValueHunterService) writeMetrics() {
	if s.opts.MetricsPath == "" {
		return
	}
	if err := metrics.WriteTextfile(s.opts.MetricsPath); err != nil {
		s.logger.WithError(err).Warn("Failed to write metrics textfile")
	}
}
