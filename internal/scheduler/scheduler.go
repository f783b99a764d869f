// Package scheduler re-evaluates a race card on a cron schedule whenever the
// file changes.
package scheduler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/value-hunter/internal/logger"
	"github.com/yourusername/value-hunter/internal/metrics"
	"github.com/yourusername/value-hunter/internal/models"
)

// Runner evaluates race card content read from source and writes its outputs.
type Runner interface {
	RunData(ctx context.Context, source string, data []byte) (*models.RaceReport, error)
}

// Scheduler manages scheduled evaluation jobs
type Scheduler struct {
	cron            *cron.Cron
	runner          Runner
	digests         *cache.Cache
	logger          *logrus.Logger
	evalLogger      *logger.EvaluationLogger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler. Input digests are remembered for
// digestTTL; once a digest expires the card is evaluated again even if
// unchanged.
func NewScheduler(runner Runner, digestTTL time.Duration, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log))),
		),
		runner:          runner,
		digests:         cache.New(digestTTL, digestTTL*2),
		logger:          log,
		evalLogger:      logger.NewEvaluationLogger(log),
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      time.Minute,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleWatch schedules evaluation of inputPath with a standard cron
// expression or descriptor such as "@every 1m".
func (s *Scheduler) ScheduleWatch(schedule string, inputPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		if _, err := s.RunIfChanged(ctx, inputPath); err != nil {
			s.logger.WithError(err).WithField("input_path", inputPath).Error("Scheduled evaluation failed")
		}
	}

	entryID, err := s.cron.AddFunc(schedule, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"schedule":   schedule,
		"input_path": inputPath,
	}).Info("Scheduled watch job")

	return nil
}

// RunIfChanged evaluates inputPath unless its content matches the last
// evaluated digest. It reports whether an evaluation ran.
func (s *Scheduler) RunIfChanged(ctx context.Context, inputPath string) (bool, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return false, fmt.Errorf("failed to read input file: %w", err)
	}
	digest := contentDigest(data)

	if last, found := s.digests.Get(inputPath); found && last.(string) == digest {
		s.evalLogger.LogUnchangedInput(inputPath, digest)
		metrics.RecordScheduledRunSkipped()
		return false, nil
	}

	_, err = s.runner.RunData(ctx, inputPath, data)
	if err == nil || isInputError(err) {
		// A rejected card stays rejected until the file changes.
		s.digests.Set(inputPath, digest, cache.DefaultExpiration)
	}
	return true, err
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.Infof("Scheduler started with %d jobs", len(s.jobIDs))

	return nil
}

// Stop stops the scheduler and waits for a running job to finish, up to the
// graceful timeout.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler did not stop within %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func contentDigest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func isInputError(err error) bool {
	return errors.Is(err, models.ErrInputMissingField) ||
		errors.Is(err, models.ErrEmptyField) ||
		errors.Is(err, models.ErrInvalidInput) ||
		errors.Is(err, models.ErrInvalidHorse)
}
