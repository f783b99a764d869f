package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/value-hunter/internal/models"
)

// MockRunner mocks the value hunter service
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) RunData(ctx context.Context, source string, data []byte) (*models.RaceReport, error) {
	args := m.Called(ctx, source, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RaceReport), args.Error(1)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	return log
}

func writeCard(t *testing.T, path, raceID string) {
	t.Helper()
	body := fmt.Sprintf(`{"race_id": %q, "race": {"venue": "京都"}, "horses": [{"number": 1}]}`, raceID)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestRunIfChangedSkipsUnchangedInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.json")
	writeCard(t, path, "r1")

	runner := new(MockRunner)
	runner.On("RunData", mock.Anything, path, mock.Anything).Return(&models.RaceReport{RaceID: "r1"}, nil)

	s := NewScheduler(runner, time.Hour, quietLogger())

	ran, err := s.RunIfChanged(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, ran)

	ran, err = s.RunIfChanged(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, ran)

	writeCard(t, path, "r2")
	ran, err = s.RunIfChanged(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, ran)

	runner.AssertNumberOfCalls(t, "RunData", 2)
}

func TestRunIfChangedMemoizesRejectedInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.json")
	writeCard(t, path, "r1")

	runner := new(MockRunner)
	runner.On("RunData", mock.Anything, path, mock.Anything).
		Return(nil, fmt.Errorf("%w: horses", models.ErrEmptyField))

	s := NewScheduler(runner, time.Hour, quietLogger())

	ran, err := s.RunIfChanged(context.Background(), path)
	assert.True(t, ran)
	assert.ErrorIs(t, err, models.ErrEmptyField)

	ran, err = s.RunIfChanged(context.Background(), path)
	assert.False(t, ran)
	assert.NoError(t, err)

	runner.AssertNumberOfCalls(t, "RunData", 1)
}

func TestRunIfChangedRetriesOutputFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.json")
	writeCard(t, path, "r1")

	runner := new(MockRunner)
	runner.On("RunData", mock.Anything, path, mock.Anything).Return(nil, errors.New("disk full"))

	s := NewScheduler(runner, time.Hour, quietLogger())

	for i := 0; i < 2; i++ {
		ran, err := s.RunIfChanged(context.Background(), path)
		assert.True(t, ran)
		assert.Error(t, err)
	}
	runner.AssertNumberOfCalls(t, "RunData", 2)
}

func TestRunIfChangedEvaluatesTheBytesItHashed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.json")
	writeCard(t, path, "r1")
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	runner := new(MockRunner)
	runner.On("RunData", mock.Anything, path, original).
		Run(func(args mock.Arguments) {
			// The scraper rewrites the file while the first evaluation runs.
			writeCard(t, path, "r2")
		}).
		Return(&models.RaceReport{RaceID: "r1"}, nil).Once()
	runner.On("RunData", mock.Anything, path, mock.Anything).
		Return(&models.RaceReport{RaceID: "r2"}, nil).Once()

	s := NewScheduler(runner, time.Hour, quietLogger())

	ran, err := s.RunIfChanged(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, ran)

	// The rewrite was never evaluated, so it must not be treated as seen.
	ran, err = s.RunIfChanged(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, ran)

	ran, err = s.RunIfChanged(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, ran)

	runner.AssertExpectations(t)
	runner.AssertNumberOfCalls(t, "RunData", 2)
}

func TestRunIfChangedMissingFile(t *testing.T) {
	runner := new(MockRunner)
	s := NewScheduler(runner, time.Hour, quietLogger())

	ran, err := s.RunIfChanged(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.False(t, ran)
	assert.Error(t, err)
	runner.AssertNotCalled(t, "RunData", mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduleWatchRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler(new(MockRunner), time.Hour, quietLogger())
	err := s.ScheduleWatch("every now and then", "race.json")
	assert.Error(t, err)
}

func TestStartRequiresJobs(t *testing.T) {
	s := NewScheduler(new(MockRunner), time.Hour, quietLogger())
	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(new(MockRunner), time.Hour, quietLogger())
	require.NoError(t, s.ScheduleWatch("@every 1h", "race.json"))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleWatch("@every 1h", "other.json"))

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop())
}
