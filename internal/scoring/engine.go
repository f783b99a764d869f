package scoring

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/value-hunter/internal/models"
)

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRunIDs overrides the run ID generator.
func WithRunIDs(next func() uuid.UUID) Option {
	return func(e *Engine) {
		if next != nil {
			e.newRunID = next
		}
	}
}

// Engine scores a race card and produces an ordered report.
type Engine struct {
	cfg      Config
	logger   *logrus.Logger
	now      func() time.Time
	newRunID func() uuid.UUID
}

// NewEngine creates an engine bound to cfg. A nil logger discards output.
func NewEngine(cfg Config, logger *logrus.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	e := &Engine{
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		newRunID: uuid.New,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Evaluate scores every horse on the card. It fails without scoring anything
// when the card is missing horses.
func (e *Engine) Evaluate(ctx context.Context, card *models.RaceCard) (*models.RaceReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if card == nil {
		return nil, fmt.Errorf("%w: race card is nil", models.ErrInvalidInput)
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}

	venue := card.Race.Venue
	evals := make([]models.Evaluation, len(card.Horses))
	totals := make([]float64, len(card.Horses))
	for i := range card.Horses {
		h := &card.Horses[i]
		e.logExclusions(card.RaceID, h)

		f := e.cfg.ScoreFactors(h.PastRaces, venue)
		totals[i] = e.cfg.TotalScore(f)
		evals[i] = models.Evaluation{
			Number:        h.Number,
			HorseID:       h.HorseID,
			HorseName:     h.HorseName,
			Jockey:        h.Jockey,
			Odds:          h.Odds,
			Popularity:    h.Popularity,
			FormScore:     Round1(f.Form),
			Last3FScore:   Round1(f.Last3F),
			UpsetScore:    Round1(f.Upset),
			VenueScore:    Round1(f.Venue),
			TotalScore:    totals[i],
			PastRaceCount: len(h.PastRaces),
		}
	}

	ranks := RankByScore(totals)
	avg := FieldAverage(totals)
	counts := make(map[models.Grade]int, len(models.Grades))
	for _, g := range models.Grades {
		counts[g] = 0
	}
	for i := range evals {
		evals[i].AbilityRank = ranks[i]
		evals[i].Gap = Gap(card.Horses[i].GetPopularity(), ranks[i])
		evals[i].Grade = e.cfg.Classify(evals[i].Gap, evals[i].TotalScore, avg)
		counts[evals[i].Grade]++
	}
	SortEvaluations(evals)

	race := card.Race
	return &models.RaceReport{
		RunID:             e.newRunID(),
		GeneratedAt:       e.now().UTC(),
		RaceID:            card.RaceID,
		SourceURL:         card.SourceURL,
		RaceName:          race.RaceName,
		Venue:             race.Venue,
		RaceDate:          race.RaceDate,
		CourseType:        race.CourseType,
		Distance:          race.Distance,
		TrackCondition:    race.TrackCondition,
		Weather:           race.Weather,
		FieldAverageScore: Round1(avg),
		GradeCounts:       counts,
		Evaluations:       evals,
	}, nil
}

// logExclusions reports past-race fields that a factor had to skip.
func (e *Engine) logExclusions(raceID string, h *models.HorseEntry) {
	if !e.logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	for _, pr := range h.PastRaces {
		fields := logrus.Fields{
			"race_id":      raceID,
			"horse_number": h.Number,
			"run":          pr.Run,
		}
		if _, ok := ParseSeconds(pr.Last3F); !ok {
			e.logger.WithFields(fields).WithField("last_3f", string(pr.Last3F)).Debug("Excluded last_3f from closing speed")
		}
		if pr.Position == nil {
			e.logger.WithFields(fields).Debug("Excluded run without position from form")
		}
		if pr.Popularity == nil {
			e.logger.WithFields(fields).Debug("Excluded run without popularity from upset")
		}
	}
}

// RankByScore returns the 1-based ability rank for each total, best first.
// Equal totals are ranked in input order, so the result is always a
// permutation of 1..n.
func RankByScore(totals []float64) []int {
	idx := make([]int, len(totals))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if totals[ia] != totals[ib] {
			return totals[ia] > totals[ib]
		}
		return ia < ib
	})
	ranks := make([]int, len(totals))
	for pos, i := range idx {
		ranks[i] = pos + 1
	}
	return ranks
}

// FieldAverage is the mean total score of the field.
func FieldAverage(totals []float64) float64 {
	if len(totals) == 0 {
		return 0
	}
	var sum float64
	for _, t := range totals {
		sum += t
	}
	return sum / float64(len(totals))
}

// Gap is popularity minus ability rank. A positive gap means the market
// rates the horse lower than its form does. Unknown popularity (0 or less)
// gives 0.
func Gap(popularity, abilityRank int) int {
	if popularity <= 0 {
		return 0
	}
	return popularity - abilityRank
}

// Classify assigns the first grade whose rule matches.
func (c Config) Classify(gap int, totalScore, fieldAverage float64) models.Grade {
	t := c.Thresholds
	switch {
	case gap >= t.SGap && totalScore >= fieldAverage*t.SScoreRatio:
		return models.GradeS
	case gap >= t.AGap && totalScore >= fieldAverage*t.AScoreRatio:
		return models.GradeA
	case gap >= t.BGap:
		return models.GradeB
	default:
		return models.GradeC
	}
}

// SortEvaluations orders evaluations by grade, then gap descending, then
// total score descending, then ability rank.
func SortEvaluations(evals []models.Evaluation) {
	sort.Slice(evals, func(i, j int) bool {
		a, b := evals[i], evals[j]
		if a.Grade.Order() != b.Grade.Order() {
			return a.Grade.Order() < b.Grade.Order()
		}
		if a.Gap != b.Gap {
			return a.Gap > b.Gap
		}
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.AbilityRank != b.AbilityRank {
			return a.AbilityRank < b.AbilityRank
		}
		return a.Number < b.Number
	})
}
