// Package scoring computes ability scores, ability ranks, market gaps and
// value grades for the runners of a single race.
package scoring

import (
	"fmt"
	"math"
)

// Weights are the contributions of each factor to the total score.
type Weights struct {
	Form   float64
	Last3F float64
	Upset  float64
	Venue  float64
}

// Sum returns the total of all factor weights.
func (w Weights) Sum() float64 {
	return w.Form + w.Last3F + w.Upset + w.Venue
}

// GradeThresholds drive the S/A/B/C cascade. Score ratios are multiplied by
// the field average score.
type GradeThresholds struct {
	SGap        int
	SScoreRatio float64
	AGap        int
	AScoreRatio float64
	BGap        int
}

// Config holds every constant the engine uses. It is a plain value: copies
// share nothing, so an engine cannot observe changes made by its caller.
type Config struct {
	// PositionPoints[i] is the points for finishing position i+1.
	PositionPoints [10]float64
	// PositionPointsFloor is the minimum for positions beyond the table.
	PositionPointsFloor float64
	// RecencyWeights[i] is the weight of run i+1.
	RecencyWeights        [5]float64
	FallbackRecencyWeight float64

	// Last-3F seconds mapped to 100 and to 0.
	Last3FFast float64
	Last3FSlow float64

	// Average upset margin, in positions, that yields a full Upset score.
	UpsetFullMargin float64

	VenueHomeBonus        float64
	VenueExperiencePoints float64

	Weights    Weights
	Thresholds GradeThresholds
}

// DefaultConfig returns the fixed production constants.
func DefaultConfig() Config {
	return Config{
		PositionPoints:        [10]float64{100, 85, 75, 65, 55, 45, 35, 25, 15, 10},
		PositionPointsFloor:   5,
		RecencyWeights:        [5]float64{1.0, 0.8, 0.6, 0.4, 0.2},
		FallbackRecencyWeight: 0.2,
		Last3FFast:            33,
		Last3FSlow:            42,
		UpsetFullMargin:       3,
		VenueHomeBonus:        5,
		VenueExperiencePoints: 12,
		Weights: Weights{
			Form:   0.40,
			Last3F: 0.25,
			Upset:  0.20,
			Venue:  0.15,
		},
		Thresholds: GradeThresholds{
			SGap:        4,
			SScoreRatio: 1.0,
			AGap:        2,
			AScoreRatio: 0.8,
			BGap:        0,
		},
	}
}

const weightSumTolerance = 1e-9

// Validate checks the internal consistency of the constants.
func (c Config) Validate() error {
	if math.Abs(c.Weights.Sum()-1.0) > weightSumTolerance {
		return fmt.Errorf("factor weights must sum to 1.0, got %.4f", c.Weights.Sum())
	}
	for name, w := range map[string]float64{
		"form": c.Weights.Form, "last3f": c.Weights.Last3F,
		"upset": c.Weights.Upset, "venue": c.Weights.Venue,
	} {
		if w < 0 {
			return fmt.Errorf("%s weight cannot be negative", name)
		}
	}
	if c.Last3FFast <= 0 || c.Last3FFast >= c.Last3FSlow {
		return fmt.Errorf("last3f bounds must satisfy 0 < fast < slow, got %.1f/%.1f", c.Last3FFast, c.Last3FSlow)
	}
	if c.UpsetFullMargin <= 0 {
		return fmt.Errorf("upset full margin must be positive")
	}
	if c.FallbackRecencyWeight <= 0 {
		return fmt.Errorf("fallback recency weight must be positive")
	}
	for i, w := range c.RecencyWeights {
		if w <= 0 {
			return fmt.Errorf("recency weight for run %d must be positive", i+1)
		}
	}
	if c.VenueHomeBonus < 0 || c.VenueExperiencePoints < 0 {
		return fmt.Errorf("venue bonus values cannot be negative")
	}
	t := c.Thresholds
	if t.SGap < t.AGap || t.AGap < t.BGap {
		return fmt.Errorf("grade gaps must satisfy S >= A >= B, got %d/%d/%d", t.SGap, t.AGap, t.BGap)
	}
	if t.SScoreRatio < 0 || t.AScoreRatio < 0 {
		return fmt.Errorf("grade score ratios cannot be negative")
	}
	return nil
}
