package scoring

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/value-hunter/internal/models"
)

// Points converts a finishing position to form points. Positions of zero or
// below score nothing.
func (c Config) Points(position int) float64 {
	if position <= 0 {
		return 0
	}
	if position <= len(c.PositionPoints) {
		return c.PositionPoints[position-1]
	}
	return math.Max(c.PositionPointsFloor, 110-float64(position)*10)
}

// RecencyWeight returns the weight of a past run. Runs outside the table
// share the fallback weight.
func (c Config) RecencyWeight(run int) float64 {
	if run >= 1 && run <= len(c.RecencyWeights) {
		return c.RecencyWeights[run-1]
	}
	return c.FallbackRecencyWeight
}

// FormScore is the recency-weighted average of position points. Races with
// no recorded position are left out entirely; a recorded 0 counts as a
// zero-point result.
func (c Config) FormScore(past []models.PastRace) float64 {
	var weightedSum, weightTotal float64
	for _, pr := range past {
		if pr.Position == nil {
			continue
		}
		w := c.RecencyWeight(pr.Run)
		weightedSum += c.Points(*pr.Position) * w
		weightTotal += w
	}
	if weightTotal == 0 {
		return 0
	}
	return weightedSum / weightTotal
}

// Last3FScore rates closing speed: the recency-weighted average of the last
// three furlong times, where Last3FFast maps to 100 and Last3FSlow to 0.
func (c Config) Last3FScore(past []models.PastRace) float64 {
	var weightedSum, weightTotal float64
	for _, pr := range past {
		secs, ok := ParseSeconds(pr.Last3F)
		if !ok {
			continue
		}
		w := c.RecencyWeight(pr.Run)
		weightedSum += secs * w
		weightTotal += w
	}
	if weightTotal == 0 {
		return 0
	}
	avg := weightedSum / weightTotal
	return clip((c.Last3FSlow-avg)/(c.Last3FSlow-c.Last3FFast)*100, 0, 100)
}

// UpsetScore measures how often a horse finished ahead of its market rank.
func (c Config) UpsetScore(past []models.PastRace) float64 {
	var totalBonus float64
	count := 0
	for _, pr := range past {
		if pr.Position == nil || pr.Popularity == nil {
			continue
		}
		pos, pop := *pr.Position, *pr.Popularity
		if pos <= 0 || pop <= 0 {
			continue
		}
		totalBonus += math.Max(0, float64(pop-pos))
		count++
	}
	if count == 0 {
		return 0
	}
	avgBonus := totalBonus / float64(count)
	return math.Min(100, avgBonus/c.UpsetFullMargin*100)
}

// VenueScore rates course fit. With starts at today's venue it is their mean
// position points plus a per-start bonus; without, it rewards general
// experience.
func (c Config) VenueScore(past []models.PastRace, venue string) float64 {
	if venue == "" {
		return 0
	}
	var ptsSum float64
	home := 0
	for _, pr := range past {
		if pr.Venue != venue {
			continue
		}
		home++
		if pr.Position != nil {
			ptsSum += c.Points(*pr.Position)
		}
	}
	if home == 0 {
		return math.Min(100, float64(len(past))*c.VenueExperiencePoints)
	}
	return math.Min(100, ptsSum/float64(home)+float64(home)*c.VenueHomeBonus)
}

// FactorScores are the unrounded per-factor scores of one horse.
type FactorScores struct {
	Form   float64
	Last3F float64
	Upset  float64
	Venue  float64
}

// ScoreFactors runs all four factor scorers.
func (c Config) ScoreFactors(past []models.PastRace, venue string) FactorScores {
	return FactorScores{
		Form:   c.FormScore(past),
		Last3F: c.Last3FScore(past),
		Upset:  c.UpsetScore(past),
		Venue:  c.VenueScore(past, venue),
	}
}

// TotalScore is the weighted sum of the factor scores, rounded to one
// decimal. Missing data is a real zero; the weights are never renormalised.
func (c Config) TotalScore(f FactorScores) float64 {
	w := c.Weights
	return Round1(f.Form*w.Form + f.Last3F*w.Last3F + f.Upset*w.Upset + f.Venue*w.Venue)
}

// ParseSeconds parses a scraped time. Only positive, finite numbers are
// usable, including after conversion to float64.
func ParseSeconds(s models.Seconds) (float64, bool) {
	raw := strings.TrimSpace(string(s))
	if raw == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsPositive() {
		return 0, false
	}
	secs := d.InexactFloat64()
	if secs <= 0 || math.IsInf(secs, 0) || math.IsNaN(secs) {
		return 0, false
	}
	return secs, true
}

// Round1 rounds to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
