package models

import (
	"time"

	"github.com/google/uuid"
)

// Grade is the value classification of a horse.
type Grade string

// Grades from best value to worst.
const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// Grades lists every grade in report order.
var Grades = []Grade{GradeS, GradeA, GradeB, GradeC}

// Order returns the sort rank of the grade (S=0 ... C=3). Unknown grades sort last.
func (g Grade) Order() int {
	switch g {
	case GradeS:
		return 0
	case GradeA:
		return 1
	case GradeB:
		return 2
	case GradeC:
		return 3
	default:
		return 9
	}
}

// Mark returns the symbol shown next to the grade in console output.
func (g Grade) Mark() string {
	switch g {
	case GradeS:
		return "★"
	case GradeA:
		return "◎"
	case GradeB:
		return "○"
	case GradeC:
		return "△"
	default:
		return " "
	}
}

// Evaluation is the scored result for one horse. It is not modified after
// the engine returns it.
type Evaluation struct {
	Number        int      `json:"number"`
	HorseID       string   `json:"horse_id,omitempty"`
	HorseName     string   `json:"horse_name"`
	Jockey        string   `json:"jockey"`
	Odds          *float64 `json:"odds"`
	Popularity    *int     `json:"popularity"`
	FormScore     float64  `json:"form_score"`
	Last3FScore   float64  `json:"last3f_score"`
	UpsetScore    float64  `json:"upset_score"`
	VenueScore    float64  `json:"venue_score"`
	TotalScore    float64  `json:"total_score"`
	AbilityRank   int      `json:"ability_rank"`
	Gap           int      `json:"gap"`
	Grade         Grade    `json:"grade"`
	PastRaceCount int      `json:"past_race_count"`
}

// IsValue reports whether the horse is graded S or A.
func (e *Evaluation) IsValue() bool {
	return e.Grade == GradeS || e.Grade == GradeA
}

// RaceReport is the engine output for one race.
type RaceReport struct {
	RunID             uuid.UUID     `json:"run_id"`
	GeneratedAt       time.Time     `json:"generated_at"`
	RaceID            string        `json:"race_id"`
	SourceURL         string        `json:"source_url,omitempty"`
	RaceName          string        `json:"race_name"`
	Venue             string        `json:"venue"`
	RaceDate          string        `json:"race_date"`
	CourseType        string        `json:"course_type"`
	Distance          *int          `json:"distance"`
	TrackCondition    string        `json:"track_condition"`
	Weather           string        `json:"weather"`
	FieldAverageScore float64       `json:"field_average_score"`
	GradeCounts       map[Grade]int `json:"grade_counts"`
	Evaluations       []Evaluation  `json:"evaluations"`
}

// ValueHorses returns the S and A graded evaluations in report order.
func (r *RaceReport) ValueHorses() []Evaluation {
	var out []Evaluation
	for _, ev := range r.Evaluations {
		if ev.IsValue() {
			out = append(out, ev)
		}
	}
	return out
}
