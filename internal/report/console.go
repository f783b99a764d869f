// Package report renders race evaluations for the terminal and exports them
// to JSON and CSV files.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"github.com/yourusername/value-hunter/internal/models"
)

const (
	ruleWidth   = 78
	detailWidth = 72
	nameWidth   = 18
	jockeyWidth = 8
)

// GenerateConsoleReport formats a race report for terminal output: header,
// value table, score breakdown and value horse summary.
func GenerateConsoleReport(report *models.RaceReport) string {
	var builder strings.Builder
	writeHeader(&builder, report)
	writeTable(&builder, report.Evaluations)
	writeDetail(&builder, report.Evaluations)
	writeSummary(&builder, report)
	return builder.String()
}

func writeHeader(b *strings.Builder, r *models.RaceReport) {
	distance := ""
	if r.Distance != nil {
		distance = strconv.Itoa(*r.Distance)
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	b.WriteString("  Value Hunter - value analysis\n")
	b.WriteString(fmt.Sprintf("  Race: %s  %s %s\n", r.RaceName, r.Venue, r.RaceDate))
	b.WriteString(fmt.Sprintf("  %s%sm  Going: %s  Weather: %s\n",
		r.CourseType, distance, r.TrackCondition, r.Weather))
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")
}

// writeTable prints evaluations in the order they were given, which for an
// engine report is grade, then gap, then total score.
func writeTable(b *strings.Builder, evals []models.Evaluation) {
	b.WriteString(fmt.Sprintf("%3s  %s  %s  %6s  %4s  %5s  %4s  %4s  %5s\n",
		"No", padRight("Horse", nameWidth), padRight("Jockey", jockeyWidth),
		"Odds", "Pop", "Score", "Rank", "Gap", "Grade"))
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")

	for _, ev := range evals {
		b.WriteString(fmt.Sprintf("%3d  %s  %s  %6s  %4s  %5.1f  %4d  %4s  %s%s\n",
			ev.Number,
			padRight(ev.HorseName, nameWidth),
			padRight(ev.Jockey, jockeyWidth),
			formatOdds(ev.Odds, "---.-"),
			formatPopularity(ev.Popularity),
			ev.TotalScore,
			ev.AbilityRank,
			formatGap(ev.Gap),
			ev.Grade.Mark(),
			ev.Grade,
		))
	}
	b.WriteString("\n")
}

func writeDetail(b *strings.Builder, evals []models.Evaluation) {
	byRank := make([]models.Evaluation, len(evals))
	copy(byRank, evals)
	sort.SliceStable(byRank, func(i, j int) bool {
		return byRank[i].AbilityRank < byRank[j].AbilityRank
	})

	b.WriteString("--- Score breakdown ---\n")
	b.WriteString(fmt.Sprintf("%3s  %s  %5s  %5s  %5s  %5s  %5s  %4s\n",
		"No", padRight("Horse", nameWidth), "Form", "3F", "Upset", "Venue", "Total", "Runs"))
	b.WriteString(strings.Repeat("-", detailWidth) + "\n")
	for _, ev := range byRank {
		b.WriteString(fmt.Sprintf("%3d  %s  %5.1f  %5.1f  %5.1f  %5.1f  %5.1f  %4d\n",
			ev.Number,
			padRight(ev.HorseName, nameWidth),
			ev.FormScore,
			ev.Last3FScore,
			ev.UpsetScore,
			ev.VenueScore,
			ev.TotalScore,
			ev.PastRaceCount,
		))
	}
	b.WriteString("\n")
}

func writeSummary(b *strings.Builder, r *models.RaceReport) {
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")
	b.WriteString("  Value horses\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n")

	value := r.ValueHorses()
	if len(value) == 0 {
		b.WriteString("  No clear value horse detected.\n\n")
		return
	}
	for _, ev := range value {
		b.WriteString(fmt.Sprintf("  %s %s  %d %s  (odds %s / popularity %s -> ability %d, gap %s)\n",
			ev.Grade.Mark(),
			ev.Grade,
			ev.Number,
			ev.HorseName,
			formatOdds(ev.Odds, "---"),
			formatPopularity(ev.Popularity),
			ev.AbilityRank,
			formatGap(ev.Gap),
		))
	}
	b.WriteString("\n")
}

func formatOdds(odds *float64, missing string) string {
	if odds == nil {
		return missing
	}
	return fmt.Sprintf("%.1f", *odds)
}

func formatPopularity(pop *int) string {
	if pop == nil {
		return "-"
	}
	return strconv.Itoa(*pop)
}

func formatGap(gap int) string {
	if gap > 0 {
		return "+" + strconv.Itoa(gap)
	}
	return strconv.Itoa(gap)
}

// displayWidth counts wide, fullwidth and ambiguous runes as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth, width.EastAsianAmbiguous:
			w += 2
		default:
			w++
		}
	}
	return w
}

// padRight pads s with spaces to the given display width. Longer strings are
// returned unchanged.
func padRight(s string, n int) string {
	if diff := n - displayWidth(s); diff > 0 {
		return s + strings.Repeat(" ", diff)
	}
	return s
}
