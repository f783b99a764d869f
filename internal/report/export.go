package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yourusername/value-hunter/internal/models"
)

// csvHeader lists the exported columns in order.
var csvHeader = []string{
	"race_id", "number", "horse_id", "horse_name", "jockey", "odds", "popularity",
	"form_score", "last3f_score", "upset_score", "venue_score", "total_score",
	"ability_rank", "gap", "grade", "past_race_count",
}

// ExportToJSON writes the report as indented UTF-8 JSON. Non-ASCII text such
// as horse names is written unescaped.
func ExportToJSON(report *models.RaceReport, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// ExportToCSV writes one row per evaluation, in report order, for spreadsheets.
func ExportToCSV(report *models.RaceReport, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, ev := range report.Evaluations {
		if err := w.Write(csvRow(report.RaceID, ev)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode csv: %w", err)
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

func csvRow(raceID string, ev models.Evaluation) []string {
	odds := ""
	if ev.Odds != nil {
		odds = strconv.FormatFloat(*ev.Odds, 'f', -1, 64)
	}
	pop := ""
	if ev.Popularity != nil {
		pop = strconv.Itoa(*ev.Popularity)
	}
	return []string{
		raceID,
		strconv.Itoa(ev.Number),
		ev.HorseID,
		ev.HorseName,
		ev.Jockey,
		odds,
		pop,
		formatScore(ev.FormScore),
		formatScore(ev.Last3FScore),
		formatScore(ev.UpsetScore),
		formatScore(ev.VenueScore),
		formatScore(ev.TotalScore),
		strconv.Itoa(ev.AbilityRank),
		strconv.Itoa(ev.Gap),
		string(ev.Grade),
		strconv.Itoa(ev.PastRaceCount),
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
