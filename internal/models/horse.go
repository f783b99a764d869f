package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// HorseEntry is one runner in today's race.
type HorseEntry struct {
	Number     int        `json:"number" validate:"gt=0"`
	HorseID    string     `json:"horse_id,omitempty"`
	HorseName  string     `json:"horse_name"`
	Jockey     string     `json:"jockey"`
	Weight     *float64   `json:"weight,omitempty"`
	Odds       *float64   `json:"odds"`
	Popularity *int       `json:"popularity"`
	PastRaces  []PastRace `json:"past_races"`
}

// GetPopularity returns the market rank, or 0 when it has not been published.
func (h *HorseEntry) GetPopularity() int {
	if h.Popularity == nil {
		return 0
	}
	return *h.Popularity
}

// PastRace is one of a horse's recent starts. Run 1 is the most recent.
type PastRace struct {
	Run        int     `json:"run"`
	Date       string  `json:"date,omitempty"`
	Venue      string  `json:"venue,omitempty"`
	Position   *int    `json:"position"`
	Time       string  `json:"time,omitempty"`
	Last3F     Seconds `json:"last_3f"`
	Popularity *int    `json:"popularity"`
}

// Seconds is a time in seconds kept in its scraped text form. The scraper
// emits strings such as "33.8" but numbers are accepted too.
type Seconds string

// UnmarshalJSON accepts a JSON string, number or null.
func (s *Seconds) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Seconds(str)
		return nil
	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("last_3f: %w", err)
		}
		*s = Seconds(num.String())
		return nil
	}
}
