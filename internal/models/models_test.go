package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCard = `{
  "source_url": "https://race.example/shutuba_past.html?race_id=202608020411",
  "race_id": "202608020411",
  "race": {"race_name": "Kyoto Kinen", "venue": "Kyoto", "distance": 2200},
  "horses": [
    {
      "number": 1,
      "horse_id": "2021104567",
      "horse_name": "Strong Closer",
      "jockey": "Take",
      "odds": 12.4,
      "popularity": 5,
      "past_races": [
        {"run": 1, "venue": "Kyoto", "position": 1, "last_3f": "33.4", "popularity": 4},
        {"run": 2, "venue": "Tokyo", "position": 0, "last_3f": 34.1},
        {"run": 3, "venue": "Hanshin", "last_3f": null}
      ]
    }
  ]
}`

func TestDecodeRaceCard(t *testing.T) {
	card, err := ParseRaceCard([]byte(validCard))
	require.NoError(t, err)

	assert.Equal(t, "202608020411", card.RaceID)
	assert.Equal(t, "Kyoto", card.Race.Venue)
	require.NotNil(t, card.Race.Distance)
	assert.Equal(t, 2200, *card.Race.Distance)
	require.Len(t, card.Horses, 1)

	h := card.Horses[0]
	assert.Equal(t, 5, h.GetPopularity())
	require.Len(t, h.PastRaces, 3)

	assert.Equal(t, Seconds("33.4"), h.PastRaces[0].Last3F)
	assert.Equal(t, Seconds("34.1"), h.PastRaces[1].Last3F)
	assert.Equal(t, Seconds(""), h.PastRaces[2].Last3F)

	require.NotNil(t, h.PastRaces[1].Position)
	assert.Equal(t, 0, *h.PastRaces[1].Position)
	assert.Nil(t, h.PastRaces[2].Position)
	assert.Nil(t, h.PastRaces[1].Popularity)
}

func TestDecodeRaceCardMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"missing race_id", `{"race": {}, "horses": [{"number": 1}]}`, "race_id"},
		{"missing race", `{"race_id": "r1", "horses": [{"number": 1}]}`, "race"},
		{"missing horses", `{"race_id": "r1", "race": {"venue": "Kyoto"}}`, "horses"},
		{"null horses", `{"race_id": "r1", "race": {"venue": "Kyoto"}, "horses": null}`, "horses"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := DecodeRaceCard(strings.NewReader(tt.input))
			assert.Nil(t, card)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInputMissingField))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestDecodeRaceCardEmptyHorses(t *testing.T) {
	_, err := DecodeRaceCard(strings.NewReader(`{"race_id": "r1", "race": {}, "horses": []}`))
	assert.True(t, errors.Is(err, ErrEmptyField))
	assert.False(t, errors.Is(err, ErrInputMissingField))
}

func TestDecodeRaceCardInvalidJSON(t *testing.T) {
	_, err := DecodeRaceCard(strings.NewReader(`{"race_id": `))
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestDecodeRaceCardInvalidHorseNumber(t *testing.T) {
	input := `{"race_id": "r1", "race": {}, "horses": [{"number": 1}, {"number": 0}]}`

	_, err := DecodeRaceCard(strings.NewReader(input))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidHorse))
	assert.Contains(t, err.Error(), "Number")
}

func TestSecondsUnmarshal(t *testing.T) {
	var pr PastRace
	require.NoError(t, json.Unmarshal([]byte(`{"last_3f": 35}`), &pr))
	assert.Equal(t, Seconds("35"), pr.Last3F)

	require.NoError(t, json.Unmarshal([]byte(`{"last_3f": "---"}`), &pr))
	assert.Equal(t, Seconds("---"), pr.Last3F)

	assert.Error(t, json.Unmarshal([]byte(`{"last_3f": true}`), &pr))
}

func TestGradeOrderAndMark(t *testing.T) {
	for i, g := range Grades {
		assert.Equal(t, i, g.Order())
	}
	assert.Equal(t, 9, Grade("X").Order())
	assert.Equal(t, "★", GradeS.Mark())
	assert.Equal(t, "△", GradeC.Mark())
}

func TestRaceReportValueHorses(t *testing.T) {
	report := RaceReport{Evaluations: []Evaluation{
		{Number: 3, Grade: GradeS},
		{Number: 1, Grade: GradeA},
		{Number: 2, Grade: GradeB},
	}}

	value := report.ValueHorses()
	require.Len(t, value, 2)
	assert.Equal(t, 3, value[0].Number)
	assert.Equal(t, 1, value[1].Number)
}

func TestHorseEntryGetPopularity(t *testing.T) {
	h := HorseEntry{}
	assert.Equal(t, 0, h.GetPopularity())
}
