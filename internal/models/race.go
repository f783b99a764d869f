package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
)

// RaceContext describes today's race. Only Venue is used for scoring; the
// remaining fields are carried through to the report untouched.
type RaceContext struct {
	RaceName       string `json:"race_name"`
	RaceInfoText   string `json:"race_info_text,omitempty"`
	PostTime       string `json:"post_time,omitempty"`
	CourseType     string `json:"course_type"`
	Distance       *int   `json:"distance"`
	TrackCondition string `json:"track_condition"`
	Weather        string `json:"weather"`
	RaceDate       string `json:"race_date"`
	Venue          string `json:"venue"`
}

// RaceCard is the race and odds record produced by the scraper.
type RaceCard struct {
	SourceURL string       `json:"source_url,omitempty"`
	RaceID    string       `json:"race_id"`
	Race      RaceContext  `json:"race"`
	Horses    []HorseEntry `json:"horses" validate:"dive"`
}

// rawRaceCard keeps the top-level keys as pointers so that an absent key can
// be told apart from an empty one.
type rawRaceCard struct {
	SourceURL string        `json:"source_url"`
	RaceID    *string       `json:"race_id"`
	Race      *RaceContext  `json:"race"`
	Horses    *[]HorseEntry `json:"horses"`
}

var cardValidator = validator.New()

// DecodeRaceCard reads a race card and rejects it when race_id, race or horses
// is missing, or when horses is empty.
func DecodeRaceCard(r io.Reader) (*RaceCard, error) {
	var raw rawRaceCard
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	switch {
	case raw.RaceID == nil:
		return nil, fmt.Errorf("%w: race_id", ErrInputMissingField)
	case raw.Race == nil:
		return nil, fmt.Errorf("%w: race", ErrInputMissingField)
	case raw.Horses == nil:
		return nil, fmt.Errorf("%w: horses", ErrInputMissingField)
	case len(*raw.Horses) == 0:
		return nil, fmt.Errorf("%w: horses", ErrEmptyField)
	}

	card := &RaceCard{
		SourceURL: raw.SourceURL,
		RaceID:    *raw.RaceID,
		Race:      *raw.Race,
		Horses:    *raw.Horses,
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}
	return card, nil
}

// ParseRaceCard decodes a race card held in memory.
func ParseRaceCard(data []byte) (*RaceCard, error) {
	return DecodeRaceCard(bytes.NewReader(data))
}

// Validate checks the per-horse constraints that cannot be expressed by
// presence alone.
func (c *RaceCard) Validate() error {
	if len(c.Horses) == 0 {
		return fmt.Errorf("%w: horses", ErrEmptyField)
	}
	if err := cardValidator.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed %s (value %v)", ErrInvalidHorse, fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidHorse, err)
	}
	return nil
}
