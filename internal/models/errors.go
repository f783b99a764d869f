package models

import "errors"

// Input errors. The first two are fatal and abort a run before any scoring.
var (
	ErrInputMissingField = errors.New("input missing required field")
	ErrEmptyField        = errors.New("input field is empty")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidHorse      = errors.New("invalid horse entry")
)
