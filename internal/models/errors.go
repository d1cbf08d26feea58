package models

import "errors"

// Custom errors
var (
	ErrDegenerateRace   = errors.New("race probabilities do not sum to a positive value")
	ErrUnsortedInput    = errors.New("race groups are not in strictly increasing chronological order")
	ErrEmptyResult      = errors.New("no race was settled")
	ErrUnknownStakeMode = errors.New("unknown stake mode")
	ErrUnknownWinRate   = errors.New("unknown win-rate filter mode")
	ErrInvalidOdds      = errors.New("invalid odds format")
	ErrMissingColumn    = errors.New("required column missing from input")
	ErrNotFound         = errors.New("record not found")
)
