package store

import "errors"

var (
	// ErrNotFound is returned when a keyed mutation or lookup matches no rows.
	ErrNotFound = errors.New("record not found")
	// ErrMissingID is returned when a mutation is attempted without an identifier.
	ErrMissingID = errors.New("missing identifier")
	// ErrInvalidRoster is returned for empty or duplicate worker names and out-of-range moves.
	ErrInvalidRoster = errors.New("invalid worker roster")
)

// Move describes a reorder of the worker roster.
type Move struct {
	From int `json:"from"`
	To   int `json:"to"`
}
