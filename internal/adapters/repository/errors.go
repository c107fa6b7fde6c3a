package repository

import "errors"

// Sentinel kinds for store errors. Callers branch with errors.Is.
var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamExists        = errors.New("team already exists")
	ErrConflict          = errors.New("version conflict")
	ErrDuplicateMatchday = errors.New("duplicate matchday entry")
	ErrUnavailable       = errors.New("store unavailable")
)
