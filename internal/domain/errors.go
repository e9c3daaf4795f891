package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// ErrMissingColumn is an input-format error: a required column was
	// absent from the order source (§7 "Input-format error").
	ErrMissingColumn = errors.New("order source is missing a required column")

	// ErrBadTimestamp is an input-format error: a due-date column could
	// not be parsed (§7 "Input-format error").
	ErrBadTimestamp = errors.New("order source has an unparseable timestamp")

	// ErrUnknownRun is returned by the Run Store when a run ID does not
	// exist.
	ErrUnknownRun = errors.New("run not found")
)
