package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the rate store and every calculator. Callers
// match with errors.Is; wrapped messages carry the specifics.
var (
	// ErrInvalidRequest marks malformed or out-of-range input facts.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRateNotFound means no rate entry exists for the exact
	// (tax type, tax year, category). There is no fallback year.
	ErrRateNotFound = errors.New("rate not found")

	// ErrUnsupportedTaxType means the taxpayer category does not owe
	// the requested tax type.
	ErrUnsupportedTaxType = errors.New("unsupported tax type")
)

// ErrInvalidAmount is the InvalidRequest specialization raised by the
// bracket evaluator for negative amounts.
var ErrInvalidAmount = fmt.Errorf("%w: amount must not be negative", ErrInvalidRequest)
