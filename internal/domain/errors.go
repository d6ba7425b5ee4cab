package domain

import "errors"

// Allocation errors are surfaced to the caller before any simulation starts
// and are never retried automatically.
var (
	ErrInvalidAllocation     = errors.New("invalid allocation")
	ErrEmptyPortfolio        = errors.New("portfolio must contain at least one asset")
	ErrInvalidInvestment     = errors.New("total investment must be positive")
	ErrInvalidRiskPreference = errors.New("risk preference must be between 0 and 100")
	ErrInvalidMarket         = errors.New("invalid market")
	ErrInvalidSymbol         = errors.New("invalid symbol")
	ErrDuplicateSymbol       = errors.New("duplicate symbol")
)

// Session errors
var (
	ErrMissingSessionState = errors.New("missing session state: allocate a portfolio first")
	ErrInvalidTransition   = errors.New("invalid simulation state transition")
	ErrSessionTerminated   = errors.New("simulation session terminated")
	ErrSessionNotFound     = errors.New("simulation session not found")
	ErrTooManySessions     = errors.New("too many live simulation sessions")
)

// ErrDegeneratePrice names a price step that would have produced a
// non-positive price. The tick loop clamps to the price floor instead of
// returning it.
var ErrDegeneratePrice = errors.New("degenerate price")
