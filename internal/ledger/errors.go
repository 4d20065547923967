package ledger

import (
	"errors"
	"fmt"
)

// Error categories. Every ledger failure wraps exactly one of these, so
// callers can classify with errors.Is without matching message text.
// Authorization failures surface as host.ErrMissingAuth from the collaborator.
var (
	ErrValidation = errors.New("validation failed")
	ErrState      = errors.New("state error")
	ErrInvariant  = errors.New("invariant violation")
)

// Ledger errors.
var (
	ErrInvalidSymbol     = fmt.Errorf("%w: invalid symbol name", ErrValidation)
	ErrInvalidQuantity   = fmt.Errorf("%w: invalid quantity", ErrValidation)
	ErrNotPositive       = fmt.Errorf("%w: quantity must be positive", ErrValidation)
	ErrPrecisionMismatch = fmt.Errorf("%w: symbol precision mismatch", ErrValidation)
	ErrMemoTooLong       = fmt.Errorf("%w: memo has more than 256 bytes", ErrValidation)
	ErrSelfTransfer      = fmt.Errorf("%w: cannot transfer to self", ErrValidation)

	ErrSymbolExists    = fmt.Errorf("%w: token with symbol already exists", ErrState)
	ErrSymbolNotFound  = fmt.Errorf("%w: token with symbol does not exist", ErrState)
	ErrAccountNotFound = fmt.Errorf("%w: account does not exist", ErrState)
	ErrNotIssuer       = fmt.Errorf("%w: tokens can only be issued to issuer account", ErrState)
	ErrBalanceNotFound = fmt.Errorf("%w: no balance object found", ErrState)
	ErrBalanceNotZero  = fmt.Errorf("%w: cannot close because the balance is not zero", ErrState)

	ErrOverdrawn      = fmt.Errorf("%w: overdrawn balance", ErrInvariant)
	ErrSupplyExceeded = fmt.Errorf("%w: quantity exceeds available supply", ErrInvariant)
)
