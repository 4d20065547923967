package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Symbol limits.
const (
	MaxSymbolCodeLen = 7  // Symbol codes are 1-7 uppercase letters.
	MaxPrecision     = 18 // Decimal places representable in an int64 amount.
)

// ErrInvalidSymbolFormat is returned by ParseSymbol for malformed input.
var ErrInvalidSymbolFormat = errors.New("invalid symbol format")

// SymbolCode distinguishes one fungible-token type from another.
type SymbolCode string

// Valid reports whether the code is 1-7 characters from [A-Z].
func (c SymbolCode) Valid() bool {
	if len(c) == 0 || len(c) > MaxSymbolCodeLen {
		return false
	}
	for i := 0; i < len(c); i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

// String returns the code as a plain string.
func (c SymbolCode) String() string {
	return string(c)
}

// Symbol pairs a symbol code with its decimal precision. Two assets may only
// be combined when both the code and the precision match.
type Symbol struct {
	Code      SymbolCode `json:"code"`
	Precision uint8      `json:"precision"`
}

// Valid reports whether the symbol has a valid code and precision.
func (s Symbol) Valid() bool {
	return s.Code.Valid() && s.Precision <= MaxPrecision
}

// String renders the symbol in "precision,CODE" form, e.g. "4,WRAM".
func (s Symbol) String() string {
	return strconv.Itoa(int(s.Precision)) + "," + string(s.Code)
}

// ParseSymbol parses a "precision,CODE" string.
func ParseSymbol(s string) (Symbol, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Symbol{}, fmt.Errorf("%w: %q (want \"precision,CODE\")", ErrInvalidSymbolFormat, s)
	}
	prec, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 8)
	if err != nil {
		return Symbol{}, fmt.Errorf("%w: bad precision in %q", ErrInvalidSymbolFormat, s)
	}
	sym := Symbol{Code: SymbolCode(strings.TrimSpace(parts[1])), Precision: uint8(prec)}
	if !sym.Valid() {
		return Symbol{}, fmt.Errorf("%w: %q", ErrInvalidSymbolFormat, s)
	}
	return sym, nil
}
