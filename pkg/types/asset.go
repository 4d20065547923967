package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxAssetAmount bounds asset amounts so that the sum or difference of any
// two in-range amounts stays within int64.
const MaxAssetAmount int64 = (1 << 62) - 1

// Asset arithmetic errors.
var (
	ErrSymbolMismatch = errors.New("asset symbol mismatch")
	ErrAmountOverflow = errors.New("asset amount overflow")
	ErrInvalidAsset   = errors.New("invalid asset")
)

// Asset is a signed fixed-point quantity: an integer amount interpreted at
// the symbol's decimal precision.
type Asset struct {
	Amount int64  `json:"amount"`
	Symbol Symbol `json:"symbol"`
}

// NewAsset builds an asset from a raw amount and symbol.
func NewAsset(amount int64, sym Symbol) Asset {
	return Asset{Amount: amount, Symbol: sym}
}

// Valid reports whether the symbol is well formed and the amount is within
// the representable range.
func (a Asset) Valid() bool {
	return a.Symbol.Valid() && a.Amount >= -MaxAssetAmount && a.Amount <= MaxAssetAmount
}

// IsZero reports whether the amount is zero.
func (a Asset) IsZero() bool {
	return a.Amount == 0
}

// sameSymbol fails unless both code and precision match exactly.
func (a Asset) sameSymbol(b Asset) error {
	if a.Symbol != b.Symbol {
		return fmt.Errorf("%w: %s vs %s", ErrSymbolMismatch, a.Symbol, b.Symbol)
	}
	return nil
}

// Add returns a+b, failing on symbol mismatch or overflow.
func (a Asset) Add(b Asset) (Asset, error) {
	if err := a.sameSymbol(b); err != nil {
		return Asset{}, err
	}
	sum := a.Amount + b.Amount
	if sum > MaxAssetAmount || sum < -MaxAssetAmount {
		return Asset{}, fmt.Errorf("%w: %d + %d", ErrAmountOverflow, a.Amount, b.Amount)
	}
	return Asset{Amount: sum, Symbol: a.Symbol}, nil
}

// Sub returns a-b, failing on symbol mismatch or underflow.
func (a Asset) Sub(b Asset) (Asset, error) {
	if err := a.sameSymbol(b); err != nil {
		return Asset{}, err
	}
	diff := a.Amount - b.Amount
	if diff > MaxAssetAmount || diff < -MaxAssetAmount {
		return Asset{}, fmt.Errorf("%w: %d - %d", ErrAmountOverflow, a.Amount, b.Amount)
	}
	return Asset{Amount: diff, Symbol: a.Symbol}, nil
}

// String renders the asset with the symbol's precision, e.g. "1.0050 EOS".
func (a Asset) String() string {
	amount := a.Amount
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	if a.Symbol.Precision == 0 {
		return fmt.Sprintf("%s%d %s", sign, amount, a.Symbol.Code)
	}
	div := int64(1)
	for i := uint8(0); i < a.Symbol.Precision; i++ {
		div *= 10
	}
	return fmt.Sprintf("%s%d.%0*d %s", sign, amount/div, int(a.Symbol.Precision), amount%div, a.Symbol.Code)
}

// ParseAsset parses a "1.0000 EOS" style string. The number of digits after
// the decimal point determines the precision.
func ParseAsset(s string) (Asset, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Asset{}, fmt.Errorf("%w: %q (want \"amount CODE\")", ErrInvalidAsset, s)
	}

	num := fields[0]
	neg := strings.HasPrefix(num, "-")
	num = strings.TrimPrefix(num, "-")

	whole, frac := num, ""
	if dot := strings.IndexByte(num, '.'); dot >= 0 {
		whole, frac = num[:dot], num[dot+1:]
	}
	if whole == "" || len(frac) > MaxPrecision {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAsset, s)
	}

	amount, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAsset, s)
	}
	if neg {
		amount = -amount
	}

	a := Asset{
		Amount: amount,
		Symbol: Symbol{Code: SymbolCode(fields[1]), Precision: uint8(len(frac))},
	}
	if !a.Valid() {
		return Asset{}, fmt.Errorf("%w: %q", ErrInvalidAsset, s)
	}
	return a, nil
}
