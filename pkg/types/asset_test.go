package types

import (
	"errors"
	"testing"
)

var (
	eos4  = Symbol{Code: "EOS", Precision: 4}
	wram4 = Symbol{Code: "WRAM", Precision: 4}
)

func TestAssetValid(t *testing.T) {
	tests := []struct {
		asset Asset
		valid bool
	}{
		{NewAsset(0, eos4), true},
		{NewAsset(MaxAssetAmount, eos4), true},
		{NewAsset(-MaxAssetAmount, eos4), true},
		{NewAsset(MaxAssetAmount+1, eos4), false},
		{NewAsset(-MaxAssetAmount-1, eos4), false},
		{NewAsset(1, Symbol{Code: "eos", Precision: 4}), false},
		{NewAsset(1, Symbol{Code: "EOS", Precision: 19}), false},
	}

	for _, tt := range tests {
		if got := tt.asset.Valid(); got != tt.valid {
			t.Errorf("Asset(%d, %s).Valid() = %v, want %v",
				tt.asset.Amount, tt.asset.Symbol, got, tt.valid)
		}
	}
}

func TestAssetAddSub(t *testing.T) {
	a := NewAsset(40000, eos4)
	b := NewAsset(25000, eos4)

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sum.Amount != 65000 {
		t.Errorf("Add = %d, want 65000", sum.Amount)
	}

	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if diff.Amount != 15000 {
		t.Errorf("Sub = %d, want 15000", diff.Amount)
	}

	// A debit below zero is representable; the ledger rejects it, not the type.
	neg, err := b.Sub(a)
	if err != nil {
		t.Fatalf("Sub below zero: %v", err)
	}
	if neg.Amount != -15000 {
		t.Errorf("Sub below zero = %d, want -15000", neg.Amount)
	}
}

func TestAssetSymbolMismatch(t *testing.T) {
	a := NewAsset(1, eos4)
	b := NewAsset(1, wram4)
	if _, err := a.Add(b); !errors.Is(err, ErrSymbolMismatch) {
		t.Errorf("Add mismatched codes error = %v, want ErrSymbolMismatch", err)
	}

	// Same code, different precision is also a mismatch.
	c := NewAsset(1, Symbol{Code: "EOS", Precision: 2})
	if _, err := a.Sub(c); !errors.Is(err, ErrSymbolMismatch) {
		t.Errorf("Sub mismatched precision error = %v, want ErrSymbolMismatch", err)
	}
}

func TestAssetOverflow(t *testing.T) {
	max := NewAsset(MaxAssetAmount, eos4)
	one := NewAsset(1, eos4)

	if _, err := max.Add(one); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("Add overflow error = %v, want ErrAmountOverflow", err)
	}

	min := NewAsset(-MaxAssetAmount, eos4)
	if _, err := min.Sub(one); !errors.Is(err, ErrAmountOverflow) {
		t.Errorf("Sub underflow error = %v, want ErrAmountOverflow", err)
	}
}

func TestAssetString(t *testing.T) {
	tests := []struct {
		asset Asset
		want  string
	}{
		{NewAsset(10050, eos4), "1.0050 EOS"},
		{NewAsset(0, eos4), "0.0000 EOS"},
		{NewAsset(-10050, eos4), "-1.0050 EOS"},
		{NewAsset(5, eos4), "0.0005 EOS"},
		{NewAsset(42, Symbol{Code: "RAM", Precision: 0}), "42 RAM"},
	}

	for _, tt := range tests {
		if got := tt.asset.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseAsset(t *testing.T) {
	tests := []struct {
		in     string
		amount int64
		sym    Symbol
	}{
		{"1.0000 EOS", 10000, eos4},
		{"0.0005 EOS", 5, eos4},
		{"-2.5000 EOS", -25000, eos4},
		{"42 RAM", 42, Symbol{Code: "RAM", Precision: 0}},
		{"461168601842738.7903 WRAM", MaxAssetAmount, wram4},
	}

	for _, tt := range tests {
		got, err := ParseAsset(tt.in)
		if err != nil {
			t.Errorf("ParseAsset(%q): %v", tt.in, err)
			continue
		}
		if got.Amount != tt.amount || got.Symbol != tt.sym {
			t.Errorf("ParseAsset(%q) = {%d %s}, want {%d %s}",
				tt.in, got.Amount, got.Symbol, tt.amount, tt.sym)
		}
	}
}

func TestParseAssetErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"1.0000",
		"EOS",
		"1.0000 eos",
		".5 EOS",
		"1.0000000000000000000 EOS", // 19 fractional digits
		"461168601842738.7904 WRAM", // MaxAssetAmount + 1
		"abc EOS",
		"1.0 EOS extra",
	} {
		if _, err := ParseAsset(s); !errors.Is(err, ErrInvalidAsset) {
			t.Errorf("ParseAsset(%q) error = %v, want ErrInvalidAsset", s, err)
		}
	}
}

func TestParseAssetRoundTrip(t *testing.T) {
	for _, s := range []string{"1.0050 EOS", "0.0000 WRAM", "-12.3456 EOS", "7 RAM"} {
		a, err := ParseAsset(s)
		if err != nil {
			t.Fatalf("ParseAsset(%q): %v", s, err)
		}
		if got := a.String(); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}
