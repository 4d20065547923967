package types

import (
	"errors"
	"testing"
)

func TestSymbolCodeValid(t *testing.T) {
	tests := []struct {
		code  SymbolCode
		valid bool
	}{
		{"EOS", true},
		{"WRAM", true},
		{"A", true},
		{"ABCDEFG", true},
		{"", false},
		{"ABCDEFGH", false},
		{"eos", false},
		{"EO5", false},
		{"E OS", false},
	}

	for _, tt := range tests {
		if got := tt.code.Valid(); got != tt.valid {
			t.Errorf("SymbolCode(%q).Valid() = %v, want %v", tt.code, got, tt.valid)
		}
	}
}

func TestSymbolString(t *testing.T) {
	sym := Symbol{Code: "WRAM", Precision: 4}
	if got := sym.String(); got != "4,WRAM" {
		t.Errorf("String() = %q, want %q", got, "4,WRAM")
	}
}

func TestParseSymbol(t *testing.T) {
	sym, err := ParseSymbol("4,EOS")
	if err != nil {
		t.Fatalf("ParseSymbol: %v", err)
	}
	if sym.Code != "EOS" || sym.Precision != 4 {
		t.Errorf("ParseSymbol = %+v, want {EOS 4}", sym)
	}

	sym, err = ParseSymbol("0,RAM")
	if err != nil {
		t.Fatalf("ParseSymbol zero precision: %v", err)
	}
	if sym.Precision != 0 {
		t.Errorf("Precision = %d, want 0", sym.Precision)
	}
}

func TestParseSymbolErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"EOS",
		"4",
		"4,eos",
		"-1,EOS",
		"19,EOS",
		"x,EOS",
		"4,",
	} {
		if _, err := ParseSymbol(s); !errors.Is(err, ErrInvalidSymbolFormat) {
			t.Errorf("ParseSymbol(%q) error = %v, want ErrInvalidSymbolFormat", s, err)
		}
	}
}
