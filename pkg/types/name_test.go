package types

import "testing"

func TestNameValid(t *testing.T) {
	tests := []struct {
		name  Name
		valid bool
	}{
		{"alice", true},
		{"eosio.ram", true},
		{"wrap.token", true},
		{"a", true},
		{"account12345", true},
		{"name.with.dot", false}, // 13 chars
		{"12345", true},
		{"", false},
		{"toolongaccount", false},
		{"Alice", false},
		{"under_score", false},
		{"has space", false},
		{".leading", false},
		{"trailing.", false},
		{"name6", false}, // 6 is outside 1-5
	}

	for _, tt := range tests {
		if got := tt.name.Valid(); got != tt.valid {
			t.Errorf("Name(%q).Valid() = %v, want %v", tt.name, got, tt.valid)
		}
	}
}
