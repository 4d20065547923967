package ledger

import (
	"errors"
	"sort"
	"testing"

	"github.com/Incrediblez7/wrapresource/internal/storage"
	"github.com/Incrediblez7/wrapresource/pkg/types"
)

func TestStoreSupplyRecordRoundTrip(t *testing.T) {
	db := storage.NewMemory()
	defer db.Close()
	store := NewStore(db)

	rec := &SupplyRecord{
		Supply:    types.NewAsset(0, wram4),
		MaxSupply: types.NewAsset(1000, wram4),
		Issuer:    "issuer",
	}
	if err := store.PutSupplyRecord("WRAM", rec); err != nil {
		t.Fatalf("PutSupplyRecord: %v", err)
	}

	got, err := store.SupplyRecord("WRAM")
	if err != nil {
		t.Fatalf("SupplyRecord: %v", err)
	}
	if *got != *rec {
		t.Errorf("SupplyRecord = %+v, want %+v", got, rec)
	}

	if _, err := store.SupplyRecord("NOPE"); !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("missing record error = %v, want ErrSymbolNotFound", err)
	}
}

func TestStoreBalancePayerRecorded(t *testing.T) {
	db := storage.NewMemory()
	defer db.Close()
	store := NewStore(db)

	row := &balanceRow{Balance: types.NewAsset(42, wram4), Payer: "bob"}
	if err := store.putBalanceRow("alice", row); err != nil {
		t.Fatalf("putBalanceRow: %v", err)
	}

	got, err := store.balanceRow("alice", "WRAM")
	if err != nil {
		t.Fatalf("balanceRow: %v", err)
	}
	if got.Payer != "bob" {
		t.Errorf("Payer = %s, want bob", got.Payer)
	}
	if got.Balance.Amount != 42 {
		t.Errorf("Balance = %d, want 42", got.Balance.Amount)
	}
}

func TestStoreForEachBalanceIsolatesCodes(t *testing.T) {
	db := storage.NewMemory()
	defer db.Close()
	store := NewStore(db)

	eos4 := types.Symbol{Code: "EOS", Precision: 4}
	store.putBalanceRow("alice", &balanceRow{Balance: types.NewAsset(1, wram4), Payer: "alice"})
	store.putBalanceRow("bob", &balanceRow{Balance: types.NewAsset(2, wram4), Payer: "bob"})
	store.putBalanceRow("alice", &balanceRow{Balance: types.NewAsset(3, eos4), Payer: "alice"})

	var owners []string
	err := store.ForEachBalance("WRAM", func(owner types.Name, balance types.Asset) error {
		owners = append(owners, string(owner))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachBalance: %v", err)
	}
	sort.Strings(owners)
	if len(owners) != 2 || owners[0] != "alice" || owners[1] != "bob" {
		t.Errorf("WRAM owners = %v, want [alice bob]", owners)
	}
}
