package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/Incrediblez7/wrapresource/internal/storage"
	"github.com/Incrediblez7/wrapresource/pkg/types"
)

// Key prefixes for the ledger store.
var (
	prefixBalance = []byte("b/") // b/<code>/<owner> -> balanceRow JSON
	prefixSupply  = []byte("s/") // s/<code> -> SupplyRecord JSON
)

// SupplyRecord tracks total minted amount, cap and issuer for one symbol
// code. Created once, never deleted; supply moves only through issue/retire.
type SupplyRecord struct {
	Supply    types.Asset `json:"supply"`
	MaxSupply types.Asset `json:"max_supply"`
	Issuer    types.Name  `json:"issuer"`
}

// balanceRow is one (owner, symbol-code) balance. Payer is the identity that
// bears the row's storage cost, recorded when the row is created.
type balanceRow struct {
	Balance types.Asset `json:"balance"`
	Payer   types.Name  `json:"payer"`
}

// Store persists supply records and balance rows.
type Store struct {
	db storage.DB
}

// NewStore creates a ledger store backed by the given database.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// SupplyRecord retrieves the supply record for a symbol code.
// Fails with ErrSymbolNotFound when absent.
func (s *Store) SupplyRecord(code types.SymbolCode) (*SupplyRecord, error) {
	ok, err := s.db.Has(supplyKey(code))
	if err != nil {
		return nil, fmt.Errorf("supply get: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, code)
	}
	data, err := s.db.Get(supplyKey(code))
	if err != nil {
		return nil, fmt.Errorf("supply get: %w", err)
	}
	var rec SupplyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("supply unmarshal: %w", err)
	}
	return &rec, nil
}

// HasSupplyRecord checks whether a supply record exists for a symbol code.
func (s *Store) HasSupplyRecord(code types.SymbolCode) (bool, error) {
	return s.db.Has(supplyKey(code))
}

// PutSupplyRecord stores a supply record.
func (s *Store) PutSupplyRecord(code types.SymbolCode, rec *SupplyRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("supply marshal: %w", err)
	}
	return s.db.Put(supplyKey(code), data)
}

// Balance retrieves the balance row for (owner, code).
// Fails with ErrBalanceNotFound when absent.
func (s *Store) Balance(owner types.Name, code types.SymbolCode) (types.Asset, error) {
	row, err := s.balanceRow(owner, code)
	if err != nil {
		return types.Asset{}, err
	}
	return row.Balance, nil
}

func (s *Store) balanceRow(owner types.Name, code types.SymbolCode) (*balanceRow, error) {
	ok, err := s.db.Has(balanceKey(owner, code))
	if err != nil {
		return nil, fmt.Errorf("balance get: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrBalanceNotFound, owner, code)
	}
	data, err := s.db.Get(balanceKey(owner, code))
	if err != nil {
		return nil, fmt.Errorf("balance get: %w", err)
	}
	var row balanceRow
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("balance unmarshal: %w", err)
	}
	return &row, nil
}

// HasBalance checks whether a balance row exists for (owner, code).
func (s *Store) HasBalance(owner types.Name, code types.SymbolCode) (bool, error) {
	return s.db.Has(balanceKey(owner, code))
}

func (s *Store) putBalanceRow(owner types.Name, row *balanceRow) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("balance marshal: %w", err)
	}
	return s.db.Put(balanceKey(owner, row.Balance.Symbol.Code), data)
}

// EraseBalance removes the balance row for (owner, code).
func (s *Store) EraseBalance(owner types.Name, code types.SymbolCode) error {
	return s.db.Delete(balanceKey(owner, code))
}

// ForEachBalance iterates over all balance rows for a symbol code.
// Return a non-nil error from fn to stop iteration early.
func (s *Store) ForEachBalance(code types.SymbolCode, fn func(owner types.Name, balance types.Asset) error) error {
	prefix := append(append([]byte{}, prefixBalance...), []byte(string(code)+"/")...)
	return s.db.ForEach(prefix, func(key, value []byte) error {
		owner := types.Name(key[len(prefix):])
		var row balanceRow
		if err := json.Unmarshal(value, &row); err != nil {
			return nil // Skip corrupt entries.
		}
		return fn(owner, row.Balance)
	})
}

// balanceKey builds a storage key: "b/" + code + "/" + owner. Keying by code
// first keeps all holders of one symbol under a single iterable prefix.
func balanceKey(owner types.Name, code types.SymbolCode) []byte {
	return []byte(string(prefixBalance) + string(code) + "/" + string(owner))
}

// supplyKey builds a storage key: "s/" + code.
func supplyKey(code types.SymbolCode) []byte {
	return []byte(string(prefixSupply) + string(code))
}
