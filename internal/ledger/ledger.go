// Package ledger implements the fungible-token accounting engine.
//
// Balances are kept per (owner, symbol-code) and every symbol has a single
// supply record created once and mutated only by issue and retire. Per
// symbol, the sum of all balances equals the current supply after every
// committed operation, because those three operations are the only paths
// that touch the rows.
package ledger

import (
	"fmt"

	"github.com/Incrediblez7/wrapresource/internal/host"
	"github.com/Incrediblez7/wrapresource/internal/log"
	"github.com/Incrediblez7/wrapresource/internal/storage"
	"github.com/Incrediblez7/wrapresource/pkg/types"
)

// MaxMemoLen bounds transfer/issue/retire memos.
const MaxMemoLen = 256

// NotifyFunc receives a transfer naming the subscribed account as sender or
// recipient, after the balance mutation has been applied. A non-nil error
// aborts the enclosing unit of work.
type NotifyFunc func(from, to types.Name, quantity types.Asset, memo string) error

// Engine enforces creation, minting, burning, transfer and balance-row
// lifecycle rules over a ledger store. The contract's own identity is
// threaded in explicitly; it gates symbol creation.
type Engine struct {
	store  *Store
	host   host.Host
	self   types.Name
	notify map[types.Name][]NotifyFunc
}

// New creates an engine over db.
func New(db storage.DB, h host.Host, self types.Name) *Engine {
	return &Engine{
		store:  NewStore(db),
		host:   h,
		self:   self,
		notify: make(map[types.Name][]NotifyFunc),
	}
}

// Subscribe registers fn to be invoked for every transfer naming account as
// sender or recipient.
func (e *Engine) Subscribe(account types.Name, fn NotifyFunc) {
	e.notify[account] = append(e.notify[account], fn)
}

// Store exposes the underlying row store for read-only iteration.
func (e *Engine) Store() *Store {
	return e.store
}

// Create registers a new symbol with the given issuer and supply cap.
// Requires the contract's own authorization.
func (e *Engine) Create(issuer types.Name, maxSupply types.Asset) error {
	if err := e.host.RequireAuth(e.self); err != nil {
		return err
	}
	sym := maxSupply.Symbol
	if !sym.Valid() {
		return ErrInvalidSymbol
	}
	if !maxSupply.Valid() {
		return fmt.Errorf("%w: invalid supply", ErrInvalidQuantity)
	}
	if maxSupply.Amount <= 0 {
		return fmt.Errorf("%w: max-supply must be positive", ErrNotPositive)
	}

	exists, err := e.store.HasSupplyRecord(sym.Code)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrSymbolExists, sym.Code)
	}

	rec := &SupplyRecord{
		Supply:    types.NewAsset(0, sym),
		MaxSupply: maxSupply,
		Issuer:    issuer,
	}
	if err := e.store.PutSupplyRecord(sym.Code, rec); err != nil {
		return err
	}
	log.Ledger.Info().
		Str("symbol", sym.String()).
		Str("issuer", issuer.String()).
		Str("max_supply", maxSupply.String()).
		Msg("symbol created")
	return nil
}

// Issue mints quantity to the issuer's balance. Requires the issuer's
// authorization, and tokens can only be issued to the issuer account.
func (e *Engine) Issue(to types.Name, quantity types.Asset, memo string) error {
	sym := quantity.Symbol
	if !sym.Valid() {
		return ErrInvalidSymbol
	}
	if len(memo) > MaxMemoLen {
		return ErrMemoTooLong
	}

	rec, err := e.store.SupplyRecord(sym.Code)
	if err != nil {
		return err
	}
	if to != rec.Issuer {
		return ErrNotIssuer
	}
	if err := e.host.RequireAuth(rec.Issuer); err != nil {
		return err
	}
	if !quantity.Valid() {
		return ErrInvalidQuantity
	}
	if quantity.Amount <= 0 {
		return fmt.Errorf("%w: must issue positive quantity", ErrNotPositive)
	}
	if quantity.Symbol != rec.Supply.Symbol {
		return ErrPrecisionMismatch
	}
	if quantity.Amount > rec.MaxSupply.Amount-rec.Supply.Amount {
		return fmt.Errorf("%w: %s over %s", ErrSupplyExceeded, quantity, rec.MaxSupply)
	}

	rec.Supply, err = rec.Supply.Add(quantity)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
	}
	if err := e.store.PutSupplyRecord(sym.Code, rec); err != nil {
		return err
	}
	if err := e.addBalance(rec.Issuer, quantity, rec.Issuer); err != nil {
		return err
	}
	log.Ledger.Debug().
		Str("to", to.String()).
		Str("quantity", quantity.String()).
		Msg("issued")
	return nil
}

// Retire burns quantity from the issuer's balance and shrinks the supply.
// Requires the issuer's authorization.
func (e *Engine) Retire(quantity types.Asset, memo string) error {
	sym := quantity.Symbol
	if !sym.Valid() {
		return ErrInvalidSymbol
	}
	if len(memo) > MaxMemoLen {
		return ErrMemoTooLong
	}

	rec, err := e.store.SupplyRecord(sym.Code)
	if err != nil {
		return err
	}
	if err := e.host.RequireAuth(rec.Issuer); err != nil {
		return err
	}
	if !quantity.Valid() {
		return ErrInvalidQuantity
	}
	if quantity.Amount <= 0 {
		return fmt.Errorf("%w: must retire positive quantity", ErrNotPositive)
	}
	if quantity.Symbol != rec.Supply.Symbol {
		return ErrPrecisionMismatch
	}

	rec.Supply, err = rec.Supply.Sub(quantity)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
	}
	if err := e.store.PutSupplyRecord(sym.Code, rec); err != nil {
		return err
	}
	if err := e.subBalance(rec.Issuer, quantity); err != nil {
		return err
	}
	log.Ledger.Debug().
		Str("quantity", quantity.String()).
		Msg("retired")
	return nil
}

// Transfer moves quantity from one account to another. Requires the sender's
// authorization. Subscribers for either party are notified after the balance
// mutation; their errors abort the enclosing unit of work.
func (e *Engine) Transfer(from, to types.Name, quantity types.Asset, memo string) error {
	if from == to {
		return ErrSelfTransfer
	}
	if err := e.host.RequireAuth(from); err != nil {
		return err
	}
	if !e.host.IsAccount(to) {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, to)
	}

	rec, err := e.store.SupplyRecord(quantity.Symbol.Code)
	if err != nil {
		return err
	}
	if !quantity.Valid() {
		return ErrInvalidQuantity
	}
	if quantity.Amount <= 0 {
		return fmt.Errorf("%w: must transfer positive quantity", ErrNotPositive)
	}
	if quantity.Symbol != rec.Supply.Symbol {
		return ErrPrecisionMismatch
	}
	if len(memo) > MaxMemoLen {
		return ErrMemoTooLong
	}

	// The recipient bears the new row's storage cost when it authorized
	// this transfer itself; otherwise the sender does.
	payer := from
	if e.host.HasAuth(to) {
		payer = to
	}

	if err := e.subBalance(from, quantity); err != nil {
		return err
	}
	if err := e.addBalance(to, quantity, payer); err != nil {
		return err
	}
	log.Ledger.Debug().
		Str("from", from.String()).
		Str("to", to.String()).
		Str("quantity", quantity.String()).
		Str("memo", memo).
		Msg("transfer")

	for _, fn := range e.notify[from] {
		if err := fn(from, to, quantity, memo); err != nil {
			return err
		}
	}
	for _, fn := range e.notify[to] {
		if err := fn(from, to, quantity, memo); err != nil {
			return err
		}
	}
	return nil
}

// Open creates a zero balance row for (owner, symbol) with payer bearing the
// storage cost. Succeeds as a no-op when the row already exists.
func (e *Engine) Open(owner types.Name, sym types.Symbol, payer types.Name) error {
	if err := e.host.RequireAuth(payer); err != nil {
		return err
	}
	if !e.host.IsAccount(owner) {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, owner)
	}

	rec, err := e.store.SupplyRecord(sym.Code)
	if err != nil {
		return err
	}
	if rec.Supply.Symbol != sym {
		return ErrPrecisionMismatch
	}

	has, err := e.store.HasBalance(owner, sym.Code)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	return e.store.putBalanceRow(owner, &balanceRow{
		Balance: types.NewAsset(0, sym),
		Payer:   payer,
	})
}

// Close erases the (owner, symbol) balance row. Requires the owner's
// authorization and a zero balance.
func (e *Engine) Close(owner types.Name, sym types.Symbol) error {
	if err := e.host.RequireAuth(owner); err != nil {
		return err
	}
	row, err := e.store.balanceRow(owner, sym.Code)
	if err != nil {
		return err
	}
	if !row.Balance.IsZero() {
		return fmt.Errorf("%w: %s", ErrBalanceNotZero, row.Balance)
	}
	return e.store.EraseBalance(owner, sym.Code)
}

// Supply returns the current supply for a symbol code.
func (e *Engine) Supply(code types.SymbolCode) (types.Asset, error) {
	rec, err := e.store.SupplyRecord(code)
	if err != nil {
		return types.Asset{}, err
	}
	return rec.Supply, nil
}

// Balance returns owner's balance for a symbol code.
func (e *Engine) Balance(owner types.Name, code types.SymbolCode) (types.Asset, error) {
	return e.store.Balance(owner, code)
}

// subBalance debits owner. The row must exist and cover the quantity.
func (e *Engine) subBalance(owner types.Name, quantity types.Asset) error {
	row, err := e.store.balanceRow(owner, quantity.Symbol.Code)
	if err != nil {
		return err
	}
	if row.Balance.Amount < quantity.Amount {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrOverdrawn, owner, row.Balance, quantity)
	}
	row.Balance, err = row.Balance.Sub(quantity)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
	}
	return e.store.putBalanceRow(owner, row)
}

// addBalance credits owner, creating the row with payer as storage payer
// when absent.
func (e *Engine) addBalance(owner types.Name, quantity types.Asset, payer types.Name) error {
	has, err := e.store.HasBalance(owner, quantity.Symbol.Code)
	if err != nil {
		return err
	}
	if !has {
		return e.store.putBalanceRow(owner, &balanceRow{Balance: quantity, Payer: payer})
	}
	row, err := e.store.balanceRow(owner, quantity.Symbol.Code)
	if err != nil {
		return err
	}
	row.Balance, err = row.Balance.Add(quantity)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
	}
	return e.store.putBalanceRow(owner, row)
}
