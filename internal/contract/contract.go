// Package contract assembles the accounting engine and wrap coordinator
// over a shared keyed store and exposes the contract's entry points. Every
// mutating entry point runs against a speculative overlay of the store and
// commits only when the whole chain of triggered steps succeeds, so a
// transfer plus everything it sets off behaves as one atomic unit of work.
package contract

import (
	"fmt"

	"github.com/Incrediblez7/wrapresource/internal/host"
	"github.com/Incrediblez7/wrapresource/internal/ledger"
	"github.com/Incrediblez7/wrapresource/internal/log"
	"github.com/Incrediblez7/wrapresource/internal/storage"
	"github.com/Incrediblez7/wrapresource/internal/wrap"
	"github.com/Incrediblez7/wrapresource/pkg/types"
)

// prefixWrap namespaces the coordinator's receipt log within the shared store.
var prefixWrap = []byte("wrap/")

// Config identifies the contract and the parties and symbols it works with.
type Config struct {
	// Account is the contract's own identity.
	Account types.Name
	// FeeAccount receives the residual share of each wrap settlement.
	FeeAccount types.Name
	// MarketAccount is the resource marketplace's sale account.
	MarketAccount types.Name
	// Primary is the deposited token, Secondary the wrapped one.
	Primary   types.Symbol
	Secondary types.Symbol
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	for _, n := range []types.Name{c.Account, c.FeeAccount, c.MarketAccount} {
		if !n.Valid() {
			return fmt.Errorf("invalid account name %q", n)
		}
	}
	if !c.Primary.Valid() {
		return fmt.Errorf("invalid primary symbol %q", c.Primary)
	}
	if !c.Secondary.Valid() {
		return fmt.Errorf("invalid secondary symbol %q", c.Secondary)
	}
	if c.Primary.Code == c.Secondary.Code {
		return fmt.Errorf("primary and secondary symbols must differ, both are %s", c.Primary.Code)
	}
	return nil
}

// Contract is the long-lived assembly over one store and host.
type Contract struct {
	db   storage.DB
	host host.Host
	cfg  Config
}

// New creates a contract over db.
func New(db storage.DB, h host.Host, cfg Config) *Contract {
	c := &Contract{db: db, host: h, cfg: cfg}
	c.assemble(db)
	return c
}

// Config returns the contract configuration.
func (c *Contract) Config() Config {
	return c.cfg
}

// assemble builds a fresh engine and coordinator over db, wires the
// contract's transfer notifications to the coordinator and points the host
// marketplace at the same view of the store.
func (c *Contract) assemble(db storage.DB) (*ledger.Engine, *wrap.Coordinator) {
	eng := ledger.New(db, c.host, c.cfg.Account)
	coord := wrap.New(eng, storage.NewPrefixDB(db, prefixWrap), c.host, wrap.Config{
		Self:          c.cfg.Account,
		FeeAccount:    c.cfg.FeeAccount,
		MarketAccount: c.cfg.MarketAccount,
		Primary:       c.cfg.Primary,
		Secondary:     c.cfg.Secondary,
	})
	eng.Subscribe(c.cfg.Account, coord.HandleTransfer)
	c.host.Bind(eng, db)
	return eng, coord
}

// update runs fn as one unit of work: an overlay of the store is assembled,
// mutated speculatively and committed only if fn succeeds. Afterwards the
// host is pointed back at the committed store.
func (c *Contract) update(fn func(*ledger.Engine, *wrap.Coordinator) error) error {
	defer c.assemble(c.db)
	err := storage.Update(c.db, func(tx storage.DB) error {
		eng, coord := c.assemble(tx)
		return fn(eng, coord)
	})
	if err != nil {
		log.Contract.Debug().Err(err).Msg("unit of work rolled back")
	}
	return err
}

// CreateSymbol registers a new symbol. Requires the contract's authority.
func (c *Contract) CreateSymbol(issuer types.Name, maxSupply types.Asset) error {
	return c.update(func(eng *ledger.Engine, _ *wrap.Coordinator) error {
		return eng.Create(issuer, maxSupply)
	})
}

// Issue mints quantity to the issuer. Requires the issuer's authority.
func (c *Contract) Issue(to types.Name, quantity types.Asset, memo string) error {
	return c.update(func(eng *ledger.Engine, _ *wrap.Coordinator) error {
		return eng.Issue(to, quantity, memo)
	})
}

// Retire burns quantity from the issuer. Requires the issuer's authority.
func (c *Contract) Retire(quantity types.Asset, memo string) error {
	return c.update(func(eng *ledger.Engine, _ *wrap.Coordinator) error {
		return eng.Retire(quantity, memo)
	})
}

// Transfer moves quantity between accounts, triggering the wrap or unwrap
// flow when the contract itself is the recipient. Requires the sender's
// authority.
func (c *Contract) Transfer(from, to types.Name, quantity types.Asset, memo string) error {
	return c.update(func(eng *ledger.Engine, _ *wrap.Coordinator) error {
		return eng.Transfer(from, to, quantity, memo)
	})
}

// Open creates a zero balance row. Requires the payer's authority.
func (c *Contract) Open(owner types.Name, sym types.Symbol, payer types.Name) error {
	return c.update(func(eng *ledger.Engine, _ *wrap.Coordinator) error {
		return eng.Open(owner, sym, payer)
	})
}

// Close erases a zero balance row. Requires the owner's authority.
func (c *Contract) Close(owner types.Name, sym types.Symbol) error {
	return c.update(func(eng *ledger.Engine, _ *wrap.Coordinator) error {
		return eng.Close(owner, sym)
	})
}

// OnInboundTransfer replays a primary-token deposit notification.
func (c *Contract) OnInboundTransfer(from, to types.Name, quantity types.Asset, memo string) error {
	return c.update(func(_ *ledger.Engine, coord *wrap.Coordinator) error {
		return coord.OnInboundTransfer(from, to, quantity, memo)
	})
}

// OnUnwrapTransfer replays a secondary-token deposit notification.
func (c *Contract) OnUnwrapTransfer(from, to types.Name, quantity types.Asset, memo string) error {
	return c.update(func(_ *ledger.Engine, coord *wrap.Coordinator) error {
		return coord.OnUnwrapTransfer(from, to, quantity, memo)
	})
}

// SettlePurchase runs the wrap settlement step. Requires the contract's
// authority, which only the chain itself normally carries.
func (c *Contract) SettlePurchase(from types.Name, usageBefore uint64) error {
	return c.update(func(_ *ledger.Engine, coord *wrap.Coordinator) error {
		return coord.SettlePurchase(from, usageBefore)
	})
}

// Refund sweeps the contract's primary-token balance to from. Requires the
// contract's authority.
func (c *Contract) Refund(from types.Name) error {
	return c.update(func(_ *ledger.Engine, coord *wrap.Coordinator) error {
		return coord.Refund(from)
	})
}

// Supply returns the current supply for a symbol code.
func (c *Contract) Supply(code types.SymbolCode) (types.Asset, error) {
	rec, err := ledger.NewStore(c.db).SupplyRecord(code)
	if err != nil {
		return types.Asset{}, err
	}
	return rec.Supply, nil
}

// Balance returns owner's balance for a symbol code.
func (c *Contract) Balance(owner types.Name, code types.SymbolCode) (types.Asset, error) {
	return ledger.NewStore(c.db).Balance(owner, code)
}

// SupplyRecord returns the full supply record for a symbol code.
func (c *Contract) SupplyRecord(code types.SymbolCode) (*ledger.SupplyRecord, error) {
	return ledger.NewStore(c.db).SupplyRecord(code)
}

// Receipts lists the wrap/unwrap audit log.
func (c *Contract) Receipts() ([]wrap.Receipt, error) {
	return wrap.NewReceiptStore(storage.NewPrefixDB(c.db, prefixWrap)).List()
}

// CheckConservation verifies that the sum of all balances for a symbol code
// equals its current supply.
func (c *Contract) CheckConservation(code types.SymbolCode) error {
	store := ledger.NewStore(c.db)
	rec, err := store.SupplyRecord(code)
	if err != nil {
		return err
	}
	total := types.NewAsset(0, rec.Supply.Symbol)
	err = store.ForEachBalance(code, func(_ types.Name, balance types.Asset) error {
		total, err = total.Add(balance)
		return err
	})
	if err != nil {
		return err
	}
	if total.Amount != rec.Supply.Amount {
		return fmt.Errorf("conservation broken for %s: balances sum to %s, supply is %s",
			code, total, rec.Supply)
	}
	return nil
}
