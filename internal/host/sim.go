package host

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Incrediblez7/wrapresource/internal/storage"
	"github.com/Incrediblez7/wrapresource/pkg/types"
)

// Key prefixes for host state kept in the shared keyed store. Storing the
// account registry and usage table next to the ledger rows means a unit of
// work sees (and can roll back) host-side effects through the same overlay.
var (
	prefixHostAccount = []byte("ha/") // ha/<name> -> empty
	prefixHostUsage   = []byte("hu/") // hu/<name> -> uint64 BE quota bytes
)

// Sim is an in-memory-configured Host backed by a keyed store. It models a
// flat-rate resource marketplace: BytesPerToken quota bytes are granted per
// smallest primary-token unit spent, and sales pay proceeds back through the
// bound ledger from the marketplace account.
//
// The marketplace account must be registered with AddAccount before any
// purchase, since payments are ledger transfers to it.
type Sim struct {
	db      storage.DB
	market  types.Name
	primary types.Symbol

	// BytesPerToken is the marketplace rate. Defaults to 1.
	BytesPerToken int64

	granted map[types.Name]bool
	scoped  map[types.Name]int
	ledger  Ledger
}

// NewSim creates a simulated host over db with the given marketplace account
// and primary-token symbol.
func NewSim(db storage.DB, market types.Name, primary types.Symbol) *Sim {
	return &Sim{
		db:            db,
		market:        market,
		primary:       primary,
		BytesPerToken: 1,
		granted:       make(map[types.Name]bool),
		scoped:        make(map[types.Name]int),
	}
}

// MarketAccount returns the marketplace sale account.
func (s *Sim) MarketAccount() types.Name {
	return s.market
}

// AddAccount registers an account name.
func (s *Sim) AddAccount(name types.Name) error {
	if !name.Valid() {
		return fmt.Errorf("invalid account name %q", name)
	}
	return s.db.Put(accountKey(name), []byte{})
}

// Accounts lists all registered account names.
func (s *Sim) Accounts() ([]types.Name, error) {
	var names []types.Name
	err := s.db.ForEach(prefixHostAccount, func(key, _ []byte) error {
		names = append(names, types.Name(key[len(prefixHostAccount):]))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("host accounts: %w", err)
	}
	return names, nil
}

// IsAccount reports whether name has been registered.
func (s *Sim) IsAccount(name types.Name) bool {
	ok, err := s.db.Has(accountKey(name))
	return err == nil && ok
}

// Authorize grants name a standing authorization for subsequent operations.
func (s *Sim) Authorize(name types.Name) {
	s.granted[name] = true
}

// Deauthorize revokes a standing authorization.
func (s *Sim) Deauthorize(name types.Name) {
	delete(s.granted, name)
}

// HasAuth reports whether name currently holds authorization.
func (s *Sim) HasAuth(name types.Name) bool {
	return s.granted[name] || s.scoped[name] > 0
}

// RequireAuth fails with ErrMissingAuth unless name holds authorization.
func (s *Sim) RequireAuth(name types.Name) error {
	if !s.HasAuth(name) {
		return fmt.Errorf("%w: %s", ErrMissingAuth, name)
	}
	return nil
}

// WithAuth runs fn with name temporarily authorized.
func (s *Sim) WithAuth(name types.Name, fn func() error) error {
	s.scoped[name]++
	defer func() { s.scoped[name]-- }()
	return fn()
}

// ResourceUsage returns the quota bytes held by owner. Unknown owners hold
// zero quota.
func (s *Sim) ResourceUsage(owner types.Name) (uint64, error) {
	ok, err := s.db.Has(usageKey(owner))
	if err != nil {
		return 0, fmt.Errorf("host usage: %w", err)
	}
	if !ok {
		return 0, nil
	}
	raw, err := s.db.Get(usageKey(owner))
	if err != nil {
		return 0, fmt.Errorf("host usage: %w", err)
	}
	if len(raw) != 8 {
		return 0, errors.New("host usage: malformed record")
	}
	return binary.BigEndian.Uint64(raw), nil
}

// SetUsage overwrites owner's quota bytes.
func (s *Sim) SetUsage(owner types.Name, quota uint64) error {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], quota)
	return s.db.Put(usageKey(owner), raw[:])
}

// BuyResource pays payment from payer to the marketplace account and grows
// receiver's quota by payment.Amount * BytesPerToken.
func (s *Sim) BuyResource(payer, receiver types.Name, payment types.Asset) error {
	if !payment.Valid() || payment.Amount <= 0 {
		return fmt.Errorf("invalid resource payment %s", payment)
	}
	if s.BytesPerToken <= 0 {
		return errors.New("marketplace rate must be positive")
	}
	if payment.Amount > types.MaxAssetAmount/s.BytesPerToken {
		return fmt.Errorf("resource purchase overflow: %s", payment)
	}

	if s.ledger != nil {
		if err := s.ledger.Transfer(payer, s.market, payment, "buy resource"); err != nil {
			return err
		}
	}

	usage, err := s.ResourceUsage(receiver)
	if err != nil {
		return err
	}
	return s.SetUsage(receiver, usage+uint64(payment.Amount*s.BytesPerToken))
}

// SellResource shrinks account's quota by amount bytes and delivers the
// proceeds from the marketplace account through the bound ledger. The
// proceeds transfer carries the marketplace's own authority.
func (s *Sim) SellResource(account types.Name, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("resource sale amount must be positive, got %d", amount)
	}
	if s.BytesPerToken <= 0 {
		return errors.New("marketplace rate must be positive")
	}

	usage, err := s.ResourceUsage(account)
	if err != nil {
		return err
	}
	if usage < uint64(amount) {
		return fmt.Errorf("%w: have %d, selling %d", ErrInsufficientQuota, usage, amount)
	}
	if err := s.SetUsage(account, usage-uint64(amount)); err != nil {
		return err
	}

	proceeds := types.NewAsset(amount/s.BytesPerToken, s.primary)
	if s.ledger == nil || proceeds.Amount == 0 {
		return nil
	}
	return s.WithAuth(s.market, func() error {
		return s.ledger.Transfer(s.market, account, proceeds, "sell resource")
	})
}

// Bind switches the ledger and store the marketplace settles through.
func (s *Sim) Bind(l Ledger, db storage.DB) {
	s.ledger = l
	s.db = db
}

func accountKey(name types.Name) []byte {
	key := make([]byte, len(prefixHostAccount)+len(name))
	copy(key, prefixHostAccount)
	copy(key[len(prefixHostAccount):], name)
	return key
}

func usageKey(owner types.Name) []byte {
	key := make([]byte, len(prefixHostUsage)+len(owner))
	copy(key, prefixHostUsage)
	copy(key[len(prefixHostUsage):], owner)
	return key
}
