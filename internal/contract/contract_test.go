package contract

import (
	"errors"
	"testing"

	"github.com/Incrediblez7/wrapresource/internal/host"
	"github.com/Incrediblez7/wrapresource/internal/ledger"
	"github.com/Incrediblez7/wrapresource/internal/storage"
	"github.com/Incrediblez7/wrapresource/internal/wrap"
	"github.com/Incrediblez7/wrapresource/pkg/types"
)

const (
	self   = types.Name("wrap.token")
	feeAcc = types.Name("stable.ly")
	market = types.Name("eosio.ram")
)

var (
	eos4  = types.Symbol{Code: "EOS", Precision: 4}
	wram4 = types.Symbol{Code: "WRAM", Precision: 4}
)

func testConfig() Config {
	return Config{
		Account:       self,
		FeeAccount:    feeAcc,
		MarketAccount: market,
		Primary:       eos4,
		Secondary:     wram4,
	}
}

// newTestContract wires a contract over an in-memory store with both tokens
// created and alice holding 100.0000 EOS. The contract's authority is left
// granted, matching how the chain runtime delivers its own actions.
func newTestContract(t *testing.T, accounts ...types.Name) (*Contract, *host.Sim) {
	t.Helper()
	db := storage.NewMemory()
	t.Cleanup(func() { db.Close() })

	h := host.NewSim(db, market, eos4)
	if len(accounts) == 0 {
		accounts = []types.Name{self, feeAcc, market, "eosio", "alice", "bob"}
	}
	for _, name := range accounts {
		if err := h.AddAccount(name); err != nil {
			t.Fatalf("AddAccount(%s): %v", name, err)
		}
	}

	c := New(db, h, testConfig())

	h.Authorize(self)
	if err := c.CreateSymbol("eosio", types.NewAsset(types.MaxAssetAmount, eos4)); err != nil {
		t.Fatalf("create EOS: %v", err)
	}
	if err := c.CreateSymbol(self, types.NewAsset(types.MaxAssetAmount, wram4)); err != nil {
		t.Fatalf("create WRAM: %v", err)
	}
	h.Deauthorize(self)

	h.Authorize("eosio")
	if err := c.Issue("eosio", types.NewAsset(1000_0000, eos4), "seed"); err != nil {
		t.Fatalf("issue EOS: %v", err)
	}
	if err := c.Transfer("eosio", "alice", types.NewAsset(100_0000, eos4), "seed"); err != nil {
		t.Fatalf("fund alice: %v", err)
	}
	h.Deauthorize("eosio")

	return c, h
}

func balanceOf(t *testing.T, c *Contract, owner types.Name, code types.SymbolCode) int64 {
	t.Helper()
	bal, err := c.Balance(owner, code)
	if err != nil {
		if errors.Is(err, ledger.ErrBalanceNotFound) {
			return 0
		}
		t.Fatalf("Balance(%s, %s): %v", owner, code, err)
	}
	return bal.Amount
}

func checkBothSymbols(t *testing.T, c *Contract) {
	t.Helper()
	for _, code := range []types.SymbolCode{"EOS", "WRAM"} {
		if err := c.CheckConservation(code); err != nil {
			t.Fatalf("conservation: %v", err)
		}
	}
}

func TestContractWrapUnwrapEndToEnd(t *testing.T) {
	c, h := newTestContract(t)

	// Wrap: alice deposits 1.0000 EOS.
	h.Authorize("alice")
	if err := c.Transfer("alice", self, types.NewAsset(1_0000, eos4), "wrap"); err != nil {
		t.Fatalf("wrap transfer: %v", err)
	}
	checkBothSymbols(t, c)

	if got := balanceOf(t, c, "alice", "WRAM"); got != 9950 {
		t.Errorf("alice WRAM = %d, want 9950", got)
	}
	if got := balanceOf(t, c, feeAcc, "WRAM"); got != 50 {
		t.Errorf("fee WRAM = %d, want 50", got)
	}
	usage, _ := h.ResourceUsage(self)
	if usage != 1_0000 {
		t.Errorf("usage = %d, want 10000", usage)
	}

	// Unwrap: alice returns her whole WRAM payout.
	if err := c.Transfer("alice", self, types.NewAsset(9950, wram4), "unwrap"); err != nil {
		t.Fatalf("unwrap transfer: %v", err)
	}
	checkBothSymbols(t, c)

	if got := balanceOf(t, c, "alice", "EOS"); got != 99_0000+9950 {
		t.Errorf("alice EOS = %d, want %d", got, 99_0000+9950)
	}
	supply, err := c.Supply("WRAM")
	if err != nil {
		t.Fatalf("Supply: %v", err)
	}
	if supply.Amount != 50 {
		t.Errorf("WRAM supply = %d, want 50", supply.Amount)
	}

	receipts, err := c.Receipts()
	if err != nil {
		t.Fatalf("Receipts: %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("receipts = %d, want 2", len(receipts))
	}
	if receipts[0].Kind != wrap.ReceiptWrap || receipts[1].Kind != wrap.ReceiptUnwrap {
		t.Errorf("receipt kinds = %s, %s", receipts[0].Kind, receipts[1].Kind)
	}
}

// A failure anywhere in the triggered chain must leave the store exactly as
// it was. The fee account is unregistered here, so the wrap's fee transfer
// fails after the purchase, the mint and the payout already ran.
func TestContractWrapRollsBackAtomically(t *testing.T) {
	c, h := newTestContract(t, self, market, "eosio", "alice")

	h.Authorize("alice")
	err := c.Transfer("alice", self, types.NewAsset(1_0000, eos4), "wrap")
	if !errors.Is(err, ledger.ErrAccountNotFound) {
		t.Fatalf("wrap error = %v, want ErrAccountNotFound", err)
	}

	// Nothing moved, nothing was minted, no quota was bought.
	if got := balanceOf(t, c, "alice", "EOS"); got != 100_0000 {
		t.Errorf("alice EOS = %d, want 1000000", got)
	}
	if got := balanceOf(t, c, market, "EOS"); got != 0 {
		t.Errorf("marketplace EOS = %d, want 0", got)
	}
	supply, err := c.Supply("WRAM")
	if err != nil {
		t.Fatalf("Supply: %v", err)
	}
	if !supply.IsZero() {
		t.Errorf("WRAM supply = %s, want zero", supply)
	}
	usage, _ := h.ResourceUsage(self)
	if usage != 0 {
		t.Errorf("usage = %d, want 0", usage)
	}
	receipts, _ := c.Receipts()
	if len(receipts) != 0 {
		t.Errorf("receipts = %d, want 0", len(receipts))
	}
	checkBothSymbols(t, c)
}

func TestContractUnwrapRollsBackWhenQuotaMissing(t *testing.T) {
	c, h := newTestContract(t)

	h.Authorize("alice")
	if err := c.Transfer("alice", self, types.NewAsset(1_0000, eos4), "wrap"); err != nil {
		t.Fatalf("wrap: %v", err)
	}

	// Drain the contract's quota behind the ledger's back; the sale then
	// fails mid-unwrap.
	if err := h.SetUsage(self, 10); err != nil {
		t.Fatalf("SetUsage: %v", err)
	}

	err := c.Transfer("alice", self, types.NewAsset(9950, wram4), "unwrap")
	if !errors.Is(err, host.ErrInsufficientQuota) {
		t.Fatalf("unwrap error = %v, want ErrInsufficientQuota", err)
	}

	// The burn did not stick.
	supply, _ := c.Supply("WRAM")
	if supply.Amount != 1_0000 {
		t.Errorf("WRAM supply = %d, want 10000", supply.Amount)
	}
	if got := balanceOf(t, c, "alice", "WRAM"); got != 9950 {
		t.Errorf("alice WRAM = %d, want 9950", got)
	}
	checkBothSymbols(t, c)
}

// After an unwrap sweeps the contract's primary-token balance, a repeated
// refund has nothing to move and must fail rather than conjuring tokens.
func TestContractRefundCannotDoublePay(t *testing.T) {
	c, h := newTestContract(t)

	h.Authorize("alice")
	if err := c.Transfer("alice", self, types.NewAsset(1_0000, eos4), "wrap"); err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if err := c.Transfer("alice", self, types.NewAsset(9950, wram4), "unwrap"); err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	h.Deauthorize("alice")

	h.Authorize(self)
	err := c.Refund("alice")
	if !errors.Is(err, ledger.ErrNotPositive) {
		t.Fatalf("second refund error = %v, want ErrNotPositive", err)
	}

	// And it left no trace.
	receipts, _ := c.Receipts()
	if len(receipts) != 2 {
		t.Errorf("receipts = %d, want 2", len(receipts))
	}
	if got := balanceOf(t, c, "alice", "EOS"); got != 99_0000+9950 {
		t.Errorf("alice EOS = %d, want %d", got, 99_0000+9950)
	}
	checkBothSymbols(t, c)
}

func TestContractDirectSettlementsRequireContractAuth(t *testing.T) {
	c, h := newTestContract(t)

	h.Authorize("alice")
	if err := c.SettlePurchase("alice", 0); !errors.Is(err, host.ErrMissingAuth) {
		t.Errorf("SettlePurchase error = %v, want ErrMissingAuth", err)
	}
	if err := c.Refund("alice"); !errors.Is(err, host.ErrMissingAuth) {
		t.Errorf("Refund error = %v, want ErrMissingAuth", err)
	}
}

func TestContractOpenCloseLifecycle(t *testing.T) {
	c, h := newTestContract(t)

	h.Authorize("bob")
	if err := c.Open("bob", wram4, "bob"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := balanceOf(t, c, "bob", "WRAM"); got != 0 {
		t.Errorf("opened balance = %d, want 0", got)
	}
	if err := c.Close("bob", wram4); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := c.Balance("bob", "WRAM"); !errors.Is(err, ledger.ErrBalanceNotFound) {
		t.Errorf("Balance after close error = %v, want ErrBalanceNotFound", err)
	}
}

func TestContractRetire(t *testing.T) {
	c, h := newTestContract(t)

	h.Authorize("eosio")
	if err := c.Retire(types.NewAsset(50_0000, eos4), "burn"); err != nil {
		t.Fatalf("Retire: %v", err)
	}
	supply, _ := c.Supply("EOS")
	if supply.Amount != 950_0000 {
		t.Errorf("EOS supply = %d, want 9500000", supply.Amount)
	}
	checkBothSymbols(t, c)
}

// The unwrap refund is the contract's whole primary-token balance, not the
// amount matched to the burn. With residue parked on the contract the first
// unwrapper walks away with more than their share. This documents the
// shared-refund hazard.
func TestContractRefundSweepsSharedBalance(t *testing.T) {
	c, h := newTestContract(t)

	h.Authorize("eosio")
	if err := c.Transfer("eosio", "bob", types.NewAsset(100_0000, eos4), "seed"); err != nil {
		t.Fatalf("fund bob: %v", err)
	}
	h.Deauthorize("eosio")

	h.Authorize("alice")
	if err := c.Transfer("alice", self, types.NewAsset(1_0000, eos4), "wrap"); err != nil {
		t.Fatalf("alice wrap: %v", err)
	}
	h.Deauthorize("alice")

	h.Authorize("bob")
	if err := c.Transfer("bob", self, types.NewAsset(2_0000, eos4), "wrap"); err != nil {
		t.Fatalf("bob wrap: %v", err)
	}
	h.Deauthorize("bob")

	// Park residue on the contract: the marketplace holds deposits from
	// both wraps and can send some back without triggering a wrap.
	h.Authorize(market)
	if err := c.Transfer(market, self, types.NewAsset(5000, eos4), "residue"); err != nil {
		t.Fatalf("residue: %v", err)
	}
	h.Deauthorize(market)

	// Alice unwraps 0.9950 WRAM but receives the sale proceeds plus the
	// whole residue.
	h.Authorize("alice")
	if err := c.Transfer("alice", self, types.NewAsset(9950, wram4), "unwrap"); err != nil {
		t.Fatalf("alice unwrap: %v", err)
	}
	h.Deauthorize("alice")

	aliceEOS := balanceOf(t, c, "alice", "EOS")
	if aliceEOS != 99_0000+9950+5000 {
		t.Errorf("alice EOS = %d, want %d (proceeds plus swept residue)", aliceEOS, 99_0000+9950+5000)
	}

	receipts, _ := c.Receipts()
	last := receipts[len(receipts)-1]
	if last.Refunded.Amount != 9950+5000 {
		t.Errorf("refunded = %s, want more than the matching proceeds", last.Refunded)
	}
	if last.Quantity.Amount != 9950 {
		t.Errorf("burned = %s", last.Quantity)
	}

	// Token conservation still holds for both symbols; the hazard is about
	// who got the primary tokens, not about the books.
	checkBothSymbols(t, c)
}

func TestContractConfigValidate(t *testing.T) {
	good := testConfig()
	if err := good.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := testConfig()
	bad.Account = "Not.Valid"
	if err := bad.Validate(); err == nil {
		t.Error("invalid account accepted")
	}

	bad = testConfig()
	bad.Secondary = eos4
	if err := bad.Validate(); err == nil {
		t.Error("identical symbol codes accepted")
	}

	bad = testConfig()
	bad.Primary = types.Symbol{Code: "toolongcode", Precision: 4}
	if err := bad.Validate(); err == nil {
		t.Error("invalid primary symbol accepted")
	}
}
