// Package wrap implements the resource-wrapping coordinator.
//
// An inbound transfer of the primary token to the contract buys resource
// quota from the marketplace; the measured quota delta is minted as the
// secondary token and paid out to the sender minus a fee. Transferring the
// secondary token back burns it, sells the quota and refunds the sender.
// All steps triggered by one transfer run synchronously inside that
// transfer's unit of work, so a failure anywhere rolls back everything.
package wrap

import (
	"fmt"

	"github.com/Incrediblez7/wrapresource/internal/host"
	"github.com/Incrediblez7/wrapresource/internal/ledger"
	"github.com/Incrediblez7/wrapresource/internal/log"
	"github.com/Incrediblez7/wrapresource/internal/storage"
	"github.com/Incrediblez7/wrapresource/pkg/types"
)

// Payout split: the sender receives 99.5% of each minted delta, the fee
// account the remainder.
const (
	payoutNumerator   = 995
	payoutDenominator = 1000
)

// Config identifies the parties and symbols the coordinator works with.
type Config struct {
	// Self is the contract's own account.
	Self types.Name
	// FeeAccount receives the residual share of each settlement.
	FeeAccount types.Name
	// MarketAccount is the marketplace sale account; its proceeds transfers
	// must not re-trigger a wrap.
	MarketAccount types.Name
	// Primary is the deposited token, Secondary the wrapped one.
	Primary   types.Symbol
	Secondary types.Symbol
}

// Coordinator orchestrates the wrap and unwrap flows over the accounting
// engine and the host marketplace.
type Coordinator struct {
	engine   *ledger.Engine
	receipts *ReceiptStore
	host     host.Host
	cfg      Config
}

// New creates a coordinator. Receipts are written to db.
func New(engine *ledger.Engine, db storage.DB, h host.Host, cfg Config) *Coordinator {
	return &Coordinator{
		engine:   engine,
		receipts: NewReceiptStore(db),
		host:     h,
		cfg:      cfg,
	}
}

// Receipts exposes the audit log.
func (c *Coordinator) Receipts() *ReceiptStore {
	return c.receipts
}

// HandleTransfer is the notification entry registered for the contract
// account. It dispatches on the transferred symbol: primary-token deposits
// start a wrap, secondary-token deposits start an unwrap.
func (c *Coordinator) HandleTransfer(from, to types.Name, quantity types.Asset, memo string) error {
	switch quantity.Symbol.Code {
	case c.cfg.Primary.Code:
		return c.OnInboundTransfer(from, to, quantity, memo)
	case c.cfg.Secondary.Code:
		return c.OnUnwrapTransfer(from, to, quantity, memo)
	default:
		return nil
	}
}

// ignored reports the deliberate no-op notifications: our own outgoing
// transfers and transfers not addressed to us.
func (c *Coordinator) ignored(from, to types.Name) bool {
	return from == c.cfg.Self || to != c.cfg.Self
}

// OnInboundTransfer starts a wrap for a primary-token deposit. The quota
// snapshot is taken before the purchase so the settlement can measure the
// exact delta the purchase produced.
func (c *Coordinator) OnInboundTransfer(from, to types.Name, quantity types.Asset, memo string) error {
	if c.ignored(from, to) {
		return nil
	}
	// Selling quota during an unwrap makes the marketplace pay proceeds to
	// this account; wrapping those proceeds again would recurse.
	if from == c.cfg.MarketAccount {
		return nil
	}

	usageBefore, err := c.host.ResourceUsage(c.cfg.Self)
	if err != nil {
		return err
	}
	return c.host.WithAuth(c.cfg.Self, func() error {
		if err := c.host.BuyResource(c.cfg.Self, c.cfg.Self, quantity); err != nil {
			return err
		}
		return c.SettlePurchase(from, usageBefore)
	})
}

// SettlePurchase measures the quota delta produced by the purchase, mints
// the secondary token for it and splits the mint between the depositor and
// the fee account. Only callable with the contract's own authority.
func (c *Coordinator) SettlePurchase(from types.Name, usageBefore uint64) error {
	if err := c.host.RequireAuth(c.cfg.Self); err != nil {
		return err
	}

	usageAfter, err := c.host.ResourceUsage(c.cfg.Self)
	if err != nil {
		return err
	}
	if usageAfter < usageBefore {
		return fmt.Errorf("resource usage shrank during purchase: %d -> %d", usageBefore, usageAfter)
	}
	if usageAfter-usageBefore > uint64(types.MaxAssetAmount) {
		return fmt.Errorf("resource delta %d exceeds asset range", usageAfter-usageBefore)
	}
	delta := int64(usageAfter - usageBefore)

	minted := types.NewAsset(delta, c.cfg.Secondary)
	if err := c.engine.Issue(c.cfg.Self, minted, "issue"); err != nil {
		return err
	}

	payout := types.NewAsset(payoutShare(delta), c.cfg.Secondary)
	fee := types.NewAsset(delta-payout.Amount, c.cfg.Secondary)
	if err := c.engine.Transfer(c.cfg.Self, from, payout, "transfer"); err != nil {
		return err
	}
	if err := c.engine.Transfer(c.cfg.Self, c.cfg.FeeAccount, fee, "fee"); err != nil {
		return err
	}

	log.Wrap.Info().
		Str("account", from.String()).
		Str("minted", minted.String()).
		Str("payout", payout.String()).
		Str("fee", fee.String()).
		Msg("wrap settled")
	return c.receipts.Append(&Receipt{
		Kind:        ReceiptWrap,
		Account:     from,
		Quantity:    minted,
		Payout:      payout,
		Fee:         fee,
		UsageBefore: usageBefore,
		UsageAfter:  usageAfter,
	})
}

// OnUnwrapTransfer starts an unwrap for a secondary-token deposit: burn the
// quantity, sell the matching quota back to the marketplace, refund the
// sender.
func (c *Coordinator) OnUnwrapTransfer(from, to types.Name, quantity types.Asset, memo string) error {
	if c.ignored(from, to) {
		return nil
	}

	return c.host.WithAuth(c.cfg.Self, func() error {
		if err := c.engine.Retire(quantity, "retire"); err != nil {
			return err
		}
		if err := c.host.SellResource(c.cfg.Self, quantity.Amount); err != nil {
			return err
		}
		return c.refund(from, quantity)
	})
}

// Refund transfers the contract's entire current primary-token balance to
// from. Only callable with the contract's own authority.
//
// The refund is NOT tied to the quota sold for this unwrap: any residual
// primary-token balance the contract holds is swept along with the sale
// proceeds, so concurrent unwraps or unrelated residue refund more or less
// than the originally wrapped amount.
func (c *Coordinator) Refund(from types.Name) error {
	return c.refund(from, types.Asset{})
}

func (c *Coordinator) refund(from types.Name, burned types.Asset) error {
	if err := c.host.RequireAuth(c.cfg.Self); err != nil {
		return err
	}

	balance, err := c.engine.Balance(c.cfg.Self, c.cfg.Primary.Code)
	if err != nil {
		return err
	}
	if err := c.engine.Transfer(c.cfg.Self, from, balance, "unwrap"); err != nil {
		return err
	}

	log.Wrap.Info().
		Str("account", from.String()).
		Str("burned", burned.String()).
		Str("refunded", balance.String()).
		Msg("unwrap completed")
	return c.receipts.Append(&Receipt{
		Kind:     ReceiptUnwrap,
		Account:  from,
		Quantity: burned,
		Refunded: balance,
	})
}

// payoutShare returns floor(delta * 995/1000) without intermediate overflow.
// The fee is the remainder, so payout + fee == delta exactly for any
// delta >= 0.
func payoutShare(delta int64) int64 {
	return (delta/payoutDenominator)*payoutNumerator +
		(delta%payoutDenominator)*payoutNumerator/payoutDenominator
}
