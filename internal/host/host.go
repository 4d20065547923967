// Package host defines the platform collaborator the ledger and wrap
// coordinator depend on: account registry, authorization, resource-usage
// metering and the resource marketplace. Signature verification and
// cross-contract delivery live behind this interface, not in the core.
package host

import (
	"errors"

	"github.com/Incrediblez7/wrapresource/internal/storage"
	"github.com/Incrediblez7/wrapresource/pkg/types"
)

// Host errors.
var (
	// ErrMissingAuth is returned when a required signer has not authorized
	// the current unit of work.
	ErrMissingAuth = errors.New("missing required authorization")

	// ErrInsufficientQuota is returned when a sale asks for more resource
	// quota than the account holds.
	ErrInsufficientQuota = errors.New("insufficient resource quota")
)

// Ledger is the slice of the accounting engine a marketplace implementation
// settles payments and sale proceeds through.
type Ledger interface {
	Transfer(from, to types.Name, quantity types.Asset, memo string) error
}

// Host is the external platform collaborator.
type Host interface {
	// IsAccount reports whether name refers to an existing account.
	IsAccount(name types.Name) bool

	// HasAuth reports whether name has authorized the current unit of work.
	HasAuth(name types.Name) bool

	// RequireAuth fails with ErrMissingAuth unless name has authorized the
	// current unit of work.
	RequireAuth(name types.Name) error

	// WithAuth runs fn with name temporarily authorized. The contract's own
	// chained steps carry the contract's authority through this.
	WithAuth(name types.Name, fn func() error) error

	// ResourceUsage returns the resource-quota bytes currently held by owner.
	ResourceUsage(owner types.Name) (uint64, error)

	// BuyResource spends payment from payer to grow receiver's resource
	// quota at the marketplace rate.
	BuyResource(payer, receiver types.Name, payment types.Asset) error

	// SellResource sells amount quota bytes back to the marketplace on
	// behalf of account, delivering the proceeds through the bound ledger.
	SellResource(account types.Name, amount int64) error

	// Bind attaches the ledger and keyed store the host settles through for
	// the current unit of work. Implementations settling out of band may
	// ignore it.
	Bind(l Ledger, db storage.DB)
}
