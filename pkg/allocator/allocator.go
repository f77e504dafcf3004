// Package allocator chooses the account that receives a file.
package allocator

import (
	"github.com/arthur-debert/drivepool/pkg/config"
	"github.com/arthur-debert/drivepool/pkg/ledger"
	"github.com/arthur-debert/drivepool/pkg/registry"
)

// Order reports whether account a should be preferred over b. Ties fall
// back to the account id, so an Order only needs to compare usage.
type Order func(a, b *ledger.Account) bool

// Orders holds the allocation orders selectable through placement.order
var Orders = registry.New[Order]("allocation order")

func init() {
	// Fill accounts one at a time
	registry.MustRegister(Orders, config.OrderFullest, Order(func(a, b *ledger.Account) bool {
		return a.UsedSpace > b.UsedSpace
	}))
	// Spread files across accounts
	registry.MustRegister(Orders, config.OrderEmptiest, Order(func(a, b *ledger.Account) bool {
		return a.UsedSpace < b.UsedSpace
	}))
}

// Allocator picks a destination account for a file size
type Allocator struct {
	order Order
	name  string
}

// New looks up the named order
func New(name string) (*Allocator, error) {
	order, err := Orders.Get(name)
	if err != nil {
		return nil, err
	}
	return &Allocator{order: order, name: name}, nil
}

// Name returns the order in use
func (a *Allocator) Name() string { return a.name }

// Select returns the best account with at least size bytes remaining.
// ok is false when no account can take the file.
func (a *Allocator) Select(l *ledger.Ledger, size int64) (accountID string, ok bool) {
	var best *ledger.Account
	for _, acct := range l.Accounts() {
		if acct.RemainingSpace < size {
			continue
		}
		if best == nil || a.prefer(acct, best) {
			best = acct
		}
	}
	if best == nil {
		return "", false
	}
	return best.ID, true
}

func (a *Allocator) prefer(x, y *ledger.Account) bool {
	if a.order(x, y) {
		return true
	}
	if a.order(y, x) {
		return false
	}
	return x.ID < y.ID
}
