// Package allowance compares what the distributor may already spend against
// what an airdrop needs.
package allowance

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrUnsupportedChain is returned when no distributor is registered for a chain.
var ErrUnsupportedChain = errors.New("unsupported chain")

// Reader reads ERC-20 allowances.
type Reader interface {
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
}

// Distributors looks up the TSender contract per chain. *chain.Registry
// satisfies it.
type Distributors interface {
	Distributor(chainID int64) (common.Address, bool)
}

// Fact is one allowance observation. It is never cached.
type Fact struct {
	Owner   common.Address
	Spender common.Address
	Token   common.Address
	Amount  *big.Int
}

// Decision says whether an approve must precede the airdrop.
type Decision struct {
	Fact          Fact
	Required      *big.Int
	NeedsApproval bool
}

// Reconciler reads allowances for the chain's distributor.
type Reconciler struct {
	reader       Reader
	distributors Distributors
}

// NewReconciler creates a Reconciler.
func NewReconciler(reader Reader, distributors Distributors) *Reconciler {
	return &Reconciler{reader: reader, distributors: distributors}
}

// Spender returns the distributor for chainID.
func (r *Reconciler) Spender(chainID int64) (common.Address, error) {
	addr, ok := r.distributors.Distributor(chainID)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: no TSender deployment for chain %d", ErrUnsupportedChain, chainID)
	}
	return addr, nil
}

// Check reads the current allowance of owner towards the distributor and
// compares it with total.
func (r *Reconciler) Check(ctx context.Context, chainID int64, token, owner common.Address, total *big.Int) (Decision, error) {
	spender, err := r.Spender(chainID)
	if err != nil {
		return Decision{}, err
	}
	amount, err := r.reader.Allowance(ctx, token, owner, spender)
	if err != nil {
		return Decision{}, fmt.Errorf("reading allowance: %w", err)
	}
	return Decide(Fact{Owner: owner, Spender: spender, Token: token, Amount: amount}, total), nil
}

// Decide is the pure comparison behind Check.
func Decide(fact Fact, total *big.Int) Decision {
	return Decision{
		Fact:          fact,
		Required:      new(big.Int).Set(total),
		NeedsApproval: fact.Amount.Cmp(total) < 0,
	}
}
