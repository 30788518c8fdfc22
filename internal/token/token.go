// Package token probes an address for ERC-20 conformance and resolves the
// metadata the airdrop form needs: decimals, symbol and the connected
// account's balance.
package token

import (
	"context"
	"errors"
	"io"
	"math/big"

	"github.com/Mohsinsiddi/tsender/internal/chain"
	"github.com/Mohsinsiddi/tsender/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Probe is the outcome of checking whether an address behaves like an ERC-20.
type Probe int

const (
	// ProbeIndeterminate means the reads could not complete (transport
	// failure, timeout, cancellation). Nothing is known about the token.
	ProbeIndeterminate Probe = iota
	// ProbeConfirmed means decimals and symbol decoded as expected.
	ProbeConfirmed
	// ProbeNotConforming means a read reverted, returned no data, or
	// decoded to the wrong type.
	ProbeNotConforming
)

func (p Probe) String() string {
	switch p {
	case ProbeConfirmed:
		return "confirmed"
	case ProbeNotConforming:
		return "not-erc20"
	default:
		return "indeterminate"
	}
}

// Inline texts for the token field.
const (
	notERC20Text   = "Token address is not a valid ERC-20 token"
	unresolvedText = "Could not load token details"
)

// Metadata is scoped to one (token, owner, chain) triple.
type Metadata struct {
	Token    common.Address
	Owner    common.Address
	ChainID  int64
	Decimals uint8
	Symbol   string
	// Balance is nil when no account is connected; balance checks are
	// skipped in that case.
	Balance *big.Int
}

// HasBalance reports whether a balance was read.
func (m *Metadata) HasBalance() bool { return m != nil && m.Balance != nil }

// Matches reports whether m was resolved for the given scope. A nil owner
// matches metadata resolved without an account.
func (m *Metadata) Matches(tok common.Address, owner *common.Address, chainID int64) bool {
	if m == nil || m.Token != tok || m.ChainID != chainID {
		return false
	}
	if owner == nil {
		return m.Balance == nil
	}
	return m.Balance != nil && m.Owner == *owner
}

// Result is what Resolve produces. Failures are encoded, never thrown.
type Result struct {
	Probe    Probe
	Metadata *Metadata
	Err      error
}

// TokenError returns the inline error for the token field, or "".
func (r Result) TokenError() string {
	switch r.Probe {
	case ProbeConfirmed:
		return ""
	case ProbeNotConforming:
		return notERC20Text
	default:
		return unresolvedText
	}
}

// Caller is the read surface the resolver needs. *chain.EVMClient satisfies it.
type Caller = contract.Caller

// Resolver reads token metadata for one chain.
type Resolver struct {
	caller  Caller
	chainID int64
	log     logrus.FieldLogger
}

// NewResolver creates a Resolver. A nil log discards output.
func NewResolver(caller Caller, chainID int64, log logrus.FieldLogger) *Resolver {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Resolver{caller: caller, chainID: chainID, log: log}
}

// ChainID is the chain the resolver reads from.
func (r *Resolver) ChainID() int64 { return r.chainID }

// Resolve probes address and, when owner is non-nil, reads its balance.
// address must already be syntactically valid; it is checksum-normalized
// before any read.
func (r *Resolver) Resolve(ctx context.Context, address string, owner *common.Address) Result {
	tok := common.HexToAddress(address)
	log := r.log.WithFields(logrus.Fields{"token": tok.Hex(), "chain_id": r.chainID})
	erc20 := contract.NewERC20(r.caller, tok)

	meta := &Metadata{Token: tok, ChainID: r.chainID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := erc20.Decimals(gctx)
		meta.Decimals = d
		return err
	})
	g.Go(func() error {
		s, err := erc20.Symbol(gctx)
		meta.Symbol = s
		return err
	})
	if err := g.Wait(); err != nil {
		probe := classify(err)
		log.WithError(err).WithField("probe", probe).Debug("token probe failed")
		return Result{Probe: probe, Err: err}
	}

	if owner != nil {
		bal, err := erc20.BalanceOf(ctx, *owner)
		if err != nil {
			// The token answered decimals and symbol; a failing balance read
			// says nothing certain about conformance.
			log.WithError(err).Debug("balance read failed")
			return Result{Probe: ProbeIndeterminate, Err: err}
		}
		meta.Owner = *owner
		meta.Balance = bal
	}

	log.WithFields(logrus.Fields{"symbol": meta.Symbol, "decimals": meta.Decimals}).Debug("token resolved")
	return Result{Probe: ProbeConfirmed, Metadata: meta}
}

func classify(err error) Probe {
	if errors.Is(err, contract.ErrBadResult) || chain.IsRevert(err) {
		return ProbeNotConforming
	}
	return ProbeIndeterminate
}
