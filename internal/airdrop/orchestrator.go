// Package airdrop sequences one submission of the airdrop form: validation,
// token confirmation, allowance reconciliation and the approve/airdrop writes.
package airdrop

import (
	"context"
	"errors"
	"io"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/tsender/internal/allowance"
	"github.com/Mohsinsiddi/tsender/internal/chain"
	"github.com/Mohsinsiddi/tsender/internal/contract"
	"github.com/Mohsinsiddi/tsender/internal/form"
	"github.com/Mohsinsiddi/tsender/internal/token"
	"github.com/Mohsinsiddi/tsender/internal/validate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Session is the connected account and active chain.
type Session struct {
	Account *common.Address
	ChainID int64
}

// Resolver confirms a token and reads its metadata. *token.Resolver satisfies it.
type Resolver interface {
	Resolve(ctx context.Context, address string, owner *common.Address) token.Result
}

// Allowances looks up the distributor and reads allowances.
// *allowance.Reconciler satisfies it.
type Allowances interface {
	Spender(chainID int64) (common.Address, error)
	Check(ctx context.Context, chainID int64, token, owner common.Address, total *big.Int) (allowance.Decision, error)
}

// Writer signs, sends and awaits one contract write. *contract.Sender satisfies it.
type Writer interface {
	Execute(ctx context.Context, call contract.Call) (*chain.TxReceipt, error)
}

// Outcome describes a finished run.
type Outcome struct {
	Plan    Plan
	Approve *chain.TxReceipt // nil when no approval was needed
	Airdrop *chain.TxReceipt
}

// Orchestrator runs submissions for one form. It is safe for concurrent
// use; at most one submission runs at a time.
type Orchestrator struct {
	resolver   Resolver
	allowances Allowances
	writer     Writer
	log        logrus.FieldLogger

	mu       sync.Mutex
	state    State
	observer func(State)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithObserver is called on every state transition, outside the lock.
func WithObserver(fn func(State)) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// New creates an Orchestrator in StateIdle.
func New(resolver Resolver, allowances Allowances, writer Writer, opts ...Option) *Orchestrator {
	l := logrus.New()
	l.SetOutput(io.Discard)
	o := &Orchestrator{
		resolver:   resolver,
		allowances: allowances,
		writer:     writer,
		log:        l,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Submitting reports whether a run holds the form.
func (o *Orchestrator) Submitting() bool {
	return o.State().Running()
}

// Reset returns a terminal machine to Idle. It is a no-op while running.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	if !o.state.Terminal() {
		o.mu.Unlock()
		return
	}
	o.state = StateIdle
	o.mu.Unlock()
	o.notify(StateIdle)
}

// Touch is called on any field edit; it clears a terminal state.
func (o *Orchestrator) Touch() { o.Reset() }

// Submit runs one submission to completion. Blocked runs return a
// *BlockedError, failed writes a *PhaseError.
func (o *Orchestrator) Submit(ctx context.Context, fields form.Fields, s Session) (*Outcome, error) {
	o.mu.Lock()
	if o.state.Running() {
		o.mu.Unlock()
		return nil, ErrAlreadySubmitting
	}
	o.state = StateValidating
	o.mu.Unlock()
	o.notify(StateValidating)

	log := o.log.WithFields(logrus.Fields{"chain_id": s.ChainID, "token": fields.TokenAddress})

	// Validating: never trust background results.
	if errs := validate.Validate(fields); errs.Any() {
		return nil, o.block(log, errs, nil)
	}
	if s.Account == nil {
		return nil, o.block(log, form.Errors{}, ErrNoAccount)
	}
	if _, err := o.allowances.Spender(s.ChainID); err != nil {
		return nil, o.block(log, form.Errors{}, err)
	}
	log = log.WithField("account", s.Account.Hex())

	o.transition(StateResolving)
	res := o.resolver.Resolve(ctx, fields.TokenAddress, s.Account)
	if res.Probe != token.ProbeConfirmed {
		err := res.Err
		if err == nil {
			err = ErrTokenUnresolved
		}
		return nil, o.block(log, form.Errors{Token: res.TokenError()}, err)
	}
	if errs := validate.Against(fields, res.Metadata); errs.Any() {
		return nil, o.block(log, errs, nil)
	}

	batch, err := BuildBatch(fields, res.Metadata)
	if err != nil {
		return nil, o.block(log, form.Errors{}, err)
	}
	o.transition(StateReady)

	o.transition(StateSubmitting)
	// Nothing has been written yet; a failed read blocks the run.
	decision, err := o.allowances.Check(ctx, s.ChainID, batch.Token, *s.Account, batch.Total)
	if err != nil {
		return nil, o.block(log, form.Errors{}, err)
	}
	plan, err := PlanFor(batch, decision)
	if err != nil {
		return nil, o.block(log, form.Errors{}, err)
	}
	log.WithFields(logrus.Fields{
		"recipients":     len(batch.Recipients),
		"total":          batch.Total.String(),
		"allowance":      decision.Fact.Amount.String(),
		"needs_approval": decision.NeedsApproval,
	}).Info("submission planned")

	out := &Outcome{Plan: plan}
	airdropCall := plan.Calls[len(plan.Calls)-1]

	if plan.NeedsApproval() {
		o.transition(StateApproving)
		receipt, err := o.writer.Execute(ctx, plan.Calls[0])
		if err != nil {
			return nil, o.fail(log, PhaseApprove, err)
		}
		out.Approve = receipt

		// Resume point: confirm the allowance really covers the total
		// before the distributor tries to pull it.
		again, err := o.allowances.Check(ctx, s.ChainID, batch.Token, *s.Account, batch.Total)
		if err != nil {
			return nil, o.fail(log, PhaseApprove, err)
		}
		if again.NeedsApproval {
			return nil, o.fail(log, PhaseApprove, ErrAllowanceShort)
		}
	}

	o.transition(StateAwaitingAirdrop)
	receipt, err := o.writer.Execute(ctx, airdropCall)
	if err != nil {
		return nil, o.fail(log, PhaseAirdrop, err)
	}
	out.Airdrop = receipt

	o.transition(StateDone)
	log.WithField("tx", receipt.Hash.Hex()).Info("airdrop complete")
	return out, nil
}

func (o *Orchestrator) transition(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	o.notify(s)
}

func (o *Orchestrator) notify(s State) {
	if o.observer != nil {
		o.observer(s)
	}
}

func (o *Orchestrator) block(log logrus.FieldLogger, errs form.Errors, err error) error {
	o.transition(StateBlocked)
	blocked := &BlockedError{Errors: errs, Err: err}
	log.WithError(blocked).Debug("submission blocked")
	return blocked
}

func (o *Orchestrator) fail(log logrus.FieldLogger, phase Phase, err error) error {
	o.transition(StateFailed)
	pe := &PhaseError{Phase: phase, Err: err}
	entry := log.WithField("phase", phase)
	if errors.Is(err, contract.ErrRejected) {
		entry.Info("transaction declined")
	} else {
		entry.WithError(err).Warn("submission failed")
	}
	return pe
}
