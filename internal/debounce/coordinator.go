// Package debounce turns keystrokes on the airdrop form into validated,
// token-aware state. Each field has its own timer; only the edit that
// survives the quiet period is validated, and results that arrive for a
// superseded value are dropped.
package debounce

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/Mohsinsiddi/tsender/internal/form"
	"github.com/Mohsinsiddi/tsender/internal/token"
	"github.com/Mohsinsiddi/tsender/internal/validate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// Resolver is satisfied by *token.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, address string, owner *common.Address) token.Result
}

// Snapshot is a whole-value copy of the coordinated form.
type Snapshot struct {
	Fields    form.Fields
	Errors    form.Errors
	Metadata  *token.Metadata
	Probe     token.Probe
	Resolving bool
	// Pending is true while any field waits for its quiet period to end.
	Pending bool
}

// CanSubmit is the submit gate: no field errors, every field filled, no
// submission running, nothing pending and a non-zero resolved balance.
func (s Snapshot) CanSubmit(submitting bool) bool {
	return !s.Errors.Any() &&
		s.Fields.Complete() &&
		!submitting &&
		!s.Pending &&
		!s.Resolving &&
		s.Metadata.HasBalance() &&
		s.Metadata.Balance.Sign() > 0
}

// Coordinator owns the live form state.
type Coordinator struct {
	resolver Resolver
	delay    time.Duration
	log      logrus.FieldLogger
	onChange func(Snapshot)

	notifyMu sync.Mutex // serializes onChange so snapshots arrive in order

	mu         sync.Mutex
	fields     form.Fields
	errs       form.Errors
	touched    [3]bool
	gen        [3]uint64
	settled    [3]uint64
	timers     [3]*time.Timer
	cancel     context.CancelFunc
	owner      *common.Address
	accountGen uint64
	meta       *token.Metadata
	probe      token.Probe
	resolving  bool
	closed     bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Coordinator) { c.log = l }
}

// OnChange registers the subscriber that receives every new snapshot.
func OnChange(fn func(Snapshot)) Option {
	return func(c *Coordinator) { c.onChange = fn }
}

// New creates a Coordinator with the given quiet period.
func New(resolver Resolver, delay time.Duration, opts ...Option) *Coordinator {
	l := logrus.New()
	l.SetOutput(io.Discard)
	c := &Coordinator{resolver: resolver, delay: delay, log: l}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Edit records a keystroke on f and restarts that field's quiet period.
func (c *Coordinator) Edit(f form.Field, value string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.fields = c.fields.With(f, value)
	c.gen[f]++
	g := c.gen[f]
	if t := c.timers[f]; t != nil {
		t.Stop()
	}
	if f == form.FieldToken {
		// Metadata is scoped to the token; a new address invalidates it.
		c.stopResolutionLocked()
		c.meta = nil
		c.probe = token.ProbeIndeterminate
	}
	c.timers[f] = time.AfterFunc(c.delay, func() { c.fire(f, g, value) })
	c.mu.Unlock()
	c.notify()
}

// Flush fires every pending field now instead of waiting for its timer.
func (c *Coordinator) Flush() {
	for _, f := range form.AllFields {
		c.mu.Lock()
		t := c.timers[f]
		pending := t != nil && c.settled[f] != c.gen[f]
		g, value := c.gen[f], c.fields.Get(f)
		c.mu.Unlock()
		if pending && t.Stop() {
			c.fire(f, g, value)
		}
	}
}

// SetAccount switches the connected account. Metadata is dropped and a
// settled token is resolved again for the new owner.
func (c *Coordinator) SetAccount(owner *common.Address) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if owner != nil {
		o := *owner
		owner = &o
	}
	c.owner = owner
	c.accountGen++
	c.stopResolutionLocked()
	c.meta = nil
	c.probe = token.ProbeIndeterminate
	if c.settled[form.FieldToken] == c.gen[form.FieldToken] && c.touched[form.FieldToken] && c.errs.Token == "" {
		c.startResolutionLocked(c.gen[form.FieldToken], c.fields.TokenAddress)
	}
	c.recomputeAmountsLocked()
	c.mu.Unlock()
	c.notify()
}

// Stop cancels every timer and in-flight resolution. Later edits are ignored.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, t := range c.timers {
		if t != nil {
			t.Stop()
		}
	}
	c.stopResolutionLocked()
}

// --- internal ---

func (c *Coordinator) fire(f form.Field, g uint64, value string) {
	c.mu.Lock()
	if c.closed || c.gen[f] != g || c.fields.Get(f) != value {
		c.mu.Unlock()
		return
	}
	c.settled[f] = g
	c.touched[f] = true

	switch f {
	case form.FieldToken:
		c.errs.Token = validate.TokenAddress(value)
		if c.errs.Token == "" {
			c.startResolutionLocked(g, value)
		}
	case form.FieldRecipients:
		_, c.errs.Recipients = validate.Recipients(value)
	}
	c.recomputeAmountsLocked()
	c.mu.Unlock()
	c.notify()
}

// recomputeAmountsLocked refreshes the amounts error from the current
// amounts, recipients and metadata. It stays silent until amounts has
// been edited at least once.
func (c *Coordinator) recomputeAmountsLocked() {
	if !c.touched[form.FieldAmounts] {
		return
	}
	amounts, msg := validate.Amounts(c.fields.Amounts)
	if c.touched[form.FieldRecipients] {
		recipients, _ := validate.Recipients(c.fields.Recipients)
		if mismatch := validate.CountMismatch(recipients, amounts); mismatch != "" {
			msg = mismatch
		}
	}
	if msg == "" && c.meta != nil {
		msg = validate.AmountsAgainst(c.fields.Amounts, c.meta)
	}
	c.errs.Amounts = msg
}

func (c *Coordinator) startResolutionLocked(g uint64, address string) {
	c.stopResolutionLocked()
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.resolving = true
	owner := c.owner
	ag := c.accountGen

	go func() {
		res := c.resolver.Resolve(ctx, address, owner)
		c.apply(ctx, g, ag, address, res)
	}()
}

func (c *Coordinator) apply(ctx context.Context, g, ag uint64, address string, res token.Result) {
	c.mu.Lock()
	stale := c.closed || ctx.Err() != nil ||
		c.gen[form.FieldToken] != g ||
		c.fields.TokenAddress != address ||
		c.accountGen != ag
	if stale {
		c.mu.Unlock()
		c.log.WithField("token", address).Debug("discarding superseded token resolution")
		return
	}
	c.resolving = false
	c.cancel = nil
	c.probe = res.Probe
	c.meta = res.Metadata
	switch res.Probe {
	case token.ProbeNotConforming:
		c.errs.Token = res.TokenError()
	case token.ProbeIndeterminate:
		// Transport trouble stays unresolved; it is not the user's input at fault.
		c.log.WithError(res.Err).WithField("token", address).Debug("token unresolved")
	}
	c.recomputeAmountsLocked()
	c.mu.Unlock()
	c.notify()
}

func (c *Coordinator) stopResolutionLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.resolving = false
}

func (c *Coordinator) snapshotLocked() Snapshot {
	pending := false
	for i := range c.gen {
		if c.timers[i] != nil && c.settled[i] != c.gen[i] {
			pending = true
		}
	}
	var meta *token.Metadata
	if c.meta != nil {
		m := *c.meta
		meta = &m
	}
	return Snapshot{
		Fields:    c.fields,
		Errors:    c.errs,
		Metadata:  meta,
		Probe:     c.probe,
		Resolving: c.resolving,
		Pending:   pending,
	}
}

func (c *Coordinator) notify() {
	if c.onChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.onChange(c.Snapshot())
}
