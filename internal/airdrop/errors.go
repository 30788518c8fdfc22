package airdrop

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/tsender/internal/chain"
	"github.com/Mohsinsiddi/tsender/internal/contract"
	"github.com/Mohsinsiddi/tsender/internal/form"
)

var (
	// ErrAlreadySubmitting is returned by Submit while another run holds the form.
	ErrAlreadySubmitting = errors.New("a submission is already in progress")
	// ErrNoAccount blocks submission until an account is connected.
	ErrNoAccount = errors.New("no account connected")
	// ErrTokenUnresolved blocks submission when the token probe did not confirm.
	ErrTokenUnresolved = errors.New("token could not be confirmed as ERC-20")
	// ErrAllowanceShort is reported in the approve phase when the allowance
	// is still below the total right before the airdrop.
	ErrAllowanceShort = errors.New("allowance still below total after approval")
)

// BlockedError is returned when a precondition stops the run before any
// chain write. Errors carries the inline field texts.
type BlockedError struct {
	Errors form.Errors
	Err    error
}

func (e *BlockedError) Error() string {
	if e.Err != nil {
		return "submission blocked: " + e.Err.Error()
	}
	for _, f := range form.AllFields {
		if msg := e.Errors.Get(f); msg != "" {
			return fmt.Sprintf("submission blocked: %s: %s", f, msg)
		}
	}
	return "submission blocked"
}

func (e *BlockedError) Unwrap() error { return e.Err }

// Phase names the write that failed.
type Phase string

const (
	PhaseApprove Phase = "approve"
	PhaseAirdrop Phase = "airdrop"
)

// PhaseError wraps a failure of one of the two writes.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	switch {
	case e.Rejected():
		return fmt.Sprintf("%s rejected in wallet: %v", e.Phase, e.Err)
	case e.Reverted():
		return fmt.Sprintf("%s reverted: %v", e.Phase, e.Err)
	default:
		return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
	}
}

func (e *PhaseError) Unwrap() error { return e.Err }

// Rejected reports whether the user declined to sign.
func (e *PhaseError) Rejected() bool { return errors.Is(e.Err, contract.ErrRejected) }

// Reverted reports whether the contract rejected the call, either in
// simulation or once mined.
func (e *PhaseError) Reverted() bool { return chain.IsRevert(e.Err) }
