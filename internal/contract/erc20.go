package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ErrBadResult is returned when a call succeeded but its return data does
// not decode as the ERC-20 interface promises. An address with no code
// answers every eth_call with empty data, so it ends up here too.
var ErrBadResult = errors.New("unexpected contract return data")

// Caller executes read-only calls. *chain.EVMClient satisfies it.
type Caller interface {
	CallContract(ctx context.Context, to common.Address, data []byte) ([]byte, error)
}

// ERC20 reads token state through a Caller.
type ERC20 struct {
	caller Caller
	token  common.Address
}

// NewERC20 binds reads to the token at addr.
func NewERC20(caller Caller, addr common.Address) *ERC20 {
	return &ERC20{caller: caller, token: addr}
}

// Address returns the bound token address.
func (e *ERC20) Address() common.Address { return e.token }

// Decimals reads decimals().
func (e *ERC20) Decimals(ctx context.Context) (uint8, error) {
	out, err := e.call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	d, ok := out[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals: %w", ErrBadResult)
	}
	return d, nil
}

// Symbol reads symbol(). Tokens that predate the standard and return a
// bytes32 symbol are decoded too.
func (e *ERC20) Symbol(ctx context.Context) (string, error) {
	data, err := ERC20ABI.Pack("symbol")
	if err != nil {
		return "", err
	}
	raw, err := e.caller.CallContract(ctx, e.token, data)
	if err != nil {
		return "", fmt.Errorf("symbol: %w", err)
	}
	if len(raw) == 32 {
		return string(bytes.TrimRight(raw, "\x00")), nil
	}
	out, err := ERC20ABI.Unpack("symbol", raw)
	if err != nil || len(out) == 0 {
		return "", fmt.Errorf("symbol: %w", ErrBadResult)
	}
	s, ok := out[0].(string)
	if !ok {
		return "", fmt.Errorf("symbol: %w", ErrBadResult)
	}
	return s, nil
}

// BalanceOf reads balanceOf(owner).
func (e *ERC20) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return e.uint256(ctx, "balanceOf", owner)
}

// Allowance reads allowance(owner, spender).
func (e *ERC20) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return e.uint256(ctx, "allowance", owner, spender)
}

func (e *ERC20) uint256(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	out, err := e.call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: %w", method, ErrBadResult)
	}
	return v, nil
}

func (e *ERC20) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := ERC20ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	raw, err := e.caller.CallContract(ctx, e.token, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s: %w", method, ErrBadResult)
	}
	out, err := ERC20ABI.Unpack(method, raw)
	if err != nil || len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", method, ErrBadResult)
	}
	return out, nil
}

// PackApprove encodes approve(spender, amount).
func PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return ERC20ABI.Pack(MethodApprove, spender, amount)
}

// PackAirdrop encodes airdropERC20(token, recipients, amounts, total).
func PackAirdrop(token common.Address, recipients []common.Address, amounts []*big.Int, total *big.Int) ([]byte, error) {
	if len(recipients) != len(amounts) {
		return nil, fmt.Errorf("recipients (%d) and amounts (%d) differ in length", len(recipients), len(amounts))
	}
	return TSenderABI.Pack(MethodAirdropERC20, token, recipients, amounts, total)
}
