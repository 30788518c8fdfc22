package allowance

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/tsender/internal/contract"
	"github.com/ethereum/go-ethereum/common"
)

// ChainReader reads allowances over eth_call.
type ChainReader struct {
	caller contract.Caller
}

// NewChainReader wraps a contract.Caller such as *chain.EVMClient.
func NewChainReader(caller contract.Caller) *ChainReader {
	return &ChainReader{caller: caller}
}

// Allowance implements Reader.
func (c *ChainReader) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	return contract.NewERC20(c.caller, token).Allowance(ctx, owner, spender)
}
