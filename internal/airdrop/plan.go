package airdrop

import (
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/tsender/internal/allowance"
	"github.com/Mohsinsiddi/tsender/internal/amount"
	"github.com/Mohsinsiddi/tsender/internal/contract"
	"github.com/Mohsinsiddi/tsender/internal/form"
	"github.com/Mohsinsiddi/tsender/internal/token"
	"github.com/Mohsinsiddi/tsender/internal/validate"
	"github.com/ethereum/go-ethereum/common"
)

// Batch is a validated airdrop in base units.
type Batch struct {
	Token      common.Address
	Recipients []common.Address
	Amounts    []*big.Int
	Total      *big.Int
	Metadata   *token.Metadata
}

// BuildBatch converts validated fields using meta.Decimals as the only unit
// authority. Callers run validate.Against first; BuildBatch still refuses
// inputs that break the batch invariants.
func BuildBatch(fields form.Fields, meta *token.Metadata) (Batch, error) {
	if meta == nil {
		return Batch{}, fmt.Errorf("building batch: %w", ErrTokenUnresolved)
	}
	recipients := amount.Split(fields.Recipients)
	entries := amount.Split(fields.Amounts)
	if len(recipients) == 0 || len(recipients) != len(entries) {
		return Batch{}, fmt.Errorf("building batch: %d recipients, %d amounts", len(recipients), len(entries))
	}

	units, bad, err := validate.BaseUnits(entries, meta.Decimals)
	if err != nil {
		return Batch{}, fmt.Errorf("building batch: %v: %w", bad, err)
	}

	addrs := make([]common.Address, len(recipients))
	for i, r := range recipients {
		if !validate.IsAddress(r) {
			return Batch{}, fmt.Errorf("building batch: invalid recipient %s", r)
		}
		addrs[i] = common.HexToAddress(r)
	}

	total := amount.Sum(units)
	if meta.HasBalance() && total.Cmp(meta.Balance) > 0 {
		return Batch{}, fmt.Errorf("building batch: total %s exceeds balance %s", total, meta.Balance)
	}

	return Batch{
		Token:      meta.Token,
		Recipients: addrs,
		Amounts:    units,
		Total:      total,
		Metadata:   meta,
	}, nil
}

// Plan is the ordered list of writes for one submission: an optional
// approve followed by exactly one airdropERC20.
type Plan struct {
	Batch   Batch
	Spender common.Address
	Calls   []contract.Call
}

// NeedsApproval reports whether the plan starts with an approve.
func (p Plan) NeedsApproval() bool {
	return len(p.Calls) == 2
}

// PlanFor derives the writes for batch from an allowance decision.
func PlanFor(batch Batch, decision allowance.Decision) (Plan, error) {
	spender := decision.Fact.Spender
	symbol := ""
	var decimals uint8
	if batch.Metadata != nil {
		symbol = batch.Metadata.Symbol
		decimals = batch.Metadata.Decimals
	}
	pretty := amount.FormatUnits(batch.Total, decimals)

	plan := Plan{Batch: batch, Spender: spender}
	if decision.NeedsApproval {
		data, err := contract.PackApprove(spender, batch.Total)
		if err != nil {
			return Plan{}, fmt.Errorf("encoding approve: %w", err)
		}
		plan.Calls = append(plan.Calls, contract.Call{
			Method:  contract.MethodApprove,
			To:      batch.Token,
			Data:    data,
			Summary: fmt.Sprintf("approve %s to spend %s %s", spender.Hex(), pretty, symbol),
		})
	}

	data, err := contract.PackAirdrop(batch.Token, batch.Recipients, batch.Amounts, batch.Total)
	if err != nil {
		return Plan{}, fmt.Errorf("encoding airdrop: %w", err)
	}
	plan.Calls = append(plan.Calls, contract.Call{
		Method:  contract.MethodAirdropERC20,
		To:      spender,
		Data:    data,
		Summary: fmt.Sprintf("airdrop %s %s to %d recipients", pretty, symbol, len(batch.Recipients)),
	})
	return plan, nil
}
