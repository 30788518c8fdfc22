package airdrop_test

import (
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/tsender/internal/airdrop"
	"github.com/Mohsinsiddi/tsender/internal/allowance"
	"github.com/Mohsinsiddi/tsender/internal/contract"
	"github.com/Mohsinsiddi/tsender/internal/form"
	"github.com/Mohsinsiddi/tsender/internal/token"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meta18(balance *big.Int) *token.Metadata {
	return &token.Metadata{Token: uni, ChainID: chainID, Decimals: 18, Symbol: "UNI", Balance: balance}
}

func TestBuildBatch(t *testing.T) {
	batch, err := airdrop.BuildBatch(form.Fields{
		TokenAddress: uniHex,
		Recipients:   "0x70997970c51812dc3a010c7d01b50e0d17dc79c8\n" + bobHex,
		Amounts:      "10, 20",
	}, meta18(nil))
	require.NoError(t, err)

	assert.Equal(t, uni, batch.Token)
	assert.Equal(t, aliceHex, batch.Recipients[0].Hex(), "recipients are checksum-normalized")
	assert.Equal(t, []*big.Int{tokens(10), tokens(20)}, batch.Amounts)
	assert.Equal(t, tokens(30), batch.Total)
}

func TestBuildBatchFixedPointHasNoDrift(t *testing.T) {
	// 0.1 + 0.2 in base units must be exactly 0.3e18.
	batch, err := airdrop.BuildBatch(form.Fields{
		TokenAddress: uniHex,
		Recipients:   aliceHex + "," + bobHex,
		Amounts:      "0.1,0.2",
	}, meta18(nil))
	require.NoError(t, err)
	want, _ := new(big.Int).SetString("300000000000000000", 10)
	assert.Equal(t, want, batch.Total)
}

func TestBuildBatchRejectsBrokenInvariants(t *testing.T) {
	_, err := airdrop.BuildBatch(form.Fields{Recipients: aliceHex, Amounts: "1,2"}, meta18(nil))
	assert.Error(t, err)

	_, err = airdrop.BuildBatch(form.Fields{Recipients: aliceHex, Amounts: "1"}, nil)
	assert.ErrorIs(t, err, airdrop.ErrTokenUnresolved)

	_, err = airdrop.BuildBatch(form.Fields{Recipients: aliceHex, Amounts: "31"}, meta18(tokens(30)))
	assert.ErrorContains(t, err, "exceeds balance")
}

func TestPlanForAllowance(t *testing.T) {
	batch, err := airdrop.BuildBatch(validFields(), meta18(nil))
	require.NoError(t, err)

	tests := []struct {
		name      string
		allowance *big.Int
		calls     []string
	}{
		{"zero allowance", big.NewInt(0), []string{contract.MethodApprove, contract.MethodAirdropERC20}},
		{"one wei short", new(big.Int).Sub(tokens(30), big.NewInt(1)), []string{contract.MethodApprove, contract.MethodAirdropERC20}},
		{"exact", tokens(30), []string{contract.MethodAirdropERC20}},
		{"surplus", tokens(1000), []string{contract.MethodAirdropERC20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := allowance.Decide(allowance.Fact{Owner: account, Spender: spender, Token: uni, Amount: tt.allowance}, batch.Total)
			plan, err := airdrop.PlanFor(batch, d)
			require.NoError(t, err)

			var methods []string
			for _, c := range plan.Calls {
				methods = append(methods, c.Method)
			}
			assert.Equal(t, tt.calls, methods)
			assert.Equal(t, spender, plan.Spender)
			assert.Equal(t, spender, plan.Calls[len(plan.Calls)-1].To)
		})
	}
}

func TestPlanSummaries(t *testing.T) {
	batch, err := airdrop.BuildBatch(validFields(), meta18(nil))
	require.NoError(t, err)
	d := allowance.Decide(allowance.Fact{Spender: spender, Amount: big.NewInt(0)}, batch.Total)

	plan, err := airdrop.PlanFor(batch, d)
	require.NoError(t, err)
	assert.Equal(t, "approve "+spender.Hex()+" to spend 30 UNI", plan.Calls[0].Summary)
	assert.Equal(t, "airdrop 30 UNI to 2 recipients", plan.Calls[1].Summary)
	assert.NotEqual(t, common.Address{}, plan.Calls[0].To)
}
