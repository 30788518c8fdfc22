package cmd

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/tsender/internal/allowance"
	"github.com/Mohsinsiddi/tsender/internal/amount"
	"github.com/Mohsinsiddi/tsender/internal/config"
	"github.com/Mohsinsiddi/tsender/internal/token"
	"github.com/Mohsinsiddi/tsender/internal/ui"
	"github.com/Mohsinsiddi/tsender/internal/validate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var (
	allowanceToken  string
	allowanceOwner  string
	allowanceAmount string
)

var allowanceCmd = &cobra.Command{
	Use:   "allowance",
	Short: "Show what the TSender contract may spend and whether an approve is needed",
	Long: `Read the allowance the owner granted to the chain's TSender contract.
With --amount (or --amounts text such as "10,20") the command also tells
whether an airdrop of that total would start with an approve.

Examples:
  tsender allowance --token 0xUNI
  tsender allowance --token 0xUNI --owner alice --amount "10, 20" --network anvil`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if msg := validate.TokenAddress(allowanceToken); msg != "" {
			return fmt.Errorf("--token: %s", msg)
		}
		owner, _, err := resolveAccount(allowanceOwner)
		if err != nil {
			return err
		}
		if owner == nil {
			return fmt.Errorf("--owner is required or set a default wallet")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.TokenReadTimeout+config.RPCSelectTimeout)
		defer cancel()
		p, err := newPipeline(ctx)
		if err != nil {
			return err
		}
		spender, err := p.allowances.Spender(p.chain.ChainID)
		if err != nil {
			return err
		}

		spin := ui.NewSpinner("Querying allowance...")
		spin.Start()
		res := p.resolver.Resolve(ctx, allowanceToken, owner)
		if res.Probe != token.ProbeConfirmed {
			spin.Stop()
			return fmt.Errorf("%s", res.TokenError())
		}
		meta := res.Metadata

		total := new(big.Int)
		if allowanceAmount != "" {
			entries, msg := validate.Amounts(allowanceAmount)
			if msg != "" {
				spin.Stop()
				return fmt.Errorf("--amount: %s", msg)
			}
			units, _, err := validate.BaseUnits(entries, meta.Decimals)
			if err != nil {
				spin.Stop()
				return fmt.Errorf("--amount: %w", err)
			}
			total = amount.Sum(units)
		}

		decision, err := p.allowances.Check(ctx, p.chain.ChainID, meta.Token, *owner, total)
		spin.Stop()
		if err != nil {
			return fmt.Errorf("querying allowance: %w", err)
		}

		fmt.Println(ui.KeyValueBlock("TSender Allowance", allowancePairs(decision, meta, spender, p.chain.DisplayName, allowanceAmount != "")))
		return nil
	},
}

func allowancePairs(d allowance.Decision, meta *token.Metadata, spender common.Address, network string, withTotal bool) [][2]string {
	pairs := [][2]string{
		{"Token", fmt.Sprintf("%s (%s)", meta.Symbol, meta.Token.Hex())},
		{"Owner", ui.Addr(d.Fact.Owner.Hex())},
		{"Spender", ui.Addr(spender.Hex())},
		{"Allowance", fmt.Sprintf("%s %s", amount.FormatUnits(d.Fact.Amount, meta.Decimals), meta.Symbol)},
		{"Raw", d.Fact.Amount.String()},
		{"Network", network},
	}
	if withTotal {
		verdict := ui.Success("no approve needed")
		if d.NeedsApproval {
			verdict = ui.Warn("approve needed first")
		}
		pairs = append(pairs,
			[2]string{"Airdrop total", fmt.Sprintf("%s %s", amount.FormatUnits(d.Required, meta.Decimals), meta.Symbol)},
			[2]string{"Plan", verdict},
		)
	}
	return pairs
}

func init() {
	allowanceCmd.Flags().StringVar(&allowanceToken, "token", "", "ERC-20 token address")
	allowanceCmd.Flags().StringVar(&allowanceOwner, "owner", "", "wallet name or address (default: default wallet)")
	allowanceCmd.Flags().StringVar(&allowanceAmount, "amount", "", "planned amounts in tokens, comma or newline separated")
}
