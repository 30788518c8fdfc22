package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/tsender/internal/amount"
	"github.com/Mohsinsiddi/tsender/internal/config"
	"github.com/Mohsinsiddi/tsender/internal/token"
	"github.com/Mohsinsiddi/tsender/internal/ui"
	"github.com/Mohsinsiddi/tsender/internal/validate"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
)

var tokenOwner string

var tokenCmd = &cobra.Command{
	Use:   "token <address>",
	Short: "Check that an address is an ERC-20 token and show its details",
	Long: `Read decimals and symbol from the token and, with --owner or a default
wallet, the owner's balance.

Examples:
  tsender token 0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984
  tsender token 0xUNI --owner alice --network base`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if msg := validate.TokenAddress(args[0]); msg != "" {
			return fmt.Errorf("%s", msg)
		}

		owner, _, err := resolveAccount(tokenOwner)
		if err != nil {
			return err
		}

		ctx := context.Background()
		p, err := newPipeline(ctx)
		if err != nil {
			return err
		}

		spin := ui.NewSpinner("Reading token...")
		spin.Start()
		readCtx, cancel := context.WithTimeout(ctx, config.TokenReadTimeout)
		res := p.resolver.Resolve(readCtx, args[0], owner)
		cancel()
		spin.Stop()

		fmt.Println(ui.KeyValueBlock("ERC-20 Token", tokenPairs(res, common.HexToAddress(args[0]), owner, p.chain.DisplayName)))
		if res.Probe != token.ProbeConfirmed {
			if res.Err != nil {
				log.WithError(res.Err).Debug("token probe failed")
			}
			return fmt.Errorf("%s", res.TokenError())
		}
		return nil
	},
}

func tokenPairs(res token.Result, addr common.Address, owner *common.Address, network string) [][2]string {
	pairs := [][2]string{
		{"Address", ui.Addr(addr.Hex())},
		{"Network", network},
		{"Status", res.Probe.String()},
	}
	meta := res.Metadata
	if res.Probe != token.ProbeConfirmed || meta == nil {
		return pairs
	}
	pairs = append(pairs,
		[2]string{"Symbol", meta.Symbol},
		[2]string{"Decimals", fmt.Sprintf("%d", meta.Decimals)},
	)
	if owner != nil && meta.HasBalance() {
		pairs = append(pairs,
			[2]string{"Owner", ui.Addr(owner.Hex())},
			[2]string{"Balance", fmt.Sprintf("%s %s", amount.FormatUnits(meta.Balance, meta.Decimals), meta.Symbol)},
			[2]string{"Balance (raw)", meta.Balance.String()},
		)
	}
	return pairs
}

func init() {
	tokenCmd.Flags().StringVar(&tokenOwner, "owner", "", "wallet name or address whose balance to read (default: default wallet)")
}
