package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Mohsinsiddi/tsender/internal/airdrop"
	"github.com/Mohsinsiddi/tsender/internal/amount"
	"github.com/Mohsinsiddi/tsender/internal/chain"
	"github.com/Mohsinsiddi/tsender/internal/config"
	"github.com/Mohsinsiddi/tsender/internal/contract"
	"github.com/Mohsinsiddi/tsender/internal/draft"
	"github.com/Mohsinsiddi/tsender/internal/form"
	"github.com/Mohsinsiddi/tsender/internal/ui"
	"github.com/spf13/cobra"
)

// airdropInput is what the airdrop command reads from flags.
type airdropInput struct {
	Token          string
	Recipients     string
	Amounts        string
	RecipientsFile string
	AmountsFile    string
}

var (
	airdropIn     airdropInput
	airdropWallet string
	airdropYes    bool
	txWait        time.Duration
)

var airdropCmd = &cobra.Command{
	Use:   "airdrop",
	Short: "Send one ERC-20 token to many recipients",
	Long: `Validate the airdrop, approve the TSender contract if its allowance is
short, then call airdropERC20.

Recipients and amounts are separated by commas or new lines and must have the
same count. Amounts are in whole tokens (e.g. 1.5) and are converted with the
token's decimals. Missing flags fall back to the saved draft, and the inputs
are saved as the new draft before anything is sent.

Examples:
  tsender airdrop --token 0xUNI --recipients 0xA,0xB --amounts 10,20
  tsender airdrop --token 0xUNI --recipients-file list.txt --amounts-file amounts.txt --network anvil
  tsender airdrop --yes --wallet deployer`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := draft.NewStore(cfg.DraftPath())
		fields, err := gatherFields(airdropIn, store.Load())
		if err != nil {
			return err
		}
		if err := store.Save(fields); err != nil {
			log.WithError(err).Warn("could not save draft")
		}

		_, signer, err := loadSigningWallet(airdropWallet)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		p, err := newPipeline(ctx)
		if err != nil {
			return err
		}

		var confirm func(contract.Call) bool
		if !airdropYes {
			confirm = func(call contract.Call) bool {
				return ui.ConfirmCall(os.Stdin, os.Stdout, call.Method, [][2]string{
					{"Network", p.chain.DisplayName},
					{"From", signer.Address().Hex()},
					{"To", call.To.Hex()},
					{"Action", call.Summary},
				})
			}
		}
		// Prompts and a spinner cannot share the terminal, so the spinner
		// only runs with --yes.
		var spin *ui.Spinner
		observe := func(s airdrop.State) {
			msg := phaseMessage(s)
			switch {
			case msg == "":
			case spin != nil:
				spin.SetMessage(msg)
			default:
				fmt.Println(ui.Info(msg))
			}
		}

		account := signer.Address()
		orch := p.orchestrator(signer, confirm, observe)
		if airdropYes {
			spin = ui.NewSpinner("Processing...")
			spin.Start()
		} else {
			fmt.Println(ui.Meta("Processing..."))
		}
		out, err := orch.Submit(ctx, fields, airdrop.Session{Account: &account, ChainID: p.chain.ChainID})
		if spin != nil {
			spin.Stop()
		}
		if err != nil {
			printBlocked(err)
			return err
		}

		fmt.Println(ui.KeyValueBlock("Airdrop Sent", outcomePairs(out, p.chain)))
		batch := out.Plan.Batch
		fmt.Println(ui.Success(fmt.Sprintf("Sent %s %s to %d recipients",
			amount.FormatUnits(batch.Total, batch.Metadata.Decimals), batch.Metadata.Symbol, len(batch.Recipients))))
		return nil
	},
}

// gatherFields merges flags, list files and the saved draft. Flags win
// over files, files over the draft.
func gatherFields(in airdropInput, saved form.Fields) (form.Fields, error) {
	fields := saved
	if in.Token != "" {
		fields.TokenAddress = in.Token
	}

	pick := func(flag, file, fallback string) (string, error) {
		switch {
		case flag != "":
			return flag, nil
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return "", fmt.Errorf("reading %s: %w", file, err)
			}
			return strings.TrimSpace(string(data)), nil
		}
		return fallback, nil
	}

	var err error
	if fields.Recipients, err = pick(in.Recipients, in.RecipientsFile, fields.Recipients); err != nil {
		return form.Fields{}, err
	}
	if fields.Amounts, err = pick(in.Amounts, in.AmountsFile, fields.Amounts); err != nil {
		return form.Fields{}, err
	}
	return fields, nil
}

func phaseMessage(s airdrop.State) string {
	switch s {
	case airdrop.StateApproving:
		return "Approving the TSender contract..."
	case airdrop.StateAwaitingAirdrop:
		return "Sending airdrop..."
	}
	return ""
}

// printBlocked lists every inline field reason of a blocked run.
func printBlocked(err error) {
	var blocked *airdrop.BlockedError
	if !errors.As(err, &blocked) {
		return
	}
	for _, f := range form.AllFields {
		if msg := blocked.Errors.Get(f); msg != "" {
			fmt.Println(ui.Err(fmt.Sprintf("%s: %s", f, msg)))
		}
	}
}

func outcomePairs(out *airdrop.Outcome, c *chain.Chain) [][2]string {
	batch := out.Plan.Batch
	pairs := [][2]string{
		{"Network", c.DisplayName},
		{"Token", fmt.Sprintf("%s (%s)", batch.Metadata.Symbol, batch.Token.Hex())},
		{"Recipients", fmt.Sprintf("%d", len(batch.Recipients))},
		{"Total (base units)", batch.Total.String()},
	}
	if out.Approve != nil {
		pairs = append(pairs, [2]string{"Approve tx", txRef(out.Approve, c)})
	}
	pairs = append(pairs,
		[2]string{"Airdrop tx", txRef(out.Airdrop, c)},
		[2]string{"Block", fmt.Sprintf("%d", out.Airdrop.BlockNumber)},
		[2]string{"Gas used", fmt.Sprintf("%d", out.Airdrop.GasUsed)},
	)
	return pairs
}

func txRef(r *chain.TxReceipt, c *chain.Chain) string {
	if c.Explorer == "" {
		return r.Hash.Hex()
	}
	return strings.TrimRight(c.Explorer, "/") + "/tx/" + r.Hash.Hex()
}

func init() {
	f := airdropCmd.Flags()
	f.StringVar(&airdropIn.Token, "token", "", "ERC-20 token address")
	f.StringVar(&airdropIn.Recipients, "recipients", "", "recipient addresses, comma or newline separated")
	f.StringVar(&airdropIn.Amounts, "amounts", "", "amounts in tokens, comma or newline separated")
	f.StringVar(&airdropIn.RecipientsFile, "recipients-file", "", "read recipients from a file")
	f.StringVar(&airdropIn.AmountsFile, "amounts-file", "", "read amounts from a file")
	f.StringVar(&airdropWallet, "wallet", "", "signing wallet name (default: default wallet)")
	f.BoolVarP(&airdropYes, "yes", "y", false, "send without confirming each transaction")
	f.DurationVar(&txWait, "wait", config.TxConfirmTimeout, "how long to wait for each transaction to be mined")
}
