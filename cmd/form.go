package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Mohsinsiddi/tsender/internal/airdrop"
	"github.com/Mohsinsiddi/tsender/internal/debounce"
	"github.com/Mohsinsiddi/tsender/internal/draft"
	"github.com/Mohsinsiddi/tsender/internal/form"
	"github.com/Mohsinsiddi/tsender/internal/ui"
	"github.com/Mohsinsiddi/tsender/internal/wallet"
	"github.com/spf13/cobra"
)

var formWallet string

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Fill in an airdrop interactively with live validation",
	Long: `Open the airdrop form. Each field is checked shortly after you stop
typing; the token is read from the chain and its symbol, decimals and your
balance are shown. Send stays disabled until every field is valid and the
balance covers the total.

The form is restored from the saved draft and saved again on exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := draft.NewStore(cfg.DraftPath())
		initial := store.Load()

		account, w, err := resolveAccount(formWallet)
		if err != nil {
			return err
		}
		var signer *wallet.Signer
		if w != nil && w.CanSign() {
			if _, signer, err = loadSigningWallet(w.Name); err != nil {
				return err
			}
		}

		ctx := context.Background()
		p, err := newPipeline(ctx)
		if err != nil {
			return err
		}

		// The terminal belongs to the form; logs go to a file or nowhere.
		restore := redirectLogs()
		defer restore()

		snaps := ui.NewSnapshotFeed()
		states := ui.NewStateFeed()
		coord := debounce.New(p.resolver, cfg.Debounce(),
			debounce.WithLogger(log.WithField("chain", p.chain.Name)),
			debounce.OnChange(snaps.Publish),
		)
		defer coord.Stop()
		coord.SetAccount(account)

		var orch *airdrop.Orchestrator
		if signer != nil {
			orch = p.orchestrator(signer, nil, states.Publish)
		}

		submit := func(fields form.Fields) (string, error) {
			if orch == nil {
				if account == nil {
					return "", &airdrop.BlockedError{Err: airdrop.ErrNoAccount}
				}
				return "", &airdrop.BlockedError{Err: fmt.Errorf("%s: %w", account.Hex(), wallet.ErrWatchOnly)}
			}
			out, err := orch.Submit(ctx, fields, airdrop.Session{Account: account, ChainID: p.chain.ChainID})
			if err != nil {
				return "", err
			}
			return "Airdrop sent: " + txRef(out.Airdrop, p.chain), nil
		}

		accountText := ""
		if account != nil {
			accountText = account.Hex()
		}
		final, runErr := ui.RunForm(ui.FormOptions{
			Network: p.chain.DisplayName,
			Account: accountText,
			Initial: initial,
			Editor:  coord,
			Snaps:   snaps,
			States:  states,
			Submit:  submit,
			OnTouch: func() {
				if orch != nil {
					orch.Touch()
				}
			},
		})
		if err := store.Save(final); err != nil {
			fmt.Fprintln(os.Stderr, ui.Warn("could not save draft: "+err.Error()))
		}
		return runErr
	},
}

// redirectLogs sends log output to tsender.log in the config dir when
// --verbose is set and discards it otherwise. The returned func undoes it.
func redirectLogs() func() {
	prev := log.Out
	if !verbose {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(prev) }
	}
	f, err := os.OpenFile(filepath.Join(cfg.Dir(), "tsender.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(prev) }
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(prev)
		f.Close()
	}
}

func init() {
	formCmd.Flags().StringVar(&formWallet, "wallet", "", "wallet name or address (default: default wallet)")
}
