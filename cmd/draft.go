package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/tsender/internal/draft"
	"github.com/Mohsinsiddi/tsender/internal/form"
	"github.com/Mohsinsiddi/tsender/internal/ui"
	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Inspect or clear the saved airdrop draft",
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := draft.NewStore(cfg.DraftPath())
		fields := store.Load()
		if fields == (form.Fields{}) {
			fmt.Println(ui.Info("No draft saved."))
			return nil
		}
		fmt.Println(ui.KeyValueBlock("Draft", [][2]string{
			{"Token", fields.TokenAddress},
			{"Recipients", fields.Recipients},
			{"Amounts", fields.Amounts},
		}))
		fmt.Println(ui.Meta(store.Path()))
		return nil
	},
}

var draftClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the saved draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := draft.NewStore(cfg.DraftPath()).Clear(); err != nil {
			return err
		}
		fmt.Println(ui.Success("Draft cleared."))
		return nil
	},
}

func init() {
	draftCmd.AddCommand(draftShowCmd, draftClearCmd)
}
