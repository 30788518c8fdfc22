package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/tsender/internal/ui"
	"github.com/spf13/cobra"
)

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List supported chains and their TSender deployments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		active := networkFlag
		if active == "" {
			active = cfg.DefaultNetwork
		}

		t := ui.NewTable(
			ui.Column{Title: "Name", Width: 10},
			ui.Column{Title: "Chain ID", Width: 10},
			ui.Column{Title: "TSender", Width: 14},
			ui.Column{Title: "RPCs", Width: 5},
		)
		for _, c := range registry.All() {
			tsender := "-"
			if addr, ok := registry.Distributor(c.ChainID); ok {
				tsender = ui.TruncateAddr(addr.Hex())
			}
			t.AddRow(ui.Row{
				c.Name,
				fmt.Sprintf("%d", c.ChainID),
				tsender,
				fmt.Sprintf("%d", len(chainRPCs(&c))),
			}, c.Name == active)
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta("Active: " + active + "  ·  override a deployment in config.json under \"distributors\""))
		return nil
	},
}
