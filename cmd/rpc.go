package cmd

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/tsender/internal/config"
	"github.com/Mohsinsiddi/tsender/internal/rpc"
	"github.com/Mohsinsiddi/tsender/internal/ui"
	"github.com/spf13/cobra"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <chain> <url>",
	Short: "Add a custom RPC URL for a chain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainName, url := args[0], args[1]
		if _, err := registry.GetByName(chainName); err != nil {
			return fmt.Errorf("unknown chain %q", chainName)
		}
		if err := cfg.AddRPC(chainName, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.ChainName(chainName), url)))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <chain> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainName, url := args[0], args[1]
		if err := cfg.RemoveRPC(chainName, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed RPC for %s: %s", chainName, url)))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list <chain>",
	Short: "List all RPCs for a chain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := registry.GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown chain %q", args[0])
		}

		fmt.Println(ui.StyleTitle.Render(fmt.Sprintf("RPCs for %s", c.DisplayName)))
		if custom := cfg.GetRPCs(c.Name); len(custom) > 0 {
			fmt.Println(ui.StyleHeader.Render("Custom RPCs:"))
			for _, r := range custom {
				fmt.Printf("  %s\n", r)
			}
		}
		fmt.Println(ui.StyleHeader.Render("Built-in RPCs:"))
		for _, r := range c.RPCs {
			fmt.Printf("  %s\n", r)
		}
		fmt.Println(ui.Meta("Algorithm: " + cfg.RPCAlgorithm))
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark [chain]",
	Short: "Probe every RPC for a chain and show which one would be picked",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := activeChain()
		if len(args) == 1 {
			c, err = registry.GetByName(args[0])
		}
		if err != nil {
			return err
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}

		spin := ui.NewSpinner(fmt.Sprintf("Benchmarking %s RPCs...", c.DisplayName))
		spin.Start()
		ctx, cancel := context.WithTimeout(context.Background(), config.RPCSelectTimeout+config.TokenReadTimeout)
		defer cancel()
		probes := rpc.NewSelector(algo, rpc.WithTimeout(config.RPCSelectTimeout), rpc.WithLogger(log)).
			Benchmark(ctx, chainRPCs(c))
		healthy := 0
		for _, p := range probes {
			if p.Healthy() {
				healthy++
			}
		}
		spin.StopWithMsg(ui.Meta(fmt.Sprintf("%d/%d endpoints healthy", healthy, len(probes))))

		best, pickErr := rpc.Pick(probes, algo)

		t := ui.NewTable(
			ui.Column{Title: "RPC URL", Width: 40},
			ui.Column{Title: "Latency", Width: 10},
			ui.Column{Title: "Block #", Width: 12},
			ui.Column{Title: "Status", Width: 8},
		)
		for _, p := range probes {
			latency, block, status := fmt.Sprintf("%dms", p.Latency.Milliseconds()), fmt.Sprintf("%d", p.Block), "healthy"
			if !p.Healthy() {
				latency, block, status = "-", "-", "down"
			}
			t.AddRow(ui.Row{p.URL, latency, block, status}, pickErr == nil && p.URL == best.URL)
		}
		fmt.Println(t.Render())
		if pickErr != nil {
			return pickErr
		}
		fmt.Println(ui.Meta(fmt.Sprintf("Selected with %q: %s", algo, best.URL)))
		return nil
	},
}

var rpcAlgorithmCmd = &cobra.Command{
	Use:   "algorithm",
	Short: "Show or set the RPC selection algorithm",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Val(cfg.RPCAlgorithm))
		return nil
	},
}

var rpcAlgorithmSetCmd = &cobra.Command{
	Use:   "set <fastest|failover>",
	Short: "Set the RPC selection algorithm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		algo, err := rpc.ParseAlgorithm(args[0])
		if err != nil {
			return err
		}
		cfg.RPCAlgorithm = string(algo)
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("RPC algorithm set to %q", algo)))
		return nil
	},
}

func init() {
	rpcAlgorithmCmd.AddCommand(rpcAlgorithmSetCmd)
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchmarkCmd, rpcAlgorithmCmd)
}
