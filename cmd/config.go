package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/tsender/internal/ui"
	"github.com/Mohsinsiddi/tsender/internal/validate"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetDefaultWalletCmd = &cobra.Command{
	Use:   "set-default-wallet <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := newWalletManager().Get(args[0]); err != nil {
			return fmt.Errorf("wallet %q: %w", args[0], err)
		}
		cfg.DefaultWallet = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default wallet set to %q", args[0])))
		return nil
	},
}

var configSetDefaultNetworkCmd = &cobra.Command{
	Use:   "set-default-network <chain>",
	Short: "Set the default network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := registry.GetByName(args[0]); err != nil {
			return fmt.Errorf("unknown chain %q, see `tsender chains`", args[0])
		}
		cfg.DefaultNetwork = args[0]
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Default network set to %q", args[0])))
		return nil
	},
}

var configSetDebounceCmd = &cobra.Command{
	Use:   "set-debounce <milliseconds>",
	Short: "Set the form's quiet period before validating",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ms, err := strconv.Atoi(args[0])
		if err != nil || ms <= 0 {
			return fmt.Errorf("debounce must be a positive number of milliseconds, got %q", args[0])
		}
		cfg.DebounceMS = ms
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Debounce set to %dms", ms)))
		return nil
	},
}

var configSetDistributorCmd = &cobra.Command{
	Use:   "set-distributor <chain> <address>",
	Short: "Override the TSender contract address for a chain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chainName, addr := args[0], args[1]
		if _, err := registry.GetByName(chainName); err != nil {
			return fmt.Errorf("unknown chain %q", chainName)
		}
		if !validate.IsAddress(addr) {
			return fmt.Errorf("invalid address %q", addr)
		}
		if cfg.Distributors == nil {
			cfg.Distributors = map[string]string{}
		}
		cfg.Distributors[chainName] = addr
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("TSender on %s set to %s", ui.ChainName(chainName), ui.Addr(addr))))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd, configSetDefaultWalletCmd, configSetDefaultNetworkCmd,
		configSetDebounceCmd, configSetDistributorCmd)
}
