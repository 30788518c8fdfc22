package cmd

import (
	"fmt"
	"os"

	"github.com/Mohsinsiddi/tsender/internal/chain"
	"github.com/Mohsinsiddi/tsender/internal/config"
	"github.com/Mohsinsiddi/tsender/internal/ui"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/tsender/cmd.Version=1.2.3" .
var Version = "0.1.0"

// envFiles are loaded in order; earlier files win because godotenv never
// overwrites a variable that is already set.
var envFiles = []string{".env.local", ".env"}

var (
	cfgDir      string
	cfg         *config.Config
	verbose     bool
	networkFlag string

	log      = logrus.New()
	registry *chain.Registry
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "tsender",
	Short: "Batch ERC-20 airdrops through the TSender contract",
	Long: `tsender sends one ERC-20 token to many recipients in a single
transaction through the TSender distributor contract.

The token, recipient list and amount list are validated as you type (tsender
form) or from flags and files (tsender airdrop). When the distributor's
allowance does not cover the total, an approve is sent first.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		loadEnvFiles()

		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		setupLogger(verbose)

		registry = chain.NewRegistry()
		for _, name := range registry.OverrideDistributors(cfg.Distributors) {
			log.WithField("chain", name).Warn("ignoring distributor override for unknown chain")
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		os.Exit(1)
	}
}

func loadEnvFiles() {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.WithError(err).WithField("file", f).Warn("could not load env file")
		}
	}
}

func setupLogger(verbose bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: !verbose})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $"+config.EnvConfigDir+" or ~/.tsender)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "chain to use (default: config default_network)")

	rootCmd.AddCommand(
		airdropCmd,
		formCmd,
		tokenCmd,
		allowanceCmd,
		totalCmd,
		chainsCmd,
		walletCmd,
		draftCmd,
		rpcCmd,
		configCmd,
	)
}
