package cmd

import (
	"github.com/kurumiimari/hammer"
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/keystore"
	"github.com/kurumiimari/hammer/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"os"
)

var (
	prefix   string
	network  string
	logLevel string
)

var cmdLogger = log.ModuleLogger("cmd")

var rootCmd = &cobra.Command{
	Use:          "hammer",
	Short:        "An on-ledger auction settlement node",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := log.SetLevel(logLevel); err != nil {
			return errors.Wrap(err, "invalid log level")
		}

		network, err := chain.NetworkFromName(network)
		if err != nil {
			return errors.Wrap(err, "invalid network")
		}
		chain.SetCurrNetwork(network)

		dd, err := keystore.NewDataDir(prefix)
		if err != nil {
			return errors.Wrap(err, "invalid prefix")
		}
		if err := dd.EnsureNetwork(network.Name); err != nil {
			return errors.Wrap(err, "error creating network directory")
		}

		hammer.Config.Prefix = prefix
		hammer.Config.DataDir = dd.NetworkPath(network.Name)
		hammer.Config.Network = network
		dataDir = dd
		return nil
	},
}

var dataDir *keystore.DataDir

func init() {
	rootCmd.PersistentFlags().StringVar(&prefix, "prefix", "~/.hammer", "Sets hammer's data directory")
	rootCmd.PersistentFlags().StringVarP(&network, "network", "n", "main", "Sets hammer's network")
	rootCmd.PersistentFlags().StringVarP(&hammer.Config.ServerURL, "url", "u", "", "Sets a custom node API url")
	rootCmd.PersistentFlags().StringVar(&hammer.Config.APIKey, "api-key", "", "Sets the node's API key")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Sets the log level")
	rootCmd.PersistentFlags().StringVarP(&hammer.Config.KeyName, "key", "k", "default", "Sets the key file used to sign calls")
	rootCmd.PersistentFlags().Uint32VarP(&hammer.Config.AccountIndex, "account-index", "i", 0, "Sets the account index within the key")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
