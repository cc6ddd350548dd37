package cmd

import (
	"github.com/kurumiimari/hammer"
	"github.com/kurumiimari/hammer/api"
	"github.com/spf13/cobra"
	"gopkg.in/tomb.v2"
	"os"
	"os/signal"
	"syscall"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Returns status information about the node",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		status, err := client.Status()
		if err != nil {
			return err
		}
		return printJSON(status)
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the hammer daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		tmb := new(tomb.Tomb)

		go func() {
			sigC := make(chan os.Signal, 1)
			signal.Notify(sigC, syscall.SIGTERM, syscall.SIGINT)
			select {
			case sig := <-sigC:
				cmdLogger.Info("caught signal, shutting down", "signal", sig.String())
				tmb.Kill(nil)
				return
			case <-tmb.Dying():
				return
			}
		}()

		return api.Start(tmb, hammer.Config.Network, hammer.Config.Prefix, hammer.Config.APIKey)
	},
}

var advanceCmd = &cobra.Command{
	Use:   "advance [rounds]",
	Short: "Advances the round clock (regtest only)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count := uint64(1)
		if len(args) == 1 {
			var err error
			count, err = uint64Arg(args[0], "round count")
			if err != nil {
				return err
			}
		}
		client, err := apiClient()
		if err != nil {
			return err
		}
		round, err := client.AdvanceRounds(count)
		if err != nil {
			return err
		}
		return printJSON(&api.AdvanceRoundsRes{Round: round})
	},
}

var faucetCmd = &cobra.Command{
	Use:   "faucet <address>",
	Short: "Funds an address from the faucet (regtest only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := addressArg(args[0])
		if err != nil {
			return err
		}
		client, err := apiClient()
		if err != nil {
			return err
		}
		res, err := client.Faucet(addr)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance <address>",
	Short: "Shows an address's balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := addressArg(args[0])
		if err != nil {
			return err
		}
		client, err := apiClient()
		if err != nil {
			return err
		}
		res, err := client.Account(addr)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mints a new asset owned by the selected account",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		key, err := signingKey()
		if err != nil {
			return err
		}
		res, err := client.MintAsset(key)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(advanceCmd)
	rootCmd.AddCommand(faucetCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(mintCmd)
}
