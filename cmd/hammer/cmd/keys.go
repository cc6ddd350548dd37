package cmd

import (
	"fmt"
	"github.com/kurumiimari/hammer"
	"github.com/kurumiimari/hammer/chain"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"strings"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manages signing keys",
}

func readNewPassword() (string, error) {
	password, err := readSecret("Please enter a password: ")
	if err != nil {
		return "", err
	}
	confirm, err := readSecret("Please confirm your password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

var keysNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generates a new key",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := keyStore()
		if err != nil {
			return err
		}
		password, err := readNewPassword()
		if err != nil {
			return err
		}
		mnemonic, err := store.Generate(hammer.Config.KeyName, password)
		if err != nil {
			return err
		}
		fmt.Println("Key created. Write down your seed phrase:")
		fmt.Println(mnemonic)
		return nil
	},
}

var keysImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Imports a key from a seed phrase",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := keyStore()
		if err != nil {
			return err
		}
		mnemonic, err := readSecret("Please enter your seed phrase: ")
		if err != nil {
			return err
		}
		password, err := readNewPassword()
		if err != nil {
			return err
		}
		if err := store.Import(hammer.Config.KeyName, strings.TrimSpace(mnemonic), password); err != nil {
			return err
		}
		fmt.Println("Key imported.")
		return nil
	},
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists stored keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := keyStore()
		if err != nil {
			return err
		}
		names, err := store.List()
		if err != nil {
			return err
		}
		return printJSON(names)
	},
}

var keysAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Shows the address of the selected account",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := signingKey()
		if err != nil {
			return err
		}
		fmt.Println(chain.NewAddressFromPubkey(key.PubKey()).String())
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysNewCmd)
	keysCmd.AddCommand(keysImportCmd)
	keysCmd.AddCommand(keysListCmd)
	keysCmd.AddCommand(keysAddressCmd)
	rootCmd.AddCommand(keysCmd)
}
