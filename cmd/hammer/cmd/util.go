package cmd

import (
	"encoding/json"
	"fmt"
	"github.com/btcsuite/btcd/btcec"
	"github.com/kurumiimari/hammer"
	"github.com/kurumiimari/hammer/api"
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/keystore"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
	"strconv"
	"strings"
	"syscall"
)

func apiClient() (*api.Client, error) {
	client := api.NewClient(hammer.Config.APIURL(), hammer.Config.APIKey)

	_, err := client.Status()
	if err != nil {
		if strings.Contains(err.Error(), "connection refused") {
			return nil, errors.New("connection to hammer refused - did you select the right network?")
		}
		return nil, err
	}

	return client, nil
}

func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	// need the cast below for it to compile on windows
	b, err := terminal.ReadPassword(int(syscall.Stdin))
	fmt.Println("")
	if err != nil {
		return "", errors.Wrap(err, "error reading from terminal")
	}
	return string(b), nil
}

func keyStore() (*keystore.Store, error) {
	return keystore.NewStore(dataDir, hammer.Config.Network)
}

// signingKey unlocks the selected key file and derives the selected
// account's private key.
func signingKey() (*btcec.PrivateKey, error) {
	store, err := keyStore()
	if err != nil {
		return nil, err
	}
	password, err := readSecret(fmt.Sprintf("Password for key %s: ", hammer.Config.KeyName))
	if err != nil {
		return nil, err
	}
	kr, err := store.KeyRing(hammer.Config.KeyName, password)
	if err != nil {
		return nil, err
	}
	return kr.PrivateKey(hammer.Config.AccountIndex)
}

func addressArg(in string) (*chain.Address, error) {
	addr, err := chain.NewAddressFromBech32(in)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid address %s", in)
	}
	return addr, nil
}

func amountArg(in string) (uint64, error) {
	amt, err := chain.ParseAmount(in)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid amount %s", in)
	}
	return amt, nil
}

func uint64Arg(in string, name string) (uint64, error) {
	out, err := strconv.ParseUint(in, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid %s %s", name, in)
	}
	return out, nil
}

func intArg(in string, deflt int) int {
	out, err := strconv.Atoi(in)
	if err != nil {
		return deflt
	}
	return out
}

func printJSON(in interface{}) error {
	out, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}
