package cmd

import (
	"encoding/binary"
	"fmt"
	"github.com/btcsuite/btcd/btcec"
	"github.com/kurumiimari/hammer/api"
	"github.com/kurumiimari/hammer/auction"
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/keystore"
	"github.com/kurumiimari/hammer/node"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"strings"
)

var (
	createSeller     string
	createAssetID    uint64
	createStart      string
	createCommitEnd  string
	createEnd        string
	createReserve    string
	createIncrement  string
	createMinDeposit string
	createVisibility string
	createPricing    string
	createFee        uint64
)

var auctionCmd = &cobra.Command{
	Use:   "auction",
	Short: "Creates and interacts with auctions",
}

// roundArg reads an absolute round, or one relative to the current
// round when prefixed with +.
func roundArg(in string, current uint64) (uint64, error) {
	if in == "" {
		return 0, nil
	}
	if strings.HasPrefix(in, "+") {
		delta, err := uint64Arg(in[1:], "round")
		if err != nil {
			return 0, err
		}
		return current + delta, nil
	}
	return uint64Arg(in, "round")
}

func optionalAmount(in string) (uint64, error) {
	if in == "" {
		return 0, nil
	}
	return amountArg(in)
}

var auctionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Creates an auction for an asset",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		status, err := client.Status()
		if err != nil {
			return err
		}
		key, err := signingKey()
		if err != nil {
			return err
		}

		params := &auction.Params{
			AssetID:           createAssetID,
			ServiceFeePercent: createFee,
		}
		if createSeller == "" {
			params.Seller = chain.NewAddressFromPubkey(key.PubKey())
		} else if params.Seller, err = addressArg(createSeller); err != nil {
			return err
		}
		if params.Visibility, err = auction.ParseVisibility(createVisibility); err != nil {
			return err
		}
		if params.PricingRule, err = auction.ParsePricingRule(createPricing); err != nil {
			return err
		}
		if params.StartRound, err = roundArg(createStart, status.Round); err != nil {
			return err
		}
		if params.CommitEndRound, err = roundArg(createCommitEnd, status.Round); err != nil {
			return err
		}
		if params.EndRound, err = roundArg(createEnd, status.Round); err != nil {
			return err
		}
		if params.ReserveAmount, err = optionalAmount(createReserve); err != nil {
			return err
		}
		if params.MinBidIncrement, err = optionalAmount(createIncrement); err != nil {
			return err
		}
		if params.MinDeposit, err = optionalAmount(createMinDeposit); err != nil {
			return err
		}

		res, err := client.CreateAuction(key, params)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var auctionShowCmd = &cobra.Command{
	Use:   "show <auction-id>",
	Short: "Shows an auction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		res, err := client.Auction(args[0])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var auctionListCmd = &cobra.Command{
	Use:   "list [page] [per-page]",
	Short: "Lists live auctions",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, perPage := 1, 50
		if len(args) > 0 {
			page = intArg(args[0], 1)
		}
		if len(args) > 1 {
			perPage = intArg(args[1], 50)
		}
		client, err := apiClient()
		if err != nil {
			return err
		}
		res, err := client.Auctions(perPage, (page-1)*perPage)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var auctionMineCmd = &cobra.Command{
	Use:   "mine <address>",
	Short: "Lists live auctions an address created, sells or called",
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
		res, err := client.AccountAuctions(addr)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var auctionLogsCmd = &cobra.Command{
	Use:   "logs <auction-id>",
	Short: "Lists the digests revealed in an auction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		res, err := client.Logs(args[0])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var auctionTransfersCmd = &cobra.Command{
	Use:   "transfers <auction-id>",
	Short: "Lists the transfers made by an auction's calls",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		res, err := client.Transfers(args[0])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

type signedCall func(client *api.Client, key *btcec.PrivateKey, id string) (*node.CallResult, error)

// callCmd builds a command that signs one auction call with the selected
// account.
func callCmd(use, short string, args cobra.PositionalArgs, parse func(args []string) (signedCall, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, err := parse(args[1:])
			if err != nil {
				return err
			}
			client, err := apiClient()
			if err != nil {
				return err
			}
			key, err := signingKey()
			if err != nil {
				return err
			}
			res, err := fn(client, key, args[0])
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
}

func noArgs(fn signedCall) func(args []string) (signedCall, error) {
	return func(args []string) (signedCall, error) {
		return fn, nil
	}
}

func randomNonce() uint64 {
	return binary.BigEndian.Uint64(keystore.RandBytes(8))
}

var auctionSetupCmd = callCmd(
	"setup <auction-id>",
	"Escrows the auctioned asset",
	cobra.ExactArgs(1),
	noArgs((*api.Client).Setup),
)

var auctionBidCmd = callCmd(
	"bid <auction-id> <amount>",
	"Places an open bid",
	cobra.ExactArgs(2),
	func(args []string) (signedCall, error) {
		amount, err := amountArg(args[0])
		if err != nil {
			return nil, err
		}
		return func(client *api.Client, key *btcec.PrivateKey, id string) (*node.CallResult, error) {
			return client.Bid(key, id, amount)
		}, nil
	},
)

var auctionCommitCmd = callCmd(
	"commit <auction-id> <value> <deposit> [nonce]",
	"Commits a sealed bid; a random nonce is chosen when none is given",
	cobra.RangeArgs(3, 4),
	func(args []string) (signedCall, error) {
		value, err := amountArg(args[0])
		if err != nil {
			return nil, err
		}
		deposit, err := amountArg(args[1])
		if err != nil {
			return nil, err
		}
		var nonce uint64
		if len(args) == 3 {
			if nonce, err = uint64Arg(args[2], "nonce"); err != nil {
				return nil, err
			}
		} else {
			nonce = randomNonce()
		}
		fmt.Printf("Committing value %s with nonce %d. Keep both to reveal.\n", chain.FormatAmount(value), nonce)
		return func(client *api.Client, key *btcec.PrivateKey, id string) (*node.CallResult, error) {
			return client.Commit(key, id, auction.Digest(value, nonce), deposit)
		}, nil
	},
)

var auctionRevealCmd = callCmd(
	"reveal <auction-id> <value> <nonce>",
	"Reveals a sealed bid",
	cobra.ExactArgs(3),
	func(args []string) (signedCall, error) {
		value, err := amountArg(args[0])
		if err != nil {
			return nil, err
		}
		nonce, err := uint64Arg(args[1], "nonce")
		if err != nil {
			return nil, err
		}
		return func(client *api.Client, key *btcec.PrivateKey, id string) (*node.CallResult, error) {
			return client.Reveal(key, id, value, nonce)
		}, nil
	},
)

var auctionClearCmd = callCmd(
	"clear <auction-id>",
	"Bids an overcollateralized deposit in full without revealing",
	cobra.ExactArgs(1),
	noArgs((*api.Client).Clear),
)

var auctionPaySellerCmd = callCmd(
	"pay-seller <auction-id>",
	"Pays the seller after the auction ends",
	cobra.ExactArgs(1),
	noArgs((*api.Client).PaySeller),
)

var auctionPayWinnerCmd = callCmd(
	"pay-winner <auction-id>",
	"Delivers the asset and any refund to the winner",
	cobra.ExactArgs(1),
	noArgs((*api.Client).PayWinner),
)

var auctionTeardownCmd = callCmd(
	"teardown <auction-id>",
	"Closes the auction's escrow and deletes it",
	cobra.ExactArgs(1),
	noArgs((*api.Client).Teardown),
)

var digestCmd = &cobra.Command{
	Use:   "digest <value> <nonce>",
	Short: "Computes the commitment for a sealed bid",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := amountArg(args[0])
		if err != nil {
			return err
		}
		nonce, err := uint64Arg(args[1], "nonce")
		if err != nil {
			return errors.WithStack(err)
		}
		fmt.Println(auction.Digest(value, nonce).String())
		return nil
	},
}

func init() {
	flags := auctionCreateCmd.Flags()
	flags.StringVar(&createSeller, "seller", "", "Seller address; defaults to the signing account")
	flags.Uint64Var(&createAssetID, "asset", 0, "ID of the asset to auction")
	flags.StringVar(&createStart, "start", "+10", "Start round, absolute or +relative")
	flags.StringVar(&createCommitEnd, "commit-end", "", "End of the commit phase for sealed auctions")
	flags.StringVar(&createEnd, "end", "+100", "End round, absolute or +relative")
	flags.StringVar(&createReserve, "reserve", "", "Reserve price")
	flags.StringVar(&createIncrement, "increment", "", "Minimum bid increment")
	flags.StringVar(&createMinDeposit, "min-deposit", "", "Minimum sealed bid deposit")
	flags.StringVar(&createVisibility, "visibility", "open", "open, sealed-exact or sealed-overcollateralized")
	flags.StringVar(&createPricing, "pricing", "first", "first or second")
	flags.Uint64Var(&createFee, "fee", 0, "Service fee as a percent of the winning price")

	for _, c := range []*cobra.Command{
		auctionCreateCmd,
		auctionShowCmd,
		auctionListCmd,
		auctionMineCmd,
		auctionLogsCmd,
		auctionTransfersCmd,
		auctionSetupCmd,
		auctionBidCmd,
		auctionCommitCmd,
		auctionRevealCmd,
		auctionClearCmd,
		auctionPaySellerCmd,
		auctionPayWinnerCmd,
		auctionTeardownCmd,
	} {
		auctionCmd.AddCommand(c)
	}
	rootCmd.AddCommand(auctionCmd)
	rootCmd.AddCommand(digestCmd)
}
