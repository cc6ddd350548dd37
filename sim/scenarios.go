package sim

import (
	"github.com/kurumiimari/hammer/auction"
)

// Bid is one bidder's move. Open auctions submit Value directly. Sealed
// auctions commit Deposit against the digest of Value and Nonce, then
// reveal, or clear when Clear is set.
type Bid struct {
	Bidder  string
	Value   uint64
	Deposit uint64
	Nonce   uint64
	Clear   bool
}

type Scenario struct {
	Name        string
	Description string
	Bidders     []string
	Visibility  auction.Visibility
	PricingRule auction.PricingRule
	Reserve     uint64
	Increment   uint64
	FeePercent  uint64
	Bids        []*Bid
}

var Scenarios = []*Scenario{
	{
		Name:        "open",
		Description: "Open first-price auction. One bid lands inside the increment and is rejected.",
		Bidders:     []string{"alice", "bob", "carol"},
		Visibility:  auction.VisibilityOpen,
		PricingRule: auction.FirstPrice,
		Reserve:     100000,
		Increment:   10000,
		FeePercent:  2,
		Bids: []*Bid{
			{Bidder: "alice", Value: 150000},
			{Bidder: "bob", Value: 155000},
			{Bidder: "bob", Value: 170000},
			{Bidder: "carol", Value: 200000},
		},
	},
	{
		Name:        "sealed-second-price",
		Description: "Sealed second-price auction with exact deposits. The winner pays the runner-up's bid.",
		Bidders:     []string{"alice", "bob", "carol"},
		Visibility:  auction.VisibilitySealedExact,
		PricingRule: auction.SecondPrice,
		Reserve:     100000,
		Increment:   10000,
		FeePercent:  2,
		Bids: []*Bid{
			{Bidder: "alice", Value: 200000, Deposit: 200000, Nonce: 11},
			{Bidder: "bob", Value: 350000, Deposit: 350000, Nonce: 2},
			{Bidder: "carol", Value: 90000, Deposit: 90000, Nonce: 33},
		},
	},
	{
		Name: "overcollateralized-undercollateralized-bids",
		Description: "Only alice bids above the reserve with enough collateral. The other bids are refunded " +
			"and alice pays the reserve.",
		Bidders:     []string{"alice", "bob", "carol"},
		Visibility:  auction.VisibilitySealedOvercollateralized,
		PricingRule: auction.SecondPrice,
		Reserve:     100000,
		FeePercent:  2,
		Bids: []*Bid{
			{Bidder: "alice", Value: 200000, Deposit: 300000, Nonce: 163},
			{Bidder: "bob", Value: 150000, Deposit: 90000, Nonce: 28},
			{Bidder: "carol", Value: 350000, Deposit: 110000, Nonce: 6},
		},
	},
	{
		Name: "overcollateralized-tied-bids",
		Description: "alice and bob bid the same value with different collateral. alice reveals first and " +
			"wins at her own bid.",
		Bidders:     []string{"alice", "bob", "carol"},
		Visibility:  auction.VisibilitySealedOvercollateralized,
		PricingRule: auction.SecondPrice,
		Reserve:     100000,
		FeePercent:  2,
		Bids: []*Bid{
			{Bidder: "alice", Value: 200000, Deposit: 200000, Nonce: 163},
			{Bidder: "bob", Value: 200000, Deposit: 290000, Nonce: 28},
			{Bidder: "carol", Value: 150000, Deposit: 410000, Nonce: 6},
		},
	},
	{
		Name:        "overcollateralized-clear",
		Description: "carol clears her whole collateral instead of revealing and outbids alice.",
		Bidders:     []string{"alice", "carol"},
		Visibility:  auction.VisibilitySealedOvercollateralized,
		PricingRule: auction.FirstPrice,
		Reserve:     100000,
		Bids: []*Bid{
			{Bidder: "alice", Value: 200000, Deposit: 300000, Nonce: 1},
			{Bidder: "carol", Deposit: 250000, Clear: true},
		},
	},
}

func ScenarioByName(name string) *Scenario {
	for _, sc := range Scenarios {
		if sc.Name == name {
			return sc
		}
	}
	return nil
}
