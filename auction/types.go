package auction

import (
	"encoding/json"
	"github.com/kurumiimari/hammer/chain"
	"github.com/pkg/errors"
	"strings"
)

type Visibility uint8

const (
	VisibilityOpen Visibility = iota + 1
	VisibilitySealedExact
	VisibilitySealedOvercollateralized
)

var visibilityNames = map[Visibility]string{
	VisibilityOpen:                     "OPEN",
	VisibilitySealedExact:              "SEALED_EXACT",
	VisibilitySealedOvercollateralized: "SEALED_OVERCOLLATERALIZED",
}

func ParseVisibility(in string) (Visibility, error) {
	norm := strings.Replace(strings.ToUpper(in), "-", "_", -1)
	for v, name := range visibilityNames {
		if name == norm {
			return v, nil
		}
	}
	return 0, errors.Errorf("unknown visibility %s", in)
}

func (v Visibility) String() string {
	if name, ok := visibilityNames[v]; ok {
		return name
	}
	return "UNKNOWN"
}

// Sealed is true for the commit-reveal variants.
func (v Visibility) Sealed() bool {
	return v == VisibilitySealedExact || v == VisibilitySealedOvercollateralized
}

func (v Visibility) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *Visibility) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseVisibility(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

type PricingRule uint8

const (
	FirstPrice PricingRule = iota + 1
	SecondPrice
)

func ParsePricingRule(in string) (PricingRule, error) {
	switch strings.Replace(strings.ToUpper(in), "-", "_", -1) {
	case "FIRST_PRICE", "FIRST":
		return FirstPrice, nil
	case "SECOND_PRICE", "SECOND", "VICKREY":
		return SecondPrice, nil
	default:
		return 0, errors.Errorf("unknown pricing rule %s", in)
	}
}

func (p PricingRule) String() string {
	switch p {
	case FirstPrice:
		return "FIRST_PRICE"
	case SecondPrice:
		return "SECOND_PRICE"
	default:
		return "UNKNOWN"
	}
}

// WinningAmount is what the winner ends up paying for the asset.
func (p PricingRule) WinningAmount(s *State) uint64 {
	if p == SecondPrice {
		return s.SecondBidAmount
	}
	return s.LeadBidAmount
}

func (p PricingRule) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *PricingRule) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParsePricingRule(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

type Phase string

const (
	PhaseCreated       Phase = "CREATED"
	PhaseConfigured    Phase = "CONFIGURED"
	PhaseBidding       Phase = "BIDDING"
	PhaseCommitting    Phase = "COMMITTING"
	PhaseRevealing     Phase = "REVEALING"
	PhaseEnded         Phase = "ENDED"
	PhaseSellerSettled Phase = "SELLER_SETTLED"
	PhaseWinnerSettled Phase = "WINNER_SETTLED"
	PhaseSettled       Phase = "SETTLED"
	PhaseTerminated    Phase = "TERMINATED"
)

// Params are the creation inputs of an auction. CommitEndRound and
// MinDeposit only apply to the sealed variants.
type Params struct {
	Seller            *chain.Address `json:"seller"`
	AssetID           uint64         `json:"asset_id"`
	StartRound        uint64         `json:"start_round"`
	CommitEndRound    uint64         `json:"commit_end_round"`
	EndRound          uint64         `json:"end_round"`
	ReserveAmount     uint64         `json:"reserve_amount"`
	MinBidIncrement   uint64         `json:"min_bid_increment"`
	MinDeposit        uint64         `json:"min_deposit"`
	Visibility        Visibility     `json:"visibility"`
	PricingRule       PricingRule    `json:"pricing_rule"`
	ServiceFeePercent uint64         `json:"service_fee_percent"`
}

// State is the global record of one auction. A nil LeadBidder means no
// valid bid has been recorded.
type State struct {
	Creator           *chain.Address `json:"creator"`
	Seller            *chain.Address `json:"seller"`
	AssetID           uint64         `json:"asset_id"`
	StartRound        uint64         `json:"start_round"`
	CommitEndRound    uint64         `json:"commit_end_round"`
	EndRound          uint64         `json:"end_round"`
	ReserveAmount     uint64         `json:"reserve_amount"`
	MinBidIncrement   uint64         `json:"min_bid_increment"`
	MinDeposit        uint64         `json:"min_deposit"`
	Visibility        Visibility     `json:"visibility"`
	PricingRule       PricingRule    `json:"pricing_rule"`
	ServiceFeePercent uint64         `json:"service_fee_percent"`
	LeadBidder        *chain.Address `json:"lead_bidder"`
	LeadBidAmount     uint64         `json:"lead_bid_amount"`
	SecondBidAmount   uint64         `json:"second_bid_amount"`
	LeadBidDeposit    uint64         `json:"lead_bid_deposit"`
	NumBids           uint64         `json:"num_bids"`
	AssetEscrowed     bool           `json:"asset_escrowed"`
	SellerPaid        bool           `json:"seller_paid"`
	WinnerPaid        bool           `json:"winner_paid"`
	Terminated        bool           `json:"terminated"`
}

func (s *State) HasLeader() bool {
	return !s.LeadBidder.IsZero()
}

func (s *State) Clone() *State {
	out := *s
	out.Creator = s.Creator.Clone()
	out.Seller = s.Seller.Clone()
	out.LeadBidder = s.LeadBidder.Clone()
	return &out
}

// PhaseAt derives the lifecycle phase from the state and the current
// round. Phases between setup and the end of the auction are implicit.
func (s *State) PhaseAt(round uint64) Phase {
	if s.Terminated {
		return PhaseTerminated
	}
	if round < s.StartRound {
		if s.AssetEscrowed {
			return PhaseConfigured
		}
		return PhaseCreated
	}
	if round < s.EndRound {
		if !s.Visibility.Sealed() {
			return PhaseBidding
		}
		if round < s.CommitEndRound {
			return PhaseCommitting
		}
		return PhaseRevealing
	}

	switch {
	case s.SellerPaid && s.WinnerPaid:
		return PhaseSettled
	case s.SellerPaid:
		return PhaseSellerSettled
	case s.WinnerPaid:
		return PhaseWinnerSettled
	default:
		return PhaseEnded
	}
}
