package auction

import (
	"encoding/json"
	"github.com/pkg/errors"
	"math"
)

// Outcome classifies a bid value against the current leaderboard.
type Outcome uint8

const (
	// OutcomeInvalid means the value is not backed by the funds held for
	// it or is below the reserve.
	OutcomeInvalid Outcome = iota
	OutcomeLead
	OutcomeSecond
	OutcomeLosing
)

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Outcome) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, candidate := range []Outcome{OutcomeInvalid, OutcomeLead, OutcomeSecond, OutcomeLosing} {
		if candidate.String() == s {
			*o = candidate
			return nil
		}
	}
	return errors.Errorf("unknown outcome %q", s)
}

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeLead:
		return "lead"
	case OutcomeSecond:
		return "second"
	case OutcomeLosing:
		return "losing"
	default:
		return "unknown"
	}
}

// Strategy is the bid acceptance policy of one visibility variant.
type Strategy interface {
	Visibility() Visibility
	CheckParams(p *Params) error
	Init(s *State)
	// Evaluate ranks value, backed by held funds, against the current
	// leaderboard without mutating it.
	Evaluate(s *State, value, held uint64) Outcome
}

func NewStrategy(v Visibility) (Strategy, error) {
	switch v {
	case VisibilityOpen:
		return OpenStrategy{}, nil
	case VisibilitySealedExact:
		return SealedExactStrategy{}, nil
	case VisibilitySealedOvercollateralized:
		return SealedOvercollateralizedStrategy{}, nil
	default:
		return nil, errors.Wrapf(ErrInvalidParams, "unknown visibility %d", v)
	}
}

func checkCommonParams(p *Params, now uint64) error {
	if p.Seller.IsZero() {
		return errors.Wrap(ErrInvalidParams, "seller is required")
	}
	if p.ServiceFeePercent > 100 {
		return errors.Wrapf(ErrInvalidParams, "service fee %d%% exceeds 100%%", p.ServiceFeePercent)
	}
	if p.PricingRule != FirstPrice && p.PricingRule != SecondPrice {
		return errors.Wrapf(ErrInvalidPricingRule, "unknown pricing rule %d", p.PricingRule)
	}
	if now >= p.StartRound {
		return errors.Wrapf(ErrInvalidSchedule, "start round %d is not after current round %d", p.StartRound, now)
	}
	if p.MinBidIncrement > math.MaxUint64-p.ReserveAmount {
		return errors.Wrapf(
			ErrInvalidSchedule,
			"reserve %d plus increment %d overflows",
			p.ReserveAmount,
			p.MinBidIncrement,
		)
	}
	return nil
}

// OpenStrategy is the ascending open-outcry auction. Bids are public and
// fully paid, and every accepted bid must beat the leader by the minimum
// increment.
type OpenStrategy struct{}

func (OpenStrategy) Visibility() Visibility {
	return VisibilityOpen
}

func (OpenStrategy) CheckParams(p *Params) error {
	if p.PricingRule != FirstPrice {
		return errors.Wrap(ErrInvalidPricingRule, "open auctions are first-price only")
	}
	if p.CommitEndRound != 0 {
		return errors.Wrap(ErrInvalidSchedule, "open auctions have no commit phase")
	}
	if p.EndRound <= p.StartRound {
		return errors.Wrapf(ErrInvalidSchedule, "end round %d is not after start round %d", p.EndRound, p.StartRound)
	}
	return nil
}

func (OpenStrategy) Init(s *State) {
	s.LeadBidAmount = 0
	s.SecondBidAmount = 0
}

func (OpenStrategy) Evaluate(s *State, value, held uint64) Outcome {
	if value != held || value < s.ReserveAmount {
		return OutcomeInvalid
	}
	if beats(value, s.LeadBidAmount, s.MinBidIncrement) {
		return OutcomeLead
	}
	return OutcomeLosing
}

func checkSealedSchedule(p *Params) error {
	if p.CommitEndRound <= p.StartRound || p.EndRound <= p.CommitEndRound {
		return errors.Wrapf(
			ErrInvalidSchedule,
			"rounds must satisfy start < commit end < end, got %d, %d, %d",
			p.StartRound,
			p.CommitEndRound,
			p.EndRound,
		)
	}
	return nil
}

// SealedExactStrategy is commit-reveal where the deposit is the bid: a
// reveal is only valid if it discloses exactly the deposited amount.
type SealedExactStrategy struct{}

func (SealedExactStrategy) Visibility() Visibility {
	return VisibilitySealedExact
}

func (SealedExactStrategy) CheckParams(p *Params) error {
	return checkSealedSchedule(p)
}

func (SealedExactStrategy) Init(s *State) {
	s.LeadBidAmount = s.ReserveAmount
	s.SecondBidAmount = s.ReserveAmount
}

func (SealedExactStrategy) Evaluate(s *State, value, held uint64) Outcome {
	if value != held || value < s.ReserveAmount {
		return OutcomeInvalid
	}
	return rankSealed(s, value, s.MinBidIncrement)
}

// SealedOvercollateralizedStrategy is commit-reveal where the deposit
// only has to cover the bid. The leader's whole deposit stays in escrow
// until the winner is paid.
type SealedOvercollateralizedStrategy struct{}

func (SealedOvercollateralizedStrategy) Visibility() Visibility {
	return VisibilitySealedOvercollateralized
}

func (SealedOvercollateralizedStrategy) CheckParams(p *Params) error {
	return checkSealedSchedule(p)
}

func (SealedOvercollateralizedStrategy) Init(s *State) {
	s.LeadBidAmount = s.ReserveAmount
	s.SecondBidAmount = s.ReserveAmount
}

func (SealedOvercollateralizedStrategy) Evaluate(s *State, value, held uint64) Outcome {
	if value > held || value < s.ReserveAmount {
		return OutcomeInvalid
	}
	return rankSealed(s, value, 1)
}

// beats reports whether value clears lead by at least inc.
func beats(value, lead, inc uint64) bool {
	return value >= lead && value-lead >= inc
}

// nextBid is the lowest value that beats lead, saturating at MaxUint64.
func nextBid(lead, inc uint64) uint64 {
	if inc > math.MaxUint64-lead {
		return math.MaxUint64
	}
	return lead + inc
}

func rankSealed(s *State, value, inc uint64) Outcome {
	switch {
	case beats(value, s.LeadBidAmount, inc):
		return OutcomeLead
	case value > s.SecondBidAmount:
		return OutcomeSecond
	default:
		return OutcomeLosing
	}
}
