package auction

import (
	"github.com/kurumiimari/hammer/chain"
	"github.com/pkg/errors"
)

// ApplyServiceFee deducts a percentage fee from amount. The division
// happens first so the product cannot overflow; it truncates.
func ApplyServiceFee(amount, percent uint64) uint64 {
	return amount - percent*(amount/100)
}

// payout sends gross to the recipient. The escrow pays the transfer fee
// out of gross, so the recipient receives gross less the minimum fee.
// Amounts that do not cover the fee stay in escrow.
func (a *Auction) payout(to *chain.Address, gross uint64, reason string) (uint64, error) {
	fee := a.escrow.MinTxnFee()
	if gross <= fee {
		a.lgr.Debug("skipping dust payout", "to", to, "gross", gross, "reason", reason)
		return 0, nil
	}
	amount := gross - fee
	if err := a.escrow.Transfer(to, amount); err != nil {
		return 0, errors.Wrapf(err, "error issuing %s", reason)
	}
	a.lgr.Debug("issued payout", "to", to, "amount", amount, "reason", reason)
	return amount, nil
}

// promote makes bidder the leader of next. The previous leader gets back
// everything held for them and their bid becomes the second price.
func (a *Auction) promote(next *State, bidder *chain.Address, value, held uint64) error {
	if next.HasLeader() {
		if _, err := a.payout(next.LeadBidder, next.LeadBidDeposit, "outbid refund"); err != nil {
			return err
		}
		a.lgr.Info("leader displaced", "previous", next.LeadBidder, "previous_amount", next.LeadBidAmount)
	}
	next.SecondBidAmount = next.LeadBidAmount
	next.LeadBidAmount = value
	next.LeadBidDeposit = held
	next.LeadBidder = bidder.Clone()
	next.NumBids++
	a.lgr.Info("new leader", "bidder", bidder, "amount", value, "held", held)
	return nil
}

// settleEntry ranks a disclosed sealed bid, moves the funds accordingly
// and consumes the bidder's entry.
func (a *Auction) settleEntry(bidder *chain.Address, entry *Participant, value uint64, cleared bool) (*RevealResult, error) {
	next := a.state.Clone()
	outcome := a.strategy.Evaluate(next, value, entry.Collateral)

	var refund uint64
	var err error
	switch outcome {
	case OutcomeLead:
		err = a.promote(next, bidder, value, entry.Collateral)
	case OutcomeSecond:
		// A value inside the minimum increment above the lead still
		// cannot exceed it.
		next.SecondBidAmount = value
		if value > next.LeadBidAmount {
			next.SecondBidAmount = next.LeadBidAmount
		}
		refund, err = a.payout(bidder, entry.Collateral, "reveal refund")
	default:
		refund, err = a.payout(bidder, entry.Collateral, "reveal refund")
	}
	if err != nil {
		return nil, err
	}

	res := &RevealResult{
		Bidder:  bidder.Clone(),
		Value:   value,
		Entry:   entry.Clone(),
		Outcome: outcome,
		Refund:  refund,
		Cleared: cleared,
	}
	res.Entry.Revealed = true

	a.state = next
	a.participants.Delete(bidder)
	a.lgr.Debug(
		"settled commitment",
		"bidder", bidder,
		"value", value,
		"outcome", outcome,
		"cleared", cleared,
	)
	return res, nil
}
