package auction

import (
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/gcrypto"
	"github.com/kurumiimari/hammer/log"
	"github.com/pkg/errors"
)

// Auction is the state machine of a single auction. It is not safe for
// concurrent use; the host delivers calls one at a time. Every method
// either succeeds or leaves the state untouched. Transfers issued before
// a failure are undone by the host's group rollback.
type Auction struct {
	state        *State
	participants Participants
	strategy     Strategy
	escrow       Escrow
	lgr          log.Logger
}

// RevealResult describes how a revealed or cleared commitment was
// settled.
type RevealResult struct {
	Bidder  *chain.Address `json:"bidder"`
	Value   uint64         `json:"value"`
	Entry   *Participant   `json:"entry"`
	Outcome Outcome        `json:"outcome"`
	Refund  uint64         `json:"refund"`
	Cleared bool           `json:"cleared"`
}

func Create(params *Params, now uint64, creator *chain.Address, escrow Escrow) (*Auction, error) {
	if creator.IsZero() {
		return nil, errors.Wrap(ErrInvalidParams, "creator is required")
	}
	if err := checkCommonParams(params, now); err != nil {
		return nil, err
	}
	strategy, err := NewStrategy(params.Visibility)
	if err != nil {
		return nil, err
	}
	if err := strategy.CheckParams(params); err != nil {
		return nil, err
	}

	state := &State{
		Creator:           creator.Clone(),
		Seller:            params.Seller.Clone(),
		AssetID:           params.AssetID,
		StartRound:        params.StartRound,
		CommitEndRound:    params.CommitEndRound,
		EndRound:          params.EndRound,
		ReserveAmount:     params.ReserveAmount,
		MinBidIncrement:   params.MinBidIncrement,
		MinDeposit:        params.MinDeposit,
		Visibility:        params.Visibility,
		PricingRule:       params.PricingRule,
		ServiceFeePercent: params.ServiceFeePercent,
	}
	strategy.Init(state)

	a := newAuction(state, make(Participants), strategy, escrow)
	a.lgr.Info(
		"created auction",
		"seller", state.Seller,
		"visibility", state.Visibility,
		"pricing", state.PricingRule,
		"start", state.StartRound,
		"end", state.EndRound,
	)
	return a, nil
}

// Restore rebuilds an auction from persisted state.
func Restore(state *State, participants Participants, escrow Escrow) (*Auction, error) {
	strategy, err := NewStrategy(state.Visibility)
	if err != nil {
		return nil, err
	}
	if participants == nil {
		participants = make(Participants)
	}
	return newAuction(state.Clone(), participants.Clone(), strategy, escrow), nil
}

func newAuction(state *State, participants Participants, strategy Strategy, escrow Escrow) *Auction {
	return &Auction{
		state:        state,
		participants: participants,
		strategy:     strategy,
		escrow:       escrow,
		lgr:          log.ModuleLogger("auction").Child("escrow", escrow.Address()),
	}
}

func (a *Auction) State() *State {
	return a.state.Clone()
}

func (a *Auction) Phase(round uint64) Phase {
	return a.state.PhaseAt(round)
}

func (a *Auction) Participant(addr *chain.Address) *Participant {
	entry := a.participants.Get(addr)
	if entry == nil {
		return nil
	}
	return entry.Clone()
}

func (a *Auction) Participants() Participants {
	return a.participants.Clone()
}

func (a *Auction) Escrow() Escrow {
	return a.escrow
}

// Setup takes custody of the asset. The call must be preceded by the
// seller's transfer of the asset into the escrow.
func (a *Auction) Setup(call *Call) error {
	if err := a.checkLive(); err != nil {
		return err
	}
	if call.Round >= a.state.StartRound {
		return errors.Wrapf(ErrTooLate, "setup at round %d, auction starts at %d", call.Round, a.state.StartRound)
	}
	if a.state.AssetEscrowed {
		return ErrAlreadySetUp
	}
	if !call.Sender.Equal(a.state.Seller) {
		return errors.Wrap(ErrNotSeller, "only the seller can escrow the asset")
	}
	txn, err := call.accompanying(a.escrow.Address(), chain.TxnAssetTransfer)
	if err != nil {
		return err
	}
	if txn.AssetID != a.state.AssetID {
		return errors.Wrapf(ErrMalformedGroup, "expected asset %d, got %d", a.state.AssetID, txn.AssetID)
	}
	if !a.escrow.HoldsAsset(a.state.AssetID) {
		return errors.Wrap(ErrMalformedGroup, "escrow does not hold the asset")
	}

	a.state.AssetEscrowed = true
	a.lgr.Info("asset escrowed", "asset_id", a.state.AssetID)
	return nil
}

// Bid places an open bid. The call must be preceded by a payment of the
// bid amount into the escrow.
func (a *Auction) Bid(call *Call) error {
	if err := a.checkLive(); err != nil {
		return err
	}
	if a.state.Visibility != VisibilityOpen {
		return errors.Wrapf(ErrWrongPhase, "%s auctions do not take open bids", a.state.Visibility)
	}
	if call.Round < a.state.StartRound {
		return ErrNotStarted
	}
	if call.Round >= a.state.EndRound {
		return ErrEnded
	}
	if !a.state.AssetEscrowed {
		return ErrNotSetUp
	}
	txn, err := call.accompanying(a.escrow.Address(), chain.TxnPayment)
	if err != nil {
		return err
	}

	amount := txn.Amount
	if amount <= a.escrow.MinTxnFee() {
		return errors.Wrapf(ErrBidTooLow, "bid %d does not exceed the minimum transaction fee", amount)
	}
	if a.strategy.Evaluate(a.state, amount, amount) != OutcomeLead {
		return errors.Wrapf(
			ErrBidTooLow,
			"bid %d is below %d",
			amount,
			maxUint64(nextBid(a.state.LeadBidAmount, a.state.MinBidIncrement), a.state.ReserveAmount),
		)
	}

	next := a.state.Clone()
	if err := a.promote(next, call.Sender, amount, amount); err != nil {
		return err
	}
	a.state = next
	return nil
}

// Commit records a sealed bid commitment. The call must be preceded by
// the deposit payment. Committing again replaces the previous commitment
// and refunds its deposit.
func (a *Auction) Commit(call *Call, commitment gcrypto.Hash) error {
	if err := a.checkLive(); err != nil {
		return err
	}
	if !a.state.Visibility.Sealed() {
		return errors.Wrap(ErrWrongPhase, "open auctions do not take commitments")
	}
	if call.Round < a.state.StartRound || call.Round >= a.state.CommitEndRound {
		return errors.Wrapf(
			ErrWrongPhase,
			"commit at round %d outside [%d, %d)",
			call.Round,
			a.state.StartRound,
			a.state.CommitEndRound,
		)
	}
	if !a.state.AssetEscrowed {
		return ErrNotSetUp
	}
	if len(commitment) != gcrypto.DigestSize {
		return errors.Wrapf(ErrMalformedDigest, "expected %d bytes, got %d", gcrypto.DigestSize, len(commitment))
	}
	txn, err := call.accompanying(a.escrow.Address(), chain.TxnPayment)
	if err != nil {
		return err
	}

	deposit := txn.Amount
	if deposit <= a.escrow.MinTxnFee() || deposit < a.state.MinDeposit {
		return errors.Wrapf(ErrBidTooLow, "deposit %d is below the minimum", deposit)
	}

	if prev := a.participants.Get(call.Sender); prev != nil {
		if _, err := a.payout(call.Sender, prev.Collateral, "replaced commitment"); err != nil {
			return err
		}
	}

	a.participants.Put(call.Sender, &Participant{
		Commitment: append(gcrypto.Hash(nil), commitment...),
		Collateral: deposit,
	})
	a.lgr.Debug("accepted commitment", "bidder", call.Sender, "deposit", deposit)
	return nil
}

// Reveal discloses a sealed bid. The digest of the disclosed pair is
// logged before it is checked against the commitment.
func (a *Auction) Reveal(call *Call, value, nonce uint64) (*RevealResult, error) {
	if err := a.checkLive(); err != nil {
		return nil, err
	}
	if !a.state.Visibility.Sealed() {
		return nil, errors.Wrap(ErrWrongPhase, "open auctions do not take reveals")
	}
	if err := a.checkRevealWindow(call); err != nil {
		return nil, err
	}
	entry := a.participants.Get(call.Sender)
	if entry == nil {
		return nil, errors.Wrapf(ErrNoSuchCommitment, "no commitment for %s", call.Sender)
	}

	digest := Digest(value, nonce)
	if err := a.escrow.Log(digest); err != nil {
		return nil, errors.Wrap(err, "error logging digest")
	}
	if !digest.Equal(entry.Commitment) {
		return nil, ErrDigestMismatch
	}

	return a.settleEntry(call.Sender, entry, value, false)
}

// Clear withdraws an unrevealed overcollateralized commitment. The whole
// deposit is ranked as if it had been revealed as the bid.
func (a *Auction) Clear(call *Call) (*RevealResult, error) {
	if err := a.checkLive(); err != nil {
		return nil, err
	}
	if a.state.Visibility != VisibilitySealedOvercollateralized {
		return nil, errors.Wrapf(ErrWrongPhase, "%s auctions cannot be cleared", a.state.Visibility)
	}
	if err := a.checkRevealWindow(call); err != nil {
		return nil, err
	}
	entry := a.participants.Get(call.Sender)
	if entry == nil {
		return nil, errors.Wrapf(ErrNoSuchCommitment, "no commitment for %s", call.Sender)
	}

	return a.settleEntry(call.Sender, entry, entry.Collateral, true)
}

// PaySeller pays the seller the winning amount less the service fee, or
// returns the asset if no valid bid was placed.
func (a *Auction) PaySeller(call *Call) error {
	if err := a.checkLive(); err != nil {
		return err
	}
	if call.Round < a.state.EndRound {
		return ErrNotEnded
	}
	if !call.Sender.Equal(a.state.Seller) {
		return ErrNotSeller
	}
	if a.state.SellerPaid {
		return errors.Wrap(ErrAlreadyPaid, "seller already paid")
	}

	next := a.state.Clone()
	if next.HasLeader() {
		amount := ApplyServiceFee(next.PricingRule.WinningAmount(next), next.ServiceFeePercent)
		if _, err := a.payout(next.Seller, amount, "seller payout"); err != nil {
			return err
		}
	} else {
		if err := a.returnAsset(); err != nil {
			return err
		}
		// Nobody can claim as winner.
		next.WinnerPaid = true
	}
	next.SellerPaid = true
	a.state = next
	return nil
}

// PayWinner hands the asset to the winner and refunds whatever the
// winner holds in escrow beyond the winning amount.
func (a *Auction) PayWinner(call *Call) error {
	if err := a.checkLive(); err != nil {
		return err
	}
	if call.Round < a.state.EndRound {
		return ErrNotEnded
	}
	if !a.state.HasLeader() || !call.Sender.Equal(a.state.LeadBidder) {
		return ErrNotWinner
	}
	if a.state.WinnerPaid {
		return errors.Wrap(ErrAlreadyPaid, "winner already paid")
	}

	next := a.state.Clone()
	if err := a.escrow.TransferAsset(next.AssetID, next.LeadBidder); err != nil {
		return errors.Wrap(err, "error transferring asset to winner")
	}
	winning := next.PricingRule.WinningAmount(next)
	if next.LeadBidDeposit > winning {
		if _, err := a.payout(next.LeadBidder, next.LeadBidDeposit-winning, "winner refund"); err != nil {
			return err
		}
	}
	next.WinnerPaid = true
	a.state = next
	a.lgr.Info("winner paid", "winner", next.LeadBidder, "winning_amount", winning)
	return nil
}

// Teardown terminates the auction. Before the start round the seller or
// creator may cancel it; afterwards both settlements must have happened.
// The asset, if still held, goes back to the seller and the remaining
// balance to the creator.
func (a *Auction) Teardown(call *Call) error {
	if a.state.Terminated {
		return errors.Wrap(ErrNotEligible, "already terminated")
	}

	if call.Round < a.state.StartRound {
		if !call.Sender.Equal(a.state.Seller) && !call.Sender.Equal(a.state.Creator) {
			return errors.Wrap(ErrNotEligible, "only the seller or creator can cancel")
		}
		if err := a.returnAsset(); err != nil {
			return err
		}
	} else if !a.state.SellerPaid || !a.state.WinnerPaid {
		return errors.Wrapf(
			ErrNotEligible,
			"seller paid: %t, winner paid: %t",
			a.state.SellerPaid,
			a.state.WinnerPaid,
		)
	}

	if err := a.escrow.CloseTo(a.state.Creator); err != nil {
		return errors.Wrap(err, "error closing escrow")
	}
	if len(a.participants) > 0 {
		a.lgr.Warning("forfeiting unrevealed deposits", "count", len(a.participants), "amount", a.participants.Held())
	}

	next := a.state.Clone()
	next.Terminated = true
	a.state = next
	a.participants = make(Participants)
	a.lgr.Info("auction terminated", "caller", call.Sender)
	return nil
}

func (a *Auction) checkLive() error {
	if a.state.Terminated {
		return ErrTerminated
	}
	return nil
}

func (a *Auction) checkRevealWindow(call *Call) error {
	if call.Round < a.state.CommitEndRound || call.Round >= a.state.EndRound {
		return errors.Wrapf(
			ErrWrongPhase,
			"reveal at round %d outside [%d, %d)",
			call.Round,
			a.state.CommitEndRound,
			a.state.EndRound,
		)
	}
	if _, err := call.appCall(); err != nil {
		return err
	}
	return nil
}

func (a *Auction) returnAsset() error {
	if !a.state.AssetEscrowed || !a.escrow.HoldsAsset(a.state.AssetID) {
		return nil
	}
	if err := a.escrow.TransferAsset(a.state.AssetID, a.state.Seller); err != nil {
		return errors.Wrap(err, "error returning asset to seller")
	}
	a.lgr.Info("returned asset to seller", "asset_id", a.state.AssetID)
	return nil
}

func maxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
