// Package sim replays scripted auctions against an in-memory ledger.
package sim

import (
	"fmt"
	"github.com/kurumiimari/hammer/auction"
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/gcrypto"
	"github.com/kurumiimari/hammer/ledger"
	"github.com/pkg/errors"
)

const (
	FundAmount     = 1000000
	StartRound     = 2
	CommitEndRound = 6
	EndRound       = 10
)

type Event struct {
	Round  uint64 `json:"round"`
	Actor  string `json:"actor"`
	Method string `json:"method"`
	Detail string `json:"detail,omitempty"`
	Err    string `json:"error,omitempty"`
}

type Report struct {
	Scenario    string            `json:"scenario"`
	Description string            `json:"description"`
	Events      []*Event          `json:"events"`
	Winner      string            `json:"winner"`
	Price       uint64            `json:"price"`
	AssetHolder string            `json:"asset_holder"`
	Balances    map[string]uint64 `json:"balances"`
}

// Account derives the simulated address of a named participant.
func Account(name string) *chain.Address {
	return chain.NewAddressFromHash(gcrypto.Blake160([]byte(name)))
}

type runner struct {
	sc       *Scenario
	network  *chain.Network
	lgr      *ledger.Ledger
	escrow   *chain.Address
	accounts map[string]*chain.Address
	names    map[string]string
	state    *auction.State
	parts    auction.Participants
	report   *Report
}

type callFunc func(auc *auction.Auction, call *auction.Call) (string, error)

// Run plays sc from creation to teardown. Rejected calls are recorded
// in the report; only a failure to create or set up the auction is
// returned as an error.
func Run(network *chain.Network, sc *Scenario) (*Report, error) {
	r := &runner{
		sc:       sc,
		network:  network,
		lgr:      ledger.New(network),
		escrow:   chain.NewEscrowAddress("sim-" + sc.Name),
		accounts: make(map[string]*chain.Address),
		names:    make(map[string]string),
		report: &Report{
			Scenario:    sc.Name,
			Description: sc.Description,
			Balances:    make(map[string]uint64),
		},
	}
	r.names[r.escrow.String()] = "escrow"
	for _, name := range append([]string{"creator", "seller"}, sc.Bidders...) {
		addr := Account(name)
		r.accounts[name] = addr
		r.names[addr.String()] = name
		r.lgr.Fund(addr, FundAmount)
	}

	assetID := r.lgr.MintAsset(r.accounts["seller"])
	if err := r.create(assetID); err != nil {
		return nil, errors.Wrap(err, "error creating auction")
	}
	err := r.call("seller", "setup", chain.NewAssetTransfer(r.accounts["seller"], r.escrow, assetID), func(auc *auction.Auction, call *auction.Call) (string, error) {
		return fmt.Sprintf("asset=%d", assetID), auc.Setup(call)
	})
	if err != nil {
		return nil, errors.Wrap(err, "error setting up auction")
	}

	r.advanceTo(StartRound)
	if sc.Visibility.Sealed() {
		r.playSealed()
	} else {
		r.playOpen()
	}

	r.advanceTo(EndRound)
	r.settle()
	r.finish()
	return r.report, nil
}

func (r *runner) create(assetID uint64) error {
	creator := r.accounts["creator"]
	params := &auction.Params{
		Seller:            r.accounts["seller"],
		AssetID:           assetID,
		StartRound:        StartRound,
		EndRound:          EndRound,
		ReserveAmount:     r.sc.Reserve,
		MinBidIncrement:   r.sc.Increment,
		Visibility:        r.sc.Visibility,
		PricingRule:       r.sc.PricingRule,
		ServiceFeePercent: r.sc.FeePercent,
	}
	if r.sc.Visibility.Sealed() {
		params.CommitEndRound = CommitEndRound
	}

	group := []*chain.Txn{
		chain.NewPayment(creator, r.escrow, r.network.EscrowFunding),
		chain.NewAppCall(creator, r.escrow),
	}
	_, err := r.lgr.Execute(group, func(tx *ledger.Tx, index int) error {
		auc, err := auction.Create(params, tx.Round(), creator, tx.Escrow(r.escrow))
		if err != nil {
			return err
		}
		r.state = auc.State()
		r.parts = auc.Participants()
		return nil
	})
	r.record("creator", "create", fmt.Sprintf("visibility=%s pricing=%s", r.sc.Visibility, r.sc.PricingRule), err)
	return err
}

func (r *runner) playOpen() {
	for _, b := range r.sc.Bids {
		sender := r.accounts[b.Bidder]
		value := b.Value
		r.attempt(b.Bidder, "bid", chain.NewPayment(sender, r.escrow, value), func(auc *auction.Auction, call *auction.Call) (string, error) {
			return fmt.Sprintf("value=%d", value), auc.Bid(call)
		})
	}
}

func (r *runner) playSealed() {
	for _, b := range r.sc.Bids {
		sender := r.accounts[b.Bidder]
		digest := auction.Digest(b.Value, b.Nonce)
		deposit := b.Deposit
		r.attempt(b.Bidder, "commit", chain.NewPayment(sender, r.escrow, deposit), func(auc *auction.Auction, call *auction.Call) (string, error) {
			return fmt.Sprintf("deposit=%d digest=%s", deposit, digest), auc.Commit(call, digest)
		})
	}

	r.advanceTo(CommitEndRound)
	for _, b := range r.sc.Bids {
		bid := b
		if bid.Clear {
			r.attempt(bid.Bidder, "clear", nil, func(auc *auction.Auction, call *auction.Call) (string, error) {
				return describe(auc.Clear(call))
			})
			continue
		}
		r.attempt(bid.Bidder, "reveal", nil, func(auc *auction.Auction, call *auction.Call) (string, error) {
			return describe(auc.Reveal(call, bid.Value, bid.Nonce))
		})
	}
}

func describe(res *auction.RevealResult, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("value=%d outcome=%s refund=%d", res.Value, res.Outcome, res.Refund), nil
}

func (r *runner) settle() {
	// Teardown is refused until both sides are paid.
	r.attempt("creator", "teardown", nil, func(auc *auction.Auction, call *auction.Call) (string, error) {
		return "", auc.Teardown(call)
	})

	r.attempt("seller", "pay_seller", nil, func(auc *auction.Auction, call *auction.Call) (string, error) {
		price := r.state.PricingRule.WinningAmount(r.state)
		return fmt.Sprintf("price=%d", price), auc.PaySeller(call)
	})
	if r.state.HasLeader() {
		winner := r.name(r.state.LeadBidder)
		r.attempt(winner, "pay_winner", nil, func(auc *auction.Auction, call *auction.Call) (string, error) {
			return "", auc.PayWinner(call)
		})
	}

	r.attempt("creator", "teardown", nil, func(auc *auction.Auction, call *auction.Call) (string, error) {
		return "", auc.Teardown(call)
	})
}

func (r *runner) finish() {
	if r.state.HasLeader() {
		r.report.Winner = r.name(r.state.LeadBidder)
		r.report.Price = r.state.PricingRule.WinningAmount(r.state)
	}
	if holder := r.lgr.AssetHolder(r.state.AssetID); holder != nil {
		r.report.AssetHolder = r.name(holder)
	}
	for name, addr := range r.accounts {
		r.report.Balances[name] = r.lgr.Balance(addr)
	}
	r.report.Balances["escrow"] = r.lgr.Balance(r.escrow)
}

// call executes fn as actor's app call, preceded by transfer if given.
func (r *runner) call(actor, method string, transfer *chain.Txn, fn callFunc) error {
	call := auction.NewCall(r.accounts[actor], r.escrow, r.lgr.Round(), transfer)
	var detail string
	_, err := r.lgr.Execute(call.Group, func(tx *ledger.Tx, index int) error {
		auc, err := auction.Restore(r.state, r.parts, tx.Escrow(r.escrow))
		if err != nil {
			return err
		}
		detail, err = fn(auc, call)
		if err != nil {
			return err
		}
		r.state = auc.State()
		r.parts = auc.Participants()
		return nil
	})
	r.record(actor, method, detail, err)
	return err
}

// attempt runs a call that the scenario expects may be rejected. The
// rejection is kept as the event's Err in the report.
func (r *runner) attempt(actor, method string, transfer *chain.Txn, fn callFunc) {
	_ = r.call(actor, method, transfer, fn)
}

func (r *runner) record(actor, method, detail string, err error) {
	ev := &Event{
		Round:  r.lgr.Round(),
		Actor:  actor,
		Method: method,
		Detail: detail,
	}
	if err != nil {
		ev.Err = err.Error()
	}
	r.report.Events = append(r.report.Events, ev)
}

func (r *runner) advanceTo(round uint64) {
	if curr := r.lgr.Round(); curr < round {
		if _, err := r.lgr.AdvanceRounds(round - curr); err != nil {
			r.record("clock", "advance", fmt.Sprintf("round=%d", round), err)
		}
	}
}

func (r *runner) name(addr *chain.Address) string {
	if name, ok := r.names[addr.String()]; ok {
		return name
	}
	return addr.String()
}
