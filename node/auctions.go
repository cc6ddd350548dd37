package node

import (
	"github.com/google/uuid"
	"github.com/kurumiimari/hammer/auction"
	"github.com/kurumiimari/hammer/auctiondb"
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/gcrypto"
	"github.com/kurumiimari/hammer/ledger"
	"github.com/pkg/errors"
)

type AuctionInfo struct {
	*auctiondb.Auction
	Phase        auction.Phase        `json:"phase"`
	Round        uint64               `json:"round"`
	Balance      uint64               `json:"balance"`
	Participants auction.Participants `json:"participants"`
}

// CallResult reports the ledger effects of an auction call.
type CallResult struct {
	AuctionID string                `json:"auction_id"`
	Method    string                `json:"method"`
	Round     uint64                `json:"round"`
	Phase     auction.Phase         `json:"phase"`
	Transfers []*ledger.Transfer    `json:"transfers"`
	Logs      []gcrypto.Hash        `json:"logs"`
	Reveal    *auction.RevealResult `json:"reveal,omitempty"`
	Deleted   bool                  `json:"deleted"`
}

// CreateAuction creates an auction with a fresh escrow. The creator pays
// the escrow's operating balance in the same group.
func (n *Node) CreateAuction(creator *chain.Address, params *auction.Params) (*AuctionInfo, error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	id := uuid.New().String()
	escrow := chain.NewEscrowAddress(id)
	group := []*chain.Txn{
		chain.NewPayment(creator, escrow, n.network.EscrowFunding),
		chain.NewAppCall(creator, escrow),
	}

	pre := n.ledger.Snapshot()
	var rec *auctiondb.Auction
	err := n.engine.Transaction(func(tx auctiondb.Transactor) error {
		receipt, err := n.ledger.Execute(group, func(ltx *ledger.Tx, index int) error {
			auc, err := auction.Create(params, ltx.Round(), creator, ltx.Escrow(escrow))
			if err != nil {
				return err
			}
			bloom := NewBidderBloom()
			bloom.Add(creator)
			bloom.Add(params.Seller)
			rec = &auctiondb.Auction{
				ID:           id,
				Escrow:       escrow,
				CreatedRound: ltx.Round(),
				State:        auc.State(),
				BidderBloom:  bloom.Bytes(),
			}
			return nil
		})
		if err != nil {
			return err
		}
		if err := auctiondb.CreateAuction(tx, rec); err != nil {
			return err
		}
		if err := n.journal(tx, id, "create", receipt); err != nil {
			return err
		}
		return auctiondb.SaveLedger(tx, n.ledger.Snapshot())
	})
	if err != nil {
		n.ledger.Restore(pre)
		return nil, err
	}

	logger.Info("created auction", "id", id, "escrow", escrow, "creator", creator)
	return n.info(rec, nil), nil
}

func (n *Node) GetAuction(id string) (*AuctionInfo, error) {
	var info *AuctionInfo
	err := n.engine.View(func(tx auctiondb.Transactor) error {
		rec, err := auctiondb.GetAuction(tx, id)
		if err != nil {
			return err
		}
		parts, err := auctiondb.GetParticipants(tx, id)
		if err != nil {
			return err
		}
		info = n.info(rec, parts)
		return nil
	})
	return info, err
}

func (n *Node) ListAuctions() ([]*AuctionInfo, error) {
	var out []*AuctionInfo
	err := n.engine.View(func(tx auctiondb.Transactor) error {
		recs, err := auctiondb.ListAuctions(tx)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			out = append(out, n.info(rec, nil))
		}
		return nil
	})
	return out, err
}

// AuctionsFor lists the live auctions addr created, sells or called.
func (n *Node) AuctionsFor(addr *chain.Address) ([]*AuctionInfo, error) {
	var out []*AuctionInfo
	err := n.engine.View(func(tx auctiondb.Transactor) error {
		recs, err := auctiondb.ListAuctions(tx)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			bloom, err := BidderBloomFromBytes(rec.BidderBloom)
			if err != nil {
				return err
			}
			if !bloom.Test(addr) {
				continue
			}
			touched, err := touchedBy(tx, rec, addr)
			if err != nil {
				return err
			}
			if touched {
				out = append(out, n.info(rec, nil))
			}
		}
		return nil
	})
	return out, err
}

func touchedBy(tx auctiondb.Transactor, rec *auctiondb.Auction, addr *chain.Address) (bool, error) {
	s := rec.State
	if addr.Equal(s.Creator) || addr.Equal(s.Seller) || addr.Equal(s.LeadBidder) {
		return true, nil
	}
	transfers, err := auctiondb.GetTransfers(tx, rec.ID)
	if err != nil {
		return false, err
	}
	for _, t := range transfers {
		if t.From.Equal(addr) || t.To.Equal(addr) {
			return true, nil
		}
	}
	return false, nil
}

func (n *Node) Logs(id string) ([]*auctiondb.LogEntry, error) {
	var out []*auctiondb.LogEntry
	err := n.engine.View(func(tx auctiondb.Transactor) error {
		res, err := auctiondb.GetLogs(tx, id)
		out = res
		return err
	})
	return out, err
}

func (n *Node) Transfers(id string) ([]*auctiondb.Transfer, error) {
	var out []*auctiondb.Transfer
	err := n.engine.View(func(tx auctiondb.Transactor) error {
		res, err := auctiondb.GetTransfers(tx, id)
		out = res
		return err
	})
	return out, err
}

func (n *Node) Setup(id string, sender *chain.Address) (*CallResult, error) {
	return n.call(id, "setup", sender, func(rec *auctiondb.Auction) *chain.Txn {
		return chain.NewAssetTransfer(sender, rec.Escrow, rec.State.AssetID)
	}, func(auc *auction.Auction, call *auction.Call, res *CallResult) error {
		return auc.Setup(call)
	})
}

func (n *Node) Bid(id string, sender *chain.Address, amount uint64) (*CallResult, error) {
	return n.call(id, "bid", sender, payment(sender, amount), func(auc *auction.Auction, call *auction.Call, res *CallResult) error {
		return auc.Bid(call)
	})
}

func (n *Node) Commit(id string, sender *chain.Address, commitment gcrypto.Hash, deposit uint64) (*CallResult, error) {
	return n.call(id, "commit", sender, payment(sender, deposit), func(auc *auction.Auction, call *auction.Call, res *CallResult) error {
		return auc.Commit(call, commitment)
	})
}

func (n *Node) Reveal(id string, sender *chain.Address, value, nonce uint64) (*CallResult, error) {
	return n.call(id, "reveal", sender, nil, func(auc *auction.Auction, call *auction.Call, res *CallResult) error {
		reveal, err := auc.Reveal(call, value, nonce)
		res.Reveal = reveal
		return err
	})
}

func (n *Node) Clear(id string, sender *chain.Address) (*CallResult, error) {
	return n.call(id, "clear", sender, nil, func(auc *auction.Auction, call *auction.Call, res *CallResult) error {
		reveal, err := auc.Clear(call)
		res.Reveal = reveal
		return err
	})
}

func (n *Node) PaySeller(id string, sender *chain.Address) (*CallResult, error) {
	return n.call(id, "pay_seller", sender, nil, func(auc *auction.Auction, call *auction.Call, res *CallResult) error {
		return auc.PaySeller(call)
	})
}

func (n *Node) PayWinner(id string, sender *chain.Address) (*CallResult, error) {
	return n.call(id, "pay_winner", sender, nil, func(auc *auction.Auction, call *auction.Call, res *CallResult) error {
		return auc.PayWinner(call)
	})
}

func (n *Node) Teardown(id string, sender *chain.Address) (*CallResult, error) {
	return n.call(id, "teardown", sender, nil, func(auc *auction.Auction, call *auction.Call, res *CallResult) error {
		return auc.Teardown(call)
	})
}

type transferFunc func(rec *auctiondb.Auction) *chain.Txn

type callFunc func(auc *auction.Auction, call *auction.Call, res *CallResult) error

func payment(sender *chain.Address, amount uint64) transferFunc {
	return func(rec *auctiondb.Auction) *chain.Txn {
		return chain.NewPayment(sender, rec.Escrow, amount)
	}
}

// call runs one auction method. The accompanying transfer, if any, and
// the app call form a single ledger group; the auction's stored state,
// participants, logs, transfer journal and the ledger are persisted in
// the same database transaction. Failures leave nothing behind.
func (n *Node) call(id, method string, sender *chain.Address, transfer transferFunc, fn callFunc) (*CallResult, error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()

	lgr := logger.Child("auction_id", id, "method", method)
	pre := n.ledger.Snapshot()
	res := &CallResult{
		AuctionID: id,
		Method:    method,
	}
	err := n.engine.Transaction(func(tx auctiondb.Transactor) error {
		rec, err := auctiondb.GetAuction(tx, id)
		if err != nil {
			return err
		}
		parts, err := auctiondb.GetParticipants(tx, id)
		if err != nil {
			return err
		}

		var txn *chain.Txn
		if transfer != nil {
			txn = transfer(rec)
		}
		call := auction.NewCall(sender, rec.Escrow, pre.Round, txn)

		var state *auction.State
		var next auction.Participants
		receipt, err := n.ledger.Execute(call.Group, func(ltx *ledger.Tx, index int) error {
			auc, err := auction.Restore(rec.State, parts, ltx.Escrow(rec.Escrow))
			if err != nil {
				return err
			}
			if err := fn(auc, call, res); err != nil {
				return err
			}
			state = auc.State()
			next = auc.Participants()
			return nil
		})
		if err != nil {
			return err
		}

		res.Round = receipt.Round
		res.Phase = state.PhaseAt(receipt.Round)
		res.Transfers = receipt.Transfers
		for _, entry := range receipt.Logs {
			res.Logs = append(res.Logs, entry.Data)
			if err := auctiondb.AppendLog(tx, id, receipt.Round, entry.Data); err != nil {
				return err
			}
		}
		if err := n.journal(tx, id, method, receipt); err != nil {
			return err
		}

		if state.Terminated {
			res.Deleted = true
			if err := auctiondb.DeleteAuction(tx, id); err != nil {
				return err
			}
		} else {
			if err := auctiondb.SaveAuctionState(tx, id, state); err != nil {
				return err
			}
			if err := auctiondb.SyncParticipants(tx, id, next); err != nil {
				return err
			}
			bloom, err := BidderBloomFromBytes(rec.BidderBloom)
			if err != nil {
				return err
			}
			bloom.Add(sender)
			if err := auctiondb.SaveBidderBloom(tx, id, bloom.Bytes()); err != nil {
				return err
			}
		}
		return auctiondb.SaveLedger(tx, n.ledger.Snapshot())
	})
	if err != nil {
		n.ledger.Restore(pre)
		lgr.Debug("call failed", "sender", sender, "err", err)
		return nil, err
	}

	lgr.Info("call succeeded", "sender", sender, "phase", res.Phase, "transfers", len(res.Transfers))
	return res, nil
}

func (n *Node) journal(tx auctiondb.Transactor, id, method string, receipt *ledger.Receipt) error {
	for _, t := range receipt.Transfers {
		if err := auctiondb.RecordTransfer(tx, id, receipt.Round, method, t); err != nil {
			return errors.Wrap(err, "error journaling transfer")
		}
	}
	return nil
}

func (n *Node) info(rec *auctiondb.Auction, parts auction.Participants) *AuctionInfo {
	round := n.ledger.Round()
	return &AuctionInfo{
		Auction:      rec,
		Phase:        rec.State.PhaseAt(round),
		Round:        round,
		Balance:      n.ledger.Balance(rec.Escrow),
		Participants: parts,
	}
}
