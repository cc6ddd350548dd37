package node

import (
	"github.com/kurumiimari/hammer/auction"
	"github.com/kurumiimari/hammer/auctiondb"
)

// PhaseChange is an auction entering Phase at Round.
type PhaseChange struct {
	AuctionID string
	Phase     auction.Phase
	Round     uint64
}

// phaseChanges lists every phase the auctions entered in the rounds
// (from, to], in round order per auction.
func phaseChanges(auctions []*auctiondb.Auction, from, to uint64) []*PhaseChange {
	var out []*PhaseChange
	for _, a := range auctions {
		s := a.State
		prev := s.PhaseAt(from)
		for _, round := range []uint64{s.StartRound, s.CommitEndRound, s.EndRound, to} {
			if round <= from || round > to {
				continue
			}
			if phase := s.PhaseAt(round); phase != prev {
				out = append(out, &PhaseChange{
					AuctionID: a.ID,
					Phase:     phase,
					Round:     round,
				})
				prev = phase
			}
		}
	}
	return out
}

// watchPhases consumes round notifications and emits the phase changes
// since the last round it saw. Notifications dropped by the clock are
// covered by the next one.
func (n *Node) watchPhases(rounds <-chan uint64, last uint64, emit func(change *PhaseChange)) {
	for round := range rounds {
		if round <= last {
			continue
		}
		var auctions []*auctiondb.Auction
		err := n.engine.View(func(tx auctiondb.Transactor) error {
			res, err := auctiondb.ListAuctions(tx)
			auctions = res
			return err
		})
		if err != nil {
			logger.Error("error listing auctions", "err", err)
			continue
		}
		for _, change := range phaseChanges(auctions, last, round) {
			emit(change)
		}
		last = round
	}
}

func logPhaseChange(change *PhaseChange) {
	logger.Info("auction changed phase", "id", change.AuctionID, "phase", change.Phase, "round", change.Round)
}
