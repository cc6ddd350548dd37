package auctiondb

import (
	"database/sql"
	"github.com/kurumiimari/hammer/auction"
	"github.com/kurumiimari/hammer/chain"
	"github.com/pkg/errors"
)

const auctionSelect = `
SELECT
	id,
	escrow_address,
	created_round,
	creator,
	seller,
	asset_id,
	start_round,
	commit_end_round,
	end_round,
	reserve_amount,
	min_bid_increment,
	min_deposit,
	visibility,
	pricing_rule,
	service_fee_percent,
	lead_bidder,
	lead_bid_amount,
	second_bid_amount,
	lead_bid_deposit,
	num_bids,
	asset_escrowed,
	seller_paid,
	winner_paid,
	terminated,
	bidder_bloom
FROM auctions
`

type Auction struct {
	ID           string         `json:"id"`
	Escrow       *chain.Address `json:"escrow"`
	CreatedRound uint64         `json:"created_round"`
	State        *auction.State `json:"state"`
	BidderBloom  []byte         `json:"-"`
}

func CreateAuction(tx Transactor, a *Auction) error {
	s := a.State
	_, err := tx.Exec(`
INSERT INTO auctions (
	id,
	escrow_address,
	created_round,
	creator,
	seller,
	asset_id,
	start_round,
	commit_end_round,
	end_round,
	reserve_amount,
	min_bid_increment,
	min_deposit,
	visibility,
	pricing_rule,
	service_fee_percent,
	lead_bidder,
	lead_bid_amount,
	second_bid_amount,
	lead_bid_deposit,
	num_bids,
	asset_escrowed,
	seller_paid,
	winner_paid,
	terminated,
	bidder_bloom
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		a.ID,
		a.Escrow,
		a.CreatedRound,
		s.Creator,
		s.Seller,
		s.AssetID,
		s.StartRound,
		s.CommitEndRound,
		s.EndRound,
		s.ReserveAmount,
		s.MinBidIncrement,
		s.MinDeposit,
		s.Visibility,
		s.PricingRule,
		s.ServiceFeePercent,
		s.LeadBidder,
		s.LeadBidAmount,
		s.SecondBidAmount,
		s.LeadBidDeposit,
		s.NumBids,
		s.AssetEscrowed,
		s.SellerPaid,
		s.WinnerPaid,
		s.Terminated,
		a.BidderBloom,
	)
	return errors.WithStack(err)
}

// SaveAuctionState writes the mutable part of an auction's state.
func SaveAuctionState(tx Transactor, id string, s *auction.State) error {
	res, err := tx.Exec(`
UPDATE auctions SET
	lead_bidder = ?,
	lead_bid_amount = ?,
	second_bid_amount = ?,
	lead_bid_deposit = ?,
	num_bids = ?,
	asset_escrowed = ?,
	seller_paid = ?,
	winner_paid = ?,
	terminated = ?
WHERE id = ?
`,
		s.LeadBidder,
		s.LeadBidAmount,
		s.SecondBidAmount,
		s.LeadBidDeposit,
		s.NumBids,
		s.AssetEscrowed,
		s.SellerPaid,
		s.WinnerPaid,
		s.Terminated,
		id,
	)
	if err != nil {
		return errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "auction %s", id)
	}
	return nil
}

func GetAuction(tx Transactor, id string) (*Auction, error) {
	row := tx.QueryRow(auctionSelect+"WHERE id = ?", id)
	if err := row.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	a, err := scanAuction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "auction %s", id)
	}
	return a, err
}

func ListAuctions(tx Transactor) ([]*Auction, error) {
	rows, err := tx.Query(auctionSelect + "ORDER BY created_round, id")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()
	var out []*Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, errors.WithStack(rows.Err())
}

func SaveBidderBloom(tx Transactor, id string, bloom []byte) error {
	_, err := tx.Exec("UPDATE auctions SET bidder_bloom = ? WHERE id = ?", bloom, id)
	return errors.WithStack(err)
}

// DeleteAuction removes an auction and its participants. Logs and
// transfers are kept as history.
func DeleteAuction(tx Transactor, id string) error {
	_, err := tx.Exec("DELETE FROM auctions WHERE id = ?", id)
	return errors.WithStack(err)
}

func scanAuction(row Scanner) (*Auction, error) {
	a := &Auction{
		Escrow: new(chain.Address),
		State: &auction.State{
			Creator: new(chain.Address),
			Seller:  new(chain.Address),
		},
	}
	s := a.State
	var leadBidder sql.NullString
	err := row.Scan(
		&a.ID,
		a.Escrow,
		&a.CreatedRound,
		s.Creator,
		s.Seller,
		&s.AssetID,
		&s.StartRound,
		&s.CommitEndRound,
		&s.EndRound,
		&s.ReserveAmount,
		&s.MinBidIncrement,
		&s.MinDeposit,
		&s.Visibility,
		&s.PricingRule,
		&s.ServiceFeePercent,
		&leadBidder,
		&s.LeadBidAmount,
		&s.SecondBidAmount,
		&s.LeadBidDeposit,
		&s.NumBids,
		&s.AssetEscrowed,
		&s.SellerPaid,
		&s.WinnerPaid,
		&s.Terminated,
		&a.BidderBloom,
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if leadBidder.Valid {
		addr, err := chain.NewAddressFromBech32(leadBidder.String)
		if err != nil {
			return nil, err
		}
		s.LeadBidder = addr
	}
	return a, nil
}
