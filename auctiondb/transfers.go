package auctiondb

import (
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/ledger"
	"github.com/pkg/errors"
)

// Transfer is a journaled ledger movement caused by an auction call.
type Transfer struct {
	ID        int            `json:"id"`
	AuctionID string         `json:"auction_id"`
	Round     uint64         `json:"round"`
	Method    string         `json:"method"`
	From      *chain.Address `json:"from"`
	To        *chain.Address `json:"to"`
	Amount    uint64         `json:"amount"`
	AssetID   uint64         `json:"asset_id"`
	Fee       uint64         `json:"fee"`
	Inner     bool           `json:"inner"`
}

func RecordTransfer(tx Transactor, auctionID string, round uint64, method string, t *ledger.Transfer) error {
	_, err := tx.Exec(`
INSERT INTO transfers (auction_id, round, method, from_address, to_address, amount, asset_id, fee, is_inner)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		auctionID,
		round,
		method,
		t.From,
		t.To,
		t.Amount,
		t.AssetID,
		t.Fee,
		t.Inner,
	)
	return errors.WithStack(err)
}

func GetTransfers(tx Transactor, auctionID string) ([]*Transfer, error) {
	rows, err := tx.Query(`
SELECT id, auction_id, round, method, from_address, to_address, amount, asset_id, fee, is_inner
FROM transfers
WHERE auction_id = ?
ORDER BY id
`, auctionID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	var out []*Transfer
	for rows.Next() {
		t := &Transfer{
			From: new(chain.Address),
			To:   new(chain.Address),
		}
		err := rows.Scan(
			&t.ID,
			&t.AuctionID,
			&t.Round,
			&t.Method,
			t.From,
			t.To,
			&t.Amount,
			&t.AssetID,
			&t.Fee,
			&t.Inner,
		)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		out = append(out, t)
	}
	return out, errors.WithStack(rows.Err())
}
