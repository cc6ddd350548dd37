package auctiondb

import (
	"github.com/kurumiimari/hammer/auction"
	"github.com/kurumiimari/hammer/gcrypto"
	"github.com/pkg/errors"
)

func GetParticipants(tx Transactor, auctionID string) (auction.Participants, error) {
	rows, err := tx.Query(`
SELECT address, commitment, collateral, revealed
FROM participants
WHERE auction_id = ?
ORDER BY address
`, auctionID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	out := make(auction.Participants)
	for rows.Next() {
		var addr string
		entry := &auction.Participant{
			Commitment: make(gcrypto.Hash, 0),
		}
		if err := rows.Scan(&addr, &entry.Commitment, &entry.Collateral, &entry.Revealed); err != nil {
			return nil, errors.WithStack(err)
		}
		out[addr] = entry
	}
	return out, errors.WithStack(rows.Err())
}

func UpsertParticipant(tx Transactor, auctionID, addr string, entry *auction.Participant) error {
	_, err := tx.Exec(`
INSERT INTO participants (auction_id, address, commitment, collateral, revealed)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (auction_id, address) DO UPDATE SET
	commitment = excluded.commitment,
	collateral = excluded.collateral,
	revealed = excluded.revealed
`,
		auctionID,
		addr,
		entry.Commitment,
		entry.Collateral,
		entry.Revealed,
	)
	return errors.WithStack(err)
}

func DeleteParticipant(tx Transactor, auctionID, addr string) error {
	_, err := tx.Exec(
		"DELETE FROM participants WHERE auction_id = ? AND address = ?",
		auctionID,
		addr,
	)
	return errors.WithStack(err)
}

// SyncParticipants makes the stored participants of an auction match
// participants exactly.
func SyncParticipants(tx Transactor, auctionID string, participants auction.Participants) error {
	stored, err := GetParticipants(tx, auctionID)
	if err != nil {
		return err
	}
	for addr := range stored {
		if _, ok := participants[addr]; ok {
			continue
		}
		if err := DeleteParticipant(tx, auctionID, addr); err != nil {
			return err
		}
	}
	for _, addr := range participants.Bidders() {
		if err := UpsertParticipant(tx, auctionID, addr, participants[addr]); err != nil {
			return err
		}
	}
	return nil
}
