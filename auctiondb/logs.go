package auctiondb

import (
	"github.com/kurumiimari/hammer/gcrypto"
	"github.com/pkg/errors"
)

type LogEntry struct {
	ID        int          `json:"id"`
	AuctionID string       `json:"auction_id"`
	Round     uint64       `json:"round"`
	Data      gcrypto.Hash `json:"data"`
}

func AppendLog(tx Transactor, auctionID string, round uint64, data []byte) error {
	_, err := tx.Exec(
		"INSERT INTO auction_logs (auction_id, round, data) VALUES (?, ?, ?)",
		auctionID,
		round,
		gcrypto.Hash(data),
	)
	return errors.WithStack(err)
}

func GetLogs(tx Transactor, auctionID string) ([]*LogEntry, error) {
	rows, err := tx.Query(`
SELECT id, auction_id, round, data
FROM auction_logs
WHERE auction_id = ?
ORDER BY id
`, auctionID)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	var out []*LogEntry
	for rows.Next() {
		entry := new(LogEntry)
		if err := rows.Scan(&entry.ID, &entry.AuctionID, &entry.Round, &entry.Data); err != nil {
			return nil, errors.WithStack(err)
		}
		out = append(out, entry)
	}
	return out, errors.WithStack(rows.Err())
}
