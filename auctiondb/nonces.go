package auctiondb

import (
	"github.com/kurumiimari/hammer/chain"
	"github.com/pkg/errors"
	"time"
)

var ErrNonceUsed = errors.New("request nonce already used")

// UseNonce records a signed request's nonce. Replays fail with
// ErrNonceUsed.
func UseNonce(tx Transactor, nonce string, sender *chain.Address) error {
	res, err := tx.Exec(`
INSERT INTO request_nonces (nonce, sender, used_at) VALUES (?, ?, ?)
ON CONFLICT (nonce) DO NOTHING
`,
		nonce,
		sender,
		time.Now().Unix(),
	)
	if err != nil {
		return errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return errors.Wrapf(ErrNonceUsed, "nonce %s", nonce)
	}
	return nil
}

func ListNonces(tx Transactor) ([]string, error) {
	rows, err := tx.Query("SELECT nonce FROM request_nonces")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var nonce string
		if err := rows.Scan(&nonce); err != nil {
			return nil, errors.WithStack(err)
		}
		out = append(out, nonce)
	}
	return out, errors.WithStack(rows.Err())
}
