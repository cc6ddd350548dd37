package auctiondb

import (
	"database/sql"
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/ledger"
	"github.com/pkg/errors"
)

// SaveLedger replaces the stored ledger state with snap.
func SaveLedger(tx Transactor, snap *ledger.Snapshot) error {
	_, err := tx.Exec(`
INSERT INTO ledger_meta (id, round, next_asset_id) VALUES (0, ?, ?)
ON CONFLICT (id) DO UPDATE SET round = excluded.round, next_asset_id = excluded.next_asset_id
`,
		snap.Round,
		snap.NextAssetID,
	)
	if err != nil {
		return errors.WithStack(err)
	}

	if _, err := tx.Exec("DELETE FROM ledger_accounts"); err != nil {
		return errors.WithStack(err)
	}
	for addr, bal := range snap.Balances {
		_, err := tx.Exec("INSERT INTO ledger_accounts (address, balance) VALUES (?, ?)", addr, bal)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	if _, err := tx.Exec("DELETE FROM ledger_assets"); err != nil {
		return errors.WithStack(err)
	}
	for id, holder := range snap.Holders {
		_, err := tx.Exec("INSERT INTO ledger_assets (asset_id, holder) VALUES (?, ?)", id, holder)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// LoadLedger returns the stored ledger state, or nil if none was saved.
func LoadLedger(tx Transactor) (*ledger.Snapshot, error) {
	snap := &ledger.Snapshot{
		Balances: make(map[string]uint64),
		Holders:  make(map[uint64]*chain.Address),
	}
	row := tx.QueryRow("SELECT round, next_asset_id FROM ledger_meta WHERE id = 0")
	if err := row.Scan(&snap.Round, &snap.NextAssetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}

	accRows, err := tx.Query("SELECT address, balance FROM ledger_accounts")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer accRows.Close()
	for accRows.Next() {
		var addr string
		var bal uint64
		if err := accRows.Scan(&addr, &bal); err != nil {
			return nil, errors.WithStack(err)
		}
		snap.Balances[addr] = bal
	}
	if err := accRows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	assetRows, err := tx.Query("SELECT asset_id, holder FROM ledger_assets")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer assetRows.Close()
	for assetRows.Next() {
		var id uint64
		holder := new(chain.Address)
		if err := assetRows.Scan(&id, holder); err != nil {
			return nil, errors.WithStack(err)
		}
		snap.Holders[id] = holder
	}
	return snap, errors.WithStack(assetRows.Err())
}
