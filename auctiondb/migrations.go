package auctiondb

import (
	"github.com/kurumiimari/hammer/log"
	"github.com/pkg/errors"
	"time"
)

var logger = log.ModuleLogger("migrations")

const CreateMigrationsQuery = `
CREATE TABLE IF NOT EXISTS migrations (
	id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	name VARCHAR NOT NULL,
	applied_at INTEGER NOT NULL
);
`

type Migration struct {
	Query string
	Name  string
}

var Migrations = []*Migration{
	{
		Query: `
CREATE TABLE auctions (
	id VARCHAR NOT NULL PRIMARY KEY,
	escrow_address VARCHAR NOT NULL,
	created_round INTEGER NOT NULL,
	creator VARCHAR NOT NULL,
	seller VARCHAR NOT NULL,
	asset_id INTEGER NOT NULL,
	start_round INTEGER NOT NULL,
	commit_end_round INTEGER NOT NULL,
	end_round INTEGER NOT NULL,
	reserve_amount INTEGER NOT NULL,
	min_bid_increment INTEGER NOT NULL,
	min_deposit INTEGER NOT NULL,
	visibility INTEGER NOT NULL,
	pricing_rule INTEGER NOT NULL,
	service_fee_percent INTEGER NOT NULL,
	lead_bidder VARCHAR,
	lead_bid_amount INTEGER NOT NULL,
	second_bid_amount INTEGER NOT NULL,
	lead_bid_deposit INTEGER NOT NULL,
	num_bids INTEGER NOT NULL,
	asset_escrowed BOOLEAN NOT NULL,
	seller_paid BOOLEAN NOT NULL,
	winner_paid BOOLEAN NOT NULL,
	terminated BOOLEAN NOT NULL,
	bidder_bloom BLOB NOT NULL
);

CREATE UNIQUE INDEX idx_uniq_auctions_escrow_address ON auctions(escrow_address);
`,
		Name: "create_auctions",
	},
	{
		Query: `
CREATE TABLE participants (
	auction_id VARCHAR NOT NULL,
	address VARCHAR NOT NULL,
	commitment VARCHAR(64) NOT NULL,
	collateral INTEGER NOT NULL,
	revealed BOOLEAN NOT NULL,
	PRIMARY KEY (auction_id, address),
	FOREIGN KEY (auction_id) REFERENCES auctions(id) ON DELETE CASCADE
);
`,
		Name: "create_participants",
	},
	{
		Query: `
CREATE TABLE auction_logs (
	id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	auction_id VARCHAR NOT NULL,
	round INTEGER NOT NULL,
	data VARCHAR NOT NULL
);

CREATE INDEX idx_auction_logs_auction_id ON auction_logs(auction_id);
`,
		Name: "create_auction_logs",
	},
	{
		Query: `
CREATE TABLE transfers (
	id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	auction_id VARCHAR NOT NULL,
	round INTEGER NOT NULL,
	method VARCHAR NOT NULL,
	from_address VARCHAR NOT NULL,
	to_address VARCHAR NOT NULL,
	amount INTEGER NOT NULL,
	asset_id INTEGER NOT NULL,
	fee INTEGER NOT NULL,
	is_inner BOOLEAN NOT NULL
);

CREATE INDEX idx_transfers_auction_id ON transfers(auction_id);
`,
		Name: "create_transfers",
	},
	{
		Query: `
CREATE TABLE ledger_accounts (
	address VARCHAR NOT NULL PRIMARY KEY,
	balance INTEGER NOT NULL
);

CREATE TABLE ledger_assets (
	asset_id INTEGER NOT NULL PRIMARY KEY,
	holder VARCHAR NOT NULL
);

CREATE TABLE ledger_meta (
	id INTEGER NOT NULL PRIMARY KEY CHECK (id = 0),
	round INTEGER NOT NULL,
	next_asset_id INTEGER NOT NULL
);
`,
		Name: "create_ledger",
	},
	{
		Query: `
CREATE TABLE request_nonces (
	nonce VARCHAR NOT NULL PRIMARY KEY,
	sender VARCHAR NOT NULL,
	used_at INTEGER NOT NULL
);
`,
		Name: "create_request_nonces",
	},
}

func MigrateDB(engine *Engine) error {
	return engine.Transaction(func(tx Transactor) error {
		logger.Debug("creating migrations table")
		_, err := tx.Exec(CreateMigrationsQuery)
		if err != nil {
			return errors.WithStack(err)
		}

		migRow := tx.QueryRow("SELECT COALESCE(MAX(id), 0) FROM migrations")
		if migRow.Err() != nil {
			return errors.WithStack(migRow.Err())
		}
		var latestMigID int
		if err := migRow.Scan(&latestMigID); err != nil {
			return errors.WithStack(err)
		}

		if latestMigID == len(Migrations) {
			logger.Info("migrations up to date")
			return nil
		}

		logger.Info("running migrations")
		for i := latestMigID; i < len(Migrations); i++ {
			mig := Migrations[i]
			logger.Debug("executing migration", "name", mig.Name, "version", i)
			if err := ExecMigration(tx, mig); err != nil {
				return err
			}
		}
		logger.Info("successfully migrated database")
		return nil
	})
}

func ExecMigration(tx Transactor, migration *Migration) error {
	if _, err := tx.Exec(migration.Query); err != nil {
		return errors.Wrapf(err, "error executing migration %s", migration.Name)
	}
	_, err := tx.Exec(
		"INSERT INTO migrations (name, applied_at) VALUES (?, ?)",
		migration.Name,
		time.Now().Unix(),
	)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}
