package auctiondb

import (
	"context"
	"database/sql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"path"
	"sync"
)

const dbFile = "hammer.db"

var ErrNotFound = errors.New("not found")

// Engine serializes writers over a single sqlite connection. Readers
// share a read lock.
type Engine struct {
	db  *sql.DB
	mtx sync.RWMutex
}

type Scanner interface {
	Scan(dest ...interface{}) error
}

type Transactor interface {
	Query(q string, args ...interface{}) (*sql.Rows, error)
	QueryRow(q string, args ...interface{}) *sql.Row
	Exec(q string, args ...interface{}) (sql.Result, error)
}

func NewEngine(dir string) (*Engine, error) {
	dsn := path.Join(dir, dbFile) + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "error opening DB")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error connecting to DB")
	}
	db.SetMaxOpenConns(1)
	return &Engine{
		db: db,
	}, nil
}

func (e *Engine) Close() error {
	return errors.WithStack(e.db.Close())
}

// Transaction runs cb inside a read-write transaction that is rolled
// back if cb fails.
func (e *Engine) Transaction(cb func(tx Transactor) error) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.run(nil, cb)
}

// View runs cb inside a read-only transaction.
func (e *Engine) View(cb func(tx Transactor) error) error {
	e.mtx.RLock()
	defer e.mtx.RUnlock()
	return e.run(&sql.TxOptions{ReadOnly: true}, cb)
}

func (e *Engine) run(opts *sql.TxOptions, cb func(tx Transactor) error) error {
	tx, err := e.db.BeginTx(context.Background(), opts)
	if err != nil {
		return errors.Wrap(err, "error beginning transaction")
	}

	if cbErr := cb(tx); cbErr != nil {
		if err := tx.Rollback(); err != nil {
			return errors.Wrapf(err, "error rolling back after %v", cbErr)
		}
		return cbErr
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "error committing transaction")
	}
	return nil
}
