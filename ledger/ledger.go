package ledger

import (
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/log"
	"github.com/pkg/errors"
	"math"
	"sync"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAssetNotHeld      = errors.New("asset not held by sender")
	ErrUnknownAsset      = errors.New("unknown asset")
	ErrEmptyGroup        = errors.New("empty transaction group")
	ErrRoundOverflow     = errors.New("round overflows")
)

var lgr = log.ModuleLogger("ledger")

// Ledger is an in-memory development ledger. It keeps balances, the
// holders of non-fungible assets and the round clock, and executes
// transaction groups atomically. Every transaction costs its sender the
// network's minimum fee, which is burned.
type Ledger struct {
	network     *chain.Network
	round       uint64
	nextAssetID uint64
	balances    map[string]uint64
	holders     map[uint64]*chain.Address
	mtx         sync.Mutex
}

// Transfer is one movement of funds or of an asset. AssetID is zero for
// currency transfers.
type Transfer struct {
	From    *chain.Address `json:"from"`
	To      *chain.Address `json:"to"`
	Amount  uint64         `json:"amount"`
	AssetID uint64         `json:"asset_id"`
	Fee     uint64         `json:"fee"`
	Inner   bool           `json:"inner"`
}

type LogEntry struct {
	Escrow *chain.Address `json:"escrow"`
	Data   []byte         `json:"data"`
}

// Receipt lists the effects of an executed group.
type Receipt struct {
	Round     uint64      `json:"round"`
	Transfers []*Transfer `json:"transfers"`
	Logs      []*LogEntry `json:"logs"`
}

func New(network *chain.Network) *Ledger {
	return &Ledger{
		network:     network,
		nextAssetID: 1,
		balances:    make(map[string]uint64),
		holders:     make(map[uint64]*chain.Address),
	}
}

func (l *Ledger) Network() *chain.Network {
	return l.network
}

func (l *Ledger) Round() uint64 {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.round
}

// AdvanceRounds moves the clock forward and returns the new round.
func (l *Ledger) AdvanceRounds(n uint64) (uint64, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	if n > math.MaxUint64-l.round {
		return l.round, errors.Wrapf(ErrRoundOverflow, "cannot advance %d rounds from %d", n, l.round)
	}
	l.round += n
	lgr.Debug("advanced rounds", "round", l.round)
	return l.round, nil
}

func (l *Ledger) Balance(addr *chain.Address) uint64 {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.balances[addr.String()]
}

func (l *Ledger) AssetHolder(assetID uint64) *chain.Address {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.holders[assetID].Clone()
}

// Fund mints amount into addr.
func (l *Ledger) Fund(addr *chain.Address, amount uint64) uint64 {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.balances[addr.String()] += amount
	lgr.Info("funded account", "address", addr, "amount", amount)
	return l.balances[addr.String()]
}

// MintAsset creates a new non-fungible asset held by owner.
func (l *Ledger) MintAsset(owner *chain.Address) uint64 {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	id := l.nextAssetID
	l.nextAssetID++
	l.holders[id] = owner.Clone()
	lgr.Info("minted asset", "asset_id", id, "owner", owner)
	return id
}

// Execute applies group atomically. Transfers are applied in order and
// onCall is invoked for every app call in the group with its index. If
// anything fails, the ledger is left as it was.
func (l *Ledger) Execute(group []*chain.Txn, onCall func(tx *Tx, index int) error) (*Receipt, error) {
	if len(group) == 0 {
		return nil, ErrEmptyGroup
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	snap := l.snapshot()
	tx := &Tx{
		l: l,
		receipt: &Receipt{
			Round: l.round,
		},
	}
	for i, txn := range group {
		if err := tx.apply(txn); err != nil {
			l.restore(snap)
			return nil, errors.Wrapf(err, "transaction %d failed", i)
		}
		if txn.Type != chain.TxnAppCall || onCall == nil {
			continue
		}
		if err := onCall(tx, i); err != nil {
			l.restore(snap)
			return nil, err
		}
	}
	return tx.receipt, nil
}

// Snapshot exports the ledger state.
func (l *Ledger) Snapshot() *Snapshot {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.snapshot()
}

// Restore replaces the ledger state with snap.
func (l *Ledger) Restore(snap *Snapshot) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.restore(snap)
}

func (l *Ledger) snapshot() *Snapshot {
	snap := &Snapshot{
		Round:       l.round,
		NextAssetID: l.nextAssetID,
		Balances:    make(map[string]uint64, len(l.balances)),
		Holders:     make(map[uint64]*chain.Address, len(l.holders)),
	}
	for addr, bal := range l.balances {
		snap.Balances[addr] = bal
	}
	for id, holder := range l.holders {
		snap.Holders[id] = holder.Clone()
	}
	return snap
}

func (l *Ledger) restore(snap *Snapshot) {
	l.round = snap.Round
	l.nextAssetID = snap.NextAssetID
	l.balances = make(map[string]uint64, len(snap.Balances))
	l.holders = make(map[uint64]*chain.Address, len(snap.Holders))
	for addr, bal := range snap.Balances {
		l.balances[addr] = bal
	}
	for id, holder := range snap.Holders {
		l.holders[id] = holder.Clone()
	}
}

type Snapshot struct {
	Round       uint64
	NextAssetID uint64
	Balances    map[string]uint64
	Holders     map[uint64]*chain.Address
}
