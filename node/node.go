package node

import (
	"github.com/kurumiimari/hammer/auctiondb"
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/ledger"
	"github.com/kurumiimari/hammer/log"
	"github.com/pkg/errors"
	"gopkg.in/tomb.v2"
	"runtime"
	"sync"
)

const Version = "0.1.0"

var (
	logger = log.ModuleLogger("node")

	ErrClockLocked    = errors.New("rounds cannot be advanced on this network")
	ErrFaucetDisabled = errors.New("faucet is disabled on this network")
)

// Node hosts auctions on a ledger. Every auction call runs as one atomic
// ledger group and one database transaction.
type Node struct {
	tmb     *tomb.Tomb
	network *chain.Network
	engine  *auctiondb.Engine
	ledger  *ledger.Ledger
	clock   *RoundClock
	mtx     sync.Mutex
}

type NodeStatus struct {
	Status   string `json:"status"`
	Network  string `json:"network"`
	Round    uint64 `json:"round"`
	Auctions int    `json:"auctions"`
	MemUsage uint64 `json:"mem_usage"`
	Version  string `json:"version"`
}

func NewNode(tmb *tomb.Tomb, network *chain.Network, engine *auctiondb.Engine) *Node {
	n := &Node{
		tmb:     tmb,
		network: network,
		engine:  engine,
		ledger:  ledger.New(network),
	}
	n.clock = NewRoundClock(tmb, network.RoundInterval, n.advanceRounds)
	return n
}

// Start loads the persisted ledger and starts the round clock.
func (n *Node) Start() error {
	err := n.engine.Transaction(func(tx auctiondb.Transactor) error {
		snap, err := auctiondb.LoadLedger(tx)
		if err != nil {
			return err
		}
		if snap == nil {
			logger.Info("initializing ledger")
			return auctiondb.SaveLedger(tx, n.ledger.Snapshot())
		}
		n.ledger.Restore(snap)
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "error loading ledger")
	}

	n.clock.Start()
	rounds := n.clock.Subscribe()
	last := n.ledger.Round()
	n.tmb.Go(func() error {
		n.watchPhases(rounds, last, logPhaseChange)
		return nil
	})

	logger.Info("node started", "network", n.network.Name, "round", n.ledger.Round())
	return nil
}

func (n *Node) Network() *chain.Network {
	return n.network
}

func (n *Node) Status() (*NodeStatus, error) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	var count int
	err := n.engine.View(func(tx auctiondb.Transactor) error {
		auctions, err := auctiondb.ListAuctions(tx)
		count = len(auctions)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &NodeStatus{
		Status:   "OK",
		Network:  n.network.Name,
		Round:    n.ledger.Round(),
		Auctions: count,
		MemUsage: memStats.HeapAlloc,
		Version:  Version,
	}, nil
}

func (n *Node) Round() uint64 {
	return n.ledger.Round()
}

// AdvanceRounds moves the clock forward on networks that allow it.
func (n *Node) AdvanceRounds(count uint64) (uint64, error) {
	if !n.network.ClockAdvance {
		return 0, ErrClockLocked
	}
	return n.clock.Advance(count)
}

func (n *Node) advanceRounds(count uint64) (uint64, error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	pre := n.ledger.Snapshot()
	round, err := n.ledger.AdvanceRounds(count)
	if err != nil {
		return 0, err
	}
	if err := n.persistLedger(); err != nil {
		n.ledger.Restore(pre)
		return 0, err
	}
	return round, nil
}

func (n *Node) Balance(addr *chain.Address) uint64 {
	return n.ledger.Balance(addr)
}

func (n *Node) AssetHolder(assetID uint64) *chain.Address {
	return n.ledger.AssetHolder(assetID)
}

// Fund pays out the network's faucet amount to addr.
func (n *Node) Fund(addr *chain.Address) (uint64, error) {
	if n.network.FaucetAmount == 0 {
		return 0, ErrFaucetDisabled
	}
	n.mtx.Lock()
	defer n.mtx.Unlock()
	pre := n.ledger.Snapshot()
	bal := n.ledger.Fund(addr, n.network.FaucetAmount)
	if err := n.persistLedger(); err != nil {
		n.ledger.Restore(pre)
		return 0, err
	}
	return bal, nil
}

// MintAsset creates a new asset owned by owner.
func (n *Node) MintAsset(owner *chain.Address) (uint64, error) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	pre := n.ledger.Snapshot()
	id := n.ledger.MintAsset(owner)
	if err := n.persistLedger(); err != nil {
		n.ledger.Restore(pre)
		return 0, err
	}
	return id, nil
}

// UseNonce consumes a signed request nonce.
func (n *Node) UseNonce(nonce string, sender *chain.Address) error {
	return n.engine.Transaction(func(tx auctiondb.Transactor) error {
		return auctiondb.UseNonce(tx, nonce, sender)
	})
}

func (n *Node) persistLedger() error {
	return n.engine.Transaction(func(tx auctiondb.Transactor) error {
		return auctiondb.SaveLedger(tx, n.ledger.Snapshot())
	})
}
