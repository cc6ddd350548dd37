package ledger

import (
	"github.com/kurumiimari/hammer/chain"
)

// Escrow is an auction escrow account backed by the ledger. It satisfies
// auction.Escrow. Its transfers are inner transactions of the group being
// executed.
type Escrow struct {
	tx   *Tx
	addr *chain.Address
}

func (e *Escrow) Address() *chain.Address {
	return e.addr
}

func (e *Escrow) MinTxnFee() uint64 {
	return e.tx.MinTxnFee()
}

func (e *Escrow) Balance() uint64 {
	return e.tx.Balance(e.addr)
}

func (e *Escrow) Transfer(to *chain.Address, amount uint64) error {
	return e.tx.pay(e.addr, to, amount, true)
}

func (e *Escrow) TransferAsset(assetID uint64, to *chain.Address) error {
	return e.tx.transferAsset(e.addr, to, assetID, true)
}

func (e *Escrow) HoldsAsset(assetID uint64) bool {
	return e.tx.l.holders[assetID].Equal(e.addr)
}

func (e *Escrow) CloseTo(to *chain.Address) error {
	return e.tx.closeTo(e.addr, to)
}

func (e *Escrow) Log(entry []byte) error {
	data := make([]byte, len(entry))
	copy(data, entry)
	e.tx.receipt.Logs = append(e.tx.receipt.Logs, &LogEntry{
		Escrow: e.addr.Clone(),
		Data:   data,
	})
	return nil
}
