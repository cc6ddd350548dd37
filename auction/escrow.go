package auction

import (
	"github.com/kurumiimari/hammer/chain"
	"github.com/pkg/errors"
)

// Escrow is the account an auction custodies the asset and funds in. The
// host ledger implements it. Transfers are charged the minimum
// transaction fee, which is paid by the escrow.
type Escrow interface {
	Address() *chain.Address
	MinTxnFee() uint64
	Transfer(to *chain.Address, amount uint64) error
	TransferAsset(assetID uint64, to *chain.Address) error
	HoldsAsset(assetID uint64) bool
	// CloseTo sweeps the escrow's whole remaining balance to the given
	// account.
	CloseTo(to *chain.Address) error
	// Log appends an entry to the auction's public log.
	Log(entry []byte) error
}

// Call is one invocation of an auction, as delivered by the ledger. Group
// is the atomic transaction group the call arrived in and Index is the
// position of the app call inside it. Accompanying transfers precede the
// app call directly.
type Call struct {
	Sender *chain.Address
	Round  uint64
	Group  []*chain.Txn
	Index  int
}

// NewCall builds the common two-member group of an accompanying transfer
// followed by the app call. A nil transfer yields a lone app call.
func NewCall(sender, escrow *chain.Address, round uint64, transfer *chain.Txn) *Call {
	var group []*chain.Txn
	if transfer != nil {
		group = append(group, transfer)
	}
	group = append(group, chain.NewAppCall(sender, escrow))
	return &Call{
		Sender: sender,
		Round:  round,
		Group:  group,
		Index:  len(group) - 1,
	}
}

func (c *Call) appCall() (*chain.Txn, error) {
	if c.Index < 0 || c.Index >= len(c.Group) {
		return nil, errors.Wrap(ErrMalformedGroup, "app call index out of range")
	}
	txn := c.Group[c.Index]
	if txn.Type != chain.TxnAppCall {
		return nil, errors.Wrap(ErrMalformedGroup, "indexed transaction is not an app call")
	}
	if !txn.Sender.Equal(c.Sender) {
		return nil, errors.Wrap(ErrMalformedGroup, "app call sender mismatch")
	}
	return txn, nil
}

// accompanying returns the transaction directly preceding the app call
// after checking that both belong to the caller and target the escrow.
func (c *Call) accompanying(escrow *chain.Address, typ chain.TxnType) (*chain.Txn, error) {
	app, err := c.appCall()
	if err != nil {
		return nil, err
	}
	if !app.Receiver.Equal(escrow) {
		return nil, errors.Wrap(ErrMalformedGroup, "app call targets another escrow")
	}
	if c.Index == 0 {
		return nil, errors.Wrapf(ErrMalformedGroup, "missing %s transaction", typ)
	}
	txn := c.Group[c.Index-1]
	if txn.Type != typ {
		return nil, errors.Wrapf(ErrMalformedGroup, "expected %s transaction, got %s", typ, txn.Type)
	}
	if !txn.Sender.Equal(c.Sender) {
		return nil, errors.Wrapf(ErrMalformedGroup, "%s sender mismatch", typ)
	}
	if !txn.Receiver.Equal(escrow) {
		return nil, errors.Wrapf(ErrMalformedGroup, "%s receiver is not the escrow", typ)
	}
	return txn, nil
}
