package ledger

import (
	"github.com/kurumiimari/hammer/chain"
	"github.com/pkg/errors"
)

// Tx is the ledger as seen from inside an executing group.
type Tx struct {
	l       *Ledger
	receipt *Receipt
}

func (tx *Tx) Round() uint64 {
	return tx.l.round
}

func (tx *Tx) MinTxnFee() uint64 {
	return tx.l.network.MinTxnFee
}

func (tx *Tx) Balance(addr *chain.Address) uint64 {
	return tx.l.balances[addr.String()]
}

// Escrow returns the escrow view of addr, usable until the group
// finishes executing.
func (tx *Tx) Escrow(addr *chain.Address) *Escrow {
	return &Escrow{
		tx:   tx,
		addr: addr.Clone(),
	}
}

func (tx *Tx) apply(txn *chain.Txn) error {
	switch txn.Type {
	case chain.TxnPayment:
		return tx.pay(txn.Sender, txn.Receiver, txn.Amount, false)
	case chain.TxnAssetTransfer:
		return tx.transferAsset(txn.Sender, txn.Receiver, txn.AssetID, false)
	case chain.TxnAppCall:
		return tx.chargeFee(txn.Sender)
	default:
		return errors.Errorf("unknown transaction type %d", txn.Type)
	}
}

func (tx *Tx) chargeFee(sender *chain.Address) error {
	fee := tx.MinTxnFee()
	key := sender.String()
	if tx.l.balances[key] < fee {
		return errors.Wrapf(ErrInsufficientFunds, "%s cannot pay fee of %d", sender, fee)
	}
	tx.l.balances[key] -= fee
	return nil
}

func (tx *Tx) pay(sender, receiver *chain.Address, amount uint64, inner bool) error {
	fee := tx.MinTxnFee()
	from := sender.String()
	bal := tx.l.balances[from]
	if amount > bal || fee > bal-amount {
		return errors.Wrapf(
			ErrInsufficientFunds,
			"%s has %d, needs %d plus a fee of %d",
			sender,
			bal,
			amount,
			fee,
		)
	}
	tx.l.balances[from] -= amount + fee
	tx.l.balances[receiver.String()] += amount
	tx.receipt.Transfers = append(tx.receipt.Transfers, &Transfer{
		From:   sender.Clone(),
		To:     receiver.Clone(),
		Amount: amount,
		Fee:    fee,
		Inner:  inner,
	})
	return nil
}

func (tx *Tx) transferAsset(sender, receiver *chain.Address, assetID uint64, inner bool) error {
	holder, ok := tx.l.holders[assetID]
	if !ok {
		return errors.Wrapf(ErrUnknownAsset, "asset %d", assetID)
	}
	if !holder.Equal(sender) {
		return errors.Wrapf(ErrAssetNotHeld, "asset %d", assetID)
	}
	if err := tx.chargeFee(sender); err != nil {
		return err
	}
	tx.l.holders[assetID] = receiver.Clone()
	tx.receipt.Transfers = append(tx.receipt.Transfers, &Transfer{
		From:    sender.Clone(),
		To:      receiver.Clone(),
		AssetID: assetID,
		Fee:     tx.MinTxnFee(),
		Inner:   inner,
	})
	return nil
}

// closeTo moves everything left in sender to receiver after the fee.
// Balances too small to cover the fee are burned.
func (tx *Tx) closeTo(sender, receiver *chain.Address) error {
	fee := tx.MinTxnFee()
	bal := tx.l.balances[sender.String()]
	if bal <= fee {
		delete(tx.l.balances, sender.String())
		return nil
	}
	if err := tx.pay(sender, receiver, bal-fee, true); err != nil {
		return err
	}
	delete(tx.l.balances, sender.String())
	return nil
}
