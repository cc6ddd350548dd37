package auction

import (
	"bytes"
	"github.com/kurumiimari/hammer/chain"
	"github.com/pkg/errors"
	"testing"
)

type fakeTransfer struct {
	to     *chain.Address
	amount uint64
}

type fakeAssetTransfer struct {
	assetID uint64
	to      *chain.Address
}

// fakeEscrow records the side effects an auction issues. Deposits made by
// accompanying payments are credited with deposit.
type fakeEscrow struct {
	addr      *chain.Address
	fee       uint64
	balance   uint64
	holds     map[uint64]bool
	transfers []fakeTransfer
	assets    []fakeAssetTransfer
	closedTo  *chain.Address
	logs      [][]byte
}

func newFakeEscrow() *fakeEscrow {
	return &fakeEscrow{
		addr:    chain.NewEscrowAddress("test"),
		fee:     1000,
		balance: 200000,
		holds:   make(map[uint64]bool),
	}
}

func (f *fakeEscrow) Address() *chain.Address {
	return f.addr
}

func (f *fakeEscrow) MinTxnFee() uint64 {
	return f.fee
}

func (f *fakeEscrow) Transfer(to *chain.Address, amount uint64) error {
	if f.balance < amount+f.fee {
		return errors.New("insufficient escrow balance")
	}
	f.balance -= amount + f.fee
	f.transfers = append(f.transfers, fakeTransfer{to, amount})
	return nil
}

func (f *fakeEscrow) TransferAsset(assetID uint64, to *chain.Address) error {
	if !f.holds[assetID] {
		return errors.New("asset not held")
	}
	delete(f.holds, assetID)
	f.assets = append(f.assets, fakeAssetTransfer{assetID, to})
	return nil
}

func (f *fakeEscrow) HoldsAsset(assetID uint64) bool {
	return f.holds[assetID]
}

func (f *fakeEscrow) CloseTo(to *chain.Address) error {
	f.closedTo = to
	f.balance = 0
	return nil
}

func (f *fakeEscrow) Log(entry []byte) error {
	f.logs = append(f.logs, entry)
	return nil
}

func (f *fakeEscrow) deposit(amount uint64) {
	f.balance += amount
}

func (f *fakeEscrow) paidTo(addr *chain.Address) []uint64 {
	var out []uint64
	for _, t := range f.transfers {
		if t.to.Equal(addr) {
			out = append(out, t.amount)
		}
	}
	return out
}

func testAddr(b byte) *chain.Address {
	return chain.NewAddressFromHash(bytes.Repeat([]byte{b}, chain.AddressHashSize))
}

var (
	creator = testAddr(0x01)
	seller  = testAddr(0x02)
	alice   = testAddr(0x0a)
	bob     = testAddr(0x0b)
	carol   = testAddr(0x0c)
	mallory = testAddr(0x0f)
)

const testAssetID = 77

type fixture struct {
	t      *testing.T
	escrow *fakeEscrow
	auc    *Auction
}

func newFixture(t *testing.T, params *Params) *fixture {
	escrow := newFakeEscrow()
	if params.Seller == nil {
		params.Seller = seller
	}
	if params.AssetID == 0 {
		params.AssetID = testAssetID
	}
	auc, err := Create(params, 0, creator, escrow)
	if err != nil {
		t.Fatalf("error creating auction: %v", err)
	}
	return &fixture{
		t:      t,
		escrow: escrow,
		auc:    auc,
	}
}

func (f *fixture) setup() {
	f.escrow.holds[f.auc.state.AssetID] = true
	txn := chain.NewAssetTransfer(seller, f.escrow.addr, f.auc.state.AssetID)
	if err := f.auc.Setup(NewCall(seller, f.escrow.addr, 0, txn)); err != nil {
		f.t.Fatalf("error setting up auction: %v", err)
	}
}

func (f *fixture) payCall(sender *chain.Address, round, amount uint64) *Call {
	f.escrow.deposit(amount)
	return NewCall(sender, f.escrow.addr, round, chain.NewPayment(sender, f.escrow.addr, amount))
}

func (f *fixture) call(sender *chain.Address, round uint64) *Call {
	return NewCall(sender, f.escrow.addr, round, nil)
}
