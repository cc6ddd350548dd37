package chain

type TxnType uint8

const (
	TxnPayment TxnType = iota + 1
	TxnAssetTransfer
	TxnAppCall
)

func (t TxnType) String() string {
	switch t {
	case TxnPayment:
		return "pay"
	case TxnAssetTransfer:
		return "axfer"
	case TxnAppCall:
		return "appl"
	default:
		return "unknown"
	}
}

// Txn is one member of an atomic transaction group. Amount is set on
// payments, AssetID on asset transfers.
type Txn struct {
	Type     TxnType
	Sender   *Address
	Receiver *Address
	Amount   uint64
	AssetID  uint64
}

func NewPayment(sender, receiver *Address, amount uint64) *Txn {
	return &Txn{
		Type:     TxnPayment,
		Sender:   sender,
		Receiver: receiver,
		Amount:   amount,
	}
}

func NewAssetTransfer(sender, receiver *Address, assetID uint64) *Txn {
	return &Txn{
		Type:     TxnAssetTransfer,
		Sender:   sender,
		Receiver: receiver,
		AssetID:  assetID,
	}
}

func NewAppCall(sender, app *Address) *Txn {
	return &Txn{
		Type:     TxnAppCall,
		Sender:   sender,
		Receiver: app,
	}
}
