package chain

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
	"github.com/pkg/errors"
	"time"
)

const (
	CoinPurpose = 44
)

type Network struct {
	Net        wire.BitcoinNet
	Name       string
	APIPort    int
	AddressHRP string
	// MinTxnFee is charged to the sender of every transfer.
	MinTxnFee uint64
	// EscrowFunding is the operating balance a creator deposits into a
	// new escrow so it can pay the fees of its own transfers. It is swept
	// back to the creator at teardown.
	EscrowFunding uint64
	FaucetAmount  uint64
	// Default phase lengths used by the CLI when no explicit rounds are given.
	StartDelay    uint64
	CommitPeriod  uint64
	RevealPeriod  uint64
	BiddingPeriod uint64
	// ClockAdvance allows rounds to be advanced by API callers.
	ClockAdvance bool
	// RoundInterval is the wall-clock duration of a round. Zero means
	// rounds only advance on request.
	RoundInterval time.Duration
	KeyPrefix     *NetworkKeyPrefix

	chainParams *chaincfg.Params
}

type NetworkKeyPrefix struct {
	Private  uint8
	XPub     [4]byte
	XPriv    [4]byte
	CoinType uint32
}

var NetworkMain = &Network{
	Net:           0x48414d4d,
	Name:          "main",
	APIPort:       13039,
	AddressHRP:    "hm",
	MinTxnFee:     1000,
	EscrowFunding: 200000,
	FaucetAmount:  0,
	StartDelay:    10,
	CommitPeriod:  720,
	RevealPeriod:  720,
	BiddingPeriod: 1440,
	ClockAdvance:  false,
	RoundInterval: 4 * time.Second,
	KeyPrefix: &NetworkKeyPrefix{
		Private:  0x80,
		XPub:     [4]byte{0x04, 0x88, 0xb2, 0x1e},
		XPriv:    [4]byte{0x04, 0x88, 0xad, 0xe4},
		CoinType: 5757,
	},
}

var NetworkRegtest = &Network{
	Net:           0x48414d52,
	Name:          "regtest",
	APIPort:       15039,
	AddressHRP:    "rh",
	MinTxnFee:     1000,
	EscrowFunding: 200000,
	FaucetAmount:  1000000,
	StartDelay:    2,
	CommitPeriod:  5,
	RevealPeriod:  5,
	BiddingPeriod: 10,
	ClockAdvance:  true,
	KeyPrefix: &NetworkKeyPrefix{
		Private:  0x5a,
		XPub:     [4]byte{0xea, 0xb4, 0xfa, 0x05},
		XPriv:    [4]byte{0xea, 0xb4, 0x04, 0xc7},
		CoinType: 5758,
	},
}

var currNetwork = NetworkMain

func SetCurrNetwork(network *Network) {
	currNetwork = network
}

func CurrNetwork() *Network {
	return currNetwork
}

func NetworkFromName(name string) (*Network, error) {
	switch name {
	case NetworkMain.Name:
		return NetworkMain, nil
	case NetworkRegtest.Name:
		return NetworkRegtest, nil
	default:
		return nil, errors.New("invalid network")
	}
}

func (n *Network) ChainParams() *chaincfg.Params {
	if n.chainParams != nil {
		return n.chainParams
	}

	params := &chaincfg.Params{
		Net:            n.Net,
		Name:           n.Name + "-hammer",
		PrivateKeyID:   n.KeyPrefix.Private,
		HDPrivateKeyID: n.KeyPrefix.XPriv,
		HDPublicKeyID:  n.KeyPrefix.XPub,
		HDCoinType:     n.KeyPrefix.CoinType,
	}
	n.chainParams = params

	return n.chainParams
}
