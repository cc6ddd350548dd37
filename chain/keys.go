package chain

import (
	"github.com/btcsuite/btcd/btcec"
	"github.com/btcsuite/btcutil/hdkeychain"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
)

func GenerateRandomSeed(password string) ([]byte, string) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		panic(err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		panic(err)
	}

	return bip39.NewSeed(mnemonic, password), mnemonic
}

func IsHardenedNode(i uint32) bool {
	return i >= hdkeychain.HardenedKeyStart
}

func HardenNode(i uint32) uint32 {
	return i + hdkeychain.HardenedKeyStart
}

// KeyRing derives the account keys bidders, sellers and creators sign
// calls with. Account n lives at m/44'/coin'/0'/0/n.
type KeyRing struct {
	account *hdkeychain.ExtendedKey
	network *Network
}

func NewKeyRingFromMnemonic(mnemonic string, password string, network *Network) (*KeyRing, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, errors.New("invalid mnemonic")
	}
	return NewKeyRing(bip39.NewSeed(mnemonic, password), network)
}

func NewKeyRing(seed []byte, network *Network) (*KeyRing, error) {
	master, err := hdkeychain.NewMaster(seed, network.ChainParams())
	if err != nil {
		return nil, errors.Wrap(err, "error creating master key")
	}

	ek := master
	for _, child := range []uint32{
		HardenNode(CoinPurpose),
		HardenNode(network.KeyPrefix.CoinType),
		HardenNode(0),
		0,
	} {
		ek, err = ek.Child(child)
		if err != nil {
			return nil, errors.Wrap(err, "error deriving account key")
		}
	}

	return &KeyRing{
		account: ek,
		network: network,
	}, nil
}

func (k *KeyRing) PrivateKey(index uint32) (*btcec.PrivateKey, error) {
	if IsHardenedNode(index) {
		return nil, errors.New("account index out of range")
	}
	child, err := k.account.Child(index)
	if err != nil {
		return nil, errors.Wrap(err, "error deriving key")
	}
	return child.ECPrivKey()
}

func (k *KeyRing) Address(index uint32) (*Address, error) {
	priv, err := k.PrivateKey(index)
	if err != nil {
		return nil, err
	}
	return NewAddressFromPubkey(priv.PubKey()), nil
}
