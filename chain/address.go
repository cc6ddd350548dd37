package chain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"github.com/btcsuite/btcd/btcec"
	"github.com/btcsuite/btcutil/bech32"
	"github.com/kurumiimari/hammer/bio"
	"github.com/kurumiimari/hammer/gcrypto"
	"github.com/pkg/errors"
	"io"
	"reflect"
)

// Address identifies a ledger account. Accounts controlled by a key hash
// the compressed public key; escrow accounts hash their auction ID.
type Address struct {
	Version uint8
	Hash    []byte
}

// ZeroAddress is the ledger's "no account" sentinel.
var ZeroAddress = NewAddressFromHash(make([]byte, AddressHashSize))

func NewAddressFromHash(hash []byte) *Address {
	return &Address{
		Version: 0,
		Hash:    hash,
	}
}

func NewAddressFromPubkey(key *btcec.PublicKey) *Address {
	return NewAddressFromHash(gcrypto.Blake160(key.SerializeCompressed()))
}

func NewEscrowAddress(auctionID string) *Address {
	return NewAddressFromHash(gcrypto.Blake160([]byte("escrow:" + auctionID)))
}

func NewAddressFromBech32(bech string) (*Address, error) {
	hrp, data, err := bech32.Decode(bech)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding bech32")
	}
	if hrp != currNetwork.AddressHRP {
		return nil, errors.Errorf("address is not on the %s network", currNetwork.Name)
	}
	if len(data) == 0 {
		return nil, errors.New("empty address")
	}
	version := data[0]
	hash, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return nil, errors.Wrap(err, "error converting bits")
	}
	if len(hash) != AddressHashSize {
		return nil, errors.New("invalid address hash length")
	}
	return &Address{
		Version: version,
		Hash:    hash,
	}, nil
}

func MustAddressFromBech32(bech string) *Address {
	addr, err := NewAddressFromBech32(bech)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a *Address) IsZero() bool {
	return a == nil || gcrypto.Hash(a.Hash).IsZero()
}

func (a *Address) String() string {
	data, err := bech32.ConvertBits(a.Hash, 8, 5, true)
	if err != nil {
		panic(err)
	}
	bech, err := bech32.Encode(currNetwork.AddressHRP, append([]byte{a.Version}, data...))
	if err != nil {
		panic(err)
	}
	return bech
}

func (a *Address) Equal(b *Address) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Version == b.Version && bytes.Equal(a.Hash, b.Hash)
}

func (a *Address) Clone() *Address {
	if a == nil {
		return nil
	}
	hash := make([]byte, len(a.Hash))
	copy(hash, a.Hash)
	return &Address{
		Version: a.Version,
		Hash:    hash,
	}
}

func (a *Address) WriteTo(w io.Writer) (int64, error) {
	bw := bio.NewWriter(w)
	bw.Byte(a.Version)
	bw.VarBytes(a.Hash)
	return bw.N, errors.Wrap(bw.Err, "error writing address")
}

func (a *Address) ReadFrom(r io.Reader) (int64, error) {
	br := bio.NewReader(r)
	version := br.Byte()
	hash := br.VarBytes()
	if br.Err != nil {
		return br.N, errors.Wrap(br.Err, "error reading address")
	}
	a.Version = version
	a.Hash = hash
	return br.N, nil
}

func (a *Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(b []byte) error {
	var bech string
	if err := json.Unmarshal(b, &bech); err != nil {
		return errors.WithStack(err)
	}
	addr, err := NewAddressFromBech32(bech)
	if err != nil {
		return err
	}
	*a = *addr
	return nil
}

func (a *Address) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return a.String(), nil
}

func (a *Address) Scan(src interface{}) error {
	var bech string
	switch t := src.(type) {
	case string:
		bech = t
	case []byte:
		bech = string(t)
	default:
		return errors.Errorf("cannot scan %v into address", reflect.TypeOf(src))
	}
	addr, err := NewAddressFromBech32(bech)
	if err != nil {
		return err
	}
	*a = *addr
	return nil
}
