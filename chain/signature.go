package chain

import (
	"bytes"
	"github.com/btcsuite/btcd/btcec"
	"github.com/kurumiimari/hammer/bio"
	"github.com/kurumiimari/hammer/gcrypto"
	"github.com/pkg/errors"
	"math/big"
)

var ErrInvalidSignature = errors.New("invalid signature")

func SerializeSignature(sig *btcec.Signature) []byte {
	// handle low 'S' malleability
	// see btcec
	sigS := sig.S
	curve := btcec.S256()
	if sigS.Cmp(new(big.Int).Rsh(curve.N, 1)) == 1 {
		sigS = new(big.Int).Sub(curve.N, sigS)
	}

	rb := sig.R.Bytes()
	sb := sigS.Bytes()
	b := make([]byte, 64)
	copy(b[32-len(rb):], rb)
	copy(b[64-len(sb):], sb)
	return b
}

func DeserializeSignature(b []byte) (*btcec.Signature, error) {
	if len(b) != 64 {
		return nil, errors.New("mal-formed signature")
	}

	sig := new(btcec.Signature)
	sig.R = new(big.Int).SetBytes(b[:32])
	sig.S = new(big.Int).SetBytes(b[32:])
	return sig, nil
}

// CallHash binds a call payload to the account submitting it.
func CallHash(sender *Address, payload []byte) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString(SignCallMagic)
	if _, err := sender.WriteTo(buf); err != nil {
		panic(err)
	}
	bio.NewWriter(buf).VarBytes(payload)
	return gcrypto.Blake256(buf.Bytes())
}

func SignCall(key *btcec.PrivateKey, payload []byte) ([]byte, error) {
	sender := NewAddressFromPubkey(key.PubKey())
	sig, err := key.Sign(CallHash(sender, payload))
	if err != nil {
		return nil, errors.Wrap(err, "error signing call")
	}
	return SerializeSignature(sig), nil
}

// VerifyCall returns the address of the account that signed payload.
func VerifyCall(pubKey []byte, sigB []byte, payload []byte) (*Address, error) {
	pub, err := btcec.ParsePubKey(pubKey, btcec.S256())
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, "mal-formed public key")
	}
	sig, err := DeserializeSignature(sigB)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	sender := NewAddressFromPubkey(pub)
	if !sig.Verify(CallHash(sender, payload), pub) {
		return nil, errors.WithStack(ErrInvalidSignature)
	}
	return sender, nil
}
