package gcrypto

import (
	"bytes"
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"reflect"
)

const DigestSize = 32

type Hash []byte

func NewHashFromHex(in string) (Hash, error) {
	buf, err := hex.DecodeString(in)
	if err != nil {
		return nil, errors.Wrap(err, "invalid hex")
	}
	return buf, nil
}

// IsZero reports whether h is empty or all zeroes. Unset commitments
// are stored this way.
func (h Hash) IsZero() bool {
	return len(bytes.Trim(h, "\x00")) == 0
}

func (h Hash) String() string {
	return hex.EncodeToString(h)
}

func (h Hash) MarshalJSON() ([]byte, error) {
	if len(h) == 0 {
		return json.Marshal(nil)
	}
	return json.Marshal(h.String())
}

func (h *Hash) UnmarshalJSON(b []byte) error {
	var hexStr *string
	if err := json.Unmarshal(b, &hexStr); err != nil {
		return errors.WithStack(err)
	}
	if hexStr == nil {
		*h = nil
		return nil
	}
	buf, err := NewHashFromHex(*hexStr)
	if err != nil {
		return err
	}
	*h = buf
	return nil
}

func (h Hash) Value() (driver.Value, error) {
	if len(h) == 0 {
		return nil, nil
	}
	return hex.EncodeToString(h), nil
}

func (h *Hash) Scan(src interface{}) error {
	var hexStr string
	switch t := src.(type) {
	case nil:
		*h = nil
		return nil
	case string:
		hexStr = t
	case []byte:
		hexStr = string(t)
	default:
		return errors.Errorf("cannot scan %v into hash", reflect.TypeOf(src))
	}
	buf, err := NewHashFromHex(hexStr)
	if err != nil {
		return err
	}
	*h = buf
	return nil
}

func (h Hash) Equal(other Hash) bool {
	return bytes.Equal(h, other)
}

// SHA256 is the ledger's native digest. Bid commitments use it.
func SHA256(in ...[]byte) Hash {
	h := sha256.New()
	for _, b := range in {
		h.Write(b)
	}
	return h.Sum(nil)
}

func Blake160(in []byte) Hash {
	buf, _ := blake2b.New(20, nil)
	buf.Write(in)
	return buf.Sum(nil)
}

func Blake256(in []byte) Hash {
	buf := blake2b.Sum256(in)
	return buf[:]
}
