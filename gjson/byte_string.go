package gjson

import (
	"encoding/hex"
	"encoding/json"
	"github.com/pkg/errors"
	"strings"
)

// ByteString is a byte slice that encodes to JSON as a hex string. An
// optional 0x prefix is accepted when decoding.
type ByteString []byte

func (b ByteString) String() string {
	return hex.EncodeToString(b)
}

func (b ByteString) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *ByteString) UnmarshalJSON(buf []byte) error {
	var h string
	if err := json.Unmarshal(buf, &h); err != nil {
		return errors.WithStack(err)
	}
	bs, err := hex.DecodeString(strings.TrimPrefix(h, "0x"))
	if err != nil {
		return errors.Wrap(err, "invalid hex string")
	}
	*b = bs
	return nil
}
