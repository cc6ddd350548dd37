package chain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"math/big"
)

// ParseAmount converts a whole-unit decimal string such as "0.35" into
// micro-units. Fractions finer than one micro-unit are rejected.
func ParseAmount(in string) (uint64, error) {
	d, err := decimal.NewFromString(in)
	if err != nil {
		return 0, errors.Wrap(err, "invalid amount")
	}
	if d.IsNegative() {
		return 0, errors.New("amount must not be negative")
	}
	micro := d.Shift(AmountDecimals)
	if !micro.Equal(micro.Truncate(0)) {
		return 0, errors.Errorf("amount has more than %d decimal places", AmountDecimals)
	}
	if !micro.BigInt().IsUint64() {
		return 0, errors.New("amount out of range")
	}
	return micro.BigInt().Uint64(), nil
}

func FormatAmount(micro uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(micro), -AmountDecimals).StringFixed(AmountDecimals)
}
