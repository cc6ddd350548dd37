package node

import (
	"bytes"
	"github.com/kurumiimari/hammer/chain"
	"github.com/pkg/errors"
	"github.com/willf/bloom"
)

// https://hur.st/bloomfilter/?n=1000&p=1.0E-6&m=&k=

const (
	BidderBloomM = 28756
	BidderBloomK = 20
)

// BidderBloom remembers every address that called an auction so lookups
// by address can skip auctions it never touched.
type BidderBloom struct {
	filter *bloom.BloomFilter
}

func NewBidderBloom() *BidderBloom {
	return &BidderBloom{
		filter: bloom.New(BidderBloomM, BidderBloomK),
	}
}

func BidderBloomFromBytes(buf []byte) (*BidderBloom, error) {
	if len(buf) == 0 {
		return NewBidderBloom(), nil
	}
	filter := new(bloom.BloomFilter)
	if _, err := filter.ReadFrom(bytes.NewReader(buf)); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling bloom filter")
	}
	return &BidderBloom{
		filter: filter,
	}, nil
}

func (b *BidderBloom) Add(addr *chain.Address) {
	b.filter.Add(addrBytes(addr))
}

func (b *BidderBloom) Test(addr *chain.Address) bool {
	return b.filter.Test(addrBytes(addr))
}

func (b *BidderBloom) Bytes() []byte {
	buf := new(bytes.Buffer)
	if _, err := b.filter.WriteTo(buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func addrBytes(addr *chain.Address) []byte {
	buf := new(bytes.Buffer)
	if _, err := addr.WriteTo(buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
