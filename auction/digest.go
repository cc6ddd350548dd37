package auction

import (
	"github.com/kurumiimari/hammer/bio"
	"github.com/kurumiimari/hammer/gcrypto"
)

// Digest computes the commitment a sealed bidder publishes at commit time:
// SHA-256 over the big-endian encodings of the bid value and the nonce.
func Digest(value, nonce uint64) gcrypto.Hash {
	return gcrypto.SHA256(bio.Uint64BE(value), bio.Uint64BE(nonce))
}
