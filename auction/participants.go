package auction

import (
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/gcrypto"
	"sort"
)

// Participant is a sealed bidder's live commitment. It exists from commit
// until the bidder reveals or clears.
type Participant struct {
	Commitment gcrypto.Hash `json:"commitment"`
	Collateral uint64       `json:"collateral"`
	Revealed   bool         `json:"revealed"`
}

func (p *Participant) Clone() *Participant {
	out := *p
	out.Commitment = append(gcrypto.Hash(nil), p.Commitment...)
	return &out
}

// Participants holds the live commitments of one auction, keyed by the
// bidder's address string.
type Participants map[string]*Participant

func (p Participants) Get(addr *chain.Address) *Participant {
	return p[addr.String()]
}

func (p Participants) Put(addr *chain.Address, entry *Participant) {
	p[addr.String()] = entry
}

func (p Participants) Delete(addr *chain.Address) {
	delete(p, addr.String())
}

// Held is the total collateral held for unrevealed commitments.
func (p Participants) Held() uint64 {
	var total uint64
	for _, entry := range p {
		total += entry.Collateral
	}
	return total
}

// Bidders returns the committed addresses in a stable order.
func (p Participants) Bidders() []string {
	out := make([]string, 0, len(p))
	for addr := range p {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

func (p Participants) Clone() Participants {
	out := make(Participants, len(p))
	for addr, entry := range p {
		out[addr] = entry.Clone()
	}
	return out
}
