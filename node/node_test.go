package node

import (
	"bytes"
	"github.com/kurumiimari/hammer/auction"
	"github.com/kurumiimari/hammer/auctiondb"
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/ledger"
	"github.com/kurumiimari/hammer/testutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gopkg.in/tomb.v2"
	"math"
	"testing"
)

func testAddr(b byte) *chain.Address {
	return chain.NewAddressFromHash(bytes.Repeat([]byte{b}, chain.AddressHashSize))
}

var (
	seller = testAddr(0x02)
	alice  = testAddr(0x0a)
	bob    = testAddr(0x0b)
	carol  = testAddr(0x0c)
)

type NodeSuite struct {
	suite.Suite
	tmb    *tomb.Tomb
	engine *auctiondb.Engine
	node   *Node
}

func (s *NodeSuite) SetupSuite() {
	chain.SetCurrNetwork(chain.NetworkRegtest)
}

func (s *NodeSuite) TearDownSuite() {
	chain.SetCurrNetwork(chain.NetworkMain)
}

func (s *NodeSuite) SetupTest() {
	engine, err := auctiondb.NewEngine(s.T().TempDir())
	s.Require().NoError(err)
	s.Require().NoError(auctiondb.MigrateDB(engine))
	s.engine = engine
	s.tmb = new(tomb.Tomb)
	s.node = NewNode(s.tmb, chain.NetworkRegtest, engine)
	s.Require().NoError(s.node.Start())
	for _, addr := range []*chain.Address{seller, alice, bob, carol} {
		_, err := s.node.Fund(addr)
		s.Require().NoError(err)
	}
}

func (s *NodeSuite) TearDownTest() {
	s.tmb.Kill(nil)
	s.Require().NoError(s.tmb.Wait())
	s.Require().NoError(s.engine.Close())
}

func (s *NodeSuite) advanceTo(round uint64) {
	curr := s.node.Round()
	s.Require().LessOrEqual(curr, round)
	_, err := s.node.AdvanceRounds(round - curr)
	s.Require().NoError(err)
}

func (s *NodeSuite) createAuction(params *auction.Params) (*AuctionInfo, uint64) {
	assetID, err := s.node.MintAsset(seller)
	s.Require().NoError(err)
	params.Seller = seller
	params.AssetID = assetID
	info, err := s.node.CreateAuction(seller, params)
	s.Require().NoError(err)
	s.Require().Equal(auction.PhaseCreated, info.Phase)
	s.Require().EqualValues(chain.NetworkRegtest.EscrowFunding, info.Balance)
	_, err = s.node.Setup(info.ID, seller)
	s.Require().NoError(err)
	s.Require().True(s.node.AssetHolder(assetID).Equal(info.Escrow))
	return info, assetID
}

func (s *NodeSuite) TestOpenAuctionLifecycle() {
	info, assetID := s.createAuction(&auction.Params{
		StartRound:      2,
		EndRound:        12,
		ReserveAmount:   100000,
		MinBidIncrement: 10000,
		Visibility:      auction.VisibilityOpen,
		PricingRule:     auction.FirstPrice,
	})
	s.Require().EqualValues(1000000-202000-2000, s.node.Balance(seller))

	_, err := s.node.Bid(info.ID, alice, 150000)
	testutil.RequireErrorIs(s.T(), err, auction.ErrNotStarted)
	s.Require().EqualValues(1000000, s.node.Balance(alice))

	s.advanceTo(2)
	_, err = s.node.Bid(info.ID, alice, 150000)
	s.Require().NoError(err)
	_, err = s.node.Bid(info.ID, bob, 155000)
	testutil.RequireErrorIs(s.T(), err, auction.ErrBidTooLow, auction.ErrConsistency)
	s.Require().EqualValues(1000000, s.node.Balance(bob))

	res, err := s.node.Bid(info.ID, bob, 170000)
	s.Require().NoError(err)
	s.Require().Len(res.Transfers, 2)
	s.Require().EqualValues(1000000-151000-1000+149000, s.node.Balance(alice))

	got, err := s.node.GetAuction(info.ID)
	s.Require().NoError(err)
	s.Require().True(got.State.LeadBidder.Equal(bob))
	s.Require().EqualValues(170000, got.State.LeadBidAmount)
	s.Require().Equal(auction.PhaseBidding, got.Phase)

	s.advanceTo(12)
	_, err = s.node.PaySeller(info.ID, seller)
	s.Require().NoError(err)
	_, err = s.node.PaySeller(info.ID, seller)
	testutil.RequireErrorIs(s.T(), err, auction.ErrAlreadyPaid, auction.ErrAlreadySettled)
	_, err = s.node.PayWinner(info.ID, bob)
	s.Require().NoError(err)
	s.Require().True(s.node.AssetHolder(assetID).Equal(bob))

	res, err = s.node.Teardown(info.ID, seller)
	s.Require().NoError(err)
	s.Require().True(res.Deleted)
	s.Require().Zero(s.node.Balance(info.Escrow))
	// Escrow kept 199000 after paying out: its funding less one asset
	// transfer fee. Closing it costs another fee.
	s.Require().EqualValues(796000-1000+169000-1000+198000, s.node.Balance(seller))

	_, err = s.node.GetAuction(info.ID)
	s.Require().True(errors.Is(err, auctiondb.ErrNotFound))
	transfers, err := s.node.Transfers(info.ID)
	s.Require().NoError(err)
	s.Require().NotEmpty(transfers)
}

func (s *NodeSuite) TestSealedAuctionLifecycle() {
	info, assetID := s.createAuction(&auction.Params{
		StartRound:        2,
		CommitEndRound:    7,
		EndRound:          12,
		ReserveAmount:     100000,
		MinBidIncrement:   10000,
		Visibility:        auction.VisibilitySealedExact,
		PricingRule:       auction.SecondPrice,
		ServiceFeePercent: 5,
	})

	s.advanceTo(2)
	_, err := s.node.Commit(info.ID, alice, auction.Digest(200000, 11), 200000)
	s.Require().NoError(err)
	_, err = s.node.Commit(info.ID, bob, auction.Digest(350000, 22), 350000)
	s.Require().NoError(err)

	s.advanceTo(7)
	_, err = s.node.Reveal(info.ID, alice, 200000, 12)
	testutil.RequireErrorIs(s.T(), err, auction.ErrDigestMismatch, auction.ErrCommitment)
	logs, err := s.node.Logs(info.ID)
	s.Require().NoError(err)
	s.Require().Empty(logs)
	got, err := s.node.GetAuction(info.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Participants, 2)

	res, err := s.node.Reveal(info.ID, alice, 200000, 11)
	s.Require().NoError(err)
	s.Require().Equal(auction.OutcomeLead, res.Reveal.Outcome)
	s.Require().Len(res.Logs, 1)
	s.Require().True(res.Logs[0].Equal(auction.Digest(200000, 11)))
	_, err = s.node.Reveal(info.ID, bob, 350000, 22)
	s.Require().NoError(err)
	s.Require().EqualValues(1000000-201000-1000-1000+199000, s.node.Balance(alice))

	logs, err = s.node.Logs(info.ID)
	s.Require().NoError(err)
	s.Require().Len(logs, 2)

	s.advanceTo(12)
	sellerBefore := s.node.Balance(seller)
	_, err = s.node.PaySeller(info.ID, seller)
	s.Require().NoError(err)
	s.Require().EqualValues(sellerBefore-1000+189000, s.node.Balance(seller))
	_, err = s.node.PayWinner(info.ID, bob)
	s.Require().NoError(err)
	s.Require().EqualValues(1000000-351000-1000-1000-1000+149000, s.node.Balance(bob))
	s.Require().True(s.node.AssetHolder(assetID).Equal(bob))

	_, err = s.node.Teardown(info.ID, carol)
	s.Require().NoError(err)
}

func (s *NodeSuite) TestOvercollateralizedClear() {
	info, _ := s.createAuction(&auction.Params{
		StartRound:     2,
		CommitEndRound: 7,
		EndRound:       12,
		ReserveAmount:  100000,
		Visibility:     auction.VisibilitySealedOvercollateralized,
		PricingRule:    auction.SecondPrice,
	})

	s.advanceTo(2)
	_, err := s.node.Commit(info.ID, alice, auction.Digest(200000, 1), 300000)
	s.Require().NoError(err)
	_, err = s.node.Commit(info.ID, carol, auction.Digest(150000, 2), 400000)
	s.Require().NoError(err)

	s.advanceTo(7)
	_, err = s.node.Reveal(info.ID, alice, 200000, 1)
	s.Require().NoError(err)
	res, err := s.node.Clear(info.ID, carol)
	s.Require().NoError(err)
	s.Require().True(res.Reveal.Cleared)
	s.Require().Equal(auction.OutcomeLead, res.Reveal.Outcome)

	got, err := s.node.GetAuction(info.ID)
	s.Require().NoError(err)
	s.Require().True(got.State.LeadBidder.Equal(carol))
	s.Require().EqualValues(400000, got.State.LeadBidAmount)
	s.Require().EqualValues(200000, got.State.SecondBidAmount)
	s.Require().Empty(got.Participants)
}

func (s *NodeSuite) TestTeardownBeforeStart() {
	info, assetID := s.createAuction(&auction.Params{
		StartRound:  5,
		EndRound:    10,
		Visibility:  auction.VisibilityOpen,
		PricingRule: auction.FirstPrice,
	})

	_, err := s.node.Teardown(info.ID, alice)
	testutil.RequireErrorIs(s.T(), err, auction.ErrNotEligible, auction.ErrIneligibleTeardown)

	_, err = s.node.Teardown(info.ID, seller)
	s.Require().NoError(err)
	s.Require().True(s.node.AssetHolder(assetID).Equal(seller))
	list, err := s.node.ListAuctions()
	s.Require().NoError(err)
	s.Require().Empty(list)
}

func (s *NodeSuite) TestRestart() {
	info, _ := s.createAuction(&auction.Params{
		StartRound:  2,
		EndRound:    10,
		Visibility:  auction.VisibilityOpen,
		PricingRule: auction.FirstPrice,
	})
	s.advanceTo(3)
	_, err := s.node.Bid(info.ID, alice, 50000)
	s.Require().NoError(err)

	restarted := NewNode(s.tmb, chain.NetworkRegtest, s.engine)
	s.Require().NoError(restarted.Start())
	s.Require().EqualValues(3, restarted.Round())
	s.Require().Equal(s.node.Balance(alice), restarted.Balance(alice))

	got, err := restarted.GetAuction(info.ID)
	s.Require().NoError(err)
	s.Require().True(got.State.LeadBidder.Equal(alice))
	s.Require().Equal(auction.PhaseBidding, got.Phase)
}

func (s *NodeSuite) TestAuctionsFor() {
	info, _ := s.createAuction(&auction.Params{
		StartRound:  2,
		EndRound:    10,
		Visibility:  auction.VisibilityOpen,
		PricingRule: auction.FirstPrice,
	})
	s.advanceTo(2)
	_, err := s.node.Bid(info.ID, alice, 50000)
	s.Require().NoError(err)

	for _, tt := range []struct {
		addr  *chain.Address
		count int
	}{
		{seller, 1},
		{alice, 1},
		{bob, 0},
	} {
		list, err := s.node.AuctionsFor(tt.addr)
		s.Require().NoError(err)
		s.Require().Len(list, tt.count)
	}
}

func (s *NodeSuite) TestUnknownAuction() {
	_, err := s.node.Bid("missing", alice, 50000)
	s.Require().True(errors.Is(err, auctiondb.ErrNotFound))
}

func (s *NodeSuite) TestNonces() {
	s.Require().NoError(s.node.UseNonce("abc", alice))
	s.Require().True(errors.Is(s.node.UseNonce("abc", alice), auctiondb.ErrNonceUsed))
}

func (s *NodeSuite) TestPhaseChangesAcrossJumps() {
	sealed, _ := s.createAuction(&auction.Params{
		StartRound:      2,
		CommitEndRound:  4,
		EndRound:        6,
		ReserveAmount:   100000,
		MinBidIncrement: 10000,
		Visibility:      auction.VisibilitySealedOvercollateralized,
		PricingRule:     auction.FirstPrice,
	})
	open, _ := s.createAuction(&auction.Params{
		StartRound:  3,
		EndRound:    20,
		Visibility:  auction.VisibilityOpen,
		PricingRule: auction.FirstPrice,
	})

	rounds := make(chan uint64, 4)
	rounds <- 6
	rounds <- 5
	rounds <- 7
	rounds <- 30
	close(rounds)

	var changes []*PhaseChange
	s.node.watchPhases(rounds, 0, func(change *PhaseChange) {
		changes = append(changes, change)
	})

	s.Require().Equal([]*PhaseChange{
		{sealed.ID, auction.PhaseCommitting, 2},
		{sealed.ID, auction.PhaseRevealing, 4},
		{sealed.ID, auction.PhaseEnded, 6},
		{open.ID, auction.PhaseBidding, 3},
		{open.ID, auction.PhaseEnded, 20},
	}, sortedChanges(changes, sealed.ID))
}

// sortedChanges puts first's changes ahead of the rest, keeping the
// order within each auction.
func sortedChanges(changes []*PhaseChange, first string) []*PhaseChange {
	var head, tail []*PhaseChange
	for _, c := range changes {
		if c.AuctionID == first {
			head = append(head, c)
		} else {
			tail = append(tail, c)
		}
	}
	return append(head, tail...)
}

func (s *NodeSuite) TestAdvanceRoundsOverflow() {
	s.advanceTo(3)
	_, err := s.node.AdvanceRounds(math.MaxUint64)
	testutil.RequireErrorIs(s.T(), err, ledger.ErrRoundOverflow)
	s.Require().EqualValues(3, s.node.Round())
}

func TestNodeSuite(t *testing.T) {
	suite.Run(t, new(NodeSuite))
}

func TestNode_MainNetworkRestrictions(t *testing.T) {
	engine, err := auctiondb.NewEngine(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, auctiondb.MigrateDB(engine))
	defer engine.Close()

	tmb := new(tomb.Tomb)
	n := NewNode(tmb, chain.NetworkMain, engine)
	_, err = n.AdvanceRounds(1)
	require.True(t, errors.Is(err, ErrClockLocked))
	_, err = n.Fund(alice)
	require.True(t, errors.Is(err, ErrFaucetDisabled))
}

func TestBidderBloom(t *testing.T) {
	b := NewBidderBloom()
	b.Add(alice)
	restored, err := BidderBloomFromBytes(b.Bytes())
	require.NoError(t, err)
	require.True(t, restored.Test(alice))
	require.False(t, restored.Test(bob))

	empty, err := BidderBloomFromBytes(nil)
	require.NoError(t, err)
	require.False(t, empty.Test(alice))
}
