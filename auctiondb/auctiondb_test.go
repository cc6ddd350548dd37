package auctiondb

import (
	"bytes"
	"github.com/kurumiimari/hammer/auction"
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/ledger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"testing"
)

func testAddr(b byte) *chain.Address {
	return chain.NewAddressFromHash(bytes.Repeat([]byte{b}, chain.AddressHashSize))
}

type AuctionDBSuite struct {
	suite.Suite
	engine *Engine
}

func (s *AuctionDBSuite) SetupTest() {
	engine, err := NewEngine(s.T().TempDir())
	s.Require().NoError(err)
	s.Require().NoError(MigrateDB(engine))
	s.engine = engine
}

func (s *AuctionDBSuite) TearDownTest() {
	s.Require().NoError(s.engine.Close())
}

func (s *AuctionDBSuite) tx(cb func(tx Transactor)) {
	s.Require().NoError(s.engine.Transaction(func(tx Transactor) error {
		cb(tx)
		return nil
	}))
}

func testAuction(id string) *Auction {
	return &Auction{
		ID:           id,
		Escrow:       chain.NewEscrowAddress(id),
		CreatedRound: 3,
		BidderBloom:  []byte{0x01, 0x02},
		State: &auction.State{
			Creator:           testAddr(0x01),
			Seller:            testAddr(0x02),
			AssetID:           9,
			StartRound:        10,
			CommitEndRound:    20,
			EndRound:          30,
			ReserveAmount:     100000,
			MinBidIncrement:   10000,
			MinDeposit:        5000,
			Visibility:        auction.VisibilitySealedOvercollateralized,
			PricingRule:       auction.SecondPrice,
			ServiceFeePercent: 5,
			LeadBidAmount:     100000,
			SecondBidAmount:   100000,
		},
	}
}

func (s *AuctionDBSuite) TestMigrateTwice() {
	s.Require().NoError(MigrateDB(s.engine))
}

func (s *AuctionDBSuite) TestAuctionLifecycle() {
	a := testAuction("a1")
	s.tx(func(tx Transactor) {
		s.Require().NoError(CreateAuction(tx, a))
	})

	s.tx(func(tx Transactor) {
		got, err := GetAuction(tx, "a1")
		s.Require().NoError(err)
		s.Require().Equal(a, got)
	})

	next := a.State.Clone()
	next.LeadBidder = testAddr(0x0a)
	next.LeadBidAmount = 200000
	next.LeadBidDeposit = 250000
	next.NumBids = 1
	next.AssetEscrowed = true
	s.tx(func(tx Transactor) {
		s.Require().NoError(SaveAuctionState(tx, "a1", next))
		got, err := GetAuction(tx, "a1")
		s.Require().NoError(err)
		s.Require().Equal(next, got.State)

		s.Require().NoError(SaveBidderBloom(tx, "a1", []byte{0x03}))
		got, err = GetAuction(tx, "a1")
		s.Require().NoError(err)
		s.Require().Equal([]byte{0x03}, got.BidderBloom)
	})

	s.tx(func(tx Transactor) {
		s.Require().NoError(CreateAuction(tx, testAuction("a2")))
		list, err := ListAuctions(tx)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Require().Equal("a1", list[0].ID)
	})

	s.tx(func(tx Transactor) {
		s.Require().NoError(DeleteAuction(tx, "a1"))
		_, err := GetAuction(tx, "a1")
		s.Require().True(errors.Is(err, ErrNotFound))
		err = SaveAuctionState(tx, "a1", next)
		s.Require().True(errors.Is(err, ErrNotFound))
	})
}

func (s *AuctionDBSuite) TestTransactionRollback() {
	boom := errors.New("boom")
	err := s.engine.Transaction(func(tx Transactor) error {
		s.Require().NoError(CreateAuction(tx, testAuction("a1")))
		return boom
	})
	s.Require().True(errors.Is(err, boom))
	s.tx(func(tx Transactor) {
		_, err := GetAuction(tx, "a1")
		s.Require().True(errors.Is(err, ErrNotFound))
	})
}

func (s *AuctionDBSuite) TestParticipants() {
	alice := testAddr(0x0a).String()
	bob := testAddr(0x0b).String()
	s.tx(func(tx Transactor) {
		s.Require().NoError(CreateAuction(tx, testAuction("a1")))
		s.Require().NoError(SyncParticipants(tx, "a1", auction.Participants{
			alice: {Commitment: auction.Digest(1, 2), Collateral: 50000},
			bob:   {Commitment: auction.Digest(3, 4), Collateral: 60000},
		}))
	})

	s.tx(func(tx Transactor) {
		parts, err := GetParticipants(tx, "a1")
		s.Require().NoError(err)
		s.Require().Len(parts, 2)
		s.Require().True(parts[alice].Commitment.Equal(auction.Digest(1, 2)))
		s.Require().EqualValues(60000, parts[bob].Collateral)

		s.Require().NoError(SyncParticipants(tx, "a1", auction.Participants{
			bob: {Commitment: auction.Digest(5, 6), Collateral: 70000},
		}))
		parts, err = GetParticipants(tx, "a1")
		s.Require().NoError(err)
		s.Require().Len(parts, 1)
		s.Require().EqualValues(70000, parts[bob].Collateral)
	})

	s.tx(func(tx Transactor) {
		s.Require().NoError(DeleteAuction(tx, "a1"))
		parts, err := GetParticipants(tx, "a1")
		s.Require().NoError(err)
		s.Require().Empty(parts)
	})
}

func (s *AuctionDBSuite) TestLogsAndTransfers() {
	alice := testAddr(0x0a)
	escrow := chain.NewEscrowAddress("a1")
	s.tx(func(tx Transactor) {
		s.Require().NoError(AppendLog(tx, "a1", 21, auction.Digest(1, 2)))
		s.Require().NoError(AppendLog(tx, "a1", 22, auction.Digest(3, 4)))
		s.Require().NoError(RecordTransfer(tx, "a1", 21, "reveal", &ledger.Transfer{
			From:   escrow,
			To:     alice,
			Amount: 49000,
			Fee:    1000,
			Inner:  true,
		}))
	})

	s.tx(func(tx Transactor) {
		logs, err := GetLogs(tx, "a1")
		s.Require().NoError(err)
		s.Require().Len(logs, 2)
		s.Require().True(logs[0].Data.Equal(auction.Digest(1, 2)))
		s.Require().EqualValues(22, logs[1].Round)

		transfers, err := GetTransfers(tx, "a1")
		s.Require().NoError(err)
		s.Require().Len(transfers, 1)
		s.Require().True(transfers[0].To.Equal(alice))
		s.Require().True(transfers[0].Inner)
		s.Require().Equal("reveal", transfers[0].Method)

		none, err := GetLogs(tx, "a2")
		s.Require().NoError(err)
		s.Require().Empty(none)
	})
}

func (s *AuctionDBSuite) TestLedgerState() {
	s.tx(func(tx Transactor) {
		snap, err := LoadLedger(tx)
		s.Require().NoError(err)
		s.Require().Nil(snap)
	})

	l := ledger.New(chain.NetworkRegtest)
	l.Fund(testAddr(0x0a), 5000)
	l.MintAsset(testAddr(0x0b))
	_, err := l.AdvanceRounds(7)
	s.Require().NoError(err)
	s.tx(func(tx Transactor) {
		s.Require().NoError(SaveLedger(tx, l.Snapshot()))
	})

	l.Fund(testAddr(0x0c), 1)
	s.tx(func(tx Transactor) {
		s.Require().NoError(SaveLedger(tx, l.Snapshot()))
		snap, err := LoadLedger(tx)
		s.Require().NoError(err)
		s.Require().Equal(l.Snapshot(), snap)
	})
}

func (s *AuctionDBSuite) TestNonces() {
	sender := testAddr(0x0a)
	s.tx(func(tx Transactor) {
		s.Require().NoError(UseNonce(tx, "n1", sender))
		s.Require().True(errors.Is(UseNonce(tx, "n1", sender), ErrNonceUsed))
		s.Require().NoError(UseNonce(tx, "n2", sender))
		nonces, err := ListNonces(tx)
		s.Require().NoError(err)
		s.Require().ElementsMatch([]string{"n1", "n2"}, nonces)
	})
}

func (s *AuctionDBSuite) TestView() {
	s.tx(func(tx Transactor) {
		s.Require().NoError(CreateAuction(tx, testAuction("a1")))
	})

	var got *Auction
	s.Require().NoError(s.engine.View(func(tx Transactor) error {
		var err error
		got, err = GetAuction(tx, "a1")
		return err
	}))
	s.Require().Equal("a1", got.ID)

	err := s.engine.View(func(tx Transactor) error {
		_, err := GetAuction(tx, "missing")
		return err
	})
	s.Require().ErrorIs(err, ErrNotFound)
}

func TestAuctionDBSuite(t *testing.T) {
	suite.Run(t, new(AuctionDBSuite))
}

func TestNewEngine_BadPath(t *testing.T) {
	_, err := NewEngine("/nonexistent/dir")
	require.Error(t, err)
}
