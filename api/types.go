package api

import (
	"encoding/json"
	"github.com/btcsuite/btcd/btcec"
	"github.com/google/uuid"
	"github.com/kurumiimari/hammer/auction"
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/gcrypto"
	"github.com/kurumiimari/hammer/gjson"
	"github.com/pkg/errors"
)

const (
	ActionMintAsset     = "mint_asset"
	ActionCreateAuction = "create_auction"
	ActionSetup         = "setup"
	ActionBid           = "bid"
	ActionCommit        = "commit"
	ActionReveal        = "reveal"
	ActionClear         = "clear"
	ActionPaySeller     = "pay_seller"
	ActionPayWinner     = "pay_winner"
	ActionTeardown      = "teardown"
)

// SignedRequest wraps the payload of every mutating request. The sender
// is the address of PubKey.
type SignedRequest struct {
	Payload   gjson.ByteString `json:"payload"`
	PubKey    gjson.ByteString `json:"pubkey"`
	Signature gjson.ByteString `json:"signature"`
}

// CallHeader is embedded in every signed payload. Nonces are single use.
type CallHeader struct {
	Nonce     string `json:"nonce"`
	Action    string `json:"action"`
	AuctionID string `json:"auction_id,omitempty"`
}

func NewCallHeader(action, auctionID string) CallHeader {
	return CallHeader{
		Nonce:     uuid.New().String(),
		Action:    action,
		AuctionID: auctionID,
	}
}

func (h *CallHeader) header() *CallHeader {
	return h
}

type SignedPayload interface {
	header() *CallHeader
}

func SignRequest(key *btcec.PrivateKey, payload SignedPayload) (*SignedRequest, error) {
	payloadB, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding payload")
	}
	sig, err := chain.SignCall(key, payloadB)
	if err != nil {
		return nil, err
	}
	return &SignedRequest{
		Payload:   payloadB,
		PubKey:    key.PubKey().SerializeCompressed(),
		Signature: sig,
	}, nil
}

type AdvanceRoundsReq struct {
	Count uint64 `json:"count"`
}

type AdvanceRoundsRes struct {
	Round uint64 `json:"round"`
}

type FaucetReq struct {
	Address *chain.Address `json:"address"`
}

type AccountRes struct {
	Address *chain.Address `json:"address"`
	Balance uint64         `json:"balance"`
}

type MintAssetReq struct {
	CallHeader
}

type AssetRes struct {
	AssetID uint64         `json:"asset_id"`
	Holder  *chain.Address `json:"holder"`
}

type CreateAuctionReq struct {
	CallHeader
	Params *auction.Params `json:"params"`
}

type BidReq struct {
	CallHeader
	Amount uint64 `json:"amount"`
}

type CommitReq struct {
	CallHeader
	Commitment gcrypto.Hash `json:"commitment"`
	Deposit    uint64       `json:"deposit"`
}

type RevealReq struct {
	CallHeader
	Value    uint64 `json:"value"`
	BidNonce uint64 `json:"bid_nonce"`
}
