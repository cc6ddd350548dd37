package api

import (
	"fmt"
	"github.com/btcsuite/btcd/btcec"
	"github.com/kurumiimari/hammer/auction"
	"github.com/kurumiimari/hammer/auctiondb"
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/gcrypto"
	"github.com/kurumiimari/hammer/ghttp"
	"github.com/kurumiimari/hammer/node"
	"strings"
)

type Client struct {
	url    string
	apiKey string
}

func NewClient(url string, apiKey string) *Client {
	return &Client{
		url:    strings.TrimSuffix(url, "/"),
		apiKey: apiKey,
	}
}

func (c *Client) Status() (*node.NodeStatus, error) {
	res := new(node.NodeStatus)
	err := c.doGet("api/v1/status", res)
	return res, err
}

func (c *Client) AdvanceRounds(count uint64) (uint64, error) {
	res := new(AdvanceRoundsRes)
	err := c.doPost("api/v1/rounds", &AdvanceRoundsReq{Count: count}, res)
	return res.Round, err
}

func (c *Client) Faucet(addr *chain.Address) (*AccountRes, error) {
	res := new(AccountRes)
	err := c.doPost("api/v1/faucet", &FaucetReq{Address: addr}, res)
	return res, err
}

func (c *Client) Account(addr *chain.Address) (*AccountRes, error) {
	res := new(AccountRes)
	err := c.doGet(fmt.Sprintf("api/v1/accounts/%s", addr), res)
	return res, err
}

func (c *Client) AccountAuctions(addr *chain.Address) ([]*node.AuctionInfo, error) {
	var res []*node.AuctionInfo
	err := c.doGet(fmt.Sprintf("api/v1/accounts/%s/auctions", addr), &res)
	return res, err
}

func (c *Client) MintAsset(key *btcec.PrivateKey) (*AssetRes, error) {
	res := new(AssetRes)
	err := c.doSigned("POST", "api/v1/assets", key, &MintAssetReq{
		CallHeader: NewCallHeader(ActionMintAsset, ""),
	}, res)
	return res, err
}

func (c *Client) Asset(assetID uint64) (*AssetRes, error) {
	res := new(AssetRes)
	err := c.doGet(fmt.Sprintf("api/v1/assets/%d", assetID), res)
	return res, err
}

func (c *Client) CreateAuction(key *btcec.PrivateKey, params *auction.Params) (*node.AuctionInfo, error) {
	res := new(node.AuctionInfo)
	err := c.doSigned("POST", "api/v1/auctions", key, &CreateAuctionReq{
		CallHeader: NewCallHeader(ActionCreateAuction, ""),
		Params:     params,
	}, res)
	return res, err
}

func (c *Client) Auctions(count, offset int) ([]*node.AuctionInfo, error) {
	var res []*node.AuctionInfo
	err := c.doGet(fmt.Sprintf("api/v1/auctions?%s", PaginationQuery(count, offset).Encode()), &res)
	return res, err
}

func (c *Client) Auction(id string) (*node.AuctionInfo, error) {
	res := new(node.AuctionInfo)
	err := c.doGet(c.auctionPath(id), res)
	return res, err
}

func (c *Client) Logs(id string) ([]*auctiondb.LogEntry, error) {
	var res []*auctiondb.LogEntry
	err := c.doGet(c.auctionPath(id, "logs"), &res)
	return res, err
}

func (c *Client) Transfers(id string) ([]*auctiondb.Transfer, error) {
	var res []*auctiondb.Transfer
	err := c.doGet(c.auctionPath(id, "transfers"), &res)
	return res, err
}

func (c *Client) Setup(key *btcec.PrivateKey, id string) (*node.CallResult, error) {
	return c.call(key, id, "setup", ActionSetup)
}

func (c *Client) Bid(key *btcec.PrivateKey, id string, amount uint64) (*node.CallResult, error) {
	res := new(node.CallResult)
	err := c.doSigned("POST", c.auctionPath(id, "bids"), key, &BidReq{
		CallHeader: NewCallHeader(ActionBid, id),
		Amount:     amount,
	}, res)
	return res, err
}

func (c *Client) Commit(key *btcec.PrivateKey, id string, commitment gcrypto.Hash, deposit uint64) (*node.CallResult, error) {
	res := new(node.CallResult)
	err := c.doSigned("POST", c.auctionPath(id, "commits"), key, &CommitReq{
		CallHeader: NewCallHeader(ActionCommit, id),
		Commitment: commitment,
		Deposit:    deposit,
	}, res)
	return res, err
}

func (c *Client) Reveal(key *btcec.PrivateKey, id string, value, nonce uint64) (*node.CallResult, error) {
	res := new(node.CallResult)
	err := c.doSigned("POST", c.auctionPath(id, "reveals"), key, &RevealReq{
		CallHeader: NewCallHeader(ActionReveal, id),
		Value:      value,
		BidNonce:   nonce,
	}, res)
	return res, err
}

func (c *Client) Clear(key *btcec.PrivateKey, id string) (*node.CallResult, error) {
	return c.call(key, id, "clears", ActionClear)
}

func (c *Client) PaySeller(key *btcec.PrivateKey, id string) (*node.CallResult, error) {
	return c.call(key, id, "seller_payouts", ActionPaySeller)
}

func (c *Client) PayWinner(key *btcec.PrivateKey, id string) (*node.CallResult, error) {
	return c.call(key, id, "winner_payouts", ActionPayWinner)
}

func (c *Client) Teardown(key *btcec.PrivateKey, id string) (*node.CallResult, error) {
	res := new(node.CallResult)
	h := NewCallHeader(ActionTeardown, id)
	err := c.doSigned("DELETE", c.auctionPath(id), key, &h, res)
	return res, err
}

func (c *Client) call(key *btcec.PrivateKey, id, path, action string) (*node.CallResult, error) {
	res := new(node.CallResult)
	h := NewCallHeader(action, id)
	err := c.doSigned("POST", c.auctionPath(id, path), key, &h, res)
	return res, err
}

func (c *Client) doSigned(method, path string, key *btcec.PrivateKey, payload SignedPayload, resObj interface{}) error {
	req, err := SignRequest(key, payload)
	if err != nil {
		return err
	}
	return ghttp.DefaultClient.DoJSON(method, c.fullURL(path), req, resObj, c.opts()...)
}

func (c *Client) doGet(path string, resObj interface{}) error {
	return ghttp.DefaultClient.DoGetJSON(c.fullURL(path), resObj, c.opts()...)
}

func (c *Client) doPost(path string, reqObj interface{}, resObj interface{}) error {
	return ghttp.DefaultClient.DoPostJSON(c.fullURL(path), reqObj, resObj, c.opts()...)
}

func (c *Client) fullURL(path string) string {
	return fmt.Sprintf("%s/%s", c.url, path)
}

func (c *Client) opts() []ghttp.RequestOption {
	return []ghttp.RequestOption{
		ghttp.WithHeader("X-API-Key", c.apiKey),
	}
}

func (c *Client) auctionPath(id string, suffixes ...string) string {
	return strings.Join(append([]string{"api/v1/auctions", id}, suffixes...), "/")
}
