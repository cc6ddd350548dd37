package api

import (
	"github.com/gorilla/mux"
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/node"
	"github.com/pkg/errors"
	"net/http"
)

func auctionID(r *http.Request) string {
	return mux.Vars(r)["auctionID"]
}

func (a *API) HandleAuctionsGET(w http.ResponseWriter, r *http.Request) {
	auctions, err := a.node.ListAuctions()
	if err != nil {
		WriteError(w, err)
		return
	}
	MarshalResponseJSON(w, paginate(auctions, r))
}

func (a *API) HandleAuctionsPOST(w http.ResponseWriter, r *http.Request) {
	req := new(CreateAuctionReq)
	sender, ok := a.verify(w, r, ActionCreateAuction, "", req)
	if !ok {
		return
	}
	if req.Params == nil {
		MarshalErrorJSON(w, errors.New("params are required"), http.StatusBadRequest)
		return
	}
	info, err := a.node.CreateAuction(sender, req.Params)
	if err != nil {
		WriteError(w, err)
		return
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	MarshalResponseJSON(w, info)
}

func (a *API) HandleAuctionGET(w http.ResponseWriter, r *http.Request) {
	info, err := a.node.GetAuction(auctionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	MarshalResponseJSON(w, info)
}

func (a *API) HandleAuctionLogsGET(w http.ResponseWriter, r *http.Request) {
	logs, err := a.node.Logs(auctionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	MarshalResponseJSON(w, logs)
}

func (a *API) HandleAuctionTransfersGET(w http.ResponseWriter, r *http.Request) {
	transfers, err := a.node.Transfers(auctionID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	MarshalResponseJSON(w, transfers)
}

type callHandler func(id string, sender *chain.Address) (*node.CallResult, error)

// handleCall verifies the signed request, then runs cb as its sender.
func (a *API) handleCall(w http.ResponseWriter, r *http.Request, action string, req SignedPayload, cb callHandler) {
	id := auctionID(r)
	sender, ok := a.verify(w, r, action, id, req)
	if !ok {
		return
	}
	res, err := cb(id, sender)
	if err != nil {
		WriteError(w, err)
		return
	}
	MarshalResponseJSON(w, res)
}

func (a *API) HandleSetupPOST(w http.ResponseWriter, r *http.Request) {
	a.handleCall(w, r, ActionSetup, new(CallHeader), a.node.Setup)
}

func (a *API) HandleBidsPOST(w http.ResponseWriter, r *http.Request) {
	req := new(BidReq)
	a.handleCall(w, r, ActionBid, req, func(id string, sender *chain.Address) (*node.CallResult, error) {
		return a.node.Bid(id, sender, req.Amount)
	})
}

func (a *API) HandleCommitsPOST(w http.ResponseWriter, r *http.Request) {
	req := new(CommitReq)
	a.handleCall(w, r, ActionCommit, req, func(id string, sender *chain.Address) (*node.CallResult, error) {
		return a.node.Commit(id, sender, req.Commitment, req.Deposit)
	})
}

func (a *API) HandleRevealsPOST(w http.ResponseWriter, r *http.Request) {
	req := new(RevealReq)
	a.handleCall(w, r, ActionReveal, req, func(id string, sender *chain.Address) (*node.CallResult, error) {
		return a.node.Reveal(id, sender, req.Value, req.BidNonce)
	})
}

func (a *API) HandleClearsPOST(w http.ResponseWriter, r *http.Request) {
	a.handleCall(w, r, ActionClear, new(CallHeader), a.node.Clear)
}

func (a *API) HandleSellerPayoutsPOST(w http.ResponseWriter, r *http.Request) {
	a.handleCall(w, r, ActionPaySeller, new(CallHeader), a.node.PaySeller)
}

func (a *API) HandleWinnerPayoutsPOST(w http.ResponseWriter, r *http.Request) {
	a.handleCall(w, r, ActionPayWinner, new(CallHeader), a.node.PayWinner)
}

func (a *API) HandleAuctionDELETE(w http.ResponseWriter, r *http.Request) {
	a.handleCall(w, r, ActionTeardown, new(CallHeader), a.node.Teardown)
}
