package api

import (
	"github.com/gorilla/mux"
	"github.com/kurumiimari/hammer/chain"
	"github.com/pkg/errors"
	"net/http"
	"strconv"
)

func addressParam(w http.ResponseWriter, r *http.Request) (*chain.Address, bool) {
	addr, err := chain.NewAddressFromBech32(mux.Vars(r)["address"])
	if err != nil {
		MarshalErrorJSON(w, errors.Wrap(err, "invalid address"), http.StatusBadRequest)
		return nil, false
	}
	return addr, true
}

func (a *API) HandleAccountGET(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r)
	if !ok {
		return
	}
	MarshalResponseJSON(w, &AccountRes{
		Address: addr,
		Balance: a.node.Balance(addr),
	})
}

func (a *API) HandleAccountAuctionsGET(w http.ResponseWriter, r *http.Request) {
	addr, ok := addressParam(w, r)
	if !ok {
		return
	}
	auctions, err := a.node.AuctionsFor(addr)
	if err != nil {
		WriteError(w, err)
		return
	}
	MarshalResponseJSON(w, paginate(auctions, r))
}

func (a *API) HandleAssetsPOST(w http.ResponseWriter, r *http.Request) {
	req := new(MintAssetReq)
	sender, ok := a.verify(w, r, ActionMintAsset, "", req)
	if !ok {
		return
	}
	id, err := a.node.MintAsset(sender)
	if err != nil {
		WriteError(w, err)
		return
	}
	MarshalResponseJSON(w, &AssetRes{
		AssetID: id,
		Holder:  sender,
	})
}

func (a *API) HandleAssetGET(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["assetID"], 10, 64)
	if err != nil {
		MarshalErrorJSON(w, errors.Wrap(err, "invalid asset ID"), http.StatusBadRequest)
		return
	}
	holder := a.node.AssetHolder(id)
	if holder == nil {
		MarshalErrorJSON(w, errors.Errorf("asset %d not found", id), http.StatusNotFound)
		return
	}
	MarshalResponseJSON(w, &AssetRes{
		AssetID: id,
		Holder:  holder,
	})
}
