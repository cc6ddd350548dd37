package api

import (
	"encoding/json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/kurumiimari/hammer/auction"
	"github.com/kurumiimari/hammer/auctiondb"
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/ledger"
	"github.com/kurumiimari/hammer/log"
	"github.com/kurumiimari/hammer/node"
	"github.com/pkg/errors"
	"net/http"
)

var apiLogger = log.ModuleLogger("api")

type ErrorResponse struct {
	Msg  string `json:"msg"`
	Kind string `json:"kind,omitempty"`
}

var invalidJSONRes = &ErrorResponse{
	Msg: "Mal-formed JSON payload.",
}

func UnmarshalRequestJSON(w http.ResponseWriter, r *http.Request, in interface{}) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(in); err == nil {
		return true
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	MarshalResponseJSON(w, invalidJSONRes)
	return false
}

func MarshalErrorJSON(w http.ResponseWriter, err error, code int) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)
	if code >= 500 {
		apiLogger.Error("error handling request", "err", err)
	} else {
		apiLogger.Debug("rejected request", "err", err, "code", code)
	}

	res := &ErrorResponse{Msg: err.Error()}
	if kind := auction.Kind(err); kind != nil {
		res.Kind = kind.Error()
	}
	MarshalResponseJSON(w, res)
}

// WriteError picks the status code for err from its kind.
func WriteError(w http.ResponseWriter, err error) {
	MarshalErrorJSON(w, err, StatusCode(err))
}

func StatusCode(err error) int {
	switch {
	case errors.Is(err, auctiondb.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chain.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, auction.ErrAuthorization),
		errors.Is(err, node.ErrClockLocked),
		errors.Is(err, node.ErrFaucetDisabled):
		return http.StatusForbidden
	case errors.Is(err, auction.ErrPhase),
		errors.Is(err, auction.ErrAlreadySettled),
		errors.Is(err, auction.ErrIneligibleTeardown),
		errors.Is(err, auctiondb.ErrNonceUsed):
		return http.StatusConflict
	case errors.Is(err, auction.ErrSchedule),
		errors.Is(err, auction.ErrConsistency),
		errors.Is(err, auction.ErrCommitment),
		errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrAssetNotHeld),
		errors.Is(err, ledger.ErrUnknownAsset),
		errors.Is(err, ledger.ErrRoundOverflow):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func MarshalResponseJSON(w http.ResponseWriter, out interface{}) {
	data, err := json.Marshal(out)
	if err != nil {
		apiLogger.Error("error marshaling JSON response", "err", err)
		return
	}
	if _, err := w.Write(data); err != nil {
		apiLogger.Warning("error writing JSON response")
	}
}

type API struct {
	network *chain.Network
	node    *node.Node
	apiKey  string
}

func NewAPI(network *chain.Network, n *node.Node, apiKey string) http.Handler {
	api := &API{
		network: network,
		node:    n,
		apiKey:  apiKey,
	}
	r := mux.NewRouter()
	r.Use(api.apiKeyMiddleware)
	v1 := r.PathPrefix("/api/v1").Subrouter()
	getOnly(v1.HandleFunc("/status", api.Status))
	jsonPostOnly(v1.HandleFunc("/rounds", api.HandleRoundsPOST))
	jsonPostOnly(v1.HandleFunc("/faucet", api.HandleFaucetPOST))
	jsonPostOnly(v1.HandleFunc("/assets", api.HandleAssetsPOST))
	getOnly(v1.HandleFunc("/assets/{assetID:[0-9]+}", api.HandleAssetGET))
	getOnly(v1.HandleFunc("/accounts/{address}", api.HandleAccountGET))
	getOnly(v1.HandleFunc("/accounts/{address}/auctions", api.HandleAccountAuctionsGET))
	getOnly(v1.HandleFunc("/auctions", api.HandleAuctionsGET))
	jsonPostOnly(v1.HandleFunc("/auctions", api.HandleAuctionsPOST))
	auctions := v1.PathPrefix("/auctions/{auctionID}").Subrouter()
	getOnly(auctions.HandleFunc("", api.HandleAuctionGET))
	jsonDeleteOnly(auctions.HandleFunc("", api.HandleAuctionDELETE))
	getOnly(auctions.HandleFunc("/logs", api.HandleAuctionLogsGET))
	getOnly(auctions.HandleFunc("/transfers", api.HandleAuctionTransfersGET))
	jsonPostOnly(auctions.HandleFunc("/setup", api.HandleSetupPOST))
	jsonPostOnly(auctions.HandleFunc("/bids", api.HandleBidsPOST))
	jsonPostOnly(auctions.HandleFunc("/commits", api.HandleCommitsPOST))
	jsonPostOnly(auctions.HandleFunc("/reveals", api.HandleRevealsPOST))
	jsonPostOnly(auctions.HandleFunc("/clears", api.HandleClearsPOST))
	jsonPostOnly(auctions.HandleFunc("/seller_payouts", api.HandleSellerPayoutsPOST))
	jsonPostOnly(auctions.HandleFunc("/winner_payouts", api.HandleWinnerPayoutsPOST))
	return r
}

func (a *API) Status(w http.ResponseWriter, r *http.Request) {
	status, err := a.node.Status()
	if err != nil {
		WriteError(w, err)
		return
	}
	MarshalResponseJSON(w, status)
}

func (a *API) HandleRoundsPOST(w http.ResponseWriter, r *http.Request) {
	req := new(AdvanceRoundsReq)
	if !UnmarshalRequestJSON(w, r, req) {
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}
	round, err := a.node.AdvanceRounds(req.Count)
	if err != nil {
		WriteError(w, err)
		return
	}
	MarshalResponseJSON(w, &AdvanceRoundsRes{Round: round})
}

func (a *API) HandleFaucetPOST(w http.ResponseWriter, r *http.Request) {
	req := new(FaucetReq)
	if !UnmarshalRequestJSON(w, r, req) {
		return
	}
	if req.Address == nil {
		MarshalErrorJSON(w, errors.New("address is required"), http.StatusBadRequest)
		return
	}
	bal, err := a.node.Fund(req.Address)
	if err != nil {
		WriteError(w, err)
		return
	}
	MarshalResponseJSON(w, &AccountRes{
		Address: req.Address,
		Balance: bal,
	})
}

// verify checks a signed envelope and consumes its nonce. The payload
// must name the action and auction of the endpoint it was sent to.
func (a *API) verify(w http.ResponseWriter, r *http.Request, action, auctionID string, req SignedPayload) (*chain.Address, bool) {
	env := new(SignedRequest)
	if !UnmarshalRequestJSON(w, r, env) {
		return nil, false
	}
	sender, err := chain.VerifyCall(env.PubKey, env.Signature, env.Payload)
	if err != nil {
		WriteError(w, err)
		return nil, false
	}

	if err := json.Unmarshal(env.Payload, req); err != nil {
		MarshalErrorJSON(w, errors.Wrap(err, "mal-formed payload"), http.StatusBadRequest)
		return nil, false
	}
	h := req.header()
	if h.Action != action || h.AuctionID != auctionID {
		MarshalErrorJSON(w, errors.Errorf("payload is for %s %s", h.Action, h.AuctionID), http.StatusBadRequest)
		return nil, false
	}
	if _, err := uuid.Parse(h.Nonce); err != nil {
		MarshalErrorJSON(w, errors.Wrap(err, "invalid nonce"), http.StatusBadRequest)
		return nil, false
	}
	if err := a.node.UseNonce(h.Nonce, sender); err != nil {
		WriteError(w, err)
		return nil, false
	}
	return sender, true
}

func (a *API) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.apiKey == "" {
			next.ServeHTTP(w, r)
			return
		}

		providedKey := r.Header.Get("X-API-Key")
		if providedKey != a.apiKey {
			MarshalErrorJSON(w, errors.New("invalid API key"), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func getOnly(route *mux.Route) {
	route.Methods("GET")
}

func jsonPostOnly(route *mux.Route) {
	route.Methods("POST").
		Headers("Content-Type", "application/json")
}

func jsonDeleteOnly(route *mux.Route) {
	route.Methods("DELETE").
		Headers("Content-Type", "application/json")
}
