package api

import (
	"fmt"
	"github.com/kurumiimari/hammer/auctiondb"
	"github.com/kurumiimari/hammer/chain"
	"github.com/kurumiimari/hammer/keystore"
	"github.com/kurumiimari/hammer/node"
	"github.com/pkg/errors"
	"gopkg.in/tomb.v2"
	"net/http"
)

// Start opens the network's database under prefix and serves the API
// until tmb dies.
func Start(tmb *tomb.Tomb, network *chain.Network, prefix, apiKey string) error {
	chain.SetCurrNetwork(network)
	dd, err := keystore.NewDataDir(prefix)
	if err != nil {
		return err
	}
	if err := dd.EnsureNetwork(network.Name); err != nil {
		return err
	}
	engine, err := auctiondb.NewEngine(dd.NetworkPath(network.Name))
	if err != nil {
		return err
	}
	defer engine.Close()

	if err := auctiondb.MigrateDB(engine); err != nil {
		return err
	}

	n := node.NewNode(tmb, network, engine)
	if err := n.Start(); err != nil {
		return errors.Wrap(err, "error starting node")
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", network.APIPort),
		Handler: NewAPI(network, n, apiKey),
	}

	tmb.Go(func() error {
		apiLogger.Info("starting HTTP server", "port", network.APIPort)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "error starting HTTP server")
		}
		return nil
	})

	apiLogger.Info("started node")
	<-tmb.Dying()
	srv.Close()
	apiLogger.Info("shut down node")
	return tmb.Err()
}
