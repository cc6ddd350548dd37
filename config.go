package hammer

import (
	"fmt"
	"github.com/kurumiimari/hammer/chain"
)

// config is the resolved command-line configuration shared by every
// hammer subcommand.
type config struct {
	Network      *chain.Network
	Prefix       string
	DataDir      string
	ServerURL    string
	APIKey       string
	KeyName      string
	AccountIndex uint32
}

var Config = new(config)

// APIURL is the node API to talk to. It defaults to the local node on
// the selected network's port.
func (c *config) APIURL() string {
	if c.ServerURL != "" {
		return c.ServerURL
	}
	return fmt.Sprintf("http://localhost:%d", c.Network.APIPort)
}
