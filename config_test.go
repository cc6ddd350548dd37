package hammer

import (
	"github.com/kurumiimari/hammer/chain"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestConfig_APIURL(t *testing.T) {
	c := &config{Network: chain.NetworkRegtest}
	require.Equal(t, "http://localhost:15039", c.APIURL())
	c.ServerURL = "http://10.0.0.2:9000"
	require.Equal(t, "http://10.0.0.2:9000", c.APIURL())
}
