package cmd

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestRoundArg(t *testing.T) {
	tests := []struct {
		in  string
		out uint64
		err bool
	}{
		{"", 0, false},
		{"15", 15, false},
		{"+5", 105, false},
		{"+x", 0, true},
		{"-5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			out, err := roundArg(tt.in, 100)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.out, out)
		})
	}
}

func TestAuctionCommands(t *testing.T) {
	var names []string
	for _, c := range auctionCmd.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t, []string{
		"create", "show", "list", "mine", "logs", "transfers", "setup", "bid",
		"commit", "reveal", "clear", "pay-seller", "pay-winner", "teardown",
	}, names)
}
