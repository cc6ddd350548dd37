package sim

import (
	"github.com/kurumiimari/hammer/chain"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestRun(t *testing.T) {
	tests := []struct {
		scenario string
		winner   string
		price    uint64
		balances map[string]uint64
	}{
		{
			"open",
			"carol",
			200000,
			map[string]uint64{
				"alice":   997000,
				"bob":     997000,
				"carol":   797000,
				"seller":  1192000,
				"creator": 999000,
				"escrow":  0,
			},
		},
		{
			"sealed-second-price",
			"bob",
			200000,
			map[string]uint64{
				"alice": 1000000 - 201000 - 2000 + 199000,
				"bob":   1000000 - 351000 - 3000 + 149000,
				"carol": 1000000 - 91000 - 2000 + 89000,
			},
		},
		{
			"overcollateralized-undercollateralized-bids",
			"alice",
			100000,
			map[string]uint64{
				"alice":  895000,
				"bob":    996000,
				"seller": 1094000,
			},
		},
		{
			"overcollateralized-tied-bids",
			"alice",
			200000,
			map[string]uint64{
				"alice": 796000,
				"bob":   1000000 - 291000 - 2000 + 289000,
			},
		},
		{
			"overcollateralized-clear",
			"carol",
			250000,
			map[string]uint64{
				"alice": 1000000 - 301000 - 2000 + 299000,
				"carol": 746000,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.scenario, func(t *testing.T) {
			sc := ScenarioByName(tt.scenario)
			require.NotNil(t, sc)
			report, err := Run(chain.NetworkRegtest, sc)
			require.NoError(t, err)
			require.Equal(t, tt.winner, report.Winner)
			require.Equal(t, tt.price, report.Price)
			require.Equal(t, tt.winner, report.AssetHolder)
			for name, bal := range tt.balances {
				require.Equal(t, bal, report.Balances[name], name)
			}
			require.Zero(t, report.Balances["escrow"])

			last := report.Events[len(report.Events)-1]
			require.Equal(t, "teardown", last.Method)
			require.Empty(t, last.Err)
		})
	}
}

func TestRun_EarlyTeardownRejected(t *testing.T) {
	report, err := Run(chain.NetworkRegtest, ScenarioByName("open"))
	require.NoError(t, err)

	var teardowns []*Event
	for _, ev := range report.Events {
		if ev.Method == "teardown" {
			teardowns = append(teardowns, ev)
		}
	}
	require.Len(t, teardowns, 2)
	require.Contains(t, teardowns[0].Err, "not eligible")
	require.Empty(t, teardowns[1].Err)
}

func TestRun_RejectedBidRecorded(t *testing.T) {
	report, err := Run(chain.NetworkRegtest, ScenarioByName("open"))
	require.NoError(t, err)

	var rejected []*Event
	for _, ev := range report.Events {
		if ev.Method == "bid" && ev.Err != "" {
			rejected = append(rejected, ev)
		}
	}
	require.Len(t, rejected, 1)
	require.Equal(t, "bob", rejected[0].Actor)
	require.Equal(t, "value=155000", rejected[0].Detail)
}

func TestScenarioByName(t *testing.T) {
	require.Nil(t, ScenarioByName("nope"))
	for _, sc := range Scenarios {
		require.Equal(t, sc, ScenarioByName(sc.Name))
	}
}
