package chain

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in  string
		out uint64
		ok  bool
	}{
		{"0.35", 350000, true},
		{"1", 1000000, true},
		{"0.000001", 1, true},
		{"0.0000001", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"18446744073709.551615", 18446744073709551615, true},
		{"18446744073709.551616", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			out, err := ParseAmount(tt.in)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.out, out)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "0.350000", FormatAmount(350000))
	require.Equal(t, "0.000000", FormatAmount(0))
	require.Equal(t, "12.000001", FormatAmount(12000001))
}
