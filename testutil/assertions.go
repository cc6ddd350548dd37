package testutil

import (
	"encoding/hex"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"testing"
)

func RequireEqualHexBytes(t *testing.T, exp string, act []byte) {
	require.Equal(t, exp, hex.EncodeToString(act))
}

// RequireErrorIs fails unless err matches every target in its chain.
func RequireErrorIs(t *testing.T, err error, targets ...error) {
	require.Error(t, err)
	for _, target := range targets {
		require.Truef(t, errors.Is(err, target), "expected %v to match %v", err, target)
	}
}
