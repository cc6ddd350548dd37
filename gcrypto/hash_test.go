package gcrypto

import (
	"encoding/json"
	"github.com/kurumiimari/hammer/testutil"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestHash_JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Hash
		out  string
	}{
		{"commitment", Hash{0xde, 0xad, 0xbe, 0xef}, `"deadbeef"`},
		{"empty commitment", Hash{}, "null"},
		{"no commitment", nil, "null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := json.Marshal(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.out, string(j))
			var h Hash
			require.NoError(t, json.Unmarshal(j, &h))
			require.True(t, tt.in.Equal(h))
		})
	}

	var h Hash
	require.Error(t, json.Unmarshal([]byte(`"zz"`), &h))
}

func TestHash_IsZero(t *testing.T) {
	require.True(t, Hash(nil).IsZero())
	require.True(t, make(Hash, DigestSize).IsZero())
	require.False(t, Hash{0x00, 0x01}.IsZero())
}

func TestDigests(t *testing.T) {
	t.Run("sha256 concatenates its inputs", func(t *testing.T) {
		testutil.RequireEqualHexBytes(
			t,
			"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
			SHA256([]byte("a"), []byte("bc")),
		)
	})

	t.Run("blake256", func(t *testing.T) {
		testutil.RequireEqualHexBytes(
			t,
			"bddd813c634239723171ef3fee98579b94964e3bb1cb3e427262c8c068d52319",
			Blake256([]byte("abc")),
		)
	})

	t.Run("blake160 is an address-sized digest", func(t *testing.T) {
		h := Blake160([]byte("abc"))
		require.Len(t, h, 20)
		require.False(t, h.Equal(Blake256([]byte("abc"))[:20]))
	})
}

func TestHash_Scan(t *testing.T) {
	var h Hash
	require.NoError(t, h.Scan("deadbeef"))
	require.Equal(t, "deadbeef", h.String())
	require.NoError(t, h.Scan([]byte("cafe")))
	require.Equal(t, Hash{0xca, 0xfe}, h)
	v, err := h.Value()
	require.NoError(t, err)
	require.Equal(t, "cafe", v)
	require.NoError(t, h.Scan(nil))
	require.Nil(t, h)
	require.Error(t, h.Scan(42))
	require.Error(t, h.Scan("xyz"))
}
