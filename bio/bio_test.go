package bio

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"github.com/stretchr/testify/require"
	"io"
	"math"
	"testing"
)

func TestUvarint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n    uint64
		size int64
	}{
		{0, 1},
		{127, 1},
		{128, 2},
		{math.MaxUint16, 3},
		{math.MaxUint32, 5},
		{math.MaxUint64, 10},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.n), func(t *testing.T) {
			buf := new(bytes.Buffer)
			w := NewWriter(buf)
			w.Uvarint(tt.n)
			require.NoError(t, w.Err)
			require.Equal(t, tt.size, w.N)

			r := NewReader(buf)
			require.Equal(t, tt.n, r.Uvarint())
			require.NoError(t, r.Err)
			require.Equal(t, tt.size, r.N)
		})
	}
}

func TestUint64BE(t *testing.T) {
	require.Equal(t, "00000000000186a0", hex.EncodeToString(Uint64BE(100000)))
	require.Equal(t, "ffffffffffffffff", hex.EncodeToString(Uint64BE(math.MaxUint64)))
}

func TestFields(t *testing.T) {
	buf := new(bytes.Buffer)
	w := NewWriter(buf)
	w.Byte(0x07)
	w.Uint64(42)
	w.VarBytes([]byte{0xaa, 0xbb})
	w.VarString("bid")
	require.NoError(t, w.Err)

	r := NewReader(buf)
	require.EqualValues(t, 0x07, r.Byte())
	require.EqualValues(t, 42, r.Uint64())
	require.Equal(t, []byte{0xaa, 0xbb}, r.VarBytes())
	require.Equal(t, "bid", r.VarString())
	require.NoError(t, r.Err)
	require.Equal(t, w.N, r.N)
}

func TestReaderErrors(t *testing.T) {
	t.Run("truncated", func(t *testing.T) {
		r := NewReader(bytes.NewReader([]byte{0x05, 0x01}))
		require.Nil(t, r.VarBytes())
		require.ErrorIs(t, r.Err, io.ErrUnexpectedEOF)
		require.EqualValues(t, 0, r.Uint64())
	})

	t.Run("too long", func(t *testing.T) {
		buf := new(bytes.Buffer)
		NewWriter(buf).Uvarint(MaxVarBytes + 1)
		r := NewReader(buf)
		require.Nil(t, r.VarBytes())
		require.ErrorIs(t, r.Err, ErrTooLong)
	})
}

func TestWriterStopsAfterError(t *testing.T) {
	w := NewWriter(&failingWriter{})
	w.VarBytes([]byte{0x01, 0x02})
	require.Error(t, w.Err)
	w.Byte(0x03)
	require.EqualValues(t, 0, w.N)
}

type failingWriter struct{}

func (f *failingWriter) Write(b []byte) (int, error) {
	return 0, fmt.Errorf("boom")
}
