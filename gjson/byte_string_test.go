package gjson

import (
	"encoding/json"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestByteString(t *testing.T) {
	out, err := json.Marshal(ByteString{0xde, 0xad})
	require.NoError(t, err)
	require.Equal(t, `"dead"`, string(out))

	tests := []struct {
		in  string
		exp []byte
		err bool
	}{
		{`"beef"`, []byte{0xbe, 0xef}, false},
		{`"0xbeef"`, []byte{0xbe, 0xef}, false},
		{`""`, []byte{}, false},
		{`"zz"`, nil, true},
		{`12`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var b ByteString
			err := json.Unmarshal([]byte(tt.in), &b)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.exp, []byte(b))
		})
	}
}
