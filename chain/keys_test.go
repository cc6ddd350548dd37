package chain

import (
	"github.com/stretchr/testify/require"
	"testing"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestKeyRingDeterministic(t *testing.T) {
	SetCurrNetwork(NetworkRegtest)
	ring, err := NewKeyRingFromMnemonic(testMnemonic, "", NetworkRegtest)
	require.NoError(t, err)
	other, err := NewKeyRingFromMnemonic(testMnemonic, "", NetworkRegtest)
	require.NoError(t, err)

	a0, err := ring.Address(0)
	require.NoError(t, err)
	b0, err := other.Address(0)
	require.NoError(t, err)
	a1, err := ring.Address(1)
	require.NoError(t, err)

	require.True(t, a0.Equal(b0))
	require.False(t, a0.Equal(a1))

	_, err = ring.PrivateKey(HardenNode(1))
	require.Error(t, err)
}

func TestKeyRingInvalidMnemonic(t *testing.T) {
	_, err := NewKeyRingFromMnemonic("not a mnemonic", "", NetworkRegtest)
	require.Error(t, err)
}

func TestSignAndVerifyCall(t *testing.T) {
	SetCurrNetwork(NetworkRegtest)
	ring, err := NewKeyRingFromMnemonic(testMnemonic, "", NetworkRegtest)
	require.NoError(t, err)
	key, err := ring.PrivateKey(3)
	require.NoError(t, err)

	payload := []byte(`{"amount":150000}`)
	sig, err := SignCall(key, payload)
	require.NoError(t, err)
	require.Len(t, sig, 64)

	pub := key.PubKey().SerializeCompressed()
	sender, err := VerifyCall(pub, sig, payload)
	require.NoError(t, err)
	require.True(t, sender.Equal(NewAddressFromPubkey(key.PubKey())))

	_, err = VerifyCall(pub, sig, []byte(`{"amount":170000}`))
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = VerifyCall(pub, sig[:10], payload)
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = VerifyCall([]byte{0x02}, sig, payload)
	require.ErrorIs(t, err, ErrInvalidSignature)
}
