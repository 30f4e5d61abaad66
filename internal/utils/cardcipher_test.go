package utils

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *CardCipher {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	c, err := NewCardCipher(key)
	require.NoError(t, err)
	return c
}

func TestCardCipherRoundTrip(t *testing.T) {
	c := newTestCipher(t)

	// Round-trip must be the identity for any printable input
	numbers := []string{
		"4000123412341234",
		"4000 1234 1234 1234",
		"",
		"x",
		"0000000000000000",
		"card number with spaces and symbols !@#",
	}
	for _, n := range numbers {
		ct, err := c.Encrypt(n)
		require.NoError(t, err, "encrypt %q", n)
		pt, err := c.Decrypt(ct)
		require.NoError(t, err, "decrypt %q", n)
		assert.Equal(t, n, pt)
	}
}

func TestCardCipherTamperFails(t *testing.T) {
	c := newTestCipher(t)

	ct, err := c.Encrypt("4000123412341234")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(ct)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff // Flip one ciphertext byte
	_, err = c.Decrypt(base64.StdEncoding.EncodeToString(raw))
	assert.Error(t, err)
}

func TestCardCipherRejectsBadInput(t *testing.T) {
	c := newTestCipher(t)

	_, err := c.Decrypt("not base64 at all !!!")
	assert.Error(t, err)

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}

func TestCardCipherRejectsBadKey(t *testing.T) {
	_, err := NewCardCipher([]byte("too short"))
	assert.Error(t, err)
}
