package utils

import (
	"crypto/aes"      // AES block cipher
	"crypto/cipher"   // GCM mode
	"crypto/rand"     // Nonce generation
	"encoding/base64" // Ciphertext encoding for the DB column
	"fmt"
	"io"
)

// CardCipher encrypts card numbers at rest with AES-GCM. It is invoked
// only by the card service at the store boundary: encrypt on write,
// decrypt on read. The key comes from CARD_ENC_KEY and must be 16, 24
// or 32 bytes.
type CardCipher struct {
	gcm cipher.AEAD
}

// NewCardCipher builds a CardCipher from a raw AES key.
func NewCardCipher(key []byte) (*CardCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("card cipher key: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &CardCipher{gcm: gcm}, nil
}

// Encrypt returns base64(nonce || ciphertext) for a plaintext card number.
func (c *CardCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ct := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil) // Nonce is prefixed to the ciphertext
	return base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt reverses Encrypt. Tampered or truncated input fails.
func (c *CardCipher) Decrypt(encrypted string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", err
	}
	n := c.gcm.NonceSize()
	if len(ct) < n {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, body := ct[:n], ct[n:]
	pt, err := c.gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}
