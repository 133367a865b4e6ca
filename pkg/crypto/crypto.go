// Package crypto holds the symmetric primitives consumed by the virtual
// filesystem and the export tooling. The store never implements these itself:
// it supplies key material and buffers, this package does the cipher work.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
)

// RandomBytes returns n bytes from the operating system's CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("crypto: rand read failed: %w", err)
	}
	return b, nil
}

// EncryptWithKey encrypts plaintext with AES-256-GCM under the given key and
// nonce. The authentication tag is appended to the returned ciphertext.
func EncryptWithKey(key, nonce, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, errors.New("crypto: invalid nonce length")
	}
	return gcm.Seal(nil, nonce, plaintext, nil), nil
}

// DecryptWithKey decrypts an AES-256-GCM ciphertext produced by
// EncryptWithKey. Tampered ciphertext or mismatched key material fails
// authentication and returns an error; no partial plaintext is ever returned.
func DecryptWithKey(key, nonce, ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, errors.New("crypto: invalid nonce length")
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("crypto: gcm decrypt: %w", err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, errors.New("crypto: invalid key length")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: gcm mode: %w", err)
	}
	return gcm, nil
}
