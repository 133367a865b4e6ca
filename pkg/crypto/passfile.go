package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Passphrase-keyed file blob format, interoperable with the companion
// encrypt.py/decrypt.py scripts:
//
//	version (1) || salt (16) || iv (16) || AES-256-CBC ciphertext || HMAC-SHA256 (32)
//
// Encryption and MAC keys are derived with PBKDF2-HMAC-SHA1 (5000 iterations,
// 64 bytes, split 32/32). The MAC covers salt || iv || ciphertext; the version
// byte is excluded from the transcript.
const (
	passFormatVersion = 1
	passSaltSize      = 16
	passMACKeySize    = 32
	passMACSize       = sha256.Size
	passIterations    = 5000
)

// ErrPassphraseInvalid indicates a wrong passphrase or a tampered blob. The
// two cases are indistinguishable by design.
var ErrPassphraseInvalid = errors.New("crypto: invalid passphrase or tampered data")

func derivePassKeys(passphrase string, salt []byte) (encKey, macKey []byte) {
	material := pbkdf2.Key([]byte(passphrase), salt, passIterations, KeySize+passMACKeySize, sha1.New)
	return material[:KeySize], material[KeySize:]
}

// SealWithPassphrase encrypts plaintext under keys derived from passphrase
// and returns the complete blob.
func SealWithPassphrase(passphrase string, plaintext []byte) ([]byte, error) {
	salt, err := RandomBytes(passSaltSize)
	if err != nil {
		return nil, err
	}
	iv, err := RandomBytes(aes.BlockSize)
	if err != nil {
		return nil, err
	}

	encKey, macKey := derivePassKeys(passphrase, salt)

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: aes cipher: %w", err)
	}
	padded := padPKCS7(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(salt)
	mac.Write(iv)
	mac.Write(ciphertext)
	tag := mac.Sum(nil)

	blob := make([]byte, 0, 1+passSaltSize+aes.BlockSize+len(ciphertext)+passMACSize)
	blob = append(blob, passFormatVersion)
	blob = append(blob, salt...)
	blob = append(blob, iv...)
	blob = append(blob, ciphertext...)
	blob = append(blob, tag...)
	return blob, nil
}

// OpenWithPassphrase authenticates and decrypts a blob produced by
// SealWithPassphrase (or the companion encrypt.py script).
func OpenWithPassphrase(passphrase string, blob []byte) ([]byte, error) {
	if len(blob) < 1+passSaltSize+aes.BlockSize+passMACSize {
		return nil, errors.New("crypto: ciphertext blob too short or corrupt")
	}
	if blob[0] != passFormatVersion {
		return nil, fmt.Errorf("crypto: unsupported ciphertext version %d", blob[0])
	}

	offset := 1
	salt := blob[offset : offset+passSaltSize]
	offset += passSaltSize
	iv := blob[offset : offset+aes.BlockSize]
	offset += aes.BlockSize
	ciphertext := blob[offset : len(blob)-passMACSize]
	tag := blob[len(blob)-passMACSize:]

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, errors.New("crypto: ciphertext not block aligned")
	}

	encKey, macKey := derivePassKeys(passphrase, salt)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(salt)
	mac.Write(iv)
	mac.Write(ciphertext)
	if !hmac.Equal(tag, mac.Sum(nil)) {
		return nil, ErrPassphraseInvalid
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: aes cipher: %w", err)
	}
	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	return unpadPKCS7(padded, aes.BlockSize)
}

// padPKCS7 appends PKCS#7 padding. The standard library exposes no PKCS#7
// helper, so the few lines live here next to their only consumer.
func padPKCS7(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	padded := make([]byte, len(b)+n)
	copy(padded, b)
	for i := len(b); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func unpadPKCS7(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, errors.New("crypto: invalid padded length")
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, errors.New("crypto: invalid padding")
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, errors.New("crypto: invalid padding")
		}
	}
	return b[:len(b)-n], nil
}
