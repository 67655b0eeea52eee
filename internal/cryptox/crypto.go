// Package cryptox seals small blobs at rest with AES-GCM under a key derived
// from a passphrase with Argon2id.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/iamclient/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	KeySize  = 32
	SaltSize = 16
)

var ErrShortCiphertext = errors.New("ciphertext too short")

// DeriveKey stretches passphrase into a 32-byte AES-256 key.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// NewSalt returns SaltSize random bytes.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// Seal encrypts plaintext and returns nonce||ciphertext.
func Seal(key, plaintext []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal. A wrong key or tampered data yields an error.
func Open(key, sealed []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ns := aead.NonceSize()
	if len(sealed) < ns+aead.Overhead() {
		return nil, ErrShortCiphertext
	}
	return aead.Open(nil, sealed[:ns], sealed[ns:], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
