package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	ivLength  = 12
	keyLength = 32
)

var (
	ErrInvalidKey        = errors.New("encryption key must be 64 hex chars or a passphrase")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// scrypt parameters for passphrase-derived keys. The salt is fixed so the
// same passphrase always yields the same key; field-level encryption needs
// deterministic key material, not password storage.
var scryptSalt = []byte("paycore.fieldkey.v1")

// ResolveKey turns the configured key material into a 32-byte AES key.
// A 64-char hex string is used directly; anything else is treated as a
// passphrase and run through scrypt.
func ResolveKey(keyMaterial string) ([]byte, error) {
	if keyMaterial == "" {
		return nil, ErrInvalidKey
	}
	if len(keyMaterial) == keyLength*2 {
		if key, err := hex.DecodeString(keyMaterial); err == nil {
			return key, nil
		}
	}
	return scrypt.Key([]byte(keyMaterial), scryptSalt, 1<<15, 8, 1, keyLength)
}

// Encrypt encrypts a string using AES-256-GCM and returns
// base64(iv | ciphertext | tag).
func Encrypt(plaintext, keyMaterial string) (string, error) {
	key, err := ResolveKey(keyMaterial)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivLength)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(append(iv, sealed...)), nil
}

// Decrypt reverses Encrypt.
func Decrypt(encrypted, keyMaterial string) (string, error) {
	key, err := ResolveKey(keyMaterial)
	if err != nil {
		return "", err
	}

	combined, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(combined) < ivLength+gcm.Overhead() {
		return "", ErrInvalidCiphertext
	}

	iv := combined[:ivLength]
	plaintext, err := gcm.Open(nil, iv, combined[ivLength:], nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	return string(plaintext), nil
}
