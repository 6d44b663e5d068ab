// Package cryptox holds the server-side cryptographic helpers: AES-CFB
// sealing of short strings in the "iv:ciphertext" text format, e-mail
// hashing for lookups, key generation and password hashing.
//
// None of these touch page keys; those are wrapped and unwrapped by the
// client and stored as opaque text.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// separator joins the encoded IV and ciphertext of a sealed string.
const separator = ":"

var (
	ErrMalformedSealed = errors.New("malformed sealed string")
	ErrInvalidKeySize  = errors.New("invalid key size")
)

// GenerateKey returns a random AES key of the given size in bits.
// Only 128, 192 and 256 are accepted.
func GenerateKey(bits int) ([]byte, error) {
	switch bits {
	case 128, 192, 256:
	default:
		return nil, fmt.Errorf("%w: %d bits", ErrInvalidKeySize, bits)
	}
	key := make([]byte, bits/8)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

// KeyToString encodes key as standard base64.
func KeyToString(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}

// KeyFromString decodes a base64 key and checks it is a valid AES length.
func KeyFromString(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	}
	return nil, fmt.Errorf("%w: %d bytes", ErrInvalidKeySize, len(key))
}

// Seal encrypts message with AES-CFB under key using a fresh random IV and
// returns base64(iv) + ":" + base64(ciphertext).
//
// CFB provides no integrity; a wrong key is only noticed by whatever parses
// the decrypted text.
func Seal(message string, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	ciphertext := make([]byte, len(message))
	cipher.NewCFBEncrypter(block, iv).XORKeyStream(ciphertext, []byte(message))

	return base64.StdEncoding.EncodeToString(iv) + separator + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open reverses Seal.
func Open(sealed string, key []byte) (string, error) {
	ivPart, ctPart, ok := strings.Cut(strings.TrimSpace(sealed), separator)
	if !ok {
		return "", ErrMalformedSealed
	}

	iv, err := base64.StdEncoding.DecodeString(ivPart)
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrMalformedSealed
	}
	ciphertext, err := base64.StdEncoding.DecodeString(ctPart)
	if err != nil {
		return "", ErrMalformedSealed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCFBDecrypter(block, iv).XORKeyStream(plaintext, ciphertext)

	return string(plaintext), nil
}

// NormalizeEmail trims and lower-cases an address before hashing.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashEmail returns the hex SHA-256 of the normalized address.
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(NormalizeEmail(email)))
	return hex.EncodeToString(sum[:])
}

// IsEmailHash reports whether s already looks like a HashEmail result.
func IsEmailHash(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// HashPassword hashes the client-supplied password digest with bcrypt.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
