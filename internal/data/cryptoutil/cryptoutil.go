// Package cryptoutil seals session records at rest.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Encryptor encrypts and decrypts opaque payloads.
type Encryptor interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(ciphertext string) ([]byte, error)
}

const (
	gcmPrefix   = "v1:"
	plainPrefix = "noop:"
)

// AESGCMEncryptor implements Encryptor with AES-256-GCM. Output is
// "v1:" + base64(nonce || ciphertext).
type AESGCMEncryptor struct {
	aead cipher.AEAD
}

// NewAESGCMEncryptor builds an encryptor from a 32-byte key.
func NewAESGCMEncryptor(key []byte) (*AESGCMEncryptor, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("aes-gcm key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return &AESGCMEncryptor{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (e *AESGCMEncryptor) Encrypt(plaintext []byte) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, plaintext, nil)
	return gcmPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a payload produced by Encrypt. Payloads written before a key
// was configured ("noop:" prefix) are still readable.
func (e *AESGCMEncryptor) Decrypt(ciphertext string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(ciphertext, plainPrefix); ok {
		return decodePlain(rest)
	}
	rest, ok := strings.CutPrefix(ciphertext, gcmPrefix)
	if !ok {
		return nil, fmt.Errorf("unknown ciphertext version (prefix: %.10s)", ciphertext)
	}
	data, err := base64.StdEncoding.DecodeString(rest)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	n := e.aead.NonceSize()
	if len(data) < n {
		return nil, errors.New("ciphertext too short")
	}
	return e.aead.Open(nil, data[:n], data[n:], nil)
}

// NoopEncryptor stores plaintext behind a marker prefix. Used when no key is
// configured and in tests.
type NoopEncryptor struct{}

func (NoopEncryptor) Encrypt(plaintext []byte) (string, error) {
	return plainPrefix + base64.StdEncoding.EncodeToString(plaintext), nil
}

func (NoopEncryptor) Decrypt(ciphertext string) ([]byte, error) {
	rest, ok := strings.CutPrefix(ciphertext, plainPrefix)
	if !ok {
		return nil, errors.New("invalid noop ciphertext")
	}
	return decodePlain(rest)
}

func decodePlain(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode noop ciphertext: %w", err)
	}
	return b, nil
}

// SealJSON marshals v and encrypts the result. A nil enc stores plaintext
// behind the noop marker.
func SealJSON(enc Encryptor, v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	if enc == nil {
		enc = NoopEncryptor{}
	}
	return enc.Encrypt(raw)
}

// OpenJSON decrypts sealed and unmarshals it into v.
func OpenJSON(enc Encryptor, sealed string, v any) error {
	if enc == nil {
		enc = NoopEncryptor{}
	}
	raw, err := enc.Decrypt(sealed)
	if err != nil {
		return fmt.Errorf("decrypt record: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	return nil
}
