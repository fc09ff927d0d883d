package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/mintgate/mediavault/internal/utils"
)

const (
	kdfName    = "hkdf-sha256"
	cipherName = "aes-256-gcm"
	keyLen     = 32
	kdfInfo    = "mediavault/content/v1"
)

var (
	ErrNotConfigured = errors.New("master secret not configured")
	ErrBadMeta       = errors.New("invalid encryption metadata")
)

// Meta is everything except the master secret needed to re-derive the
// decryption key later. It is returned to the caller and never persisted
// server-side.
type Meta struct {
	ContentID string `json:"contentId"`
	Nonce     string `json:"nonce"`
	KDF       string `json:"kdf"`
	Cipher    string `json:"cipher"`
}

// CryptService derives a per-content AES key from the server master secret
// and a random content id, and seals content with AES-256-GCM. Derivation is
// deterministic for a (secret, contentId) pair so decryption elsewhere needs
// only the meta block and access to the same master secret.
type CryptService struct {
	config *Config
}

// NewCryptService fails fast on a missing master secret; there is no
// unencrypted fallback path.
func NewCryptService(config *Config) (*CryptService, error) {
	if !config.Configured() {
		return nil, ErrNotConfigured
	}
	return &CryptService{config: config}, nil
}

// Encrypt seals plaintext under a freshly derived per-content key.
func (s *CryptService) Encrypt(plaintext []byte) ([]byte, *Meta, error) {
	contentID := utils.TokenHex(16)

	key, err := s.deriveKey(contentID)
	if err != nil {
		return nil, nil, err
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	return ciphertext, &Meta{
		ContentID: contentID,
		Nonce:     base64.StdEncoding.EncodeToString(nonce),
		KDF:       kdfName,
		Cipher:    cipherName,
	}, nil
}

// Decrypt re-derives the content key from the meta block and opens the
// ciphertext.
func (s *CryptService) Decrypt(ciphertext []byte, meta *Meta) ([]byte, error) {
	if meta == nil || meta.ContentID == "" {
		return nil, ErrBadMeta
	}

	nonce, err := base64.StdEncoding.DecodeString(meta.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadMeta, err)
	}

	key, err := s.deriveKey(meta.ContentID)
	if err != nil {
		return nil, err
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt content: %w", err)
	}

	return plaintext, nil
}

func (s *CryptService) deriveKey(contentID string) ([]byte, error) {
	kdf := hkdf.New(sha256.New, []byte(s.config.MasterSecret), []byte(contentID), []byte(kdfInfo))

	key := make([]byte, keyLen)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive content key: %w", err)
	}

	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
