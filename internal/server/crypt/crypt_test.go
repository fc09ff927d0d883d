package crypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(t *testing.T) *CryptService {
	t.Helper()
	svc, err := NewCryptService(&Config{MasterSecret: "test-master-secret"})
	require.NoError(t, err)
	return svc
}

func TestNewCryptServiceNoSecret(t *testing.T) {
	_, err := NewCryptService(&Config{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	svc := testService(t)
	plaintext := []byte("some very secret media bytes")

	ciphertext, meta, err := svc.Encrypt(plaintext)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.NotEqual(t, plaintext, ciphertext)
	assert.Equal(t, "hkdf-sha256", meta.KDF)
	assert.Equal(t, "aes-256-gcm", meta.Cipher)
	assert.Len(t, meta.ContentID, 32) // 16 bytes hex

	decrypted, err := svc.Decrypt(ciphertext, meta)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecryptWrongContentID(t *testing.T) {
	svc := testService(t)

	ciphertext, meta, err := svc.Encrypt([]byte("payload"))
	require.NoError(t, err)

	bad := *meta
	bad.ContentID = "00000000000000000000000000000000"
	_, err = svc.Decrypt(ciphertext, &bad)
	assert.Error(t, err)
}

func TestDecryptWrongSecret(t *testing.T) {
	svc := testService(t)

	ciphertext, meta, err := svc.Encrypt([]byte("payload"))
	require.NoError(t, err)

	other, err := NewCryptService(&Config{MasterSecret: "another-secret"})
	require.NoError(t, err)

	_, err = other.Decrypt(ciphertext, meta)
	assert.Error(t, err)
}

func TestEncryptFreshContentID(t *testing.T) {
	svc := testService(t)

	_, meta1, err := svc.Encrypt([]byte("payload"))
	require.NoError(t, err)
	_, meta2, err := svc.Encrypt([]byte("payload"))
	require.NoError(t, err)

	assert.NotEqual(t, meta1.ContentID, meta2.ContentID)
	assert.NotEqual(t, meta1.Nonce, meta2.Nonce)
}

func TestDecryptBadMeta(t *testing.T) {
	svc := testService(t)

	_, err := svc.Decrypt([]byte("x"), nil)
	assert.ErrorIs(t, err, ErrBadMeta)

	_, err = svc.Decrypt([]byte("x"), &Meta{ContentID: "abc", Nonce: "%%%not-base64%%%"})
	assert.ErrorIs(t, err, ErrBadMeta)
}
