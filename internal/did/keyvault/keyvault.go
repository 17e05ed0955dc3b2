// Package keyvault provides at-rest protection for private key bytes.
// The AEAD construction is tamper-evident: any bit flip in the ciphertext
// fails authentication on decrypt. Rotation is transparent: the primary key
// encrypts, retired keys remain available for decryption, and each
// ciphertext names its key by fingerprint so old material stays readable.
package keyvault

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"

	"attest/internal/platform/config"
	dErrors "attest/pkg/domain-errors"
)

// Encryptor is the opaque symmetric encryption capability consumed by the
// DID services.
type Encryptor interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// keyIDLen is the truncated SHA-256 fingerprint prepended to each
// ciphertext so Decrypt can pick the right key after rotation.
const keyIDLen = 4

type vaultKey struct {
	id  [keyIDLen]byte
	raw []byte
}

// AEADVault implements Encryptor with XChaCha20-Poly1305.
// Ciphertext layout: key-id (4) || nonce (24) || sealed box.
type AEADVault struct {
	keys []vaultKey // index 0 is the primary
}

// New builds a vault from a 32-byte primary key and zero or more retired
// keys, newest first.
func New(primary []byte, retired ...[]byte) (*AEADVault, error) {
	all := append([][]byte{primary}, retired...)
	v := &AEADVault{}
	for _, k := range all {
		if len(k) != chacha20poly1305.KeySize {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "vault key has %d bytes, want %d", len(k), chacha20poly1305.KeySize)
		}
		sum := sha256.Sum256(k)
		vk := vaultKey{raw: append([]byte(nil), k...)}
		copy(vk.id[:], sum[:keyIDLen])
		v.keys = append(v.keys, vk)
	}
	return v, nil
}

// FromConfig builds a vault from environment configuration. With no primary
// configured it generates an ephemeral key: fine for development, useless
// for durable storage, so callers should log loudly.
func FromConfig(cfg config.KeyVaultConfig) (*AEADVault, bool, error) {
	if cfg.PrimaryKey == "" {
		ephemeral := make([]byte, chacha20poly1305.KeySize)
		if _, err := rand.Read(ephemeral); err != nil {
			return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "generate ephemeral vault key")
		}
		v, err := New(ephemeral)
		return v, true, err
	}
	primary, err := base64.RawURLEncoding.DecodeString(cfg.PrimaryKey)
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInvalidInput, "decode primary vault key")
	}
	var retired [][]byte
	if cfg.RetiredKeys != "" {
		for _, enc := range strings.Split(cfg.RetiredKeys, ",") {
			k, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(enc))
			if err != nil {
				return nil, false, dErrors.Wrap(err, dErrors.CodeInvalidInput, "decode retired vault key")
			}
			retired = append(retired, k)
		}
	}
	v, err := New(primary, retired...)
	return v, false, err
}

// Encrypt seals plaintext under the primary key.
func (v *AEADVault) Encrypt(_ context.Context, plaintext []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "plaintext is required")
	}
	primary := v.keys[0]
	aead, err := chacha20poly1305.NewX(primary.raw)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "init aead")
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "generate nonce")
	}

	out := make([]byte, 0, keyIDLen+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, primary.id[:]...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, primary.id[:]), nil
}

// Decrypt opens a ciphertext with whichever vault key its fingerprint
// names. Corrupted or truncated ciphertexts fail authentication.
func (v *AEADVault) Decrypt(_ context.Context, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < keyIDLen+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "ciphertext is truncated")
	}
	var keyID [keyIDLen]byte
	copy(keyID[:], ciphertext[:keyIDLen])
	nonce := ciphertext[keyIDLen : keyIDLen+chacha20poly1305.NonceSizeX]
	box := ciphertext[keyIDLen+chacha20poly1305.NonceSizeX:]

	for _, k := range v.keys {
		if k.id != keyID {
			continue
		}
		aead, err := chacha20poly1305.NewX(k.raw)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "init aead")
		}
		plaintext, err := aead.Open(nil, nonce, box, keyID[:])
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "ciphertext failed authentication")
		}
		return plaintext, nil
	}
	return nil, dErrors.New(dErrors.CodeUnauthorized, "ciphertext names an unknown vault key")
}
