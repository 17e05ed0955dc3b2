package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	id "attest/pkg/domain"
)

// Method names a DID method with a registered codec.
type Method string

const (
	MethodKey Method = "key"
	MethodWeb Method = "web"
)

// IsValid checks if the method is one of the supported enum values.
func (m Method) IsValid() bool {
	return m == MethodKey || m == MethodWeb
}

func (m Method) String() string { return string(m) }

// Status is the lifecycle state of a DID record.
type Status string

const (
	StatusActive      Status = "active"
	StatusDeactivated Status = "deactivated"
)

// IsValid checks if the status is one of the lifecycle states.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusDeactivated
}

// ListFilter narrows tenant-scoped listings. The zero value matches every
// record the tenant owns.
type ListFilter struct {
	Status Status
}

// DidRecord is the tenant-scoped persisted form of a DID.
//
// Invariants enforced by the stores:
//   - Did is unique per tenant
//   - KeyFingerprint is unique per tenant (no key reuse across DIDs)
//
// EncryptedPrivateKey is opaque ciphertext; the plaintext key exists only
// inside the signing boundary and is never persisted or returned.
type DidRecord struct {
	ID                  id.DidID
	TenantID            id.TenantID
	Did                 string
	Method              Method
	PublicKey           []byte
	KeyFingerprint      string
	EncryptedPrivateKey []byte
	Document            Document
	Status              Status
	CreatedAt           time.Time
	LastUsedAt          *time.Time
}

// Summary is the key-material-free view returned by resolution lookups.
type Summary struct {
	ID        id.DidID
	TenantID  id.TenantID
	Did       string
	Method    Method
	Status    Status
	CreatedAt time.Time
}

// Summary strips private fields from a record.
func (r DidRecord) Summary() Summary {
	return Summary{
		ID:        r.ID,
		TenantID:  r.TenantID,
		Did:       r.Did,
		Method:    r.Method,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}

// Created is the full creation result: identifiers, public key, the private
// key as vault ciphertext, and the document. The plaintext private key is
// never part of it.
type Created struct {
	ID                  id.DidID
	TenantID            id.TenantID
	Did                 string
	Method              Method
	PublicKey           []byte
	EncryptedPrivateKey []byte
	Document            Document
	Status              Status
	CreatedAt           time.Time
}

// Created builds the creation result view of a record.
func (r DidRecord) Created() Created {
	return Created{
		ID:                  r.ID,
		TenantID:            r.TenantID,
		Did:                 r.Did,
		Method:              r.Method,
		PublicKey:           r.PublicKey,
		EncryptedPrivateKey: r.EncryptedPrivateKey,
		Document:            r.Document,
		Status:              r.Status,
		CreatedAt:           r.CreatedAt,
	}
}

// Summary narrows a creation result to the lookup view.
func (c Created) Summary() Summary {
	return Summary{
		ID:        c.ID,
		TenantID:  c.TenantID,
		Did:       c.Did,
		Method:    c.Method,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
}

// Document is the persisted DID document (method "key" shape).
type Document struct {
	Context            []string             `json:"@context"`
	ID                 string               `json:"id"`
	VerificationMethod []VerificationMethod `json:"verificationMethod"`
	Authentication     []string             `json:"authentication"`
}

// VerificationMethod binds a public key to the document.
type VerificationMethod struct {
	ID                 string `json:"id"`
	Type               string `json:"type"`
	Controller         string `json:"controller"`
	PublicKeyMultibase string `json:"publicKeyMultibase"`
}

// Fingerprint computes the stored key fingerprint: hex SHA-256 of the raw
// public key bytes. Used for the per-tenant key-reuse uniqueness check.
func Fingerprint(publicKey []byte) string {
	sum := sha256.Sum256(publicKey)
	return hex.EncodeToString(sum[:])
}
