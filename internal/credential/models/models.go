package models

import (
	"time"

	id "attest/pkg/domain"
)

// Status is the lifecycle state of a credential record. Revocation is
// one-way; there is no un-revoke.
type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// IsValid checks if the status is one of the lifecycle states.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusRevoked
}

// ListFilter narrows tenant-scoped listings. The zero value matches every
// record the tenant owns. ExpiresBefore matches only records that carry an
// expiry earlier than the cutoff; never-expiring records are excluded.
type ListFilter struct {
	Status         Status
	CredentialType string
	ExpiresBefore  *time.Time
}

// CredentialRecord is the tenant-scoped persisted form of an issued
// credential. Token is unique per tenant. ExpiresAt nil means the
// credential never expires.
type CredentialRecord struct {
	ID             id.CredentialID
	TenantID       id.TenantID
	IssuerDidID    id.DidID
	HolderDidID    id.DidID
	CredentialType string
	Token          string
	Status         Status
	IssuedAt       time.Time
	ExpiresAt      *time.Time
	RevokedAt      *time.Time
}

// VerifyStatus is the typed outcome of the verification pipeline.
type VerifyStatus string

const (
	StatusValid             VerifyStatus = "valid"
	StatusMalformedToken    VerifyStatus = "malformed_token"
	StatusSignatureInvalid  VerifyStatus = "signature_invalid"
	StatusExpired           VerifyStatus = "expired"
	StatusIssuerNotFound    VerifyStatus = "issuer_not_found"
	StatusCredentialRevoked VerifyStatus = "revoked"
)

// VerifyResult is what verification returns for any input, adversarial or
// not. IsValid is true only when Status is StatusValid; the optional fields
// are populated as far as the pipeline got.
type VerifyResult struct {
	IsValid       bool           `json:"is_valid"`
	Status        VerifyStatus   `json:"status"`
	Errors        []string       `json:"errors,omitempty"`
	IssuerDid     string         `json:"issuer_did,omitempty"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
	SubjectClaims map[string]any `json:"subject_claims,omitempty"`
}

// Failure builds a terminal non-valid result.
func Failure(status VerifyStatus, reasons ...string) VerifyResult {
	return VerifyResult{IsValid: false, Status: status, Errors: reasons}
}
