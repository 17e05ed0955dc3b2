package models

import (
	"strings"
	"time"

	id "attest/pkg/domain"
)

// Operation categorizes quota-sensitive operations for differentiated
// rate limiting. Windows are keyed by (tenant, operation).
type Operation string

const (
	// OpDidCreate: DID creation (key generation + persistence).
	OpDidCreate Operation = "did_create"
	// OpCredentialIssue: credential issuance.
	OpCredentialIssue Operation = "credential_issue"
	// OpCredentialVerify: credential verification over untrusted input.
	OpCredentialVerify Operation = "credential_verify"
	// OpCodeRedeem: short-code redemption attempts. Short numeric codes are
	// brute-forceable, so this operation runs under a much stricter policy.
	OpCodeRedeem Operation = "code_redeem"
)

// Operations lists every supported operation. Policy tables must cover all
// of them.
func Operations() []Operation {
	return []Operation{OpDidCreate, OpCredentialIssue, OpCredentialVerify, OpCodeRedeem}
}

// IsValid checks if the operation is one of the supported enum values.
func (o Operation) IsValid() bool {
	switch o {
	case OpDidCreate, OpCredentialIssue, OpCredentialVerify, OpCodeRedeem:
		return true
	}
	return false
}

func (o Operation) String() string { return string(o) }

// Policy is the admission ceiling for one operation.
type Policy struct {
	Limit  int
	Window time.Duration
}

// Result represents the outcome of a rate limit check.
type Result struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// Key builds the bucket key for a (tenant, operation) pair.
func Key(tenantID id.TenantID, op Operation) string {
	return SanitizeKeySegment(tenantID.String()) + ":" + SanitizeKeySegment(string(op))
}

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// to prevent key collision attacks where a crafted identifier containing
// ':' could manipulate adjacent rate limit buckets.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}
