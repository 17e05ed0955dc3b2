// Package domain holds shared domain primitives: typed identifiers used
// across features. Typed IDs prevent accidental cross-wiring (passing a
// credential ID where a DID ID is expected) at compile time.
package domain

import "github.com/google/uuid"

// TenantID identifies the tenant that owns a record. Every persistence
// lookup is scoped by it.
type TenantID uuid.UUID

// DidID is the primary key of a DID record.
type DidID uuid.UUID

// CredentialID is the primary key of a credential record.
type CredentialID uuid.UUID

// NewDidID returns a fresh random DID record ID.
func NewDidID() DidID {
	return DidID(uuid.New())
}

// NewCredentialID returns a fresh random credential record ID.
func NewCredentialID() CredentialID {
	return CredentialID(uuid.New())
}

// ParseTenantID validates and converts a string into a TenantID.
func ParseTenantID(s string) (TenantID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return TenantID{}, err
	}
	return TenantID(u), nil
}

// ParseDidID validates and converts a string into a DidID.
func ParseDidID(s string) (DidID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return DidID{}, err
	}
	return DidID(u), nil
}

// ParseCredentialID validates and converts a string into a CredentialID.
func ParseCredentialID(s string) (CredentialID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return CredentialID{}, err
	}
	return CredentialID(u), nil
}

func (t TenantID) String() string { return uuid.UUID(t).String() }
func (t TenantID) IsNil() bool    { return uuid.UUID(t) == uuid.Nil }

func (d DidID) String() string { return uuid.UUID(d).String() }
func (d DidID) IsNil() bool    { return uuid.UUID(d) == uuid.Nil }

func (c CredentialID) String() string { return uuid.UUID(c).String() }
func (c CredentialID) IsNil() bool    { return uuid.UUID(c) == uuid.Nil }
