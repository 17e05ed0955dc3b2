package service

//go:generate mockgen -source=ports.go -destination=mocks/ports.go -package=mocks

import (
	"context"
	"crypto/ed25519"

	credmodels "attest/internal/credential/models"
	didmodels "attest/internal/did/models"
	id "attest/pkg/domain"
	"attest/pkg/sdjwt"
)

// Primitive is the selective-disclosure construction this service
// orchestrates. The service contributes claim-subset selection, tenant
// scoping, and audience/nonce handling; the cryptography lives behind this
// interface.
type Primitive interface {
	Build(claims map[string]any, selectiveClaimNames []string, signingKey ed25519.PrivateKey, issuer, holder, audience, nonce string) (sdjwt.Presentation, error)
	Verify(compact string, disclosures []string, holderPublicKey ed25519.PublicKey) (sdjwt.Result, error)
}

// CredentialVerifier runs the credential verification pipeline.
type CredentialVerifier interface {
	Verify(ctx context.Context, tenantID id.TenantID, token string) (credmodels.VerifyResult, error)
}

// KeyUser exposes scoped access to a DID's private key. The key is only
// valid inside the callback.
type KeyUser interface {
	UseKey(ctx context.Context, tenantID id.TenantID, did string, fn func(priv ed25519.PrivateKey) error) error
}

// DidDirectory resolves DID summaries within a tenant.
type DidDirectory interface {
	GetByID(ctx context.Context, tenantID id.TenantID, didID id.DidID) (didmodels.Summary, error)
}

// DidRecords loads full DID records, including the stored public key.
type DidRecords interface {
	FindByDid(ctx context.Context, tenantID id.TenantID, did string) (didmodels.DidRecord, error)
}

// SDJWT adapts the sdjwt package to the Primitive port.
type SDJWT struct{}

func (SDJWT) Build(claims map[string]any, selectiveClaimNames []string, signingKey ed25519.PrivateKey, issuer, holder, audience, nonce string) (sdjwt.Presentation, error) {
	return sdjwt.Build(claims, selectiveClaimNames, signingKey, issuer, holder, audience, nonce)
}

func (SDJWT) Verify(compact string, disclosures []string, holderPublicKey ed25519.PublicKey) (sdjwt.Result, error) {
	return sdjwt.Verify(compact, disclosures, holderPublicKey)
}
