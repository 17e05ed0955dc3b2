// Package codec encodes, decodes, and validates DID identifiers and
// documents per method. Codecs are pluggable; the registry dispatches on the
// method segment of `did:method:id`.
package codec

import (
	"fmt"
	"strings"

	"attest/internal/did/models"
	dErrors "attest/pkg/domain-errors"
)

// Codec is a per-method DID identifier/document encoder-decoder.
type Codec interface {
	Method() models.Method
	// EncodeIdentifier derives the DID string from a raw public key.
	EncodeIdentifier(publicKey []byte) (string, error)
	// BuildDocument produces the persisted document for a DID and its key.
	BuildDocument(did string, publicKey []byte) (models.Document, error)
	// ValidateIdentifier checks the method-specific part of the DID.
	ValidateIdentifier(did string) error
}

// Registry dispatches codecs by method.
type Registry struct {
	codecs map[models.Method]Codec
}

// NewRegistry builds a registry over the given codecs.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{codecs: make(map[models.Method]Codec, len(codecs))}
	for _, c := range codecs {
		r.codecs[c.Method()] = c
	}
	return r
}

// ForMethod returns the codec for a method, or CodeMethodNotSupported.
func (r *Registry) ForMethod(method models.Method) (Codec, error) {
	c, ok := r.codecs[method]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeMethodNotSupported, "did method %q is not supported", method)
	}
	return c, nil
}

// ParseDid splits a DID string into method and method-specific ID, enforcing
// the `did:method:id` syntax. It does not consult any codec.
func ParseDid(did string) (models.Method, string, error) {
	parts := strings.SplitN(did, ":", 3)
	if len(parts) != 3 || parts[0] != "did" || parts[1] == "" || parts[2] == "" {
		return "", "", dErrors.New(dErrors.CodeInvalidInput, "invalid did: want did:method:id")
	}
	for _, r := range parts[1] {
		if r < 'a' || r > 'z' {
			return "", "", dErrors.New(dErrors.CodeInvalidInput, "invalid did: method must be lowercase letters")
		}
	}
	return models.Method(parts[1]), parts[2], nil
}

// didContext and suiteContext are the two entries every produced document's
// @context carries: the base DID context plus the verification suite context
// matching the Ed25519VerificationKey2020 method type.
const (
	didContext   = "https://www.w3.org/ns/did/v1"
	suiteContext = "https://w3id.org/security/suites/ed25519-2020/v1"
	suiteType    = "Ed25519VerificationKey2020"
)

func buildDocument(did, keyMultibase, fragment string) models.Document {
	vmID := fmt.Sprintf("%s#%s", did, fragment)
	return models.Document{
		Context: []string{didContext, suiteContext},
		ID:      did,
		VerificationMethod: []models.VerificationMethod{{
			ID:                 vmID,
			Type:               suiteType,
			Controller:         did,
			PublicKeyMultibase: keyMultibase,
		}},
		Authentication: []string{vmID},
	}
}
