package codec

import (
	"crypto/ed25519"
	"strings"

	"github.com/multiformats/go-multibase"

	"attest/internal/did/models"
	dErrors "attest/pkg/domain-errors"
)

// WebCodec implements did:web for a single configured host. Identifiers take
// the shape did:web:<host>:dids:<key-id> where key-id is the multibase
// public key, so the identifier stays collision-free per key just like
// did:key. Resolution is strictly local: documents come from the store,
// never from the network.
type WebCodec struct {
	host string
}

// NewWebCodec constructs a did:web codec for the given host (e.g.
// "attest.example"). Port colons must be percent-encoded by the caller per
// the did:web spec; this codec rejects raw colons in the host.
func NewWebCodec(host string) (*WebCodec, error) {
	if host == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "did:web host is required")
	}
	if strings.ContainsAny(host, ":/ ") {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "did:web host must not contain ':', '/', or spaces")
	}
	return &WebCodec{host: strings.ToLower(host)}, nil
}

func (c *WebCodec) Method() models.Method { return models.MethodWeb }

func (c *WebCodec) EncodeIdentifier(publicKey []byte) (string, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "public key has %d bytes, want %d", len(publicKey), ed25519.PublicKeySize)
	}
	encoded, err := multibase.Encode(multibase.Base58BTC, publicKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "multibase encode failed")
	}
	return "did:" + string(models.MethodWeb) + ":" + c.host + ":dids:" + encoded, nil
}

func (c *WebCodec) BuildDocument(did string, publicKey []byte) (models.Document, error) {
	if err := c.ValidateIdentifier(did); err != nil {
		return models.Document{}, err
	}
	keyMultibase, err := multibase.Encode(multibase.Base58BTC, publicKey)
	if err != nil {
		return models.Document{}, dErrors.Wrap(err, dErrors.CodeInternal, "multibase encode failed")
	}
	return buildDocument(did, keyMultibase, "key-1"), nil
}

func (c *WebCodec) ValidateIdentifier(did string) error {
	method, methodID, err := ParseDid(did)
	if err != nil {
		return err
	}
	if method != models.MethodWeb {
		return dErrors.Newf(dErrors.CodeInvalidInput, "not a did:web identifier: method %q", method)
	}
	segments := strings.Split(methodID, ":")
	if len(segments) != 3 || segments[1] != "dids" {
		return dErrors.New(dErrors.CodeInvalidInput, "did:web identifier must be did:web:<host>:dids:<key-id>")
	}
	if !strings.EqualFold(segments[0], c.host) {
		return dErrors.Newf(dErrors.CodeInvalidInput, "did:web identifier host %q is not served here", segments[0])
	}
	if segments[2] == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "did:web identifier is missing its key id")
	}
	if _, _, err := multibase.Decode(segments[2]); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "did:web key id is not valid multibase")
	}
	return nil
}
