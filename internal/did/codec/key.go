package codec

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/multiformats/go-multibase"

	"attest/internal/did/models"
	dErrors "attest/pkg/domain-errors"
)

// ed25519PubMulticodec is the multicodec table entry for an Ed25519 public
// key: https://github.com/multiformats/multicodec/blob/master/table.csv
const ed25519PubMulticodec = 0xed

// KeyCodec implements did:key:
// did:key:MULTIBASE(base58btc, MULTICODEC(ed25519-pub, raw-public-key)).
type KeyCodec struct{}

// NewKeyCodec constructs the did:key codec.
func NewKeyCodec() *KeyCodec {
	return &KeyCodec{}
}

func (c *KeyCodec) Method() models.Method { return models.MethodKey }

func (c *KeyCodec) EncodeIdentifier(publicKey []byte) (string, error) {
	if len(publicKey) != ed25519.PublicKeySize {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "public key has %d bytes, want %d", len(publicKey), ed25519.PublicKeySize)
	}
	prefix := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(prefix, ed25519PubMulticodec)

	buf := make([]byte, 0, n+len(publicKey))
	buf = append(buf, prefix[:n]...)
	buf = append(buf, publicKey...)

	encoded, err := multibase.Encode(multibase.Base58BTC, buf)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "multibase encode failed")
	}
	return "did:" + string(models.MethodKey) + ":" + encoded, nil
}

func (c *KeyCodec) BuildDocument(did string, publicKey []byte) (models.Document, error) {
	if err := c.ValidateIdentifier(did); err != nil {
		return models.Document{}, err
	}
	_, methodID, err := ParseDid(did)
	if err != nil {
		return models.Document{}, err
	}
	// did:key uses the fingerprint itself as the key fragment.
	return buildDocument(did, methodID, methodID), nil
}

// ValidateIdentifier checks syntax, multibase encoding, multicodec prefix,
// and key length.
func (c *KeyCodec) ValidateIdentifier(did string) error {
	_, err := c.DecodePublicKey(did)
	return err
}

// DecodePublicKey extracts the raw ed25519 public key from a did:key
// identifier.
func (c *KeyCodec) DecodePublicKey(did string) ([]byte, error) {
	method, methodID, err := ParseDid(did)
	if err != nil {
		return nil, err
	}
	if method != models.MethodKey {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "not a did:key identifier: method %q", method)
	}
	// did:key is hard-coded to base58btc per the method spec.
	if len(methodID) < 2 || methodID[0] != 'z' {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "did:key identifier is not base58btc multibase")
	}
	enc, decoded, err := multibase.Decode(methodID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "did:key identifier is not valid multibase")
	}
	if enc != multibase.Base58BTC {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "did:key identifier is not base58btc multibase")
	}
	code, n := binary.Uvarint(decoded)
	if n <= 0 || code != ed25519PubMulticodec {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "did:key identifier has unexpected multicodec prefix")
	}
	key := decoded[n:]
	if len(key) != ed25519.PublicKeySize {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "did:key embeds %d key bytes, want %d", len(key), ed25519.PublicKeySize)
	}
	return key, nil
}
