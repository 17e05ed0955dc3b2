// Package token builds and decodes the compact JWS form of credential
// tokens. Building goes through golang-jwt so issued tokens are standard
// EdDSA JWTs; decoding never does, because the decode path runs over fully
// adversarial input and is stricter than any general-purpose parser: strict
// header allowlisting, integer-only expiry in a sane epoch range, and size
// caps applied before parsing.
package token

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// MaxTokenBytes rejects oversize tokens before any decoding.
	MaxTokenBytes = 8192
	// MaxSubjectClaims caps the claim count in the subject-claims object.
	MaxSubjectClaims = 64
	// maxEpochSeconds is 9999-12-31T23:59:59Z. Expiry timestamps beyond it
	// are rejected instead of overflowing time arithmetic.
	maxEpochSeconds = 253402300799
)

// Payload is the validated claim set of a structurally sound token.
type Payload struct {
	Issuer         string
	Subject        string
	CredentialType string
	ExpiresAt      *time.Time
	SubjectClaims  map[string]any
}

// BuildSigningInput assembles header and payload for a new credential token
// and returns the dot-joined signing input. The signature is produced
// elsewhere so private keys stay behind the signing boundary.
func BuildSigningInput(issuerDid, holderDid, credentialType string, claims map[string]any, issuedAt time.Time, expiresAt *time.Time) (string, error) {
	mapClaims := jwt.MapClaims{
		"iss": issuerDid,
		"sub": holderDid,
		"vct": credentialType,
		"iat": issuedAt.Unix(),
	}
	if len(claims) > 0 {
		mapClaims["claims"] = claims
	}
	if expiresAt != nil {
		mapClaims["exp"] = expiresAt.Unix()
	}
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, mapClaims)
	input, err := t.SigningString()
	if err != nil {
		return "", fmt.Errorf("build signing input: %w", err)
	}
	return input, nil
}

// Assemble appends an ed25519 signature to a signing input, producing the
// compact token.
func Assemble(signingInput string, signature []byte) string {
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(signature)
}

// CheckSize enforces the byte-length ceiling. Runs before any parsing.
func CheckSize(raw string) error {
	if raw == "" {
		return fmt.Errorf("token is empty")
	}
	if len(raw) > MaxTokenBytes {
		return fmt.Errorf("token exceeds %d bytes", MaxTokenBytes)
	}
	return nil
}

// Split enforces the exactly-three-segments structure.
func Split(raw string) (header, payload, signature string, err error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("token has %d segments, want 3", len(parts))
	}
	for i, p := range parts {
		if p == "" {
			return "", "", "", fmt.Errorf("token segment %d is empty", i)
		}
	}
	return parts[0], parts[1], parts[2], nil
}

// DecodeHeader accepts only the exact header an issued token carries:
// {"alg":"EdDSA","typ":"JWT"} and nothing else. Any key-identification or
// embedded/linked-key field (kid, jwk, jku, x5c, x5t, x5u) and any unknown
// field is a reject; attacker-supplied key hints are never trusted.
func DecodeHeader(segment string) error {
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return fmt.Errorf("header is not base64url: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := strictUnmarshal(raw, &fields); err != nil {
		return fmt.Errorf("header is not a JSON object: %w", err)
	}
	if len(fields) != 2 {
		return fmt.Errorf("header has %d fields, want exactly alg and typ", len(fields))
	}
	var alg, typ string
	if err := json.Unmarshal(fields["alg"], &alg); err != nil || alg != "EdDSA" {
		return fmt.Errorf("header alg must be EdDSA")
	}
	if err := json.Unmarshal(fields["typ"], &typ); err != nil || typ != "JWT" {
		return fmt.Errorf("header typ must be JWT")
	}
	return nil
}

// DecodePayload validates and extracts the claim set. The payload must be a
// JSON object; the issuer claim is required and non-empty; exp, when
// present, must be null or an integer within [0, maxEpochSeconds]; the
// subject-claims value, when present, must be a JSON object with a bounded
// claim count.
func DecodePayload(segment string) (Payload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return Payload{}, fmt.Errorf("payload is not base64url: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := strictUnmarshal(raw, &fields); err != nil {
		return Payload{}, fmt.Errorf("payload is not a JSON object: %w", err)
	}

	var p Payload
	if err := json.Unmarshal(fields["iss"], &p.Issuer); err != nil || p.Issuer == "" {
		return Payload{}, fmt.Errorf("issuer claim is required")
	}
	if raw, ok := fields["sub"]; ok {
		if err := json.Unmarshal(raw, &p.Subject); err != nil {
			return Payload{}, fmt.Errorf("subject claim must be a string")
		}
	}
	if raw, ok := fields["vct"]; ok {
		if err := json.Unmarshal(raw, &p.CredentialType); err != nil {
			return Payload{}, fmt.Errorf("credential type claim must be a string")
		}
	}

	if raw, ok := fields["exp"]; ok && !bytes.Equal(raw, []byte("null")) {
		exp, err := decodeEpoch(raw)
		if err != nil {
			return Payload{}, err
		}
		t := time.Unix(exp, 0).UTC()
		p.ExpiresAt = &t
	}

	// An explicit null unmarshals into a nil map without error; treat it the
	// same as an absent claim set, matching the exp handling above.
	if raw, ok := fields["claims"]; ok && !bytes.Equal(raw, []byte("null")) {
		var claims map[string]any
		if err := json.Unmarshal(raw, &claims); err != nil {
			return Payload{}, fmt.Errorf("subject claims must be a JSON object")
		}
		if len(claims) > MaxSubjectClaims {
			return Payload{}, fmt.Errorf("subject claims exceed %d entries", MaxSubjectClaims)
		}
		p.SubjectClaims = claims
	}
	return p, nil
}

// DecodeSignature decodes the signature segment.
func DecodeSignature(segment string) ([]byte, error) {
	sig, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return nil, fmt.Errorf("signature is not base64url: %w", err)
	}
	return sig, nil
}

// decodeEpoch accepts only an integer JSON number within the sane epoch
// range. Floats, strings, and out-of-range values are rejected rather than
// truncated or overflowed.
func decodeEpoch(raw json.RawMessage) (int64, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var n json.Number
	if err := dec.Decode(&n); err != nil {
		return 0, fmt.Errorf("exp must be a number")
	}
	exp, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("exp must be an integer")
	}
	if exp < 0 || exp > maxEpochSeconds {
		return 0, fmt.Errorf("exp %d is outside the accepted epoch range", exp)
	}
	return exp, nil
}

// strictUnmarshal decodes JSON into dst and rejects trailing content, so
// `{}garbage` does not pass as a valid object.
func strictUnmarshal(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after JSON value")
	}
	return nil
}
