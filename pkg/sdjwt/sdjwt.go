// Package sdjwt implements the selective-disclosure JWT primitive: claims
// are replaced by salted digests in the signed token, and each claim can be
// revealed independently through its disclosure token. Verifiers learn only
// the claims whose disclosures they are handed.
//
// A disclosure token is base64url(JSON [salt, name, value]); its SHA-256
// digest (over the base64url text) appears in the token's _sd array.
package sdjwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// digestAlg is the only supported _sd_alg value.
	digestAlg = "sha-256"
	// saltLen is the per-disclosure salt size in bytes.
	saltLen = 16
	// maxDisclosures bounds Verify input.
	maxDisclosures = 128
)

// Presentation is the output of Build: the signed compact token plus one
// disclosure token per selected claim.
type Presentation struct {
	CompactToken     string
	DisclosureTokens []string
	// ClaimDigestMap maps claim name to the digest embedded in _sd.
	ClaimDigestMap map[string]string
}

// Result is the output of Verify.
type Result struct {
	Valid           bool
	DisclosedClaims map[string]any
	Issuer          string
	Holder          string
}

// Build signs a selective-disclosure token over claims. selectiveClaimNames
// picks which claims get disclosure tokens; nil selects all of them. Claims
// never appear in the signed payload, only their salted digests.
func Build(
	claims map[string]any,
	selectiveClaimNames []string,
	signingKey ed25519.PrivateKey,
	issuer, holder, audience, nonce string,
) (Presentation, error) {
	if len(signingKey) != ed25519.PrivateKeySize {
		return Presentation{}, fmt.Errorf("signing key has %d bytes, want %d", len(signingKey), ed25519.PrivateKeySize)
	}
	if issuer == "" || holder == "" {
		return Presentation{}, fmt.Errorf("issuer and holder are required")
	}

	selected, err := selectClaims(claims, selectiveClaimNames)
	if err != nil {
		return Presentation{}, err
	}

	digests := make([]string, 0, len(selected))
	disclosures := make([]string, 0, len(selected))
	digestMap := make(map[string]string, len(selected))
	for _, name := range selected {
		disclosure, err := encodeDisclosure(name, claims[name])
		if err != nil {
			return Presentation{}, err
		}
		digest := digestOf(disclosure)
		disclosures = append(disclosures, disclosure)
		digests = append(digests, digest)
		digestMap[name] = digest
	}
	// Sorted digests leak nothing about claim order.
	sort.Strings(digests)

	payload := jwt.MapClaims{
		"iss":     issuer,
		"sub":     holder,
		"iat":     time.Now().Unix(),
		"_sd":     digests,
		"_sd_alg": digestAlg,
	}
	if audience != "" {
		payload["aud"] = audience
	}
	if nonce != "" {
		payload["nonce"] = nonce
	}

	compact, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, payload).SignedString(signingKey)
	if err != nil {
		return Presentation{}, fmt.Errorf("sign presentation token: %w", err)
	}
	return Presentation{
		CompactToken:     compact,
		DisclosureTokens: disclosures,
		ClaimDigestMap:   digestMap,
	}, nil
}

// Verify checks the compact token's signature against holderPublicKey and
// matches each disclosure against the signed _sd digest set. A disclosure
// whose digest is not in the set invalidates the whole presentation.
func Verify(compact string, disclosures []string, holderPublicKey ed25519.PublicKey) (Result, error) {
	if len(holderPublicKey) != ed25519.PublicKeySize {
		return Result{}, fmt.Errorf("public key has %d bytes, want %d", len(holderPublicKey), ed25519.PublicKeySize)
	}
	if len(disclosures) > maxDisclosures {
		return Result{}, fmt.Errorf("too many disclosures: %d", len(disclosures))
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"EdDSA"}))
	parsed, err := parser.Parse(compact, func(*jwt.Token) (any, error) {
		return holderPublicKey, nil
	})
	if err != nil || !parsed.Valid {
		return Result{Valid: false}, nil
	}
	payload, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Result{Valid: false}, nil
	}
	if alg, _ := payload["_sd_alg"].(string); alg != digestAlg {
		return Result{Valid: false}, nil
	}

	digestSet, err := digestSetFrom(payload)
	if err != nil {
		return Result{Valid: false}, nil
	}

	disclosed := make(map[string]any, len(disclosures))
	for _, d := range disclosures {
		name, value, err := decodeDisclosure(d)
		if err != nil {
			return Result{Valid: false}, nil
		}
		if !digestSet[digestOf(d)] {
			return Result{Valid: false}, nil
		}
		if _, dup := disclosed[name]; dup {
			return Result{Valid: false}, nil
		}
		disclosed[name] = value
	}

	issuer, _ := payload["iss"].(string)
	holder, _ := payload["sub"].(string)
	return Result{
		Valid:           true,
		DisclosedClaims: disclosed,
		Issuer:          issuer,
		Holder:          holder,
	}, nil
}

// selectClaims resolves the claim subset in deterministic order. Selecting a
// claim that does not exist is an error, not a silent skip.
func selectClaims(claims map[string]any, names []string) ([]string, error) {
	if names == nil {
		all := make([]string, 0, len(claims))
		for name := range claims {
			all = append(all, name)
		}
		sort.Strings(all)
		return all, nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := claims[name]; !ok {
			return nil, fmt.Errorf("claim %q is not present", name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// encodeDisclosure builds base64url(JSON [salt, name, value]).
func encodeDisclosure(name string, value any) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate disclosure salt: %w", err)
	}
	raw, err := json.Marshal([]any{base64.RawURLEncoding.EncodeToString(salt), name, value})
	if err != nil {
		return "", fmt.Errorf("marshal disclosure: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// decodeDisclosure reverses encodeDisclosure, enforcing the three-element
// array shape with a string name.
func decodeDisclosure(disclosure string) (string, any, error) {
	raw, err := base64.RawURLEncoding.DecodeString(disclosure)
	if err != nil {
		return "", nil, fmt.Errorf("disclosure is not base64url: %w", err)
	}
	var parts []any
	if err := json.Unmarshal(raw, &parts); err != nil {
		return "", nil, fmt.Errorf("disclosure is not a JSON array: %w", err)
	}
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("disclosure has %d elements, want 3", len(parts))
	}
	name, ok := parts[1].(string)
	if !ok || name == "" {
		return "", nil, fmt.Errorf("disclosure name must be a non-empty string")
	}
	return name, parts[2], nil
}

func digestOf(disclosure string) string {
	sum := sha256.Sum256([]byte(disclosure))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func digestSetFrom(payload jwt.MapClaims) (map[string]bool, error) {
	rawList, ok := payload["_sd"].([]any)
	if !ok {
		return nil, fmt.Errorf("_sd must be an array")
	}
	set := make(map[string]bool, len(rawList))
	for _, raw := range rawList {
		digest, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("_sd entries must be strings")
		}
		set[digest] = true
	}
	return set, nil
}
