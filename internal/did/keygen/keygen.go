// Package keygen produces validated ed25519 keypairs. Fresh hosts and
// containers occasionally boot with degraded randomness; every sample drawn
// from the entropy source is validated before a key derived from it is
// trusted, and every generated keypair must pass a sign/verify self-test.
package keygen

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"io"

	dErrors "attest/pkg/domain-errors"
)

const (
	// seedLen is the ed25519 seed size.
	seedLen = ed25519.SeedSize
	// minUniqueBytes is the minimum count of distinct byte values a 32-byte
	// seed sample must contain. A uniform sample of 32 bytes has ~30 distinct
	// values in expectation; below 8 the source is unambiguously broken.
	minUniqueBytes = 8
	// chiSquareSampleLen is the size of the larger sample drawn for the
	// uniformity test.
	chiSquareSampleLen = 1024
	// chiSquareLimit bounds the chi-square statistic over 256 bins.
	// df=255: mean 255, stddev ~22.6; 400 is beyond six sigma, so a healthy
	// source essentially never trips it while flat-or-skewed sources do.
	chiSquareLimit = 400.0
)

// probeMessage is signed and verified by the keypair self-test before the
// pair is trusted.
var probeMessage = []byte("attest keypair self-test probe")

// KeyPair holds freshly generated key material. The caller owns zeroing the
// private key; pair with a Guard.
type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// Generator produces validated keypairs from an entropy source.
type Generator struct {
	source io.Reader
}

// Option configures a Generator.
type Option func(*Generator)

// WithSource overrides the entropy source. Tests use this to inject
// degraded randomness.
func WithSource(r io.Reader) Option {
	return func(g *Generator) {
		if r != nil {
			g.source = r
		}
	}
}

// New constructs a Generator reading from crypto/rand by default.
func New(opts ...Option) *Generator {
	g := &Generator{source: rand.Reader}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate draws a validated seed, derives an ed25519 keypair, and runs the
// sign/verify self-test. All failures carry CodeEntropyFailure: they signal
// an environment defect and are not retryable within the same invocation.
func (g *Generator) Generate() (KeyPair, error) {
	if err := g.checkUniformity(); err != nil {
		return KeyPair{}, err
	}

	seed := make([]byte, seedLen)
	defer Zero(seed)
	if _, err := io.ReadFull(g.source, seed); err != nil {
		return KeyPair{}, dErrors.Wrap(err, dErrors.CodeEntropyFailure, "entropy source read failed")
	}
	if err := validateSeed(seed); err != nil {
		return KeyPair{}, err
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	if err := selfTest(pub, priv); err != nil {
		Zero(priv)
		return KeyPair{}, err
	}
	return KeyPair{Public: pub, Private: priv}, nil
}

// validateSeed rejects degenerate samples: all-identical (covers all-zero
// and all-0xFF) and samples with too few distinct byte values.
func validateSeed(seed []byte) error {
	if len(seed) != seedLen {
		return dErrors.Newf(dErrors.CodeEntropyFailure, "seed sample has %d bytes, want %d", len(seed), seedLen)
	}
	if bytes.Count(seed, seed[:1]) == len(seed) {
		return dErrors.New(dErrors.CodeEntropyFailure, "seed sample is a single repeated byte")
	}
	var seen [256]bool
	unique := 0
	for _, b := range seed {
		if !seen[b] {
			seen[b] = true
			unique++
		}
	}
	if unique < minUniqueBytes {
		return dErrors.Newf(dErrors.CodeEntropyFailure, "seed sample has %d distinct byte values, want at least %d", unique, minUniqueBytes)
	}
	return nil
}

// checkUniformity draws a larger sample and applies a chi-square test over
// byte values. Catches subtly skewed sources that pass the per-seed checks.
func (g *Generator) checkUniformity() error {
	sample := make([]byte, chiSquareSampleLen)
	defer Zero(sample)
	if _, err := io.ReadFull(g.source, sample); err != nil {
		return dErrors.Wrap(err, dErrors.CodeEntropyFailure, "entropy source read failed")
	}

	var counts [256]int
	for _, b := range sample {
		counts[b]++
	}
	expected := float64(len(sample)) / 256.0
	chi2 := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi2 += d * d / expected
	}
	if chi2 > chiSquareLimit {
		return dErrors.Newf(dErrors.CodeEntropyFailure, "entropy uniformity check failed: chi-square %.1f exceeds %.1f", chi2, chiSquareLimit)
	}
	return nil
}

// selfTest signs and verifies a fixed probe message, and checks the fixed
// size contract (32-byte public key, 64-byte signature).
func selfTest(pub ed25519.PublicKey, priv ed25519.PrivateKey) error {
	if len(pub) != ed25519.PublicKeySize {
		return dErrors.Newf(dErrors.CodeEntropyFailure, "public key has %d bytes, want %d", len(pub), ed25519.PublicKeySize)
	}
	sig := ed25519.Sign(priv, probeMessage)
	defer Zero(sig)
	if len(sig) != ed25519.SignatureSize {
		return dErrors.Newf(dErrors.CodeEntropyFailure, "signature has %d bytes, want %d", len(sig), ed25519.SignatureSize)
	}
	if !ed25519.Verify(pub, probeMessage, sig) {
		return dErrors.New(dErrors.CodeEntropyFailure, "keypair self-test failed to verify probe signature")
	}
	return nil
}
