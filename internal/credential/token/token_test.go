package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TokenSuite struct {
	suite.Suite
}

func TestTokenSuite(t *testing.T) {
	suite.Run(t, new(TokenSuite))
}

func seg(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func rawSeg(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func (s *TokenSuite) TestBuildAndAssemble() {
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	expires := issued.Add(time.Hour)

	input, err := BuildSigningInput("did:key:zIss", "did:key:zSub", "EmployeeCredential",
		map[string]any{"role": "engineer"}, issued, &expires)
	s.Require().NoError(err)

	parts := strings.Split(input, ".")
	s.Require().Len(parts, 2)

	s.Run("header is exactly alg and typ", func() {
		s.Require().NoError(DecodeHeader(parts[0]))
	})

	s.Run("payload round-trips through the strict decoder", func() {
		payload, err := DecodePayload(parts[1])
		s.Require().NoError(err)
		s.Equal("did:key:zIss", payload.Issuer)
		s.Equal("did:key:zSub", payload.Subject)
		s.Equal("EmployeeCredential", payload.CredentialType)
		s.Require().NotNil(payload.ExpiresAt)
		s.True(payload.ExpiresAt.Equal(expires.Truncate(time.Second)))
		s.Equal("engineer", payload.SubjectClaims["role"])
	})

	s.Run("assemble produces three segments", func() {
		compact := Assemble(input, []byte{0x01, 0x02, 0x03})
		header, payload, signature, err := Split(compact)
		s.Require().NoError(err)
		s.Equal(parts[0], header)
		s.Equal(parts[1], payload)

		sig, err := DecodeSignature(signature)
		s.Require().NoError(err)
		s.Equal([]byte{0x01, 0x02, 0x03}, sig)
	})

	s.Run("no expiry omits the exp claim", func() {
		input, err := BuildSigningInput("did:key:zIss", "did:key:zSub", "t", nil, issued, nil)
		s.Require().NoError(err)
		payload, err := DecodePayload(strings.Split(input, ".")[1])
		s.Require().NoError(err)
		s.Nil(payload.ExpiresAt)
		s.Nil(payload.SubjectClaims)
	})
}

func (s *TokenSuite) TestCheckSize() {
	s.Require().NoError(CheckSize("a.b.c"))
	s.Require().Error(CheckSize(""))
	s.Require().NoError(CheckSize(strings.Repeat("x", MaxTokenBytes)))
	s.Require().Error(CheckSize(strings.Repeat("x", MaxTokenBytes+1)))
}

func (s *TokenSuite) TestSplit() {
	cases := map[string]string{
		"one segment":     "abc",
		"two segments":    "a.b",
		"four segments":   "a.b.c.d",
		"empty header":    ".b.c",
		"empty payload":   "a..c",
		"empty signature": "a.b.",
		"only dots":       "..",
		"trailing dot":    "a.b.c.",
	}
	for name, raw := range cases {
		s.Run(name, func() {
			_, _, _, err := Split(raw)
			s.Require().Error(err)
		})
	}

	h, p, sig, err := Split("aa.bb.cc")
	s.Require().NoError(err)
	s.Equal("aa", h)
	s.Equal("bb", p)
	s.Equal("cc", sig)
}

func (s *TokenSuite) TestDecodeHeader() {
	s.Run("accepts the canonical header", func() {
		s.Require().NoError(DecodeHeader(seg(map[string]string{"alg": "EdDSA", "typ": "JWT"})))
	})

	rejects := map[string]string{
		"kid field":          seg(map[string]string{"alg": "EdDSA", "typ": "JWT", "kid": "key-1"}),
		"embedded jwk":       seg(map[string]any{"alg": "EdDSA", "typ": "JWT", "jwk": map[string]string{"kty": "OKP"}}),
		"jku url":            seg(map[string]string{"alg": "EdDSA", "typ": "JWT", "jku": "https://evil.example/keys"}),
		"x5c chain":          seg(map[string]any{"alg": "EdDSA", "typ": "JWT", "x5c": []string{"MIIB"}}),
		"x5t thumbprint":     seg(map[string]string{"alg": "EdDSA", "typ": "JWT", "x5t": "abc"}),
		"x5u url":            seg(map[string]string{"alg": "EdDSA", "typ": "JWT", "x5u": "https://evil.example/cert"}),
		"unknown field":      seg(map[string]string{"alg": "EdDSA", "typ": "JWT", "crit": "exp"}),
		"missing typ":        seg(map[string]string{"alg": "EdDSA"}),
		"missing alg":        seg(map[string]string{"typ": "JWT"}),
		"alg none":           seg(map[string]string{"alg": "none", "typ": "JWT"}),
		"alg HS256":          seg(map[string]string{"alg": "HS256", "typ": "JWT"}),
		"alg lowercase":      seg(map[string]string{"alg": "eddsa", "typ": "JWT"}),
		"typ not JWT":        seg(map[string]string{"alg": "EdDSA", "typ": "JWS"}),
		"array not object":   seg([]string{"EdDSA", "JWT"}),
		"scalar not object":  seg("EdDSA"),
		"not base64url":      "%%%",
		"not json":           rawSeg("{alg:EdDSA}"),
		"trailing data":      rawSeg(`{"alg":"EdDSA","typ":"JWT"}garbage`),
		"duplicate via case": seg(map[string]string{"alg": "EdDSA", "Typ": "JWT"}),
	}
	for name, segment := range rejects {
		s.Run("rejects "+name, func() {
			s.Require().Error(DecodeHeader(segment))
		})
	}
}

func (s *TokenSuite) TestDecodePayload() {
	s.Run("issuer is required", func() {
		_, err := DecodePayload(seg(map[string]any{"sub": "x"}))
		s.Require().Error(err)

		_, err = DecodePayload(seg(map[string]any{"iss": ""}))
		s.Require().Error(err)

		_, err = DecodePayload(seg(map[string]any{"iss": 42}))
		s.Require().Error(err)
	})

	s.Run("exp null means never expires", func() {
		payload, err := DecodePayload(rawSeg(`{"iss":"did:key:zX","exp":null}`))
		s.Require().NoError(err)
		s.Nil(payload.ExpiresAt)
	})

	s.Run("exp accepts integers in the sane epoch range", func() {
		payload, err := DecodePayload(rawSeg(`{"iss":"did:key:zX","exp":253402300799}`))
		s.Require().NoError(err)
		s.Require().NotNil(payload.ExpiresAt)
		s.Equal(9999, payload.ExpiresAt.Year())
	})

	expRejects := map[string]string{
		"float":          `{"iss":"did:key:zX","exp":1700000000.5}`,
		"string":         `{"iss":"did:key:zX","exp":"1700000000"}`,
		"negative":       `{"iss":"did:key:zX","exp":-1}`,
		"beyond 9999":    `{"iss":"did:key:zX","exp":253402300800}`,
		"exponent float": `{"iss":"did:key:zX","exp":1.7e9}`,
		"boolean":        `{"iss":"did:key:zX","exp":true}`,
		"object":         `{"iss":"did:key:zX","exp":{}}`,
	}
	for name, raw := range expRejects {
		s.Run("rejects exp "+name, func() {
			_, err := DecodePayload(rawSeg(raw))
			s.Require().Error(err)
		})
	}

	s.Run("claims null means no claim set", func() {
		payload, err := DecodePayload(rawSeg(`{"iss":"did:key:zX","claims":null}`))
		s.Require().NoError(err)
		s.Nil(payload.SubjectClaims)
	})

	s.Run("claims must be an object", func() {
		_, err := DecodePayload(rawSeg(`{"iss":"did:key:zX","claims":[1,2]}`))
		s.Require().Error(err)

		_, err = DecodePayload(rawSeg(`{"iss":"did:key:zX","claims":"flat"}`))
		s.Require().Error(err)
	})

	s.Run("claims are capped", func() {
		claims := make(map[string]any, MaxSubjectClaims+1)
		for i := 0; i <= MaxSubjectClaims; i++ {
			claims[fmt.Sprintf("claim_%d", i)] = i
		}
		_, err := DecodePayload(seg(map[string]any{"iss": "did:key:zX", "claims": claims}))
		s.Require().Error(err)
	})

	s.Run("rejects non-object payloads", func() {
		for _, raw := range []string{`[1,2,3]`, `"payload"`, `42`, `{}tail`} {
			_, err := DecodePayload(rawSeg(raw))
			s.Require().Error(err, "payload %s", raw)
		}
	})

	s.Run("rejects invalid base64url", func() {
		_, err := DecodePayload("!!!")
		s.Require().Error(err)
	})
}

func (s *TokenSuite) TestDecodeSignature() {
	sig, err := DecodeSignature(base64.RawURLEncoding.EncodeToString([]byte("sig-bytes")))
	s.Require().NoError(err)
	s.Equal([]byte("sig-bytes"), sig)

	_, err = DecodeSignature("not base64url at all!")
	s.Require().Error(err)
}
