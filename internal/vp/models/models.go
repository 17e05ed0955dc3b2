package models

// Status is the typed outcome of presentation verification.
type Status string

const (
	StatusValid               Status = "valid"
	StatusInvalidPresentation Status = "invalid_presentation"
	StatusHolderNotFound      Status = "holder_not_found"
)

// Presentation is the result of creating a selective-disclosure
// presentation: the signed token plus one disclosure per revealed claim.
type Presentation struct {
	PresentationToken   string   `json:"presentation_token"`
	DisclosureTokens    []string `json:"disclosure_tokens"`
	DisclosedClaimNames []string `json:"disclosed_claim_names"`
}

// VerifyResult is the outcome of verifying a presentation. DisclosedClaims
// holds only the claims whose disclosures checked out against the signed
// digest set.
type VerifyResult struct {
	IsValid         bool           `json:"is_valid"`
	Status          Status         `json:"status"`
	DisclosedClaims map[string]any `json:"disclosed_claims,omitempty"`
}
