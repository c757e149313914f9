package model

import "strings"

// Claim represents an atomic, checkable statement extracted from text
type Claim struct {
	ID              string      `json:"id"`                        // Per-response identifier
	Text            string      `json:"claim"`                     // The claim text itself
	Type            ClaimType   `json:"type"`                      // fact, opinion, prediction
	Status          ClaimStatus `json:"status"`                    // Final verdict
	Explanation     string      `json:"explanation"`               // Human-readable reason for the verdict
	Evidence        []Evidence  `json:"sources"`                   // At most MaxEvidencePerClaim items
	AgreementCount  int         `json:"sourceAgreement"`           // Evidence items that concur
	SearchQuery     string      `json:"searchQuery,omitempty"`     // Query used for evidence retrieval
	MisconceptionID string      `json:"misconceptionId,omitempty"` // Set when the misconception table decided the verdict
}

// ClaimType categorizes the nature of the claim
type ClaimType string

const (
	ClaimTypeFact       ClaimType = "fact"       // Verifiable statement of fact
	ClaimTypeOpinion    ClaimType = "opinion"    // Subjective judgement
	ClaimTypePrediction ClaimType = "prediction" // Statement about the future
)

// ParseClaimType maps a backend-provided label to a ClaimType.
// Anything unrecognised is treated as a fact so that it still gets checked.
func ParseClaimType(s string) ClaimType {
	switch ClaimType(strings.ToLower(strings.TrimSpace(s))) {
	case ClaimTypeOpinion:
		return ClaimTypeOpinion
	case ClaimTypePrediction:
		return ClaimTypePrediction
	default:
		return ClaimTypeFact
	}
}

// IsFact reports whether the claim feeds evidence retrieval and rankings
func (c Claim) IsFact() bool {
	return c.Type == ClaimTypeFact
}

// ClaimStatus is the verdict assigned to a claim
type ClaimStatus string

const (
	StatusSupported    ClaimStatus = "supported"
	StatusContradicted ClaimStatus = "contradicted"
	StatusUnverified   ClaimStatus = "unverified"
	StatusOpinion      ClaimStatus = "opinion"
)

const (
	// MaxClaimsPerText caps the claims returned for a single verification
	MaxClaimsPerText = 10

	// MaxEvidencePerClaim caps the evidence attached to one claim or answer
	MaxEvidencePerClaim = 5
)
