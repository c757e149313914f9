package model

// Evidence represents a retrieved source snippet
type Evidence struct {
	URL       string    `json:"url"`     // Full URL
	Title     string    `json:"title"`   // Page title
	Snippet   string    `json:"snippet"` // Relevant quote
	Domain    string    `json:"domain"`  // Host name, lowercase, without www.
	TrustTier TrustTier `json:"quality"` // Source trust classification
}

// TrustTier represents the coarse reliability classification of a source domain
type TrustTier string

const (
	TierHigh   TrustTier = "high"   // Government, education, science publishers, major references
	TierMedium TrustTier = "medium" // Mainstream news outlets
	TierLow    TrustTier = "low"    // Everything else
)

// Rank orders tiers for sorting (lower is better)
func (t TrustTier) Rank() int {
	switch t {
	case TierHigh:
		return 0
	case TierMedium:
		return 1
	default:
		return 2
	}
}

// CountTiers returns the number of high and medium tier items
func CountTiers(evidence []Evidence) (high, medium int) {
	for _, e := range evidence {
		switch e.TrustTier {
		case TierHigh:
			high++
		case TierMedium:
			medium++
		}
	}
	return high, medium
}
