package validate

import (
	"net/url"
	"strings"

	"github.com/ppiankov/trustie/internal/model"
	"golang.org/x/net/publicsuffix"
)

// institutionalTLDs are top-level suffixes reserved for government,
// education and military registrants
var institutionalTLDs = map[string]bool{
	"gov": true,
	"edu": true,
	"mil": true,
}

// institutionalLabels are second-level labels with the same meaning under
// country suffixes (gov.uk, ac.uk, edu.au, gob.mx, gouv.fr)
var institutionalLabels = map[string]bool{
	"gov":  true,
	"edu":  true,
	"mil":  true,
	"ac":   true,
	"gob":  true,
	"gouv": true,
}

// TierClassifier classifies source domains into trust tiers.
// It is static after construction and safe for concurrent use.
type TierClassifier struct {
	highDomains    []string
	publisherNames []string
	mediumDomains  []string
}

// NewTierClassifier creates a classifier from curated domain lists.
// A nil config uses the defaults.
func NewTierClassifier(config *model.TrustConfig) *TierClassifier {
	if config == nil {
		defaults := model.DefaultTrustConfig()
		config = &defaults
	}

	return &TierClassifier{
		highDomains:    lowerAll(config.HighDomains),
		publisherNames: lowerAll(config.PublisherNames),
		mediumDomains:  lowerAll(config.MediumDomains),
	}
}

// Classify classifies a domain (or a full URL) into a trust tier
func (c *TierClassifier) Classify(domain string) model.TrustTier {
	host := Host(domain)
	if host == "" {
		return model.TierLow
	}

	if isInstitutional(host) {
		return model.TierHigh
	}

	for _, name := range c.publisherNames {
		if strings.Contains(host, name) {
			return model.TierHigh
		}
	}

	if matchesAny(host, c.highDomains) {
		return model.TierHigh
	}

	if matchesAny(host, c.mediumDomains) {
		return model.TierMedium
	}

	return model.TierLow
}

// Host extracts a lowercase host name without port or leading "www." from
// either a bare domain or a URL
func Host(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return ""
	}

	if strings.Contains(raw, "://") {
		if parsed, err := url.Parse(raw); err == nil {
			raw = parsed.Host
		}
	} else if idx := strings.IndexAny(raw, "/?#"); idx >= 0 {
		raw = raw[:idx]
	}

	// Remove port from host
	if idx := strings.LastIndex(raw, ":"); idx > 0 {
		raw = raw[:idx]
	}

	raw = strings.TrimSuffix(raw, ".")
	return strings.TrimPrefix(raw, "www.")
}

// isInstitutional reports whether the host sits under a government or
// education public suffix such as gov, edu, gov.uk or ac.uk
func isInstitutional(host string) bool {
	suffix, icann := publicsuffix.PublicSuffix(host)
	if !icann {
		return false
	}

	labels := strings.Split(suffix, ".")
	if len(labels) == 1 {
		return institutionalTLDs[labels[0]]
	}
	return institutionalLabels[labels[0]]
}

// matchesAny checks the host against a domain list, including subdomains
func matchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(strings.ToLower(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
