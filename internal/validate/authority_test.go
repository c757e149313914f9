package validate

import (
	"testing"

	"github.com/ppiankov/trustie/internal/model"
)

func TestTierClassifier_HighTier(t *testing.T) {
	classifier := NewTierClassifier(nil)

	tests := []struct {
		domain string
		desc   string
	}{
		{"nasa.gov", "US government TLD"},
		{"www.cdc.gov", "Government with www prefix"},
		{"mit.edu", "Education TLD"},
		{"legislation.gov.uk", "UK government second level"},
		{"ox.ac.uk", "UK academic second level"},
		{"sydney.edu.au", "Australian education second level"},
		{"en.wikipedia.org", "Encyclopedia subdomain"},
		{"britannica.com", "Major reference"},
		{"pubmed.ncbi.nlm.nih.gov", "Science publisher name"},
		{"www.nature.com", "Science publisher domain"},
		{"www.sciencedirect.com", "Science publisher name in host"},
		{"https://en.wikipedia.org/wiki/Great_Wall_of_China", "Full URL"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := classifier.Classify(tt.domain); got != model.TierHigh {
				t.Errorf("Expected high for %s, got %s", tt.domain, got)
			}
		})
	}
}

func TestTierClassifier_MediumTier(t *testing.T) {
	classifier := NewTierClassifier(nil)

	for _, domain := range []string{"reuters.com", "www.bbc.co.uk", "apnews.com", "edition.cnn.com"} {
		if got := classifier.Classify(domain); got != model.TierMedium {
			t.Errorf("Expected medium for %s, got %s", domain, got)
		}
	}
}

func TestTierClassifier_LowTier(t *testing.T) {
	classifier := NewTierClassifier(nil)

	tests := []string{
		"",
		"myblog.example.com",
		"notreuters.com",
		"government-facts.com",
		"edu-tips.net",
		"random.ac", // country TLD, not an academic suffix
	}

	for _, domain := range tests {
		if got := classifier.Classify(domain); got != model.TierLow {
			t.Errorf("Expected low for %q, got %s", domain, got)
		}
	}
}

func TestTierClassifier_CustomLists(t *testing.T) {
	classifier := NewTierClassifier(&model.TrustConfig{
		HighDomains:   []string{"Example.ORG"},
		MediumDomains: []string{"news.example.com"},
	})

	if got := classifier.Classify("docs.example.org"); got != model.TierHigh {
		t.Errorf("Expected custom high domain to match case-insensitively, got %s", got)
	}
	if got := classifier.Classify("news.example.com"); got != model.TierMedium {
		t.Errorf("Expected custom medium domain, got %s", got)
	}
	if got := classifier.Classify("reuters.com"); got != model.TierLow {
		t.Errorf("Expected default lists to be replaced, got %s", got)
	}
}

func TestHost(t *testing.T) {
	tests := map[string]string{
		"https://www.Example.com:8443/path?q=1": "example.com",
		"www.bbc.co.uk":                         "bbc.co.uk",
		"nasa.gov/missions":                     "nasa.gov",
		"  Reuters.com.  ":                      "reuters.com",
		"":                                      "",
	}

	for in, want := range tests {
		if got := Host(in); got != want {
			t.Errorf("Host(%q) = %q, want %q", in, got, want)
		}
	}
}
