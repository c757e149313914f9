package score

import (
	"regexp"
	"strings"

	"github.com/ppiankov/trustie/internal/model"
)

// Advisory warnings attached to answers
const (
	WarnNoTrustedSource = "No high-trust or mainstream sources found. Consider verifying with additional sources."
	WarnFewSources      = "Limited sources available. Cross-reference with additional searches."
	WarnHedging         = "This topic contains uncertainty. Multiple perspectives may exist."
)

// TrustScorer computes the query trust score and its warnings.
// The constants are heuristics, not a validated policy.
type TrustScorer struct {
	config  model.ScoringConfig
	hedging *regexp.Regexp // nil when no hedging words are configured
}

// NewTrustScorer creates a scorer from config
func NewTrustScorer(config model.ScoringConfig) *TrustScorer {
	s := &TrustScorer{config: config}

	var words []string
	for _, w := range config.HedgingWords {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, regexp.QuoteMeta(strings.ToLower(w)))
		}
	}
	if len(words) > 0 {
		s.hedging = regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`)
	}
	return s
}

// Score returns a trust score in [0, 100]
func (s *TrustScorer) Score(evidence []model.Evidence, agreement int) int {
	high, medium := model.CountTiers(evidence)

	score := s.config.Base
	score += high * s.config.PerHigh
	score += medium * s.config.PerMedium

	switch {
	case agreement >= 3:
		score += s.config.StrongAgreement
	case agreement >= 2:
		score += s.config.ModerateAgreement
	}

	if high == 0 && medium == 0 {
		score -= s.config.NoTrustedPenalty
	}

	return clamp(score, 0, 100)
}

// Warnings returns advisory warnings for an answer and its evidence
func (s *TrustScorer) Warnings(evidence []model.Evidence, answer string) []string {
	warnings := []string{}

	high, medium := model.CountTiers(evidence)
	if high == 0 && medium == 0 {
		warnings = append(warnings, WarnNoTrustedSource)
	}

	if len(evidence) < 2 {
		warnings = append(warnings, WarnFewSources)
	}

	if s.hedging != nil && s.hedging.MatchString(answer) {
		warnings = append(warnings, WarnHedging)
	}

	return warnings
}

// Confidence adjusts the backend-declared confidence for the ask endpoint:
// no sources is always low, and three or more sources lift medium to high.
// A missing declaration counts as low.
func Confidence(evidence []model.Evidence, declared model.Confidence) model.Confidence {
	if declared == "" {
		declared = model.ConfidenceLow
	}

	switch {
	case len(evidence) == 0:
		return model.ConfidenceLow
	case len(evidence) >= 3 && declared == model.ConfidenceMedium:
		return model.ConfidenceHigh
	default:
		return declared
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
