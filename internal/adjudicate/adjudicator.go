// Package adjudicate decides whether retrieved evidence supports or
// contradicts a claim.
package adjudicate

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ppiankov/trustie/internal/llm"
	"github.com/ppiankov/trustie/internal/model"
)

const (
	explainNoEvidence = "No relevant sources were found to verify this claim. Consider searching manually."
	explainFailed     = "The verification check could not be completed. Please try again later."
	explainUnclear    = "Could not determine verification status from the available sources."
)

// Verdict is the adjudicated outcome for one claim
type Verdict struct {
	Status         model.ClaimStatus
	Explanation    string
	AgreementCount int
}

// Adjudicator judges a claim against its evidence through the backend
type Adjudicator struct {
	backend llm.Backend
	logger  *slog.Logger
}

// NewAdjudicator creates a new adjudicator
func NewAdjudicator(backend llm.Backend, logger *slog.Logger) *Adjudicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adjudicator{backend: backend, logger: logger}
}

type rawVerdict struct {
	Status          string `json:"status"`
	Explanation     string `json:"explanation"`
	SourceAgreement *int   `json:"sourceAgreement"`
	AgreementCount  *int   `json:"agreementCount"`
}

// Adjudicate returns a verdict for claim. It never fails: backend and parse
// errors degrade to unverified.
func (a *Adjudicator) Adjudicate(ctx context.Context, claim string, evidence []model.Evidence) Verdict {
	if len(evidence) == 0 {
		return Verdict{Status: model.StatusUnverified, Explanation: explainNoEvidence}
	}

	resp, err := a.backend.Complete(ctx, llm.Request{
		Purpose:   "adjudicate",
		Prompt:    buildPrompt(claim, evidence),
		MaxTokens: 500,
	})
	if err != nil {
		a.logger.Warn("adjudication failed", "error", err)
		return Verdict{Status: model.StatusUnverified, Explanation: explainFailed}
	}

	v := parseVerdict(resp.Text, len(evidence))
	v.Explanation = ExpandContractions(v.Explanation)
	return v
}

// parseVerdict tries the JSON reply first, then keyword heuristics,
// then falls back to unverified
func parseVerdict(text string, evidenceCount int) Verdict {
	var raw rawVerdict
	if err := llm.DecodeObject("adjudicate", text, &raw); err == nil {
		if status, ok := ParseStatus(raw.Status); ok {
			agreement := evidenceCount
			switch {
			case raw.SourceAgreement != nil:
				agreement = *raw.SourceAgreement
			case raw.AgreementCount != nil:
				agreement = *raw.AgreementCount
			}
			if status == model.StatusUnverified && raw.SourceAgreement == nil && raw.AgreementCount == nil {
				agreement = 0
			}

			explanation := strings.TrimSpace(raw.Explanation)
			if explanation == "" {
				explanation = explainUnclear
			}
			return Verdict{
				Status:         status,
				Explanation:    explanation,
				AgreementCount: clamp(agreement, 0, evidenceCount),
			}
		}
	}

	if status, ok := heuristicStatus(text); ok {
		agreement := 0
		if status != model.StatusUnverified {
			agreement = 1
		}
		return Verdict{
			Status:         status,
			Explanation:    heuristicExplanation(status),
			AgreementCount: clamp(agreement, 0, evidenceCount),
		}
	}

	return Verdict{Status: model.StatusUnverified, Explanation: explainUnclear}
}

// ParseStatus maps a backend status label, including legacy synonyms, to a claim status
func ParseStatus(s string) (model.ClaimStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "supported", "verified", "true", "confirmed":
		return model.StatusSupported, true
	case "contradicted", "false", "refuted", "debunked":
		return model.StatusContradicted, true
	case "unverified", "unconfirmed", "unclear", "insufficient":
		return model.StatusUnverified, true
	default:
		return "", false
	}
}

var (
	falsityMarkers = regexp.MustCompile(`(?i)\b(false|incorrect|inaccurate|contradict(s|ed)?|refute[sd]?|debunked|myth|misconception|not true|untrue)\b`)
	truthMarkers   = regexp.MustCompile(`(?i)\b(true|correct|accurate|support(s|ed)?|confirm(s|ed)?|verified)\b`)
	unclearMarkers = regexp.MustCompile(`(?i)\b(unclear|insufficient|inconclusive|unverified|unconfirmed|cannot (be )?(determine|verif(y|ied)))\b`)
)

// heuristicStatus reads a verdict out of prose. Uncertainty wins over
// falsity, and falsity over truth, since "not true" contains "true".
func heuristicStatus(text string) (model.ClaimStatus, bool) {
	switch {
	case unclearMarkers.MatchString(text):
		return model.StatusUnverified, true
	case falsityMarkers.MatchString(text):
		return model.StatusContradicted, true
	case truthMarkers.MatchString(text):
		return model.StatusSupported, true
	default:
		return "", false
	}
}

func heuristicExplanation(status model.ClaimStatus) string {
	switch status {
	case model.StatusSupported:
		return "The available sources appear to support this claim."
	case model.StatusContradicted:
		return "The available sources appear to contradict this claim."
	default:
		return explainUnclear
	}
}

func buildPrompt(claim string, evidence []model.Evidence) string {
	var sources strings.Builder
	for i, e := range evidence {
		fmt.Fprintf(&sources, "Source %d (%s trust, %s): %s\n", i+1, e.TrustTier, e.Domain, e.Snippet)
	}
	return fmt.Sprintf(adjudicatePrompt, claim, sources.String())
}

const adjudicatePrompt = `Evaluate whether this claim is supported or contradicted by the sources provided.

CLAIM: "%s"

SOURCES:
%s
INSTRUCTIONS:
- If the sources clearly SUPPORT the claim, status is "supported".
- If the sources clearly CONTRADICT the claim, status is "contradicted".
- If the sources are unclear or insufficient, status is "unverified".
- Count how many sources agree with your verdict.

Return ONLY JSON:
{"status": "supported" | "contradicted" | "unverified", "explanation": "brief reason in professional language without contractions", "sourceAgreement": number}`

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
