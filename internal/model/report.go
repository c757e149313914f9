package model

// VerifyResult is the response of a text verification
type VerifyResult struct {
	Claims      []Claim `json:"claims"`
	Summary     Summary `json:"summary"`
	SummaryText string  `json:"summaryText,omitempty"`
	Message     string  `json:"message,omitempty"` // Set when no claims were found
}

// Summary counts verdicts across all claims of a verification
type Summary struct {
	Total        int `json:"total"`
	Supported    int `json:"supported"`
	Contradicted int `json:"contradicted"`
	Unverified   int `json:"unverified"`
	Opinions     int `json:"opinions"`
}

// Summarize counts claim verdicts
func Summarize(claims []Claim) Summary {
	s := Summary{Total: len(claims)}
	for _, c := range claims {
		switch c.Status {
		case StatusSupported:
			s.Supported++
		case StatusContradicted:
			s.Contradicted++
		case StatusUnverified:
			s.Unverified++
		case StatusOpinion:
			s.Opinions++
		}
	}
	return s
}

// AnswerResult is the response of a trust-scored search
type AnswerResult struct {
	Query          string     `json:"query"`
	Answer         string     `json:"answer"`
	TrustScore     int        `json:"trustScore"` // Always within [0,100]
	Evidence       []Evidence `json:"sources"`
	AgreementCount int        `json:"sourceAgreement"`
	Warnings       []string   `json:"warnings"`
}

// AskResult is the response of a plain question
type AskResult struct {
	Answer     string     `json:"answer"`
	Sources    []Evidence `json:"sources"`
	Confidence Confidence `json:"confidence"`
}

// Confidence is a coarse answer confidence label
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence returns the confidence for a label, or low when unknown
func ParseConfidence(s string) (Confidence, bool) {
	switch Confidence(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return Confidence(s), true
	default:
		return ConfidenceLow, false
	}
}

// SourceAccumulator holds running verdict counts for one content source
type SourceAccumulator struct {
	Name              string `json:"name"`
	TotalChecks       int    `json:"totalChecks"` // Verifications that carried at least one fact claim
	SupportedCount    int    `json:"supportedCount"`
	ContradictedCount int    `json:"contradictedCount"`
	UnconfirmedCount  int    `json:"unconfirmedCount"`
	OpinionCount      int    `json:"opinionCount"` // Only fed by manually logged counts
}

// FactualTotal is the number of fact claims counted for this source
func (a SourceAccumulator) FactualTotal() int {
	return a.SupportedCount + a.ContradictedCount + a.UnconfirmedCount
}

// Ranking is derived from a SourceAccumulator on each read
type Ranking struct {
	Name             string `json:"name"`
	ChecksCount      int    `json:"checksCount"`
	SupportedRate    int    `json:"supportedRate"`
	ContradictedRate int    `json:"contradictedRate"`
	Score            int    `json:"score"`
}
