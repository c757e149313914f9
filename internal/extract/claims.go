package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/trustie/internal/llm"
	"github.com/ppiankov/trustie/internal/model"
	"github.com/ppiankov/trustie/internal/normalize"
)

const extractPrompt = `Extract ALL factual claims from this text that can be verified. Be thorough and do not skip any verifiable statement.

TEXT TO ANALYZE:
"""
%s
"""

INSTRUCTIONS:
1. Extract EVERY statement that makes a factual claim (dates, numbers, events, scientific or historical facts).
2. Mark opinions and predictions separately.
3. Write a specific web search query for each claim.
4. Do not skip well-known facts; they still need checking.

Return ONLY a JSON array in this exact format:
[{"claim": "the claim as stated in the text", "type": "fact" | "opinion" | "prediction", "searchQuery": "query to verify this claim"}]

If no claims exist, return [].`

// ClaimExtractor turns free text into atomic claims via the backend
type ClaimExtractor struct {
	backend        llm.Backend
	chunkThreshold int
	maxChunks      int
	maxClaims      int
	logger         *slog.Logger
}

// NewClaimExtractor creates a new claim extractor
func NewClaimExtractor(backend llm.Backend, config model.PipelineConfig, logger *slog.Logger) *ClaimExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	e := &ClaimExtractor{
		backend:        backend,
		chunkThreshold: config.ChunkThreshold,
		maxChunks:      config.MaxChunks,
		maxClaims:      config.MaxClaims,
		logger:         logger,
	}
	if e.chunkThreshold <= 0 {
		e.chunkThreshold = 4000
	}
	if e.maxChunks <= 0 {
		e.maxChunks = 3
	}
	if e.maxClaims <= 0 || e.maxClaims > model.MaxClaimsPerText {
		e.maxClaims = model.MaxClaimsPerText
	}
	return e
}

type extractedClaim struct {
	Claim       string `json:"claim"`
	Type        string `json:"type"`
	SearchQuery string `json:"searchQuery"`
}

// Extract returns up to maxClaims deduplicated claims in text order.
// Claims carry Text, Type and SearchQuery; verdict fields are left empty.
// A chunk whose backend call or parse fails contributes no claims.
func (e *ClaimExtractor) Extract(ctx context.Context, text string) []model.Claim {
	var claims []model.Claim
	seen := make(map[string]bool)

	for i, chunk := range Chunks(text, e.chunkThreshold, e.maxChunks) {
		found, err := e.extractChunk(ctx, chunk)
		if err != nil {
			e.logger.Warn("claim extraction failed for chunk", "chunk", i, "error", err)
			continue
		}

		for _, c := range found {
			key := dedupeKey(c.Text)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			claims = append(claims, c)
			if len(claims) == e.maxClaims {
				return claims
			}
		}
	}

	return claims
}

func (e *ClaimExtractor) extractChunk(ctx context.Context, chunk string) ([]model.Claim, error) {
	resp, err := e.backend.Complete(ctx, llm.Request{
		Purpose: "extract",
		Prompt:  fmt.Sprintf(extractPrompt, chunk),
	})
	if err != nil {
		return nil, err
	}

	var raw []extractedClaim
	if err := llm.DecodeArray("extract", resp.Text, &raw); err != nil {
		return nil, err
	}

	claims := make([]model.Claim, 0, len(raw))
	for _, r := range raw {
		text := normalize.Inline(r.Claim)
		if text == "" {
			continue
		}
		query := normalize.Inline(r.SearchQuery)
		if query == "" {
			query = text
		}
		claims = append(claims, model.Claim{
			Text:        text,
			Type:        model.ParseClaimType(r.Type),
			SearchQuery: query,
		})
	}
	return claims, nil
}

// dedupeKey folds case and whitespace so near-identical claims collapse
func dedupeKey(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// Chunks splits text into at most maxChunks pieces on paragraph and
// sentence boundaries. Text of threshold runes or fewer is one chunk.
func Chunks(text string, threshold, maxChunks int) []string {
	total := utf8.RuneCountInString(text)
	if total <= threshold || maxChunks <= 1 {
		return []string{text}
	}

	target := (total + maxChunks - 1) / maxChunks
	if target < threshold/maxChunks {
		target = threshold / maxChunks
	}

	var chunks []string
	var current strings.Builder
	size := 0

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		size = 0
	}

	for _, unit := range units(text, target) {
		n := utf8.RuneCountInString(unit)
		// The last chunk absorbs the remainder
		if size > 0 && size+n > target && len(chunks) < maxChunks-1 {
			flush()
		}
		if size > 0 {
			current.WriteString("\n")
			size++
		}
		current.WriteString(unit)
		size += n
	}
	flush()

	return chunks
}

// units yields paragraphs, breaking paragraphs longer than limit into sentences
func units(text string, limit int) []string {
	var out []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) <= limit {
			out = append(out, para)
			continue
		}
		out = append(out, normalize.Sentences(para)...)
	}
	return out
}
