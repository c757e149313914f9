package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ppiankov/trustie/internal/adjudicate"
	"github.com/ppiankov/trustie/internal/cache"
	"github.com/ppiankov/trustie/internal/evidence"
	"github.com/ppiankov/trustie/internal/extract"
	"github.com/ppiankov/trustie/internal/llm"
	"github.com/ppiankov/trustie/internal/metrics"
	"github.com/ppiankov/trustie/internal/misconception"
	"github.com/ppiankov/trustie/internal/model"
	"github.com/ppiankov/trustie/internal/normalize"
	"github.com/ppiankov/trustie/internal/rankings"
	"github.com/ppiankov/trustie/internal/score"
	"github.com/ppiankov/trustie/internal/validate"
	"github.com/ppiankov/trustie/internal/worker"
)

const (
	explainOpinion    = "This is an opinion or subjective statement that cannot be fact-checked."
	explainPrediction = "This is a prediction about the future that cannot be verified yet."

	noClaimsMessage  = "No factual claims found to verify. The text may contain only opinions or general statements."
	noReliableAnswer = "I could not find a reliable answer to your question."
	searchFailed     = "Unable to process search. Please try again."

	// minAnswerRunes is the shortest backend answer the ask endpoint accepts
	minAnswerRunes = 11
)

// ErrNoBackend is returned when the pipeline was built without a backend
var ErrNoBackend = fmt.Errorf("%w: no backend available", model.ErrConfiguration)

// Deps are the collaborators of a Pipeline. Nil fields get defaults,
// except Backend: without one every operation fails with ErrNoBackend.
type Deps struct {
	Backend        llm.Backend
	Misconceptions *misconception.Table
	Classifier     *validate.TierClassifier
	Rankings       *rankings.Service
	Cache          cache.Cache
	Logger         *slog.Logger
}

// Pipeline orchestrates claim verification and trust-scored answers
type Pipeline struct {
	backend      llm.Backend
	table        *misconception.Table
	extractor    *extract.ClaimExtractor
	retriever    *evidence.Retriever
	adjudicator  *adjudicate.Adjudicator
	scorer       *score.TrustScorer
	rankings     *rankings.Service
	maxClaims    int
	claimWorkers int
	logger       *slog.Logger
}

// New creates a pipeline from configuration and explicit collaborators
func New(cfg *model.Config, deps Deps) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	table := deps.Misconceptions
	if table == nil {
		t, err := misconception.Default()
		if err != nil {
			return nil, fmt.Errorf("load misconception table: %w", err)
		}
		table = t
	}

	classifier := deps.Classifier
	if classifier == nil {
		classifier = validate.NewTierClassifier(&cfg.Trust)
	}

	ranks := deps.Rankings
	if ranks == nil {
		ranks = rankings.NewService(rankings.NewMemoryStore(), cfg.Rankings)
	}

	maxClaims := cfg.Pipeline.MaxClaims
	if maxClaims <= 0 || maxClaims > model.MaxClaimsPerText {
		maxClaims = model.MaxClaimsPerText
	}

	claimWorkers := cfg.Pipeline.ClaimWorkers
	if claimWorkers <= 0 {
		claimWorkers = 1
	}

	return &Pipeline{
		backend:     deps.Backend,
		table:       table,
		extractor:   extract.NewClaimExtractor(deps.Backend, cfg.Pipeline, logger),
		adjudicator: adjudicate.NewAdjudicator(deps.Backend, logger),
		retriever: evidence.NewRetriever(deps.Backend, classifier, evidence.Options{
			ResultsPerQuery: cfg.Pipeline.ResultsPerQuery,
			MaxEvidence:     cfg.Pipeline.MaxEvidence,
			MaxSearches:     cfg.Backend.MaxSearch,
			Cache:           deps.Cache,
			CacheTTL:        cfg.Cache.TTL,
		}, logger),
		scorer:       score.NewTrustScorer(cfg.Scoring),
		rankings:     ranks,
		maxClaims:    maxClaims,
		claimWorkers: claimWorkers,
		logger:       logger,
	}, nil
}

// NewFromConfig builds the backend, limiter, misconception table and cache
// described by cfg and returns a ready pipeline. A missing API key or an
// unknown provider wraps model.ErrConfiguration.
func NewFromConfig(cfg *model.Config, store rankings.Store, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := llm.NewBackend(llm.ConfigFromModel(cfg.Backend))
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	guarded := llm.NewGuarded(backend, limiter, cfg.Backend.Timeout, logger)

	var table *misconception.Table
	if cfg.Misconceptions.Path != "" {
		table, err = misconception.Load(cfg.Misconceptions.Path)
	} else {
		table, err = misconception.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrConfiguration, err)
	}

	var evidenceCache cache.Cache
	if cfg.Cache.Enabled {
		evidenceCache = cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL)
	}

	if store == nil {
		store = rankings.NewMemoryStore()
	}

	logger.Info("pipeline ready",
		"provider", backend.Name(),
		"model", cfg.Backend.Model,
		"misconceptions", table.Len(),
		"cache", cfg.Cache.Enabled,
		"claim_workers", cfg.Pipeline.ClaimWorkers)

	return New(cfg, Deps{
		Backend:        guarded,
		Misconceptions: table,
		Rankings:       rankings.NewService(store, cfg.Rankings),
		Cache:          evidenceCache,
		Logger:         logger,
	})
}

// Rankings returns the rankings service the pipeline records into
func (p *Pipeline) Rankings() *rankings.Service {
	return p.rankings
}

// BackendName returns the provider name, or "" without a backend
func (p *Pipeline) BackendName() string {
	if p.backend == nil {
		return ""
	}
	return p.backend.Name()
}

// Verify extracts the claims of content, checks each one and records the
// fact verdicts against source. Only input validation and a missing
// backend fail the call; every other problem degrades a single claim.
func (p *Pipeline) Verify(ctx context.Context, content, source string) (*model.VerifyResult, error) {
	text, err := ValidateContent(content)
	if err != nil {
		return nil, err
	}
	source, err = ValidateSource(source)
	if err != nil {
		return nil, err
	}
	if p.backend == nil {
		return nil, ErrNoBackend
	}

	claims, matched := p.prescan(text)
	claims = p.merge(claims, matched, p.extractor.Extract(ctx, text))

	if len(claims) == 0 {
		return &model.VerifyResult{
			Claims:  []model.Claim{},
			Message: noClaimsMessage,
		}, nil
	}

	p.checkFacts(ctx, claims)

	for i := range claims {
		claims[i].ID = uuid.NewString()
		claims[i].Explanation = adjudicate.ExpandContractions(claims[i].Explanation)
		metrics.RecordVerdict(string(claims[i].Status))
	}

	if err := p.rankings.RecordClaims(ctx, source, claims); err != nil {
		p.logger.Warn("failed to record rankings", "source", source, "error", err)
	}

	summary := model.Summarize(claims)
	p.logger.Info("verification complete",
		"source", source,
		"claims", summary.Total,
		"supported", summary.Supported,
		"contradicted", summary.Contradicted,
		"unverified", summary.Unverified,
		"opinions", summary.Opinions)

	return &model.VerifyResult{
		Claims:      claims,
		Summary:     summary,
		SummaryText: SummaryText(summary),
	}, nil
}

// prescan checks every sentence against the misconception table before
// any backend call. Each entry contributes at most one claim.
func (p *Pipeline) prescan(text string) ([]model.Claim, map[string]bool) {
	var claims []model.Claim
	matched := make(map[string]bool)

	for _, sentence := range normalize.Sentences(text) {
		if len(claims) == p.maxClaims {
			break
		}
		entry, ok := p.table.Match(sentence)
		if !ok || matched[entry.ID] {
			continue
		}
		matched[entry.ID] = true
		claims = append(claims, misconceptionClaim(normalize.Inline(sentence), entry))
	}

	return claims, matched
}

// merge appends extracted claims after the pre-scan matches, skipping
// misconceptions that were already reported
func (p *Pipeline) merge(claims []model.Claim, matched map[string]bool, extracted []model.Claim) []model.Claim {
	for _, c := range extracted {
		if len(claims) == p.maxClaims {
			break
		}

		switch c.Type {
		case model.ClaimTypeOpinion:
			claims = append(claims, settled(c, explainOpinion))
			continue
		case model.ClaimTypePrediction:
			claims = append(claims, settled(c, explainPrediction))
			continue
		}

		if entry, ok := p.table.Match(c.Text); ok {
			if matched[entry.ID] {
				continue
			}
			matched[entry.ID] = true
			mc := misconceptionClaim(c.Text, entry)
			mc.SearchQuery = c.SearchQuery
			claims = append(claims, mc)
			continue
		}

		claims = append(claims, c)
	}
	return claims
}

// checkFacts retrieves evidence for and adjudicates every fact claim that
// has no verdict yet, with bounded parallelism, in place
func (p *Pipeline) checkFacts(ctx context.Context, claims []model.Claim) {
	var pending []int
	for i, c := range claims {
		if c.Status == "" {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return
	}

	checked := worker.Map(ctx, p.claimWorkers, pending, func(ctx context.Context, i int) model.Claim {
		return p.check(ctx, claims[i])
	})
	for n, i := range pending {
		claims[i] = checked[n]
	}
}

// check runs one fact claim through retrieval and adjudication
func (p *Pipeline) check(ctx context.Context, c model.Claim) model.Claim {
	query := c.SearchQuery
	if query == "" {
		query = c.Text
	}

	retrieval := p.retriever.Retrieve(ctx, query)
	if !retrieval.OK() {
		p.logger.Debug("no evidence for claim", "query", query, "reason", retrieval.Failure)
	}

	verdict := p.adjudicator.Adjudicate(ctx, c.Text, retrieval.Evidence)

	c.Status = verdict.Status
	c.Explanation = verdict.Explanation
	c.AgreementCount = verdict.AgreementCount
	c.Evidence = retrieval.Evidence
	if c.Evidence == nil {
		c.Evidence = []model.Evidence{}
	}
	return c
}

// Ask answers a question from web sources with a coarse confidence label
func (p *Pipeline) Ask(ctx context.Context, question string) (*model.AskResult, error) {
	q, err := ValidateQuestion(question)
	if err != nil {
		return nil, err
	}
	if p.backend == nil {
		return nil, ErrNoBackend
	}

	r := p.retriever.Answer(ctx, q)

	answer := r.Answer
	if !r.OK() || utf8.RuneCountInString(answer) < minAnswerRunes {
		answer = noReliableAnswer
	}

	sources := r.Evidence
	if sources == nil {
		sources = []model.Evidence{}
	}

	return &model.AskResult{
		Answer:     answer,
		Sources:    sources,
		Confidence: score.Confidence(sources, r.Confidence),
	}, nil
}

// Search answers a query and scores the answer by the quality and
// agreement of its sources
func (p *Pipeline) Search(ctx context.Context, query string) (*model.AnswerResult, error) {
	q := normalize.Inline(query)
	if q == "" {
		return nil, model.NewValidationError("query", MsgQueryEmpty)
	}
	if p.backend == nil {
		return nil, ErrNoBackend
	}

	r := p.retriever.Answer(ctx, q)

	answer := r.Answer
	if !r.OK() {
		answer = searchFailed
	}

	sources := r.Evidence
	if sources == nil {
		sources = []model.Evidence{}
	}

	return &model.AnswerResult{
		Query:          q,
		Answer:         answer,
		TrustScore:     p.scorer.Score(sources, r.AgreementCount),
		Evidence:       sources,
		AgreementCount: r.AgreementCount,
		Warnings:       p.scorer.Warnings(sources, answer),
	}, nil
}

// Rephrase rewrites text in different words while keeping its facts.
// Unlike the other operations a backend failure is returned to the caller.
func (p *Pipeline) Rephrase(ctx context.Context, text string) (string, error) {
	t := normalize.Text(text)
	if t == "" {
		return "", model.NewValidationError("text", MsgRephraseEmpty)
	}
	if utf8.RuneCountInString(t) > MaxContentLength {
		return "", model.NewValidationError("text", MsgContentLong)
	}
	if p.backend == nil {
		return "", ErrNoBackend
	}

	resp, err := p.backend.Complete(ctx, llm.Request{
		Purpose:   "rephrase",
		Prompt:    fmt.Sprintf(rephrasePrompt, t),
		MaxTokens: 1000,
	})
	if err != nil {
		return "", fmt.Errorf("rephrase: %w", err)
	}

	rephrased := strings.TrimSpace(resp.Text)
	if rephrased == "" {
		return "", fmt.Errorf("rephrase: %w", &model.BackendError{Op: "rephrase", Err: errors.New("empty reply")})
	}
	return adjudicate.ExpandContractions(rephrased), nil
}

// SummaryText renders a one-line description of verification counts
func SummaryText(s model.Summary) string {
	noun := "claims"
	if s.Total == 1 {
		noun = "claim"
	}
	return fmt.Sprintf("%d %s checked: %d supported, %d contradicted, %d unverified, %d opinions.",
		s.Total, noun, s.Supported, s.Contradicted, s.Unverified, s.Opinions)
}

func misconceptionClaim(text string, entry misconception.Entry) model.Claim {
	metrics.RecordMisconception(entry.ID)
	return model.Claim{
		Text:            text,
		Type:            model.ClaimTypeFact,
		Status:          model.StatusContradicted,
		Explanation:     entry.Correction,
		Evidence:        []model.Evidence{},
		MisconceptionID: entry.ID,
	}
}

// settled marks an opinion or prediction, which is never checked
func settled(c model.Claim, explanation string) model.Claim {
	c.Status = model.StatusOpinion
	c.Explanation = explanation
	c.Evidence = []model.Evidence{}
	c.AgreementCount = 0
	return c
}

const rephrasePrompt = `Rewrite this text in different words while keeping ALL the same facts. Make it sound natural and original, like a person wrote it fresh. Do NOT change any facts, numbers, dates, or claims. Only change the wording.

TEXT TO REWRITE:
"%s"

RULES:
1. Keep ALL facts exactly the same
2. Change the sentence structure and word choices
3. Make it sound natural, not robotic
4. Use professional language (no contractions)
5. Keep approximately the same length

Return ONLY the rewritten text, nothing else.`
