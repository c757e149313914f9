// Package evidence retrieves web evidence for claims and questions through
// the backend's search tool and tags it with trust tiers.
package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/trustie/internal/cache"
	"github.com/ppiankov/trustie/internal/llm"
	"github.com/ppiankov/trustie/internal/metrics"
	"github.com/ppiankov/trustie/internal/model"
	"github.com/ppiankov/trustie/internal/normalize"
	"github.com/ppiankov/trustie/internal/validate"
)

const (
	// fallbackAnswerRunes bounds the raw reply used when answer JSON is unusable
	fallbackAnswerRunes = 500

	noAnswer      = "Unable to find a clear answer."
	noSearchReply = "Unable to process search. Please try again."
)

// Retrieval is the outcome of one evidence lookup.
// A failed lookup carries a reason and no evidence.
type Retrieval struct {
	Evidence []model.Evidence
	Failure  string
}

// OK reports whether the lookup completed
func (r Retrieval) OK() bool {
	return r.Failure == ""
}

// AnswerRetrieval is the outcome of answer mode
type AnswerRetrieval struct {
	Answer         string
	Evidence       []model.Evidence
	AgreementCount int
	Confidence     model.Confidence // Declared by the backend; empty when absent
	Failure        string
}

// OK reports whether the lookup completed
func (r AnswerRetrieval) OK() bool {
	return r.Failure == ""
}

// Options configures a Retriever
type Options struct {
	ResultsPerQuery int           // Results requested per query (2..5)
	MaxEvidence     int           // Cap on returned evidence (<= 5)
	MaxSearches     int           // Web search budget per call
	Cache           cache.Cache   // nil disables caching
	CacheTTL        time.Duration // Zero uses the cache default
}

// Retriever looks up evidence through the backend's web search
type Retriever struct {
	backend    llm.Backend
	classifier *validate.TierClassifier
	opts       Options
	group      singleflight.Group
	logger     *slog.Logger
}

// NewRetriever creates a new evidence retriever
func NewRetriever(backend llm.Backend, classifier *validate.TierClassifier, opts Options, logger *slog.Logger) *Retriever {
	if classifier == nil {
		classifier = validate.NewTierClassifier(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ResultsPerQuery < 2 {
		opts.ResultsPerQuery = 3
	}
	if opts.ResultsPerQuery > model.MaxEvidencePerClaim {
		opts.ResultsPerQuery = model.MaxEvidencePerClaim
	}
	if opts.MaxEvidence <= 0 || opts.MaxEvidence > model.MaxEvidencePerClaim {
		opts.MaxEvidence = model.MaxEvidencePerClaim
	}
	return &Retriever{
		backend:    backend,
		classifier: classifier,
		opts:       opts,
		logger:     logger,
	}
}

type rawSource struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Domain  string `json:"domain"`
}

type rawAnswer struct {
	Answer         string      `json:"answer"`
	Sources        []rawSource `json:"sources"`
	AgreementCount *int        `json:"agreementCount"`
	Confidence     string      `json:"confidence"`
}

// Retrieve finds evidence for a search query.
// Identical concurrent lookups share one backend call.
func (r *Retriever) Retrieve(ctx context.Context, query string) Retrieval {
	query = normalize.Inline(query)
	if query == "" {
		return Retrieval{Failure: "empty query"}
	}

	key := cache.Key("retrieve", query)
	if evidence, ok := r.cached(key); ok {
		return Retrieval{Evidence: evidence}
	}

	// The shared call outlives the caller that started it. The backend
	// guard bounds its duration.
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (interface{}, error) {
		result := r.retrieve(shared, query)
		if result.OK() {
			r.store(key, result.Evidence)
		}
		return result, nil
	})

	select {
	case res := <-ch:
		return res.Val.(Retrieval)
	case <-ctx.Done():
		return Retrieval{Failure: ctx.Err().Error()}
	}
}

func (r *Retriever) retrieve(ctx context.Context, query string) Retrieval {
	resp, err := r.backend.Complete(ctx, llm.Request{
		Purpose:     "retrieve",
		Prompt:      fmt.Sprintf(retrievePrompt, query, r.opts.ResultsPerQuery),
		MaxTokens:   1500,
		WebSearch:   true,
		MaxSearches: r.opts.MaxSearches,
	})
	if err != nil {
		r.logger.Warn("evidence retrieval failed", "query", query, "error", err)
		return Retrieval{Failure: err.Error()}
	}

	var sources []rawSource
	if err := llm.DecodeArray("retrieve", resp.Text, &sources); err != nil {
		r.logger.Warn("evidence reply unparseable", "query", query, "error", err)
		return Retrieval{Failure: err.Error()}
	}

	return Retrieval{Evidence: r.tag(sources)}
}

// Answer asks the backend to answer a question from web sources
func (r *Retriever) Answer(ctx context.Context, question string) AnswerRetrieval {
	resp, err := r.backend.Complete(ctx, llm.Request{
		Purpose:     "answer",
		Prompt:      fmt.Sprintf(answerPrompt, question),
		MaxTokens:   3000,
		WebSearch:   true,
		MaxSearches: r.opts.MaxSearches,
	})
	if err != nil {
		r.logger.Warn("answer retrieval failed", "error", err)
		return AnswerRetrieval{Failure: err.Error()}
	}

	var parsed rawAnswer
	if err := llm.DecodeObject("answer", resp.Text, &parsed); err != nil {
		r.logger.Debug("answer reply unparseable, using raw text", "error", err)
		return AnswerRetrieval{Answer: fallbackAnswer(resp.Text)}
	}

	result := AnswerRetrieval{
		Answer:   normalize.Text(parsed.Answer),
		Evidence: r.tag(parsed.Sources),
	}
	if result.Answer == "" {
		result.Answer = noAnswer
	}
	if c, ok := model.ParseConfidence(parsed.Confidence); ok {
		result.Confidence = c
	}

	// A missing count means every returned source was taken to agree
	agreement := len(result.Evidence)
	if parsed.AgreementCount != nil {
		agreement = *parsed.AgreementCount
	}
	result.AgreementCount = clamp(agreement, 0, len(result.Evidence))

	return result
}

// tag cleans, classifies, orders and caps raw sources
func (r *Retriever) tag(sources []rawSource) []model.Evidence {
	evidence := make([]model.Evidence, 0, len(sources))
	seen := make(map[string]bool)

	for _, s := range sources {
		url := strings.TrimSpace(s.URL)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true

		domain := validate.Host(s.Domain)
		if domain == "" {
			domain = validate.Host(url)
		}

		title := normalize.StripMarkup(s.Title)
		if title == "" {
			title = domain
		}

		evidence = append(evidence, model.Evidence{
			URL:       url,
			Title:     title,
			Snippet:   normalize.StripMarkup(s.Snippet),
			Domain:    domain,
			TrustTier: r.classifier.Classify(domain),
		})
	}

	sort.SliceStable(evidence, func(i, j int) bool {
		return evidence[i].TrustTier.Rank() < evidence[j].TrustTier.Rank()
	})

	if len(evidence) > r.opts.MaxEvidence {
		evidence = evidence[:r.opts.MaxEvidence]
	}
	return evidence
}

func (r *Retriever) cached(key string) ([]model.Evidence, bool) {
	if r.opts.Cache == nil {
		return nil, false
	}
	data, found := r.opts.Cache.Get(key)
	if found {
		var evidence []model.Evidence
		if err := json.Unmarshal(data, &evidence); err == nil {
			metrics.RecordCacheLookup(true)
			return evidence, true
		}
	}
	metrics.RecordCacheLookup(false)
	return nil, false
}

func (r *Retriever) store(key string, evidence []model.Evidence) {
	if r.opts.Cache == nil {
		return
	}
	data, err := json.Marshal(evidence)
	if err != nil {
		return
	}
	if err := r.opts.Cache.Set(key, data, r.opts.CacheTTL); err != nil {
		r.logger.Debug("evidence cache write failed", "error", err)
	}
}

func fallbackAnswer(text string) string {
	text = normalize.Text(text)
	if text == "" {
		return noSearchReply
	}
	if utf8.RuneCountInString(text) <= fallbackAnswerRunes {
		return text
	}
	return string([]rune(text)[:fallbackAnswerRunes]) + "..."
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
