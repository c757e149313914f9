package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ppiankov/trustie/internal/llm"
	"github.com/ppiankov/trustie/internal/model"
	"github.com/ppiankov/trustie/internal/score"
)

const sampleText = `The Great Wall of China is visible from space. Paris is the capital of France.

Chocolate is the best dessert. Stocks will rise next year.`

const sampleClaims = `Here are the claims:
[
  {"claim": "The Great Wall of China is visible from space", "type": "fact", "searchQuery": "great wall visible from space"},
  {"claim": "Paris is the capital of France", "type": "fact", "searchQuery": "capital of France"},
  {"claim": "Chocolate is the best dessert", "type": "opinion", "searchQuery": ""},
  {"claim": "Stocks will rise next year", "type": "prediction", "searchQuery": ""}
]`

const sampleSources = `[
  {"url": "https://www.reuters.com/world/paris", "title": "Paris", "snippet": "Paris, the <b>French</b> capital", "domain": ""},
  {"url": "https://en.wikipedia.org/wiki/Paris", "title": "Paris - Wikipedia", "snippet": "Paris is the capital of France", "domain": "en.wikipedia.org"}
]`

// scripted answers each backend purpose with a fixed reply and counts calls
type scripted struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	calls   map[string]int
}

func newScripted(replies map[string]string) *scripted {
	return &scripted{replies: replies, errs: map[string]error{}, calls: map[string]int{}}
}

func (s *scripted) Name() string { return "scripted" }

func (s *scripted) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[req.Purpose]++
	if err := s.errs[req.Purpose]; err != nil {
		return nil, err
	}
	return &llm.Response{Text: s.replies[req.Purpose]}, nil
}

func (s *scripted) count(purpose string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[purpose]
}

func newTestPipeline(t *testing.T, backend llm.Backend) *Pipeline {
	t.Helper()
	p, err := New(model.DefaultConfig(), Deps{Backend: backend})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestVerify_FullFlow(t *testing.T) {
	backend := newScripted(map[string]string{
		"extract":    sampleClaims,
		"retrieve":   sampleSources,
		"adjudicate": `{"status": "verified", "explanation": "Sources don't dispute it.", "sourceAgreement": 2}`,
	})
	p := newTestPipeline(t, backend)

	result, err := p.Verify(context.Background(), sampleText, "ChatGPT")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if len(result.Claims) != 4 {
		t.Fatalf("Expected 4 claims, got %d: %+v", len(result.Claims), result.Claims)
	}

	myth := result.Claims[0]
	if myth.Status != model.StatusContradicted || myth.MisconceptionID != "great-wall-space" {
		t.Errorf("Expected pre-scanned myth first, got %+v", myth)
	}
	if len(myth.Evidence) != 0 {
		t.Errorf("Expected no evidence for a myth, got %d", len(myth.Evidence))
	}

	fact := result.Claims[1]
	if fact.Text != "Paris is the capital of France" || fact.Status != model.StatusSupported {
		t.Errorf("Unexpected fact claim: %+v", fact)
	}
	if fact.AgreementCount != 2 {
		t.Errorf("Expected agreement 2, got %d", fact.AgreementCount)
	}
	if fact.Explanation != "Sources do not dispute it." {
		t.Errorf("Expected expanded contractions, got %q", fact.Explanation)
	}
	if len(fact.Evidence) != 2 || fact.Evidence[0].TrustTier != model.TierHigh {
		t.Errorf("Expected high-tier evidence first, got %+v", fact.Evidence)
	}
	if fact.Evidence[1].Domain != "reuters.com" || fact.Evidence[1].Snippet != "Paris, the French capital" {
		t.Errorf("Expected derived domain and stripped snippet, got %+v", fact.Evidence[1])
	}

	if result.Claims[2].Status != model.StatusOpinion || result.Claims[2].Explanation != explainOpinion {
		t.Errorf("Unexpected opinion claim: %+v", result.Claims[2])
	}
	if result.Claims[3].Status != model.StatusOpinion || result.Claims[3].Explanation != explainPrediction {
		t.Errorf("Unexpected prediction claim: %+v", result.Claims[3])
	}

	ids := map[string]bool{}
	for _, c := range result.Claims {
		if c.ID == "" || ids[c.ID] {
			t.Errorf("Expected unique non-empty id, got %q", c.ID)
		}
		ids[c.ID] = true
	}

	want := model.Summary{Total: 4, Supported: 1, Contradicted: 1, Opinions: 2}
	if result.Summary != want {
		t.Errorf("Expected summary %+v, got %+v", want, result.Summary)
	}
	if result.SummaryText != "4 claims checked: 1 supported, 1 contradicted, 0 unverified, 2 opinions." {
		t.Errorf("Unexpected summary text: %q", result.SummaryText)
	}

	// Only the one unresolved fact reaches retrieval and adjudication
	if backend.count("retrieve") != 1 || backend.count("adjudicate") != 1 {
		t.Errorf("Expected 1 retrieve and 1 adjudicate call, got %d and %d",
			backend.count("retrieve"), backend.count("adjudicate"))
	}

	list, _ := p.Rankings().List(context.Background())
	if len(list) != 1 {
		t.Fatalf("Expected 1 ranking, got %d", len(list))
	}
	if list[0].Name != "ChatGPT" || list[0].ChecksCount != 1 || list[0].SupportedRate != 50 || list[0].ContradictedRate != 50 {
		t.Errorf("Unexpected ranking: %+v", list[0])
	}
}

func TestVerify_NoClaims(t *testing.T) {
	backend := newScripted(map[string]string{"extract": "[]"})
	p := newTestPipeline(t, backend)

	result, err := p.Verify(context.Background(), "Hello there, how are you doing today?", "Claude")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if len(result.Claims) != 0 || result.Claims == nil {
		t.Errorf("Expected empty claims slice, got %v", result.Claims)
	}
	if result.Message != noClaimsMessage {
		t.Errorf("Expected no-claims message, got %q", result.Message)
	}
	if result.Summary.Total != 0 {
		t.Errorf("Expected zero summary, got %+v", result.Summary)
	}

	list, _ := p.Rankings().List(context.Background())
	if len(list) != 0 {
		t.Errorf("Expected no rankings, got %+v", list)
	}
}

func TestVerify_BackendFailuresDegrade(t *testing.T) {
	backend := newScripted(map[string]string{
		"extract": `[{"claim": "Paris is the capital of France", "type": "fact"}, {"claim": "Rome is in Italy", "type": "fact"}]`,
	})
	backend.errs["retrieve"] = errors.New("upstream timeout")
	p := newTestPipeline(t, backend)

	result, err := p.Verify(context.Background(), "Paris is the capital of France. Rome is in Italy.", "Gemini")
	if err != nil {
		t.Fatalf("Expected degraded result, got error %v", err)
	}

	if len(result.Claims) != 2 {
		t.Fatalf("Expected 2 claims, got %d", len(result.Claims))
	}
	for _, c := range result.Claims {
		if c.Status != model.StatusUnverified {
			t.Errorf("Expected unverified, got %s", c.Status)
		}
		if c.Evidence == nil || len(c.Evidence) != 0 {
			t.Errorf("Expected empty evidence, got %v", c.Evidence)
		}
	}

	// No evidence means no adjudication call
	if backend.count("adjudicate") != 0 {
		t.Errorf("Expected no adjudicate calls, got %d", backend.count("adjudicate"))
	}
}

func TestVerify_ExtractedMisconception(t *testing.T) {
	backend := newScripted(map[string]string{
		"extract": `[{"claim": "Bats are blind", "type": "fact"}]`,
	})
	p := newTestPipeline(t, backend)

	// The sentence itself is phrased so the pre-scan misses it
	result, err := p.Verify(context.Background(), "Many people think of bats as creatures without sight.", "Llama")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if len(result.Claims) != 1 || result.Claims[0].MisconceptionID != "bats-blind" {
		t.Fatalf("Expected bats-blind misconception, got %+v", result.Claims)
	}
	if result.Claims[0].Status != model.StatusContradicted {
		t.Errorf("Expected contradicted, got %s", result.Claims[0].Status)
	}
	if backend.count("retrieve") != 0 {
		t.Error("Expected misconception to skip retrieval")
	}
}

func TestVerify_CapsClaims(t *testing.T) {
	var items []string
	for i := 0; i < 15; i++ {
		items = append(items, `{"claim": "Opinion number `+string(rune('a'+i))+`", "type": "opinion"}`)
	}
	backend := newScripted(map[string]string{"extract": "[" + strings.Join(items, ",") + "]"})
	p := newTestPipeline(t, backend)

	result, err := p.Verify(context.Background(), "A long enough passage of opinions to check.", "X")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(result.Claims) != model.MaxClaimsPerText {
		t.Errorf("Expected %d claims, got %d", model.MaxClaimsPerText, len(result.Claims))
	}
}

func TestVerify_ConcurrentWorkersKeepOrder(t *testing.T) {
	var inflight, peak int32
	backend := llm.BackendFunc(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		switch req.Purpose {
		case "extract":
			return &llm.Response{Text: `[
				{"claim": "Claim one is true", "type": "fact", "searchQuery": "one"},
				{"claim": "Claim two is true", "type": "fact", "searchQuery": "two"},
				{"claim": "Claim three is true", "type": "fact", "searchQuery": "three"}
			]`}, nil
		case "retrieve":
			n := atomic.AddInt32(&inflight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			defer atomic.AddInt32(&inflight, -1)
			return &llm.Response{Text: `[{"url": "https://nasa.gov/x", "title": "t", "snippet": "s"}]`}, nil
		default:
			return &llm.Response{Text: `{"status": "supported", "explanation": "ok", "sourceAgreement": 1}`}, nil
		}
	})

	cfg := model.DefaultConfig()
	cfg.Pipeline.ClaimWorkers = 3
	p, err := New(cfg, Deps{Backend: backend})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, err := p.Verify(context.Background(), "Claim one. Claim two. Claim three. All true.", "X")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	want := []string{"Claim one is true", "Claim two is true", "Claim three is true"}
	for i, c := range result.Claims {
		if c.Text != want[i] {
			t.Errorf("Expected %q at %d, got %q", want[i], i, c.Text)
		}
		if c.Status != model.StatusSupported {
			t.Errorf("Expected supported, got %s", c.Status)
		}
	}
	if peak > 3 {
		t.Errorf("Expected at most 3 concurrent retrievals, got %d", peak)
	}
}

func TestVerify_Validation(t *testing.T) {
	p := newTestPipeline(t, newScripted(nil))

	_, err := p.Verify(context.Background(), "short", "X")
	if msg := validationMessage(t, err); msg != MsgContentShort {
		t.Errorf("Expected %q, got %q", MsgContentShort, msg)
	}

	_, err = p.Verify(context.Background(), sampleText, "")
	if msg := validationMessage(t, err); msg != MsgSourceMissing {
		t.Errorf("Expected %q, got %q", MsgSourceMissing, msg)
	}
}

func TestOperations_NoBackend(t *testing.T) {
	p := newTestPipeline(t, nil)
	ctx := context.Background()

	if _, err := p.Verify(ctx, sampleText, "X"); !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("Verify: expected ErrConfiguration, got %v", err)
	}
	if _, err := p.Ask(ctx, "What is the capital of France?"); !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("Ask: expected ErrConfiguration, got %v", err)
	}
	if _, err := p.Search(ctx, "capital of France"); !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("Search: expected ErrConfiguration, got %v", err)
	}
	if _, err := p.Rephrase(ctx, "Some text"); !errors.Is(err, model.ErrConfiguration) {
		t.Errorf("Rephrase: expected ErrConfiguration, got %v", err)
	}
}

func TestAsk(t *testing.T) {
	backend := newScripted(map[string]string{
		"answer": `{"answer": "Paris is the capital of France.", "confidence": "medium", "agreementCount": 3, "sources": [
			{"url": "https://en.wikipedia.org/wiki/Paris", "title": "Paris", "snippet": "capital"},
			{"url": "https://www.britannica.com/place/Paris", "title": "Paris", "snippet": "capital"},
			{"url": "https://www.bbc.com/news/paris", "title": "Paris", "snippet": "capital"}
		]}`,
	})
	p := newTestPipeline(t, backend)

	result, err := p.Ask(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if result.Answer != "Paris is the capital of France." {
		t.Errorf("Unexpected answer: %q", result.Answer)
	}
	if len(result.Sources) != 3 {
		t.Errorf("Expected 3 sources, got %d", len(result.Sources))
	}
	// Medium is lifted to high with three sources
	if result.Confidence != model.ConfidenceHigh {
		t.Errorf("Expected high confidence, got %s", result.Confidence)
	}
}

func TestAsk_Failure(t *testing.T) {
	backend := newScripted(nil)
	backend.errs["answer"] = errors.New("boom")
	p := newTestPipeline(t, backend)

	result, err := p.Ask(context.Background(), "What is the capital of France?")
	if err != nil {
		t.Fatalf("Expected degraded answer, got %v", err)
	}
	if result.Answer != noReliableAnswer {
		t.Errorf("Expected default answer, got %q", result.Answer)
	}
	if result.Confidence != model.ConfidenceLow || result.Sources == nil {
		t.Errorf("Expected low confidence and empty sources, got %+v", result)
	}
}

func TestAsk_Validation(t *testing.T) {
	p := newTestPipeline(t, newScripted(nil))

	_, err := p.Ask(context.Background(), "  ")
	if msg := validationMessage(t, err); msg != MsgQuestionEmpty {
		t.Errorf("Expected %q, got %q", MsgQuestionEmpty, msg)
	}
}

func TestSearch(t *testing.T) {
	backend := newScripted(map[string]string{
		"answer": `{"answer": "It might be Paris.", "agreementCount": 2, "sources": [
			{"url": "https://en.wikipedia.org/wiki/Paris", "title": "Paris", "snippet": "capital"},
			{"url": "https://www.reuters.com/paris", "title": "Paris", "snippet": "capital"}
		]}`,
	})
	p := newTestPipeline(t, backend)

	result, err := p.Search(context.Background(), "  capital   of France ")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if result.Query != "capital of France" {
		t.Errorf("Expected normalized query, got %q", result.Query)
	}

	// 50 + 15 + 8 + 10
	if result.TrustScore != 83 {
		t.Errorf("Expected trust score 83, got %d", result.TrustScore)
	}
	if result.AgreementCount != 2 {
		t.Errorf("Expected agreement 2, got %d", result.AgreementCount)
	}
	if len(result.Warnings) != 1 || result.Warnings[0] != score.WarnHedging {
		t.Errorf("Expected only the hedging warning, got %v", result.Warnings)
	}
}

func TestSearch_Failure(t *testing.T) {
	backend := newScripted(nil)
	backend.errs["answer"] = errors.New("boom")
	p := newTestPipeline(t, backend)

	result, err := p.Search(context.Background(), "capital of France")
	if err != nil {
		t.Fatalf("Expected degraded result, got %v", err)
	}

	if result.Answer != searchFailed {
		t.Errorf("Unexpected answer: %q", result.Answer)
	}
	// 50 - 20 with no sources
	if result.TrustScore != 30 {
		t.Errorf("Expected trust score 30, got %d", result.TrustScore)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("Expected 2 warnings, got %v", result.Warnings)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	p := newTestPipeline(t, newScripted(nil))

	_, err := p.Search(context.Background(), " \n ")
	if msg := validationMessage(t, err); msg != MsgQueryEmpty {
		t.Errorf("Expected %q, got %q", MsgQueryEmpty, msg)
	}
}

func TestRephrase(t *testing.T) {
	backend := newScripted(map[string]string{"rephrase": "  France's capital city isn't Lyon; it's Paris.  "})
	p := newTestPipeline(t, backend)

	out, err := p.Rephrase(context.Background(), "Paris is the capital of France.")
	if err != nil {
		t.Fatalf("Rephrase failed: %v", err)
	}
	if out != "France's capital city is not Lyon; it is Paris." {
		t.Errorf("Unexpected rephrase: %q", out)
	}
}

func TestRephrase_Errors(t *testing.T) {
	backend := newScripted(map[string]string{"rephrase": "   "})
	p := newTestPipeline(t, backend)

	_, err := p.Rephrase(context.Background(), "")
	if msg := validationMessage(t, err); msg != MsgRephraseEmpty {
		t.Errorf("Expected %q, got %q", MsgRephraseEmpty, msg)
	}

	_, err = p.Rephrase(context.Background(), "Some text")
	var be *model.BackendError
	if !errors.As(err, &be) {
		t.Errorf("Expected BackendError for empty reply, got %v", err)
	}
}

func TestSummaryText(t *testing.T) {
	got := SummaryText(model.Summary{Total: 1, Supported: 1})
	if got != "1 claim checked: 1 supported, 0 contradicted, 0 unverified, 0 opinions." {
		t.Errorf("Unexpected summary text: %q", got)
	}
}
