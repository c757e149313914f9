// Package rankings keeps per-source verdict counts and derives
// reliability rankings from them.
package rankings

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ppiankov/trustie/internal/model"
)

// Tally is one batch of verdict counts for a source
type Tally struct {
	Supported    int
	Contradicted int
	Unverified   int
	Opinions     int // Only set by manually logged counts
}

// Factual returns the number of fact-claim verdicts in the tally
func (t Tally) Factual() int {
	return t.Supported + t.Contradicted + t.Unverified
}

// TallyClaims counts the verdicts of fact-typed claims.
// Opinions and predictions are never counted.
func TallyClaims(claims []model.Claim) Tally {
	var t Tally
	for _, c := range claims {
		if !c.IsFact() {
			continue
		}
		switch c.Status {
		case model.StatusSupported:
			t.Supported++
		case model.StatusContradicted:
			t.Contradicted++
		case model.StatusUnverified:
			t.Unverified++
		}
	}
	return t
}

// Store holds source accumulators. Implementations must make concurrent
// records against one source add up exactly.
type Store interface {
	Record(ctx context.Context, source string, tally Tally) error
	Accumulators(ctx context.Context) ([]model.SourceAccumulator, error)
}

type entry struct {
	mu  sync.Mutex
	acc model.SourceAccumulator
}

// MemoryStore keeps accumulators for the process lifetime
type MemoryStore struct {
	entries map[string]*entry
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*entry)}
}

// Record adds a tally to the source's accumulator. A tally with at least
// one fact verdict counts as one check.
func (s *MemoryStore) Record(ctx context.Context, source string, tally Tally) error {
	source = strings.TrimSpace(source)
	if source == "" {
		return fmt.Errorf("record tally: empty source name")
	}
	if tally.Supported < 0 || tally.Contradicted < 0 || tally.Unverified < 0 || tally.Opinions < 0 {
		return fmt.Errorf("record tally for %s: negative count", source)
	}
	if tally.Factual() == 0 && tally.Opinions == 0 {
		return nil
	}

	e := s.getEntry(source)
	e.mu.Lock()
	defer e.mu.Unlock()

	if tally.Factual() > 0 {
		e.acc.TotalChecks++
	}
	e.acc.SupportedCount += tally.Supported
	e.acc.ContradictedCount += tally.Contradicted
	e.acc.UnconfirmedCount += tally.Unverified
	e.acc.OpinionCount += tally.Opinions

	return nil
}

// getEntry returns the entry for a source, creating it on first use
func (s *MemoryStore) getEntry(source string) *entry {
	s.mu.RLock()
	e, exists := s.entries[source]
	s.mu.RUnlock()

	if exists {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if e, exists := s.entries[source]; exists {
		return e
	}

	e = &entry{acc: model.SourceAccumulator{Name: source}}
	s.entries[source] = e
	return e
}

// Accumulators returns a snapshot of every accumulator, sorted by name
func (s *MemoryStore) Accumulators(ctx context.Context) ([]model.SourceAccumulator, error) {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]model.SourceAccumulator, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.acc)
		e.mu.Unlock()
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
