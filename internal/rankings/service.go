package rankings

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/ppiankov/trustie/internal/model"
)

// Service records verification outcomes and lists rankings
type Service struct {
	store   Store
	penalty int
}

// NewService creates a rankings service over store
func NewService(store Store, config model.RankingConfig) *Service {
	penalty := config.ContradictionPenalty
	if penalty < 0 {
		penalty = 0
	}
	return &Service{store: store, penalty: penalty}
}

// RecordClaims adds the fact verdicts of one verification
func (s *Service) RecordClaims(ctx context.Context, source string, claims []model.Claim) error {
	return s.store.Record(ctx, source, TallyClaims(claims))
}

// RecordTally adds manually logged counts
func (s *Service) RecordTally(ctx context.Context, source string, tally Tally) error {
	return s.store.Record(ctx, source, tally)
}

// List derives rankings for every source with at least one fact verdict,
// highest score first and ties by name
func (s *Service) List(ctx context.Context) ([]model.Ranking, error) {
	accs, err := s.store.Accumulators(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accumulators: %w", err)
	}

	rankings := make([]model.Ranking, 0, len(accs))
	for _, a := range accs {
		if r, ok := s.Rank(a); ok {
			rankings = append(rankings, r)
		}
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		if rankings[i].Score != rankings[j].Score {
			return rankings[i].Score > rankings[j].Score
		}
		return rankings[i].Name < rankings[j].Name
	})

	return rankings, nil
}

// Rank computes the ranking of one accumulator. It reports false when the
// accumulator has no fact verdicts.
func (s *Service) Rank(a model.SourceAccumulator) (model.Ranking, bool) {
	factual := a.FactualTotal()
	if factual == 0 {
		return model.Ranking{}, false
	}

	supportedRate := percent(a.SupportedCount, factual)
	contradictedRate := percent(a.ContradictedCount, factual)

	return model.Ranking{
		Name:             a.Name,
		ChecksCount:      a.TotalChecks,
		SupportedRate:    supportedRate,
		ContradictedRate: contradictedRate,
		Score:            supportedRate - s.penalty*contradictedRate,
	}, true
}

func percent(n, total int) int {
	return int(math.Round(100 * float64(n) / float64(total)))
}
