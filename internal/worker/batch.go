package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/trustie/internal/model"
)

// Searcher answers one question with trust-scored evidence
type Searcher interface {
	Search(ctx context.Context, query string) (*model.AnswerResult, error)
}

// SearchJob represents one question in a batch
type SearchJob struct {
	Query    string
	Searcher Searcher
}

// Execute executes the search job
func (j *SearchJob) Execute(ctx context.Context) Result {
	answer, err := j.Searcher.Search(ctx, j.Query)
	if err != nil {
		return &SearchResult{Query: j.Query, Error: err}
	}
	return &SearchResult{Query: j.Query, Answer: answer}
}

// SearchResult represents the result of a search job
type SearchResult struct {
	Query  string
	Answer *model.AnswerResult
	Error  error
}

// GetError returns the error from the search result
func (r *SearchResult) GetError() error {
	return r.Error
}

// BatchProcessor answers many questions concurrently
type BatchProcessor struct {
	searcher    Searcher
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(searcher Searcher, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		searcher:    searcher,
		concurrency: concurrency,
	}
}

// ProcessQueries searches every query; results keep the input order
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []string) []*SearchResult {
	if len(queries) == 0 {
		return []*SearchResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, q := range queries {
		pool.Submit(&SearchJob{Query: q, Searcher: b.searcher})
	}

	results := pool.Wait()

	searchResults := make([]*SearchResult, len(results))
	for i, result := range results {
		searchResults[i] = result.(*SearchResult)
	}

	return searchResults
}

// ProcessFile reads questions from a file and searches them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*SearchResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads questions from a file (one per line).
// Blank lines and # comments are skipped; repeats are dropped.
func ReadQueriesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key := strings.ToLower(line)
		if !seen[key] {
			seen[key] = true
			queries = append(queries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}
