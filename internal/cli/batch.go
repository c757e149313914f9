package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustie/internal/worker"
)

var (
	concurrency  int
	outputFile   string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Search many queries from a file in parallel",
	Long: `Batch answers many queries concurrently:
- Read queries from the input file (one per line, # for comments)
- Duplicate queries are searched once
- Each answer is trust-scored like the search command
- Results are written as JSON lines in input order

Example:
  trustie batch queries.txt
  trustie batch queries.txt --concurrency 4 --output results.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 2, "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputFile, "output", "", "output file for JSON lines (default stdout)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
}

// batchLine is one JSON line of batch output
type batchLine struct {
	Query  string `json:"query"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	_, p, _, err := setup()
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if outputFile != "" {
		f, createErr := os.Create(outputFile)
		if createErr != nil {
			return fmt.Errorf("create output file: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output file: %w", closeErr)
			}
		}()
		out = f
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	processor := worker.NewBatchProcessor(p, concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	enc := json.NewEncoder(out)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		line := batchLine{Query: result.Query}
		if result.Error != nil {
			failureCount++
			line.Error = result.Error.Error()
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Query, result.Error)
		} else {
			successCount++
			line.Result = result.Answer
			fmt.Fprintf(os.Stderr, "✓ %s (trust: %d/100)\n", result.Query, result.Answer.TrustScore)
		}

		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d queries\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
