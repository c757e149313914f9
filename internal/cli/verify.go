package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustie/internal/model"
)

var (
	sourceLabel     string
	outputJSON      bool
	verifyTimeout   time.Duration
	rephraseTimeout time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Verify the factual claims in a passage",
	Long: `Verify extracts the claims in a passage of AI-generated text and checks
each one against web evidence. The text is read from the file argument, or
from stdin when the argument is "-" or missing.

Example:
  trustie verify answer.txt --source ChatGPT
  pbpaste | trustie verify --source Claude --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

var rephraseCmd = &cobra.Command{
	Use:   "rephrase [file]",
	Short: "Reword a passage while keeping its facts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readInput(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		_, p, _, err := setup()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), rephraseTimeout)
		defer cancel()

		out, err := p.Rephrase(ctx, text)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(rephraseCmd)

	verifyCmd.Flags().StringVar(&sourceLabel, "source", "", "AI system that produced the text (required)")
	verifyCmd.Flags().BoolVar(&outputJSON, "json", false, "print the full result as JSON")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 4*time.Minute, "overall timeout")
	rephraseCmd.Flags().DurationVar(&rephraseTimeout, "timeout", 2*time.Minute, "overall timeout")
}

func runVerify(cmd *cobra.Command, args []string) error {
	text, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	_, p, _, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	result, err := p.Verify(ctx, text, sourceLabel)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	printVerifyResult(cmd.OutOrStdout(), result)
	return nil
}

// readInput reads the file named by args[0], or stdin
func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var statusMarks = map[model.ClaimStatus]string{
	model.StatusSupported:    "✓",
	model.StatusContradicted: "✗",
	model.StatusUnverified:   "?",
	model.StatusOpinion:      "~",
}

func printVerifyResult(w io.Writer, result *model.VerifyResult) {
	if result.Message != "" {
		fmt.Fprintln(w, result.Message)
		return
	}

	for i, c := range result.Claims {
		fmt.Fprintf(w, "%s %d. %s\n", statusMarks[c.Status], i+1, c.Text)
		fmt.Fprintf(w, "     %s: %s\n", c.Status, c.Explanation)
		for _, e := range c.Evidence {
			fmt.Fprintf(w, "     - [%s] %s\n", e.TrustTier, e.URL)
		}
	}

	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintln(w, result.SummaryText)
}
