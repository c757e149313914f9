package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/trustie/internal/model"
)

var askTimeout time.Duration

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from web sources",
	Long: `Ask answers a question using only information backed by web sources and
reports a coarse confidence.

Example:
  trustie ask "How tall is Mount Everest?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, _, err := setup()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()

		result, err := p.Ask(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		if outputJSON {
			return printJSON(cmd.OutOrStdout(), result)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintln(w, result.Answer)
		fmt.Fprintf(w, "\nConfidence: %s\n", result.Confidence)
		printSources(w, result.Sources)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Answer a query with a trust score",
	Long: `Search answers a query from web sources and scores the answer from 0 to
100 by the trust tier and agreement of its sources.

Example:
  trustie search "boiling point of water at altitude"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, p, _, err := setup()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()

		result, err := p.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		if outputJSON {
			return printJSON(cmd.OutOrStdout(), result)
		}
		printAnswer(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(searchCmd)

	for _, c := range []*cobra.Command{askCmd, searchCmd} {
		c.Flags().BoolVar(&outputJSON, "json", false, "print the full result as JSON")
		c.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "overall timeout")
	}
}

func printAnswer(w io.Writer, result *model.AnswerResult) {
	fmt.Fprintln(w, result.Answer)
	fmt.Fprintf(w, "\nTrust score: %d/100 (%d of %d sources agree)\n",
		result.TrustScore, result.AgreementCount, len(result.Evidence))
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "⚠ %s\n", warning)
	}
	printSources(w, result.Evidence)
}

func printSources(w io.Writer, sources []model.Evidence) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(w, "\nSources:")
	for _, s := range sources {
		fmt.Fprintf(w, "  [%s] %s\n       %s\n", s.TrustTier, s.Title, s.URL)
	}
}
