package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/trustie/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the verification pipeline over HTTP:

  POST /api/verify     verify the claims in a passage
  POST /api/ask        answer a question from web sources
  POST /api/search     answer a query with a trust score
  POST /api/rephrase   reword a passage keeping its facts
  GET  /api/rankings   reliability rankings per AI source
  POST /api/rankings   log verdict counts manually
  GET  /api/health     liveness
  GET  /metrics        Prometheus metrics

The server refuses to start without backend credentials.

Example:
  ANTHROPIC_API_KEY=sk-ant-... trustie serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, p, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(p, nil, cfg.Server, logger).ListenAndServe(ctx)
}
