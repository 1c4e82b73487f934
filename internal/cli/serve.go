package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/ironsheep/morphology-mcp/internal/morphology"
	"github.com/ironsheep/morphology-mcp/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdin/stdout",
		Long: `Run the MCP server. Requests are read from stdin one JSON-RPC message per line
and responses are written to stdout. Configure it in your MCP client as the
command "morphology-mcp serve".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	logger := morphology.LoggerFromContext(ctx)

	server.Version = versionString()
	srv := server.New(opts.cfg, logger)

	p := newProgress(logger)
	logger.Info("server starting", "version", server.Version, "workers", opts.cfg.Processing.Workers,
		"max_iterations", opts.cfg.Processing.MaxIterations, "fully_connected", opts.cfg.Processing.FullyConnected)

	err := srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	p.done("server stopped")
	return err
}
