package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/morphology-mcp/internal/config"
	"github.com/ironsheep/morphology-mcp/internal/morphology"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version and
// reported to MCP clients. It is called by the main package with values
// injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// rootOptions carries persistent flag values and the loaded configuration
// to subcommands.
type rootOptions struct {
	verbose    bool
	configPath string
	cfg        *config.Config
}

// defaultConfigPath returns the per-user configuration file location, or
// a file in the working directory when no user config directory exists.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "morphology-mcp.yaml"
	}
	return filepath.Join(dir, "morphology-mcp", "config.yaml")
}

// Execute runs the morphology-mcp CLI and returns an error if any command
// fails. SIGINT and SIGTERM cancel the running command's context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "morphology-mcp",
		Short:        "MCP server for geodesic erosion and morphological reconstruction",
		Long:         `morphology-mcp serves grayscale morphological reconstruction (geodesic erosion, fill holes) to MCP clients over stdio.`,
		Version:      versionString(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			level, err := resolveLevel(opts.verbose, cfg)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			logger := newLogger(cmd.ErrOrStderr(), level)
			logger.Debug("configuration loaded", "path", opts.configPath)
			cmd.SetContext(morphology.WithLogger(cmd.Context(), logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("morphology-mcp %s\ncommit: %s\nbuilt: %s\n", versionString(), commit, date))
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath(), "configuration file")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newConfigCmd(opts))

	return root
}

func versionString() string {
	if version == "" {
		return "dev"
	}
	return version
}
