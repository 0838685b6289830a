// Package commands implements the assetpipe CLI.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/meigma/assetpipe/config"
)

// Version information injected at build time.
var Version = "dev"

// app carries state shared by every subcommand.
type app struct {
	cfgFile  string
	logLevel string
	cfg      *config.Config
	logger   *slog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "assetpipe",
		Short: "Build asset packs and prefetch them through the asset pipeline",
		Long: `assetpipe writes texture, mesh and material assets into pack files and
replays load plans through the asset pipeline, reporting how each request
was served.

Use "assetpipe [command] --help" for more information about a command.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (YAML); ASSETPIPE_* environment variables override it")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(newPackCmd(a))
	root.AddCommand(newSynthCmd(a))
	root.AddCommand(newLoadCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
		config.ApplyDefaults(cfg)
		if err := config.Validate(cfg); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(cmd.ErrOrStderr())
	return nil
}
