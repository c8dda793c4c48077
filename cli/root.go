// Package cli implements the gqlbuild command: render operation manifests,
// validate and pretty print them, and manage a registry of persisted
// operations.
package cli

import (
	"fmt"
	"io"

	"github.com/asaidimu/go-gqlbuilder/core/persisted"
	"github.com/asaidimu/go-gqlbuilder/sqlite"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	// Version information (set by build)
	Version = "dev"
	Commit  = "unknown"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *Config
	logger  *zap.Logger

	success *color.Color
	failure *color.Color
	info    *color.Color
}

// NewRootCommand creates the gqlbuild command tree.
func NewRootCommand() *cobra.Command {
	a := &app{
		v:       viper.New(),
		logger:  zap.NewNop(),
		success: color.New(color.FgGreen, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
		info:    color.New(color.FgCyan),
	}

	rootCmd := &cobra.Command{
		Use:           "gqlbuild",
		Short:         "Build GraphQL operations from YAML manifests",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default .gqlbuild.yaml in . or $HOME)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("store", "gqlbuild.db", "path of the persisted operation database")

	rootCmd.AddCommand(NewRenderCommand(a))
	rootCmd.AddCommand(NewAnalyzeCommand(a))
	rootCmd.AddCommand(NewPersistCommand(a))
	rootCmd.AddCommand(NewLookupCommand(a))
	rootCmd.AddCommand(NewListCommand(a))
	rootCmd.AddCommand(NewDeleteCommand(a))
	return rootCmd
}

// Execute runs the command tree with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) setup(cmd *cobra.Command) error {
	if err := bindFlags(a.v, cmd); err != nil {
		return err
	}
	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logger.Debug("Configuration loaded",
		zap.String("config", a.v.ConfigFileUsed()),
		zap.String("store", cfg.Store.Path))
	return nil
}

// openStore opens the SQLite registry and passes a store over it to fn.
func (a *app) openStore(fn func(*persisted.Store) error) error {
	db, err := sqlite.Open(a.cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := sqlite.DefaultOptions()
	if a.cfg.Store.Table != "" {
		opts.TableName = a.cfg.Store.Table
	}
	repo := sqlite.NewRepository(db, a.logger.Named("sqlite"), opts)

	store, err := persisted.NewStore(repo, a.logger.Named("store"))
	if err != nil {
		return err
	}
	return fn(store)
}

func (a *app) printf(w io.Writer, c *color.Color, format string, args ...any) {
	_, _ = c.Fprintf(w, format, args...)
}
