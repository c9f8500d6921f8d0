// Package main provides the parsegen CLI.
//
// parsegen generates Parse functions for Go types annotated with a regular
// expression:
//   - gen writes parsegen_gen.go next to the annotated package (or a YAML schema)
//   - check regenerates in memory and reports a stale file
//   - normalize and rewrite show how patterns and construction expressions are
//     read
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"parsegen/internal/config"
)

// flagKeys maps command-line flags to configuration keys. A flag overrides
// the config file and environment only when it is set.
var flagKeys = map[string]string{
	"schema":   "schema",
	"out":      "generate.out",
	"file":     "generate.filename",
	"package":  "generate.package",
	"comments": "generate.comments",
	"partial":  "generate.partial",
	"strict":   "plan.strict",
	"verbose":  "verbose",
}

// app is the state shared by all commands.
type app struct {
	cfgFile string
	noColor bool

	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	root := newRootCmd()

	if err := root.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:   "parsegen",
		Short: "Generate Parse functions from regular expressions",
		Long: `parsegen reads Go types annotated with //parsegen: directives (or a YAML
schema) and generates a Parse<T>(s string) (T, error) function per type.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is .parsegen.yaml in . or $HOME)")
	root.PersistentFlags().BoolP("verbose", "v", false, "log progress and show info diagnostics")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(a.genCmd())
	root.AddCommand(a.checkCmd())
	root.AddCommand(a.normalizeCmd())
	root.AddCommand(a.rewriteCmd())
	root.AddCommand(versionCmd())

	return root
}

// setup binds the flags of the running command, loads the configuration and
// creates the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if a.noColor {
		color.NoColor = true
	}

	var bindErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}

		bindErr = a.v.BindPFlag(key, f)
	})

	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)

	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
