package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"parsegen/internal/analyze"
	"parsegen/internal/common"
	"parsegen/internal/diagnostic"
	"parsegen/internal/gen"
	"parsegen/internal/plan"
	"parsegen/internal/schema"
)

var (
	errDiagnostics = errors.New("generation failed")
	errOutConflict = errors.New("--out cannot be used with more than one package")
)

// target is one file to generate.
type target struct {
	// Name is the package path or schema file it was generated from.
	Name string
	Dir  string
	File *gen.GeneratedFile
}

func addGenFlags(cmd *cobra.Command) {
	cmd.Flags().String("schema", "", "YAML schema file to generate from instead of Go packages")
	cmd.Flags().String("out", "", "output directory (default is the package directory)")
	cmd.Flags().String("file", "", "name of the generated file")
	cmd.Flags().String("package", "", "package clause of the generated file")
	cmd.Flags().Bool("comments", false, "explain each field binding in the generated code")
	cmd.Flags().Bool("strict", false, "treat warnings as errors")
	cmd.Flags().Bool("partial", false, "still generate the types that have no errors (ignored with --strict)")
}

func (a *app) genCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen [packages]",
		Short: "Generate parsers for annotated types",
		Long: `Generate parsers for the annotated types of the given packages
(default "."), or for the types of a YAML schema file with --schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, buildErr := a.build(cmd, args)

			for _, t := range targets {
				if err := gen.WriteFile(t.File, t.Dir); err != nil {
					return err
				}

				a.logger.Info("wrote parsers", "source", t.Name, "file", filepath.Join(t.Dir, t.File.Filename))
			}

			return buildErr
		},
	}

	addGenFlags(cmd)

	return cmd
}

// build plans and generates every target without writing anything.
// Diagnostics are printed as they are found; any error diagnostic (or
// warning, in strict mode) fails the whole run. In partial mode the run still
// fails, but the types without errors are returned as targets along with
// errDiagnostics.
func (a *app) build(cmd *cobra.Command, args []string) ([]*target, error) {
	var (
		targets []*target
		failed  bool
	)

	emit := func(name, dir string, s *schema.Schema, types schema.TypeResolver, prior diagnostic.Diagnostics) error {
		if a.cfg.Generate.Out != "" {
			dir = a.cfg.Generate.Out
		}

		p, err := plan.NewResolver(types, a.planConfig(), plan.WithPrior(prior), plan.WithLogger(a.logger)).Resolve(s)
		if p != nil {
			if err == nil && a.partial() && p.Diagnostics.HasErrors() {
				if dropped := p.Prune(); len(dropped) > 0 {
					a.logger.Debug("dropped dependent types", "source", name, "types", dropped)
				}
			}

			printDiagnostics(cmd.ErrOrStderr(), p.Diagnostics, a.cfg.Verbose)
		}

		switch {
		case err != nil, a.cfg.Plan.Strict && len(p.Diagnostics.Warnings) > 0:
			failed = true
			return nil
		case p.Diagnostics.HasErrors():
			failed = true
			if !a.partial() {
				return nil
			}
		}

		if len(p.Types) == 0 {
			a.logger.Info("no annotated types", "source", name)
			return nil
		}

		file, err := gen.NewGenerator(a.generatorConfig(dir), gen.WithLogger(a.logger)).Generate(p)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		targets = append(targets, &target{Name: name, Dir: dir, File: file})

		return nil
	}

	if a.cfg.Schema != "" {
		s, err := schema.LoadFile(a.cfg.Schema)
		if err != nil {
			return nil, err
		}

		if err := emit(a.cfg.Schema, filepath.Dir(a.cfg.Schema), s, nil, diagnostic.Diagnostics{}); err != nil {
			return nil, err
		}
	} else {
		if len(args) == 0 {
			args = []string{"."}
		}

		pkgs, err := analyze.NewAnalyzer(analyze.WithLogger(a.logger)).LoadPackages(args...)
		if err != nil {
			return nil, err
		}

		if common.IsMultiple(pkgs) && a.cfg.Generate.Out != "" {
			return nil, errOutConflict
		}

		for _, pkg := range pkgs {
			if err := emit(pkg.Schema.PkgPath, pkg.Dir, pkg.Schema, pkg.Resolver, pkg.Diagnostics); err != nil {
				return nil, err
			}
		}
	}

	if failed {
		if a.partial() {
			return targets, errDiagnostics
		}

		return nil, errDiagnostics
	}

	return targets, nil
}

func (a *app) partial() bool {
	return a.cfg.Generate.Partial && !a.cfg.Plan.Strict
}

func (a *app) planConfig() plan.Config {
	c := plan.DefaultConfig()
	c.StrictMode = a.cfg.Plan.Strict
	c.WarnUnusedCaptures = a.cfg.Plan.WarnUnusedCaptures
	c.MaxSuggestions = a.cfg.Plan.MaxSuggestions

	return c
}

func (a *app) generatorConfig(dir string) gen.GeneratorConfig {
	c := gen.DefaultGeneratorConfig()
	c.OutputDir = dir
	c.Filename = a.cfg.Generate.Filename
	c.PackageName = a.cfg.Generate.Package
	c.GenerateComments = a.cfg.Generate.Comments

	return c
}
